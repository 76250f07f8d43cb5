package tulospalvelu

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/helpers/getLevels.php", r.URL.Path)
		require.NoError(t, r.ParseForm())
		require.Equal(t, "2026", r.PostFormValue("season"))

		w.Write([]byte(`[{"LevelID":"5","LevelName":"U13"},{"LevelID":"6","LevelName":"U14"}]`))
	}))
	defer srv.Close()

	levels, err := NewClient(srv.URL).Levels(context.Background(), "2026")

	require.NoError(t, err)
	require.Len(t, levels, 2)
	assert.Equal(t, "U13", levels[0].LevelName)
}

func TestTeams(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/serie/helpers/getStatGroup.php", r.URL.Path)
		require.NoError(t, r.ParseForm())
		require.Equal(t, "1234", r.PostFormValue("stgid"))

		w.Write([]byte(`{"Teams":[{"TeamID":"9001","TeamAbbrv":"EJK","TeamAssociation":"Espoon Jääklubi"}]}`))
	}))
	defer srv.Close()

	teams, err := NewClient(srv.URL).Teams(context.Background(), "2026", "1234")

	require.NoError(t, err)
	require.Len(t, teams, 1)
	assert.Equal(t, "EJK", teams[0].TeamAbbrv)
}

func TestGamesLevelBlockShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/helpers/getGames.php", r.URL.Path)
		w.Write([]byte(`[{"Games":[
			{"GameID":"100","GameDate":"14.09.2025","GameTime":"12:00","HomeTeamAbbrv":"EJK","AwayTeamAbbrv":"HC Lions","RinkName":"Espoonlahti 1","LevelName":"U13","SmallAreaGame":"1"},
			{"GameID":"101","GameDate":"21.09.2025","GameTime":"09:15","HomeTeamAbbrv":"K-Espoo","AwayTeamAbbrv":"EJK","RinkName":"Tapiola"}
		]}]`))
	}))
	defer srv.Close()

	raw, err := NewClient(srv.URL).Games(context.Background(), "2026", "1234", "9001", "EJK")

	require.NoError(t, err)
	require.Len(t, raw, 2)
	assert.Equal(t, "100", raw[0].GameID)
	assert.Equal(t, "9001", raw[0].TeamID, "requested team is stamped onto every record")
	assert.Equal(t, "EJK", raw[0].TeamName)
	assert.Equal(t, "Espoonlahti 1", raw[0].Location)
	assert.Equal(t, "1", raw[0].SmallAreaGame)
}

func TestGamesFlatShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"GameID":"100","GameDate":"14.09.2025","GameTime":"12:00"}]`))
	}))
	defer srv.Close()

	raw, err := NewClient(srv.URL).Games(context.Background(), "2026", "1234", "9001", "EJK")

	require.NoError(t, err)
	require.Len(t, raw, 1)
	assert.Equal(t, "100", raw[0].GameID)
}

func TestGamesUnrecognizedShapeIsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"unexpected":"object"}`))
	}))
	defer srv.Close()

	raw, err := NewClient(srv.URL).Games(context.Background(), "2026", "1234", "9001", "EJK")

	require.NoError(t, err, "a shape change degrades to an empty schedule, not an error")
	assert.Empty(t, raw)
}

func TestErrorStatusSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Levels(context.Background(), "2026")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 502")
}
