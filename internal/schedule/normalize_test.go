package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDeduplicatesByGameID(t *testing.T) {
	raw := []RawGame{
		{GameID: "100", Date: "14.09.2025", HomeTeam: "EJK", AwayTeam: "HC Lions"},
		{GameID: "100", Date: "15.09.2025", HomeTeam: "Duplicate", AwayTeam: "Row"},
		{GameID: "101", Date: "15.09.2025", HomeTeam: "K-Espoo", AwayTeam: "EJK"},
	}

	games := Normalize(raw)

	require.Len(t, games, 2)
	assert.Equal(t, "100", games[0].GameID)
	assert.Equal(t, "EJK", games[0].HomeTeam, "first occurrence wins")
	assert.Equal(t, "101", games[1].GameID)
}

func TestNormalizeKeepsRecordsWithoutGameID(t *testing.T) {
	raw := []RawGame{
		{GameID: "", Date: "14.09.2025", HomeTeam: "A"},
		{GameID: "", Date: "14.09.2025", HomeTeam: "B"},
	}

	games := Normalize(raw)
	assert.Len(t, games, 2, "records without an id cannot be deduplicated")
}

func TestNormalizeParsesSortableDateFirst(t *testing.T) {
	raw := []RawGame{{
		GameID:       "1",
		Date:         "99.99.9999",
		SortableDate: "Sun, 14 Sep 2025 12:00:00 GMT",
	}}

	games := Normalize(raw)

	require.Len(t, games, 1)
	require.True(t, games[0].HasValidDate)
	assert.Equal(t, "14.09.2025", games[0].Date, "display date is rebuilt from the parsed timestamp")
	assert.Equal(t, time.Date(2025, 9, 14, 12, 0, 0, 0, time.UTC), games[0].SortableDate)
}

func TestNormalizeFallsBackToDisplayDate(t *testing.T) {
	raw := []RawGame{{GameID: "1", Date: "5.9.2025"}}

	games := Normalize(raw)

	require.Len(t, games, 1)
	require.True(t, games[0].HasValidDate)
	assert.Equal(t, "05.09.2025", games[0].Date, "short date is zero-padded")
}

func TestNormalizeSortsValidDatesFirst(t *testing.T) {
	raw := []RawGame{
		{GameID: "1", Date: "not-a-date"},
		{GameID: "2", Date: "20.09.2025"},
		{GameID: "3", Date: "06.09.2025"},
		{GameID: "4", Date: "also broken"},
	}

	games := Normalize(raw)

	require.Len(t, games, 4)
	assert.Equal(t, "3", games[0].GameID)
	assert.Equal(t, "2", games[1].GameID)
	assert.Equal(t, "1", games[2].GameID, "unparseable dates keep insertion order at the end")
	assert.Equal(t, "4", games[3].GameID)
	assert.False(t, games[2].HasValidDate)
	assert.Equal(t, "not-a-date", games[2].Date, "original display string is preserved")
}

func TestNormalizeIsIdempotent(t *testing.T) {
	raw := []RawGame{
		{GameID: "1", Date: "14.09.2025", Time: " 12:00 ", HomeTeam: " EJK ", AwayTeam: "HC Lions", SmallAreaGame: "1"},
		{GameID: "2", Date: "06.09.2025", Time: "09:15", HomeTeam: "K-Espoo", AwayTeam: "EJK"},
	}

	once := Normalize(raw)

	reraw := make([]RawGame, 0, len(once))
	for _, g := range once {
		reraw = append(reraw, g.Raw())
	}
	twice := Normalize(reraw)

	assert.Equal(t, once, twice)
}

func TestNormalizeCoercesSmallAreaGame(t *testing.T) {
	games := Normalize([]RawGame{
		{GameID: "1", Date: "14.09.2025", SmallAreaGame: "1"},
		{GameID: "2", Date: "14.09.2025", SmallAreaGame: "0"},
		{GameID: "3", Date: "14.09.2025", SmallAreaGame: ""},
	})

	require.Len(t, games, 3)
	assert.True(t, games[0].SmallAreaGame)
	assert.False(t, games[1].SmallAreaGame)
	assert.False(t, games[2].SmallAreaGame)
}

func TestParseDateLayouts(t *testing.T) {
	cases := map[string]string{
		"Sun, 14 Sep 2025 12:00:00 GMT": "2025-09-14",
		"14.09.2025":                    "2025-09-14",
		"5.9.2025":                      "2025-09-05",
		"2025-09-14":                    "2025-09-14",
		"2025-09-14T18:30:00":           "2025-09-14",
	}

	for input, want := range cases {
		ts, ok := ParseDate(input)
		require.True(t, ok, "input %q", input)
		assert.Equal(t, want, ts.Format("2006-01-02"), "input %q", input)
	}

	_, ok := ParseDate("")
	assert.False(t, ok)
	_, ok = ParseDate("yesterday")
	assert.False(t, ok)
}
