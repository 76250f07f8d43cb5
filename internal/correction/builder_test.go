package correction

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atg247/iGM/internal/jopox"
	"github.com/atg247/iGM/internal/schedule"
)

func homeGame() schedule.Game {
	return schedule.Game{
		GameID:       "100",
		TeamID:       "9001",
		TeamName:     "EJK",
		Date:         "14.09.2025",
		SortableDate: time.Date(2025, 9, 14, 0, 0, 0, 0, time.UTC),
		HasValidDate: true,
		Time:         "12:00",
		HomeTeam:     "EJK",
		AwayTeam:     "HC Lions",
		Location:     "Espoonlahti 1",
	}
}

func syncedForm() jopox.FormData {
	return jopox.FormData{
		HomeTeam:  "EJK",
		GuestTeam: "HC Lions",
		IsAway:    false,
		Location:  "Espoonlahti 1",
		Date:      "14.09.2025",
		StartTime: "12:00",
		Duration:  "90",
	}
}

func TestBuildInSyncProducesNoChanges(t *testing.T) {
	set := Build(homeGame(), syncedForm())

	assert.True(t, set.InSync())
	assert.Empty(t, set.Changes)
	for field, diff := range set.Fields {
		assert.False(t, diff.Changed, "field %s", field)
	}
}

func TestBuildOpponentComparesNormalized(t *testing.T) {
	form := syncedForm()
	form.GuestTeam = "hc  LIONS"

	set := Build(homeGame(), form)
	assert.True(t, set.InSync(), "case and whitespace differences are not drift")
}

func TestBuildDetectsOrientationFlip(t *testing.T) {
	g := homeGame()
	g.TeamName = "HC Lions" // managed team is the away side

	form := syncedForm()
	form.IsAway = false
	form.GuestTeam = "EJK"

	set := Build(g, form)

	assert.True(t, set.IsAway)
	require.True(t, set.Fields[FieldOrientation].Changed)
	assert.Equal(t, "home", set.Fields[FieldOrientation].Old)
	assert.Equal(t, "away", set.Fields[FieldOrientation].New)
	assert.False(t, set.Fields[FieldOpponent].Changed, "away game's opponent is the home side")
}

func TestBuildLiteralFieldsCompareLiterally(t *testing.T) {
	form := syncedForm()
	form.StartTime = "12:30"
	form.Date = "15.09.2025"
	form.Location = "Tapiola areena"

	set := Build(homeGame(), form)

	assert.False(t, set.InSync())
	assert.Equal(t, "12:00", set.Fields[FieldStartTime].New)
	assert.Equal(t, "14.09.2025", set.Fields[FieldDate].New)
	assert.Equal(t, "Espoonlahti 1", set.Fields[FieldLocation].New)
	assert.Contains(t, set.Changes, "Start time: 12:30 → 12:00")
	assert.Contains(t, set.Changes, "Date: 15.09.2025 → 14.09.2025")
	assert.Contains(t, set.Changes, "Location: Tapiola areena → Espoonlahti 1")
}

func TestBuildAliasValidation(t *testing.T) {
	g := homeGame()
	g.HomeTeam = "HC Lions Punainen"
	g.AwayTeam = "EJK"
	g.TeamName = "" // managed side defaults to home

	// Alias appears as a token of the side's name: valid.
	form := syncedForm()
	form.HomeTeam = "Punainen"
	form.GuestTeam = "EJK"
	set := Build(g, form)
	assert.False(t, set.Fields[FieldAlias].Changed)

	// Alias does not appear: flagged but never overwritten.
	form.HomeTeam = "Keltainen"
	set = Build(g, form)
	require.True(t, set.Fields[FieldAlias].Changed)
	assert.Equal(t, "Keltainen", set.Fields[FieldAlias].New, "no replacement is inferred")
	assert.Contains(t, set.Changes, `Alias "Keltainen" does not appear in team name "HC Lions Punainen", check manually`)

	// Too short to judge: skipped.
	form.HomeTeam = "P"
	set = Build(g, form)
	assert.False(t, set.Fields[FieldAlias].Changed)
}

func TestPayloadUsesCorrectedValues(t *testing.T) {
	form := syncedForm()
	form.StartTime = "12:30"
	form.Duration = ""

	g := homeGame()
	set := Build(g, form)
	payload := Payload(g, set, form)

	assert.Equal(t, "12:00", payload.StartTime)
	assert.Equal(t, "14.09.2025", payload.Date)
	assert.Equal(t, "HC Lions", payload.GuestTeam)
	assert.Equal(t, "EJK", payload.HomeTeam, "alias label is carried over, not corrected")
	assert.Equal(t, "120", payload.Duration, "empty duration defaults")
	assert.False(t, payload.IsAway)
}

func TestCreatePayload(t *testing.T) {
	g := homeGame()
	g.LevelName = "U13"
	g.StatGroupName = "Sarja A"

	payload := CreatePayload(g, "Punainen")

	assert.Equal(t, "Punainen", payload.HomeTeam)
	assert.Equal(t, "HC Lions", payload.GuestTeam)
	assert.False(t, payload.IsAway)
	assert.Equal(t, "14.09.2025", payload.Date)
	assert.Equal(t, "12:00", payload.StartTime)
	assert.Equal(t, "120", payload.Duration)
	assert.Equal(t, "U13 Sarja A", payload.PublicInfo)

	g.TeamName = "HC Lions"
	payload = CreatePayload(g, "Punainen")
	assert.True(t, payload.IsAway)
	assert.Equal(t, "EJK", payload.GuestTeam, "away game's opponent is the home side")
}
