package reconcile

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atg247/iGM/internal/jopox"
	"github.com/atg247/iGM/internal/schedule"
)

func testGame(id, tm string) schedule.Game {
	return schedule.Game{
		GameID:       id,
		TeamID:       "9001",
		TeamName:     "EJK",
		Date:         "14.09.2025",
		SortableDate: time.Date(2025, 9, 14, 0, 0, 0, 0, time.UTC),
		HasValidDate: true,
		Time:         tm,
		HomeTeam:     "EJK",
		AwayTeam:     "HC Lions",
		Location:     "Espoonlahti 1",
	}
}

func testEntry(uid, tm string) jopox.Entry {
	return jopox.Entry{
		UID:       uid,
		EventName: "Sarja: EJK - HC Lions",
		Date:      "2025-09-14",
		Time:      tm,
		Location:  "Espoonlahti 1",
	}
}

func TestCompareGreenWhenEntryInSync(t *testing.T) {
	results := Compare(
		[]schedule.Game{testGame("1", "12:00")},
		[]jopox.Entry{testEntry("x", "12:00 - 13:30")},
	)

	require.Len(t, results, 1)
	assert.Equal(t, StatusGreen, results[0].Status)
	assert.Equal(t, "Entry is in sync", results[0].Reason)
	require.NotNil(t, results[0].BestMatch)
	assert.Equal(t, "x", results[0].BestMatch.UID)
}

func TestCompareRedWithoutEntries(t *testing.T) {
	results := Compare([]schedule.Game{testGame("1", "12:00")}, nil)

	require.Len(t, results, 1)
	assert.Equal(t, StatusRed, results[0].Status)
	assert.Equal(t, "No match found", results[0].Reason)
	assert.Nil(t, results[0].BestMatch)
}

func TestCompareRedWhenEntryOutsideDateWindow(t *testing.T) {
	entry := testEntry("x", "12:00")
	entry.Date = "2025-09-20"

	results := Compare([]schedule.Game{testGame("1", "12:00")}, []jopox.Entry{entry})

	require.Len(t, results, 1)
	assert.Equal(t, StatusRed, results[0].Status)
}

func TestCompareYellowOnLocationMismatch(t *testing.T) {
	entry := testEntry("x", "12:00")
	entry.Location = "Tapiola areena"

	results := Compare([]schedule.Game{testGame("1", "12:00")}, []jopox.Entry{entry})

	require.Len(t, results, 1)
	assert.Equal(t, StatusYellow, results[0].Status)
	assert.Contains(t, results[0].Reason, "Location: Tapiola areena → Espoonlahti 1")
}

func TestCompareYellowOnAdjacentDate(t *testing.T) {
	entry := testEntry("x", "12:00")
	entry.Date = "2025-09-13"

	results := Compare([]schedule.Game{testGame("1", "12:00")}, []jopox.Entry{entry})

	require.Len(t, results, 1)
	assert.Equal(t, StatusYellow, results[0].Status)
	assert.Contains(t, results[0].Reason, "Date: 2025-09-13 → 14.09.2025")
}

func TestCompareMissingEntryTimeIsPartialSignal(t *testing.T) {
	entry := testEntry("x", "")

	results := Compare([]schedule.Game{testGame("1", "12:00")}, []jopox.Entry{entry})

	require.Len(t, results, 1)
	assert.Equal(t, StatusYellow, results[0].Status, "a missing time can never be green")
	assert.Contains(t, results[0].Reason, "Time:")
}

func TestCompareMissingEntryLocationIsNeutral(t *testing.T) {
	entry := testEntry("x", "12:00 - 13:30")
	entry.Location = ""

	results := Compare([]schedule.Game{testGame("1", "12:00")}, []jopox.Entry{entry})

	require.Len(t, results, 1)
	assert.Equal(t, StatusGreen, results[0].Status, "an absent field contradicts nothing")
}

func TestCompareEntryClaimedByOneGameOnly(t *testing.T) {
	games := []schedule.Game{
		testGame("1", "12:00"),
		testGame("2", "15:00"),
	}
	entry := testEntry("x", "12:00 - 13:30")

	results := Compare(games, []jopox.Entry{entry})

	require.Len(t, results, 2)
	assert.Equal(t, StatusGreen, results[0].Status)
	require.NotNil(t, results[0].BestMatch)
	assert.Equal(t, "x", results[0].BestMatch.UID)

	assert.Equal(t, StatusRed, results[1].Status, "one entry cannot satisfy two games")
	assert.Contains(t, results[1].Reason, "No match found")
	assert.Contains(t, results[1].Reason, "Nearest candidate", "the claimed entry is still shown as a diagnostic")
}

func TestCompareInvalidGameDateIsRed(t *testing.T) {
	g := testGame("1", "12:00")
	g.HasValidDate = false

	results := Compare([]schedule.Game{g}, []jopox.Entry{testEntry("x", "12:00")})

	require.Len(t, results, 1)
	assert.Equal(t, StatusRed, results[0].Status)
	assert.Equal(t, "No match found", results[0].Reason)
}

func TestCompareSkipsUnparseableEntryDates(t *testing.T) {
	entry := testEntry("x", "12:00")
	entry.Date = "sometime soon"

	results := Compare([]schedule.Game{testGame("1", "12:00")}, []jopox.Entry{entry})

	require.Len(t, results, 1)
	assert.Equal(t, StatusRed, results[0].Status)
}

func TestCompareSmallAreaGameWarning(t *testing.T) {
	g := testGame("1", "12:00")
	g.SmallAreaGame = true

	entry := testEntry("x", "12:00 - 13:30")
	results := Compare([]schedule.Game{g}, []jopox.Entry{entry})
	require.Len(t, results, 1)
	assert.NotEmpty(t, results[0].Warning)

	entry.AdditionalInfo = "Huom: Pienpeli, kaksi kenttää"
	results = Compare([]schedule.Game{g}, []jopox.Entry{entry})
	require.Len(t, results, 1)
	assert.Empty(t, results[0].Warning)
}

func TestCompareOneResultPerGameInInputOrder(t *testing.T) {
	games := []schedule.Game{
		testGame("3", "18:00"),
		testGame("1", "09:00"),
		testGame("2", "12:00"),
	}

	results := Compare(games, []jopox.Entry{testEntry("x", "12:00")})

	require.Len(t, results, 3)
	for i, g := range games {
		assert.Equal(t, g.GameID, results[i].Game.GameID)
	}
}

func TestCompareIsDeterministic(t *testing.T) {
	games := []schedule.Game{
		testGame("1", "12:00"),
		testGame("2", "12:00"),
		testGame("3", "15:00"),
	}
	entries := []jopox.Entry{
		testEntry("a", "12:00"),
		testEntry("b", "15:00"),
	}

	first := Compare(games, entries)
	second := Compare(games, entries)

	require.Equal(t, first, second)
}

func TestIsAwayGame(t *testing.T) {
	g := testGame("1", "12:00")
	assert.False(t, IsAwayGame(g))

	g.TeamName = "hc lions"
	assert.True(t, IsAwayGame(g), "name comparison is normalized")

	g.TeamName = ""
	assert.False(t, IsAwayGame(g))
}

func TestLocationsMatch(t *testing.T) {
	assert.True(t, locationsMatch("Espoonlahti 1", "Espoonlahti 2"), "first tokens equal")
	assert.True(t, locationsMatch("Espoonlahti 1", "Espoonlahden harjoitushalli"), "prefix equivalence")
	assert.False(t, locationsMatch("Espoonlahti 1", "Tapiola areena"))
	assert.False(t, locationsMatch("", "Tapiola"))
}
