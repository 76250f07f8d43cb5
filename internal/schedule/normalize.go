package schedule

import (
	"sort"
	"strings"
	"time"
)

// sortableLayout is the timestamp form the results service emits for
// SortableDate (RFC1123-style with a literal GMT suffix).
const sortableLayout = "Mon, 02 Jan 2006 15:04:05 GMT"

// displayLayout is the zero-padded date shown to users.
const displayLayout = "02.01.2006"

// dateLayouts are tried in order when parsing an incoming date. The results
// service sends either the RFC1123-style SortableDate or a DD.MM.YYYY display
// date; already-normalized input round-trips through the display layout.
var dateLayouts = []string{
	sortableLayout,
	"Mon, 2 Jan 2006 15:04:05 GMT",
	displayLayout,
	"2.1.2006",
	"2006-01-02",
	"2006-01-02T15:04:05",
}

// Normalize converts raw results-service records into canonical games:
// duplicates by GameID are dropped (first occurrence wins), dates are parsed
// and reformatted, and the output is stably sorted by parsed date with
// unparseable dates last. Pure function; the input slice is not modified.
func Normalize(raw []RawGame) []Game {
	seen := make(map[string]bool, len(raw))
	games := make([]Game, 0, len(raw))

	for _, r := range raw {
		if r.GameID != "" && seen[r.GameID] {
			continue
		}
		if r.GameID != "" {
			seen[r.GameID] = true
		}
		games = append(games, canonicalize(r))
	}

	sort.SliceStable(games, func(i, j int) bool {
		a, b := games[i], games[j]
		if a.HasValidDate != b.HasValidDate {
			return a.HasValidDate // valid dates sort before unparseable ones
		}
		if !a.HasValidDate {
			return false // both unparseable: keep insertion order
		}
		return a.SortableDate.Before(b.SortableDate)
	})

	return games
}

// canonicalize converts one raw record, coercing stringly-typed fields once
// at this boundary so the rest of the system works with real types.
func canonicalize(r RawGame) Game {
	g := Game{
		GameID:        strings.TrimSpace(r.GameID),
		TeamID:        strings.TrimSpace(r.TeamID),
		TeamName:      strings.TrimSpace(r.TeamName),
		Date:          strings.TrimSpace(r.Date),
		Time:          strings.TrimSpace(r.Time),
		HomeTeam:      strings.TrimSpace(r.HomeTeam),
		AwayTeam:      strings.TrimSpace(r.AwayTeam),
		HomeGoals:     strings.TrimSpace(r.HomeGoals),
		AwayGoals:     strings.TrimSpace(r.AwayGoals),
		Location:      strings.TrimSpace(r.Location),
		LevelName:     strings.TrimSpace(r.LevelName),
		StatGroup:     strings.TrimSpace(r.StatGroup),
		StatGroupName: strings.TrimSpace(r.StatGroupName),
		SmallAreaGame: strings.TrimSpace(r.SmallAreaGame) == "1",
	}

	if ts, ok := ParseDate(r.SortableDate); ok {
		g.SortableDate = ts
		g.HasValidDate = true
	} else if ts, ok := ParseDate(r.Date); ok {
		g.SortableDate = ts
		g.HasValidDate = true
	}

	if g.HasValidDate {
		g.Date = g.SortableDate.Format(displayLayout)
	}
	// Unparseable dates keep the original display string and are excluded
	// from date-dependent ordering (they sort last, stably).

	return g
}

// ParseDate parses an incoming date string against the known layouts.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}
