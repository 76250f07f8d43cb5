package reconcile

import (
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/atg247/iGM/internal/jopox"
	"github.com/atg247/iGM/internal/schedule"
)

// Status classifies how well an authoritative game matched the calendar.
type Status string

const (
	// StatusGreen means the calendar entry is in sync with the results feed.
	StatusGreen Status = "green"
	// StatusYellow means a match was found but some fields disagree.
	StatusYellow Status = "yellow"
	// StatusRed means no acceptable match was found.
	StatusRed Status = "red"
)

// Scoring and classification constants. These are deliberate policy choices
// fixed in one place: the historical dashboard revisions drifted between
// thresholds, and this is the single authoritative set.
const (
	// DateToleranceDays widens the candidate window around the game's date
	// to catch timezone/rollover errors in the calendar.
	DateToleranceDays = 1

	// timeCloseWindow is how far apart start times may be while still
	// counting as a secondary (partial) time signal.
	timeCloseWindow = 60 * time.Minute

	// locationPrefixLen: rinks count as equivalent when their normalized
	// first tokens share this prefix ("Espoonlahti 1" vs "Espoonlahden
	// harjoitushalli").
	locationPrefixLen = 3

	scoreDateExact = 40
	scoreTimeExact = 25
	scoreTimeClose = 10
	scoreLocation  = 20
	scoreTeams     = 15

	// GreenThreshold: at or above this score, with date and team names
	// exact, the entry is considered in sync. A single present-but-wrong
	// field (location 20, or inexact time) keeps the score below it.
	GreenThreshold = 90
	// YellowThreshold: at or above this score the candidate is treated as
	// a match with discrepancies; below it the game is unmatched.
	YellowThreshold = 50
)

// reasonNoMatch is the reason attached to every red result.
const reasonNoMatch = "No match found"

// MatchResult is the engine's verdict for one authoritative game. Every game
// passed to Compare yields exactly one result, in input order. BestMatch is
// set for green and yellow results; a red result may still carry the nearest
// scored candidate for diagnostic display.
type MatchResult struct {
	Game      schedule.Game `json:"game"`
	Status    Status        `json:"match_status"`
	Reason    string        `json:"reason"`
	BestMatch *jopox.Entry  `json:"best_match,omitempty"`
	Warning   string        `json:"warning,omitempty"`
	Score     int           `json:"score"`
}

// pair is one scored (game, entry) combination inside the date window.
type pair struct {
	gameIdx   int
	entryIdx  int
	score     int
	timeDiff  time.Duration
	dateExact bool
	timeExact bool
	locMatch  bool
	teamMatch bool
}

// Compare matches every authoritative game against the Jopox calendar
// entries. Each entry is assigned to at most one game: all in-window pairs
// are scored, then claimed best-first, so a calendar entry cannot satisfy
// two games at once (two games on the same day with one entry yields one
// match and one red). Pure and deterministic: no clock access, no mutation
// of either input, identical output for identical input.
func Compare(games []schedule.Game, entries []jopox.Entry) []MatchResult {
	pairs := scoreAll(games, entries)

	// Best-first assignment. Sort is total and input-order-stable, so ties
	// resolve to the earlier game, then the earlier entry.
	sort.SliceStable(pairs, func(i, j int) bool {
		a, b := pairs[i], pairs[j]
		if a.score != b.score {
			return a.score > b.score
		}
		if a.timeDiff != b.timeDiff {
			return a.timeDiff < b.timeDiff
		}
		if a.gameIdx != b.gameIdx {
			return a.gameIdx < b.gameIdx
		}
		return a.entryIdx < b.entryIdx
	})

	assigned := make(map[int]*pair, len(games)) // gameIdx -> claimed pair
	entryTaken := make(map[int]bool, len(entries))
	nearest := make(map[int]*pair, len(games)) // best-scored pair per game, diagnostics only

	for i := range pairs {
		p := &pairs[i]
		if nearest[p.gameIdx] == nil {
			nearest[p.gameIdx] = p
		}
		if p.score < YellowThreshold {
			continue
		}
		if assigned[p.gameIdx] != nil || entryTaken[p.entryIdx] {
			continue
		}
		assigned[p.gameIdx] = p
		entryTaken[p.entryIdx] = true
	}

	results := make([]MatchResult, 0, len(games))
	for i, g := range games {
		results = append(results, classify(g, entries, assigned[i], nearest[i]))
	}
	return results
}

func scoreAll(games []schedule.Game, entries []jopox.Entry) []pair {
	var pairs []pair
	for gi, g := range games {
		for ei, e := range entries {
			p, ok := score(g, e)
			if !ok {
				continue
			}
			p.gameIdx, p.entryIdx = gi, ei
			pairs = append(pairs, p)
		}
	}
	return pairs
}

func classify(g schedule.Game, entries []jopox.Entry, match, nearest *pair) MatchResult {
	if match == nil {
		res := MatchResult{Game: g, Status: StatusRed, Reason: reasonNoMatch}
		if nearest != nil {
			// Low-confidence candidate kept for diagnostic display.
			e := entries[nearest.entryIdx]
			res.BestMatch = &e
			res.Score = nearest.score
			res.Reason = fmt.Sprintf("%s. Nearest candidate: %s %s %s", reasonNoMatch, e.Date, e.StartTime(), e.EventName)
		}
		return res
	}

	e := entries[match.entryIdx]
	res := MatchResult{Game: g, BestMatch: &e, Score: match.score}

	if g.SmallAreaGame && !strings.Contains(NormalizeText(e.AdditionalInfo), "pienpeli") {
		res.Warning = "Small-area game is not mentioned in the calendar entry"
	}

	if match.score >= GreenThreshold && match.dateExact && match.teamMatch {
		res.Status = StatusGreen
		res.Reason = "Entry is in sync"
		return res
	}

	res.Status = StatusYellow
	res.Reason = strings.Join(mismatchReasons(g, e, match), ". ")
	return res
}

// score rates one calendar entry against a game. Entries whose date falls
// outside the tolerance window are rejected; a missing entry field is
// tolerated rather than penalized (location scores neutral, time scores as
// a partial signal so the discrepancy still surfaces).
func score(g schedule.Game, e jopox.Entry) (pair, bool) {
	if !g.HasValidDate {
		return pair{}, false
	}
	eDate, ok := schedule.ParseDate(e.Date)
	if !ok {
		return pair{}, false
	}

	dayDiff := daysBetween(g.SortableDate, eDate)
	if dayDiff > DateToleranceDays {
		return pair{}, false
	}

	p := pair{dateExact: dayDiff == 0}
	if p.dateExact {
		p.score += scoreDateExact
	}

	switch eStart := e.StartTime(); {
	case eStart == "":
		p.timeDiff = timeCloseWindow
		p.score += scoreTimeClose
	default:
		p.timeDiff = startTimeDistance(g.Time, eStart)
		switch {
		case p.timeDiff == 0:
			p.timeExact = true
			p.score += scoreTimeExact
		case p.timeDiff <= timeCloseWindow:
			p.score += scoreTimeClose
		}
	}

	switch {
	case strings.TrimSpace(e.Location) == "":
		p.locMatch = true // nothing to contradict
		p.score += scoreLocation
	case locationsMatch(g.Location, e.Location):
		p.locMatch = true
		p.score += scoreLocation
	}

	if teamsMatch(g, e) {
		p.teamMatch = true
		p.score += scoreTeams
	}

	return p, true
}

// mismatchReasons enumerates each disagreeing field as a
// "Field: got → expected" sentence.
func mismatchReasons(g schedule.Game, e jopox.Entry, p *pair) []string {
	var reasons []string
	if !p.dateExact {
		reasons = append(reasons, fmt.Sprintf("Date: %s → %s", e.Date, g.Date))
	}
	if !p.timeExact {
		reasons = append(reasons, fmt.Sprintf("Time: %s → %s", e.StartTime(), g.Time))
	}
	if !p.locMatch {
		reasons = append(reasons, fmt.Sprintf("Location: %s → %s", e.Location, g.Location))
	}
	if !p.teamMatch {
		reasons = append(reasons, fmt.Sprintf("Teams: %s → %s - %s", e.EventName, g.HomeTeam, g.AwayTeam))
	}
	return reasons
}

// IsAwayGame reports whether the managed team plays away: its registered
// name normalizes-equal to the away side.
func IsAwayGame(g schedule.Game) bool {
	return g.TeamName != "" && NormalizeEqual(g.TeamName, g.AwayTeam)
}

// teamsMatch checks token overlap between the entry's composite teams text
// and the game's team names. Separator tokens ("-", "vs") carry no signal
// and are ignored.
func teamsMatch(g schedule.Game, e jopox.Entry) bool {
	entryTokens := make(map[string]bool)
	for _, tok := range Tokens(e.EventName) {
		if isNameToken(tok) {
			entryTokens[tok] = true
		}
	}
	if len(entryTokens) == 0 {
		return false
	}
	for _, name := range []string{g.HomeTeam, g.AwayTeam} {
		for _, tok := range Tokens(name) {
			if isNameToken(tok) && entryTokens[tok] {
				return true
			}
		}
	}
	return false
}

// isNameToken filters out separators and punctuation-only tokens.
func isNameToken(tok string) bool {
	if tok == "vs" {
		return false
	}
	for _, r := range tok {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

// locationsMatch compares the first token of each location (the town or rink
// name) with a prefix-equivalence fallback for differently abbreviated rinks.
func locationsMatch(a, b string) bool {
	ta, tb := Tokens(a), Tokens(b)
	if len(ta) == 0 || len(tb) == 0 {
		return false
	}
	fa, fb := ta[0], tb[0]
	if fa == fb || strings.Contains(fb, fa) || strings.Contains(fa, fb) {
		return true
	}
	ra, rb := []rune(fa), []rune(fb)
	if len(ra) >= locationPrefixLen && len(rb) >= locationPrefixLen {
		return string(ra[:locationPrefixLen]) == string(rb[:locationPrefixLen])
	}
	return false
}

// startTimeDistance returns the absolute wall-clock distance between two
// HH:MM strings. Unparseable times count as maximally distant.
func startTimeDistance(a, b string) time.Duration {
	ta, errA := time.Parse("15:04", strings.TrimSpace(a))
	tb, errB := time.Parse("15:04", strings.TrimSpace(b))
	if errA != nil || errB != nil {
		return 24 * time.Hour
	}
	d := ta.Sub(tb)
	if d < 0 {
		d = -d
	}
	return d
}

// daysBetween returns the whole-day distance between two timestamps,
// ignoring time of day.
func daysBetween(a, b time.Time) int {
	ad := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bd := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	d := int(ad.Sub(bd).Hours() / 24)
	if d < 0 {
		d = -d
	}
	return d
}
