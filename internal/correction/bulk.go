package correction

import (
	"time"

	"github.com/atg247/iGM/internal/reconcile"
	"github.com/atg247/iGM/internal/schedule"
)

// SelectBulkEligible picks the games that the bulk "create missing entries"
// workflow may push to Jopox: games of a managed team, dated today or later
// (day granularity, relative to asOf), whose reconciliation came back red.
// Input order is preserved.
func SelectBulkEligible(games []schedule.Game, results map[string]reconcile.MatchResult, managedTeamIDs map[string]bool, asOf time.Time) []schedule.Game {
	cutoff := time.Date(asOf.Year(), asOf.Month(), asOf.Day(), 0, 0, 0, 0, time.UTC)

	var eligible []schedule.Game
	for _, g := range games {
		if !managedTeamIDs[g.TeamID] {
			continue
		}
		res, ok := results[g.GameID]
		if !ok || res.Status != reconcile.StatusRed {
			continue
		}
		if !g.HasValidDate {
			continue
		}
		day := time.Date(g.SortableDate.Year(), g.SortableDate.Month(), g.SortableDate.Day(), 0, 0, 0, 0, time.UTC)
		if day.Before(cutoff) {
			continue
		}
		eligible = append(eligible, g)
	}
	return eligible
}
