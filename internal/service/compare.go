package service

import (
	"context"
	"errors"
	"log"

	"github.com/atg247/iGM/internal/publisher"
	"github.com/atg247/iGM/internal/reconcile"
	"github.com/atg247/iGM/internal/schedule"
)

// ErrNoJopoxGames signals the user's Jopox calendar had nothing to compare
// against. The API reports this as a skip, not a failure.
var ErrNoJopoxGames = errors.New("no jopox games to compare against")

// CompareSummary counts results per status.
type CompareSummary struct {
	Total  int `json:"total"`
	Green  int `json:"green"`
	Yellow int `json:"yellow"`
	Red    int `json:"red"`
}

// CompareService runs the schedule comparison for a user.
type CompareService struct {
	dashboard *DashboardService
	publisher *publisher.RedisStreamPublisher
}

// NewCompareService creates a new compare service
func NewCompareService(dashboard *DashboardService, pub *publisher.RedisStreamPublisher) *CompareService {
	return &CompareService{
		dashboard: dashboard,
		publisher: pub,
	}
}

// Compare matches the given games against the user's Jopox calendar and
// returns one result per game, in input order.
func (s *CompareService) Compare(ctx context.Context, userID int, games []schedule.Game) ([]reconcile.MatchResult, CompareSummary, error) {
	entries, err := s.dashboard.JopoxGames(ctx, userID)
	if err != nil {
		return nil, CompareSummary{}, err
	}
	if len(entries) == 0 {
		return nil, CompareSummary{}, ErrNoJopoxGames
	}

	results := reconcile.Compare(games, entries)

	summary := CompareSummary{Total: len(results)}
	for _, r := range results {
		switch r.Status {
		case reconcile.StatusGreen:
			summary.Green++
		case reconcile.StatusYellow:
			summary.Yellow++
		case reconcile.StatusRed:
			summary.Red++
		}
	}

	if s.publisher != nil {
		err := s.publisher.Publish(ctx, publisher.EventCompareCompleted, map[string]interface{}{
			"user_id": userID,
			"total":   summary.Total,
			"green":   summary.Green,
			"yellow":  summary.Yellow,
			"red":     summary.Red,
		})
		if err != nil {
			log.Printf("[compare] publish failed: %v", err)
		}
	}

	return results, summary, nil
}

// ResultsByGameID indexes compare results for lookups by game id.
func ResultsByGameID(results []reconcile.MatchResult) map[string]reconcile.MatchResult {
	indexed := make(map[string]reconcile.MatchResult, len(results))
	for _, r := range results {
		indexed[r.Game.GameID] = r
	}
	return indexed
}
