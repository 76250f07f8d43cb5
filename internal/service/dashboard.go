// Package service holds the business logic between the REST layer and the
// external systems: schedule assembly for a user's teams, Jopox session
// handling, and schedule comparison.
package service

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/atg247/iGM/internal/cache"
	"github.com/atg247/iGM/internal/jopox"
	"github.com/atg247/iGM/internal/schedule"
	"github.com/atg247/iGM/internal/store"
	"github.com/atg247/iGM/internal/store/repository"
	"github.com/atg247/iGM/internal/tulospalvelu"
)

// DashboardService assembles the user-facing schedule views.
type DashboardService struct {
	teamRepo *repository.TeamRepository
	userRepo *repository.UserRepository
	cache    *cache.RedisCache
	results  *tulospalvelu.Client
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(db *store.Database, redisCache *cache.RedisCache, results *tulospalvelu.Client) *DashboardService {
	return &DashboardService{
		teamRepo: repository.NewTeamRepository(db),
		userRepo: repository.NewUserRepository(db),
		cache:    redisCache,
		results:  results,
	}
}

// UserTeams returns the user's teams with roles.
func (s *DashboardService) UserTeams(ctx context.Context, userID int) ([]*store.UserTeamView, error) {
	return s.teamRepo.GetForUser(ctx, userID)
}

// ManagedTeamIDs returns the external team ids the user manages.
func (s *DashboardService) ManagedTeamIDs(ctx context.Context, userID int) (map[string]bool, error) {
	return s.teamRepo.ManagedTeamIDs(ctx, userID)
}

// Schedules fetches the normalized schedules of all the user's teams and
// merges them into one list, normalized again so games shared between two
// tracked teams appear once. Teams are fetched concurrently; the first
// failure aborts the whole read so the dashboard never renders a silently
// partial schedule.
func (s *DashboardService) Schedules(ctx context.Context, userID int) ([]schedule.Game, error) {
	teams, err := s.teamRepo.GetForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("fetching user teams: %w", err)
	}
	if len(teams) == 0 {
		return []schedule.Game{}, nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type result struct {
		games []schedule.Game
		err   error
	}

	results := make([]result, len(teams))
	var wg sync.WaitGroup
	for i, team := range teams {
		wg.Add(1)
		go func(i int, team *store.UserTeamView) {
			defer wg.Done()
			games, err := s.teamSchedule(ctx, &team.Team)
			results[i] = result{games: games, err: err}
			if err != nil {
				cancel()
			}
		}(i, team)
	}
	wg.Wait()

	var raw []schedule.RawGame
	for i, res := range results {
		if res.err != nil {
			return nil, fmt.Errorf("fetching schedule for %s: %w", teams[i].TeamName, res.err)
		}
		for _, g := range res.games {
			raw = append(raw, g.Raw())
		}
	}

	return schedule.Normalize(raw), nil
}

// teamSchedule reads one team's schedule cache-first, falling back to a
// live fetch that also warms the cache.
func (s *DashboardService) teamSchedule(ctx context.Context, team *store.Team) ([]schedule.Game, error) {
	key := cache.ScheduleKey(team.Season, team.StatGroupID, team.TeamID)

	var games []schedule.Game
	err := s.cache.GetJSON(ctx, key, &games)
	if err == nil {
		return games, nil
	}
	if err != redis.Nil {
		log.Printf("[dashboard] cache read failed for %s: %v", key, err)
	}

	raw, err := s.results.Games(ctx, team.Season, team.StatGroupID, team.TeamID, team.TeamName)
	if err != nil {
		return nil, err
	}

	games = schedule.Normalize(raw)
	if err := s.cache.SetJSON(ctx, key, games, cache.ScheduleTTL); err != nil {
		log.Printf("[dashboard] cache write failed for %s: %v", key, err)
	}
	return games, nil
}

// JopoxClient builds a logged-in Jopox client from the user's stored
// credentials.
func (s *DashboardService) JopoxClient(ctx context.Context, userID int) (*jopox.Client, error) {
	client, _, err := s.jopoxSession(ctx, userID)
	return client, err
}

func (s *DashboardService) jopoxSession(ctx context.Context, userID int) (*jopox.Client, *store.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	if !user.JopoxUsername.Valid || !user.JopoxPassword.Valid {
		return nil, nil, fmt.Errorf("user %d has no jopox credentials", userID)
	}

	client := jopox.NewClient(user.JopoxLoginURL.String, "", user.JopoxUsername.String, user.JopoxPassword.String)
	if err := client.Login(ctx); err != nil {
		return nil, nil, err
	}
	return client, user, nil
}

// JopoxGames returns the user's Jopox calendar entries, cache-first. A
// live scrape warms the cache for the compare flow that usually follows.
func (s *DashboardService) JopoxGames(ctx context.Context, userID int) ([]jopox.Entry, error) {
	key := cache.JopoxGamesKey(userID)

	var entries []jopox.Entry
	err := s.cache.GetJSON(ctx, key, &entries)
	if err == nil {
		return entries, nil
	}
	if err != redis.Nil {
		log.Printf("[dashboard] cache read failed for %s: %v", key, err)
	}

	client, user, err := s.jopoxSession(ctx, userID)
	if err != nil {
		return nil, err
	}

	entries, err = client.ListGames(ctx)
	if err != nil {
		return nil, fmt.Errorf("scraping jopox games: %w", err)
	}

	// The admin list has no event descriptions; the public calendar feed
	// does, and the small-area advisory depends on them. A failed feed
	// fetch degrades to comparing without descriptions.
	if user.JopoxCalendarURL.Valid {
		descriptions, err := client.Calendar(ctx, user.JopoxCalendarURL.String)
		if err != nil {
			log.Printf("[dashboard] calendar fetch failed for user %d: %v", userID, err)
		}
		for i := range entries {
			if desc, ok := descriptions[entries[i].UID]; ok && entries[i].AdditionalInfo == "" {
				entries[i].AdditionalInfo = desc
			}
		}
	}

	if err := s.cache.SetJSON(ctx, key, entries, cache.JopoxGamesTTL); err != nil {
		log.Printf("[dashboard] cache write failed for %s: %v", key, err)
	}
	return entries, nil
}

// InvalidateJopoxGames drops the cached Jopox list after a write so the
// next read reflects the change.
func (s *DashboardService) InvalidateJopoxGames(ctx context.Context, userID int) {
	if err := s.cache.Delete(ctx, cache.JopoxGamesKey(userID)); err != nil {
		log.Printf("[dashboard] cache invalidation failed for user %d: %v", userID, err)
	}
}
