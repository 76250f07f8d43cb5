// Package scheduler refreshes the cached schedules of every tracked team
// on a timer so dashboard reads stay warm without hitting the results
// service on each request.
package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/atg247/iGM/internal/cache"
	"github.com/atg247/iGM/internal/publisher"
	"github.com/atg247/iGM/internal/schedule"
	"github.com/atg247/iGM/internal/store"
	"github.com/atg247/iGM/internal/tulospalvelu"
)

// Orchestrator manages the periodic schedule refresh task
type Orchestrator struct {
	db        *store.Database
	cache     *cache.RedisCache
	publisher *publisher.RedisStreamPublisher
	results   *tulospalvelu.Client
	config    *Config

	cancel context.CancelFunc
}

// Config holds scheduler configuration
type Config struct {
	RefreshInterval time.Duration // Default: 30m
	Season          string        // e.g., "2026"
	EnableRefresh   bool          // Default: true
	MaxRetries      int           // Default: 3
	RetryDelay      time.Duration // Default: 5s
}

// DefaultConfig returns default scheduler configuration
func DefaultConfig() *Config {
	return &Config{
		RefreshInterval: 30 * time.Minute,
		Season:          "2026",
		EnableRefresh:   true,
		MaxRetries:      3,
		RetryDelay:      5 * time.Second,
	}
}

// NewOrchestrator creates a new scheduler orchestrator
func NewOrchestrator(db *store.Database, redisCache *cache.RedisCache, results *tulospalvelu.Client, config *Config) *Orchestrator {
	if config == nil {
		config = DefaultConfig()
	}

	return &Orchestrator{
		db:        db,
		cache:     redisCache,
		publisher: publisher.NewRedisStreamPublisher(redisCache.Client()),
		results:   results,
		config:    config,
	}
}

// Start begins the refresh loop and blocks until the context is done.
func (o *Orchestrator) Start(ctx context.Context) {
	log.Printf("Schedule refresher starting (interval: %v, season: %s)", o.config.RefreshInterval, o.config.Season)

	ctx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	if o.config.EnableRefresh {
		go o.runRefreshLoop(ctx)
	}

	<-ctx.Done()
	log.Println("Schedule refresher stopping...")
}

// Stop gracefully stops the scheduler
func (o *Orchestrator) Stop() {
	if o.cancel != nil {
		o.cancel()
	}
	log.Println("✓ Schedule refresher stopped")
}

func (o *Orchestrator) runRefreshLoop(ctx context.Context) {
	ticker := time.NewTicker(o.config.RefreshInterval)
	defer ticker.Stop()

	// Run immediately on start
	o.refreshAll(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Println("→ Schedule refresh loop stopped")
			return
		case <-ticker.C:
			o.refreshAll(ctx)
		}
	}
}

// refreshAll refreshes every tracked team. One team failing does not
// block the rest.
func (o *Orchestrator) refreshAll(ctx context.Context) {
	teams, err := o.trackedTeams(ctx)
	if err != nil {
		log.Printf("  ⚠️  Listing tracked teams failed: %v", err)
		return
	}
	if len(teams) == 0 {
		return
	}

	refreshed := 0
	for _, team := range teams {
		if err := ctx.Err(); err != nil {
			return
		}
		if err := o.refreshTeam(ctx, team); err != nil {
			log.Printf("  ⚠️  Refresh failed for team %s: %v", team.TeamID, err)
			continue
		}
		refreshed++
	}

	log.Printf("  ✓ Refreshed %d/%d team schedules", refreshed, len(teams))

	err = o.publisher.Publish(ctx, publisher.EventScheduleRefreshed, map[string]interface{}{
		"teams":     refreshed,
		"refreshed": time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		log.Printf("  ⚠️  Publishing refresh event failed: %v", err)
	}
}

// refreshTeam fetches one team's games with retries and caches the
// normalized schedule.
func (o *Orchestrator) refreshTeam(ctx context.Context, team *store.Team) error {
	var raw []schedule.RawGame
	var err error

	for attempt := 1; attempt <= o.config.MaxRetries; attempt++ {
		raw, err = o.results.Games(ctx, team.Season, team.StatGroupID, team.TeamID, team.TeamName)
		if err == nil {
			break
		}
		if attempt < o.config.MaxRetries {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(o.config.RetryDelay):
			}
		}
	}
	if err != nil {
		return err
	}

	games := schedule.Normalize(raw)
	key := cache.ScheduleKey(team.Season, team.StatGroupID, team.TeamID)
	return o.cache.SetJSON(ctx, key, games, cache.ScheduleTTL)
}

// trackedTeams returns every team at least one user manages or follows.
func (o *Orchestrator) trackedTeams(ctx context.Context) ([]*store.Team, error) {
	query := `
		SELECT DISTINCT t.id, t.team_id, t.team_name, t.team_association,
			t.stat_group_id, t.stat_group_name, t.season, t.level_id,
			t.created_at, t.updated_at
		FROM teams t
		JOIN user_teams ut ON ut.team_id = t.id
	`

	rows, err := o.db.DB().QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var teams []*store.Team
	for rows.Next() {
		team := &store.Team{}
		err := rows.Scan(
			&team.ID, &team.TeamID, &team.TeamName, &team.TeamAssoc,
			&team.StatGroupID, &team.StatGroupName, &team.Season, &team.LevelID,
			&team.CreatedAt, &team.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		teams = append(teams, team)
	}

	return teams, rows.Err()
}

// GetStatus returns current scheduler status
func (o *Orchestrator) GetStatus() map[string]interface{} {
	return map[string]interface{}{
		"refresh_enabled":  o.config.EnableRefresh,
		"refresh_interval": o.config.RefreshInterval.String(),
		"season":           o.config.Season,
	}
}
