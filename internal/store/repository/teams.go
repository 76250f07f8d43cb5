package repository

import (
	"context"
	"fmt"

	"github.com/atg247/iGM/internal/store"
)

// TeamRepository handles team data access
type TeamRepository struct {
	db *store.Database
}

// NewTeamRepository creates a new team repository
func NewTeamRepository(db *store.Database) *TeamRepository {
	return &TeamRepository{db: db}
}

// Upsert inserts a team or refreshes its names if the external identity
// already exists, and returns the row id either way.
func (r *TeamRepository) Upsert(ctx context.Context, team *store.Team) (int, error) {
	query := `
		INSERT INTO teams (team_id, team_name, team_association, stat_group_id,
			stat_group_name, season, level_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (team_id, stat_group_id, season) DO UPDATE SET
			team_name = EXCLUDED.team_name,
			team_association = EXCLUDED.team_association,
			stat_group_name = EXCLUDED.stat_group_name,
			level_id = EXCLUDED.level_id,
			updated_at = NOW()
		RETURNING id
	`

	var id int
	err := r.db.DB().QueryRowContext(ctx, query,
		team.TeamID, team.TeamName, team.TeamAssoc, team.StatGroupID,
		team.StatGroupName, team.Season, team.LevelID,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upserting team: %w", err)
	}
	return id, nil
}

// GetForUser returns the user's teams with their role, managed first.
func (r *TeamRepository) GetForUser(ctx context.Context, userID int) ([]*store.UserTeamView, error) {
	query := `
		SELECT t.id, t.team_id, t.team_name, t.team_association, t.stat_group_id,
			t.stat_group_name, t.season, t.level_id, t.created_at, t.updated_at,
			ut.role
		FROM teams t
		JOIN user_teams ut ON ut.team_id = t.id
		WHERE ut.user_id = $1
		ORDER BY ut.role = 'manage' DESC, t.team_name
	`

	rows, err := r.db.DB().QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("querying user teams: %w", err)
	}
	defer rows.Close()

	var teams []*store.UserTeamView
	for rows.Next() {
		team := &store.UserTeamView{}
		err := rows.Scan(
			&team.ID, &team.TeamID, &team.TeamName, &team.TeamAssoc,
			&team.StatGroupID, &team.StatGroupName, &team.Season, &team.LevelID,
			&team.CreatedAt, &team.UpdatedAt, &team.Role,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning user team: %w", err)
		}
		teams = append(teams, team)
	}

	return teams, rows.Err()
}

// SetUserTeam links a user to a team with a role, replacing any existing
// role for the pair.
func (r *TeamRepository) SetUserTeam(ctx context.Context, userID, teamID int, role string) error {
	if role != store.RoleManage && role != store.RoleFollow {
		return fmt.Errorf("invalid role: %s", role)
	}

	query := `
		INSERT INTO user_teams (user_id, team_id, role)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, team_id) DO UPDATE SET role = EXCLUDED.role
	`
	if _, err := r.db.DB().ExecContext(ctx, query, userID, teamID, role); err != nil {
		return fmt.Errorf("linking user to team: %w", err)
	}
	return nil
}

// RemoveUserTeam detaches a team from a user. The team row itself stays:
// other users may still reference it.
func (r *TeamRepository) RemoveUserTeam(ctx context.Context, userID, teamID int) error {
	query := `DELETE FROM user_teams WHERE user_id = $1 AND team_id = $2`
	if _, err := r.db.DB().ExecContext(ctx, query, userID, teamID); err != nil {
		return fmt.Errorf("unlinking user from team: %w", err)
	}
	return nil
}

// ManagedTeamIDs returns the external team ids the user manages, as a set.
func (r *TeamRepository) ManagedTeamIDs(ctx context.Context, userID int) (map[string]bool, error) {
	query := `
		SELECT t.team_id
		FROM teams t
		JOIN user_teams ut ON ut.team_id = t.id
		WHERE ut.user_id = $1 AND ut.role = 'manage'
	`

	rows, err := r.db.DB().QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("querying managed teams: %w", err)
	}
	defer rows.Close()

	ids := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning team id: %w", err)
		}
		ids[id] = true
	}

	return ids, rows.Err()
}
