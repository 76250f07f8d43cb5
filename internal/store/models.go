package store

import (
	"database/sql"
	"time"
)

// Team role constants for user-team relationships.
const (
	RoleManage = "manage"
	RoleFollow = "follow"
)

// User is a registered dashboard user. Jopox credentials are stored per
// user so the sync features can act on their club's calendar.
type User struct {
	UserID        int            `json:"user_id" db:"user_id"`
	Username      string         `json:"username" db:"username"`
	Email         string         `json:"email" db:"email"`
	PasswordHash  string         `json:"-" db:"password_hash"`
	JopoxLoginURL sql.NullString `json:"jopox_login_url,omitempty" db:"jopox_login_url"`
	JopoxUsername sql.NullString `json:"jopox_username,omitempty" db:"jopox_username"`
	JopoxPassword sql.NullString `json:"-" db:"jopox_password"`
	JopoxTeamID   sql.NullString `json:"jopox_team_id,omitempty" db:"jopox_team_id"`
	// JopoxCalendarURL points at the club's public calendar feed; event
	// descriptions are merged from it when set.
	JopoxCalendarURL sql.NullString `json:"jopox_calendar_url,omitempty" db:"jopox_calendar_url"`
	CreatedAt        time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at" db:"updated_at"`
}

// Team is one results-service team a user can manage or follow. The
// external identifiers (team, stat group, season) pin it to the results
// service; the same external team in two seasons is two rows.
type Team struct {
	ID            int       `json:"id" db:"id"`
	TeamID        string    `json:"team_id" db:"team_id"`
	TeamName      string    `json:"team_name" db:"team_name"`
	TeamAssoc     string    `json:"team_association" db:"team_association"`
	StatGroupID   string    `json:"stat_group_id" db:"stat_group_id"`
	StatGroupName string    `json:"stat_group_name" db:"stat_group_name"`
	Season        string    `json:"season" db:"season"`
	LevelID       string    `json:"level_id" db:"level_id"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// UserTeam links a user to a team with a role (manage or follow).
type UserTeam struct {
	UserID    int       `json:"user_id" db:"user_id"`
	TeamID    int       `json:"team_id" db:"team_id"`
	Role      string    `json:"role" db:"role"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// UserTeamView is a team joined with the requesting user's role, the shape
// the dashboard endpoints return.
type UserTeamView struct {
	Team
	Role string `json:"role" db:"role"`
}
