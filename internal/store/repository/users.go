package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/atg247/iGM/internal/store"
)

// UserRepository handles user data access
type UserRepository struct {
	db *store.Database
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *store.Database) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `user_id, username, email, password_hash, jopox_login_url,
	jopox_username, jopox_password, jopox_team_id, jopox_calendar_url,
	created_at, updated_at`

func scanUser(row interface{ Scan(...interface{}) error }) (*store.User, error) {
	user := &store.User{}
	err := row.Scan(
		&user.UserID, &user.Username, &user.Email, &user.PasswordHash,
		&user.JopoxLoginURL, &user.JopoxUsername, &user.JopoxPassword,
		&user.JopoxTeamID, &user.JopoxCalendarURL, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Create inserts a new user and returns the assigned id.
func (r *UserRepository) Create(ctx context.Context, user *store.User) (int, error) {
	query := `
		INSERT INTO users (username, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING user_id
	`

	var id int
	err := r.db.DB().QueryRowContext(ctx, query,
		user.Username, user.Email, user.PasswordHash,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("creating user: %w", err)
	}
	return id, nil
}

// GetByID finds a user by id
func (r *UserRepository) GetByID(ctx context.Context, userID int) (*store.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE user_id = $1`

	user, err := scanUser(r.db.DB().QueryRowContext(ctx, query, userID))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user not found: %d", userID)
	}
	if err != nil {
		return nil, fmt.Errorf("querying user: %w", err)
	}
	return user, nil
}

// GetByUsername finds a user by username
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*store.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`

	user, err := scanUser(r.db.DB().QueryRowContext(ctx, query, username))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user not found: %s", username)
	}
	if err != nil {
		return nil, fmt.Errorf("querying user: %w", err)
	}
	return user, nil
}

// SetJopoxCredentials stores or replaces the user's Jopox login details.
func (r *UserRepository) SetJopoxCredentials(ctx context.Context, userID int, loginURL, username, password, jopoxTeamID, calendarURL string) error {
	query := `
		UPDATE users
		SET jopox_login_url = $2, jopox_username = $3, jopox_password = $4,
			jopox_team_id = $5, jopox_calendar_url = NULLIF($6, ''), updated_at = NOW()
		WHERE user_id = $1
	`

	res, err := r.db.DB().ExecContext(ctx, query, userID, loginURL, username, password, jopoxTeamID, calendarURL)
	if err != nil {
		return fmt.Errorf("updating jopox credentials: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("user not found: %d", userID)
	}
	return nil
}

// HasJopoxCredentials reports whether the user can use the sync features.
func (r *UserRepository) HasJopoxCredentials(ctx context.Context, userID int) (bool, error) {
	query := `
		SELECT jopox_login_url IS NOT NULL
			AND jopox_username IS NOT NULL
			AND jopox_password IS NOT NULL
		FROM users WHERE user_id = $1
	`

	var ok bool
	err := r.db.DB().QueryRowContext(ctx, query, userID).Scan(&ok)
	if err == sql.ErrNoRows {
		return false, fmt.Errorf("user not found: %d", userID)
	}
	if err != nil {
		return false, fmt.Errorf("querying user: %w", err)
	}
	return ok, nil
}
