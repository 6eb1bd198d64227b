package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/splitledger/splitledger/internal/models"
)

// CreateUser inserts a new user into the database.
func (s *SQLiteStore) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.CreatedAt == 0 {
		user.CreatedAt = time.Now().Unix()
	}

	var phone any
	if user.Phone != "" {
		phone = user.Phone
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO users (id, username, phone, created_at) VALUES (?, ?, ?, ?)",
		user.ID, user.Username, phone, user.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetUserByUsername retrieves a user by username, case-insensitively.
// Returns nil, nil when no such user exists.
func (s *SQLiteStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	user := &models.User{}
	var phone sql.NullString

	err := s.db.QueryRowContext(ctx,
		"SELECT id, username, phone, created_at FROM users WHERE username = ? COLLATE NOCASE",
		username,
	).Scan(&user.ID, &user.Username, &phone, &user.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil // User not found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by username: %w", err)
	}

	user.Phone = phone.String
	return user, nil
}

// IsRegistered reports whether a username has a registered account.
func (s *SQLiteStore) IsRegistered(ctx context.Context, username string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		"SELECT 1 FROM users WHERE username = ? COLLATE NOCASE", username,
	).Scan(&one)

	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check registration: %w", err)
	}
	return true, nil
}
