package database

import (
	"context"

	"github.com/google/uuid"
)

func (s *sqliteDB) GetUser(userID string) (*User, error) {
	user := &User{}
	err := s.db.QueryRow("SELECT id, public_id, username, created_at, updated_at FROM users WHERE id = ?", userID).Scan(
		&user.ID,
		&user.PublicID,
		&user.Username,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return user, err
	}

	return user, nil
}

// SaveUser inserts the user or refreshes its username. An existing public id
// is never replaced.
func (s *sqliteDB) SaveUser(ctx context.Context, user User) error {
	if user.PublicID == "" {
		user.PublicID = uuid.NewString()
	}

	_, err := s.ExecWithRetry(ctx, `
		INSERT INTO users (id, public_id, username)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			username = excluded.username,
			updated_at = CURRENT_TIMESTAMP
	`, user.ID, user.PublicID, user.Username)
	return err
}
