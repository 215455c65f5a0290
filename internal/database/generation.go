package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

func (s *sqliteDB) LogGeneration(ctx context.Context, gen Generation) error {
	if gen.ID == "" {
		gen.ID = uuid.NewString()
	}

	_, err := s.ExecWithRetry(ctx, `
		INSERT INTO generations (id, user_id, kind, provider, prompt, success)
		VALUES (?, ?, ?, ?, ?, ?)
	`, gen.ID, gen.UserID, string(gen.Kind), gen.Provider, gen.Prompt, gen.Success)
	if err != nil {
		return fmt.Errorf("failed to log generation: %w", err)
	}
	return nil
}

func (s *sqliteDB) CountGenerations(ctx context.Context, userID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM generations WHERE user_id = ?", userID).Scan(&count)
	return count, err
}

func (s *sqliteDB) PurgeOldGenerations(retentionDays int) (int64, error) {
	res, err := s.db.Exec(
		"DELETE FROM generations WHERE created_at < datetime('now', ?)",
		fmt.Sprintf("-%d days", retentionDays),
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *sqliteDB) PurgeExpiredCache() (int64, error) {
	res, err := s.db.Exec("DELETE FROM cache WHERE expires_at < unixepoch()")
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
