package database

import (
	"context"
	"database/sql"
	"time"
)

type Database interface {
	GetDB() *sql.DB

	Exec(query string, args ...any) (sql.Result, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
	Close() error
	ExecWithRetry(ctx context.Context, query string, args ...any) (sql.Result, error)

	GetUser(userID string) (*User, error)
	SaveUser(ctx context.Context, user User) error

	// Generation log
	LogGeneration(ctx context.Context, gen Generation) error
	CountGenerations(ctx context.Context, userID string) (int, error)
	PurgeOldGenerations(retentionDays int) (int64, error)
	PurgeExpiredCache() (int64, error)
}

type User struct {
	ID        string    `json:"id"`
	PublicID  string    `json:"public_id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type GenerationKind string

const (
	KindImage  GenerationKind = "image"
	KindEdit   GenerationKind = "edit"
	KindVideo  GenerationKind = "video"
	KindSearch GenerationKind = "search"
)

type Generation struct {
	ID        string
	UserID    string
	Kind      GenerationKind
	Provider  string
	Prompt    string
	Success   bool
	CreatedAt time.Time
}
