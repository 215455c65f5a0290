package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/muratoffalex/gachicord/internal/logger"
	_ "modernc.org/sqlite"
)

type sqliteDB struct {
	db     *sql.DB
	logger logger.Logger
}

func NewSQLiteDB(dsn string, log logger.Logger) (Database, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	log.WithFields(logger.Fields{
		"DSN": dsn,
	}).Debug("Database opened")

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.WithFields(logger.Fields{
		"DSN": dsn,
	}).Debug("Database alive")

	if err := RunMigrations(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &sqliteDB{db: db, logger: log}, nil
}

func (s *sqliteDB) Exec(query string, args ...any) (sql.Result, error) {
	return s.db.Exec(query, args...)
}

func (s *sqliteDB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return s.db.ExecContext(ctx, query, args...)
}

func (s *sqliteDB) Query(query string, args ...any) (*sql.Rows, error) {
	return s.db.Query(query, args...)
}

func (s *sqliteDB) QueryRow(query string, args ...any) *sql.Row {
	return s.db.QueryRow(query, args...)
}

func (s *sqliteDB) Close() error {
	return s.db.Close()
}

func (s *sqliteDB) ExecWithRetry(ctx context.Context, query string, args ...any) (sql.Result, error) {
	var res sql.Result
	var err error
	for i := range 3 {
		res, err = s.ExecContext(ctx, query, args...)
		if err == nil || !strings.Contains(err.Error(), "database is locked") {
			return res, err
		}
		s.logger.WithFields(logger.Fields{
			"attempt": i + 1,
			"query":   query,
			"error":   err.Error(),
		}).Warn("Database locked, retrying...")
		time.Sleep(100 * time.Millisecond * time.Duration(i+1))
	}
	return res, err
}

func (s *sqliteDB) GetDB() *sql.DB {
	return s.db
}
