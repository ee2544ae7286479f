// Package sqlstorage persists activities in PostgreSQL.
package sqlstorage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"daybrief/internal/models"
	"daybrief/internal/storage"
)

const schema = `
CREATE TABLE IF NOT EXISTS activities (
	event_id     TEXT PRIMARY KEY,
	title        TEXT NOT NULL,
	start_time   TIMESTAMPTZ NOT NULL,
	end_time     TIMESTAMPTZ NOT NULL,
	description  TEXT NOT NULL DEFAULT '',
	attendees    JSONB NOT NULL DEFAULT '[]',
	ai_summary   TEXT,
	action_items JSONB NOT NULL DEFAULT '[]',
	last_synced  TIMESTAMPTZ NOT NULL DEFAULT now()
)`

const upsertQuery = `
INSERT INTO activities (event_id, title, start_time, end_time, description, attendees, ai_summary, action_items, last_synced)
VALUES (:event_id, :title, :start_time, :end_time, :description, :attendees, :ai_summary, :action_items, :last_synced)
ON CONFLICT (event_id) DO UPDATE SET
	title        = EXCLUDED.title,
	start_time   = EXCLUDED.start_time,
	end_time     = EXCLUDED.end_time,
	description  = EXCLUDED.description,
	attendees    = EXCLUDED.attendees,
	ai_summary   = EXCLUDED.ai_summary,
	action_items = EXCLUDED.action_items,
	last_synced  = EXCLUDED.last_synced`

// Config holds the PostgreSQL connection settings.
type Config struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
	SSLMode  string
}

// Storage is a PostgreSQL-backed implementation of storage.Storage.
type Storage struct {
	config Config
	logger *slog.Logger
	db     *sqlx.DB
}

// New creates a Storage. Call Connect before use.
func New(logger *slog.Logger, config Config) *Storage {
	if config.SSLMode == "" {
		config.SSLMode = "disable"
	}
	return &Storage{config: config, logger: logger}
}

// Connect opens the database connection and verifies it with a ping.
func (s *Storage) Connect(ctx context.Context) error {
	db, err := sqlx.ConnectContext(
		ctx,
		"postgres",
		fmt.Sprintf(
			"sslmode=%s host=%s port=%d dbname=%s user=%s password=%s",
			s.config.SSLMode, s.config.Host, s.config.Port, s.config.Database, s.config.Username, s.config.Password),
	)
	if err != nil {
		s.logger.Error("failed to connect to database", "host", s.config.Host, "error", err)
		return storage.ErrConnectionFailed
	}
	s.db = db
	return nil
}

// CreateSchema creates the activities table if it does not exist.
func (s *Storage) CreateSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

func (s *Storage) Close(ctx context.Context) error {
	if s.db == nil {
		return nil
	}
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close connection: %w", err)
	}
	return nil
}

// UpsertActivity inserts the activity or replaces every mutable field
// of the existing row in one statement. Conflict resolution happens in
// the database, not via read-then-write.
func (s *Storage) UpsertActivity(ctx context.Context, activity *models.Activity) error {
	if _, err := s.db.NamedExecContext(ctx, upsertQuery, activity); err != nil {
		return fmt.Errorf("failed to upsert activity %q: %w", activity.EventID, err)
	}
	return nil
}

// ActivitiesBetween selects activities with start_time in [start, end),
// ordered by start_time ascending.
func (s *Storage) ActivitiesBetween(ctx context.Context, start, end time.Time) ([]models.Activity, error) {
	var activities []models.Activity
	err := s.db.SelectContext(
		ctx,
		&activities,
		`SELECT event_id, title, start_time, end_time, description, attendees, ai_summary, action_items, last_synced
		 FROM activities WHERE start_time >= $1 AND start_time < $2 ORDER BY start_time`,
		start.UTC(), end.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to select activities: %w", err)
	}
	return activities, nil
}

// LastSyncedBetween returns the newest last_synced timestamp among
// activities with start_time in [start, end).
func (s *Storage) LastSyncedBetween(ctx context.Context, start, end time.Time) (time.Time, error) {
	var lastSynced time.Time
	err := s.db.GetContext(
		ctx,
		&lastSynced,
		`SELECT last_synced FROM activities
		 WHERE start_time >= $1 AND start_time < $2
		 ORDER BY last_synced DESC LIMIT 1`,
		start.UTC(), end.UTC(),
	)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, storage.ErrNoActivities
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to select last synced time: %w", err)
	}
	return lastSynced, nil
}
