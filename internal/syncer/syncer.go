// Package syncer orchestrates the event source, the annotator and the
// store, and decides when cached data is recent enough to serve.
package syncer

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"daybrief/internal/models"
	"daybrief/internal/storage"
)

const (
	// DefaultMaxAge is how long today's cached activities are served
	// before a resync.
	DefaultMaxAge = 30 * time.Minute

	maxFetchResults = 100
)

// EventSource supplies raw calendar events for a time range.
// Authentication is a distinct step so callers can degrade to cached
// data when it fails.
type EventSource interface {
	Authenticate(ctx context.Context) error
	FetchEvents(ctx context.Context, start, end time.Time, maxResults int64) ([]models.Event, error)
}

// Annotator produces a summary and action items from event text. The
// two calls are independent; either may fail without affecting the
// other.
type Annotator interface {
	GenerateSummary(ctx context.Context, title, description string) (string, error)
	ExtractActionItems(ctx context.Context, title, description string) ([]models.ActionItem, error)
}

// Engine synchronizes today's calendar events into the store.
type Engine struct {
	logger    *slog.Logger
	source    EventSource
	annotator Annotator
	store     storage.Storage
	now       func() time.Time
	maxAge    time.Duration
}

// Option configures an Engine.
type Option func(*Engine)

// WithMaxAge overrides the freshness window.
func WithMaxAge(maxAge time.Duration) Option {
	return func(e *Engine) { e.maxAge = maxAge }
}

// WithClock overrides the engine's time source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// New creates an Engine. All collaborators are passed in explicitly.
func New(logger *slog.Logger, source EventSource, annotator Annotator, store storage.Storage, opts ...Option) *Engine {
	e := &Engine{
		logger:    logger,
		source:    source,
		annotator: annotator,
		store:     store,
		now:       time.Now,
		maxAge:    DefaultMaxAge,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SyncToday returns today's activities ordered by start time. When the
// cache is fresh and forceRefresh is false it serves the store without
// any network calls. Otherwise it fetches today's events, annotates
// and upserts them one at a time, and finishes with a store read so
// the result always reflects what was durably persisted rather than
// the in-memory working set.
//
// Authentication failures, fetch failures and per-event annotation or
// persistence failures never escape this method; they degrade to
// cached or partial data.
func (e *Engine) SyncToday(ctx context.Context, forceRefresh bool) ([]models.Activity, error) {
	dayStart, dayEnd := e.todayWindow()

	if !forceRefresh && e.isFresh(ctx, dayStart, dayEnd) {
		e.logger.Debug("Cache is fresh, serving stored activities")
		return e.store.ActivitiesBetween(ctx, dayStart, dayEnd)
	}

	if err := e.source.Authenticate(ctx); err != nil {
		e.logger.Warn("Calendar authentication failed, using cached data", "error", err)
		return e.store.ActivitiesBetween(ctx, dayStart, dayEnd)
	}

	events, err := e.source.FetchEvents(ctx, dayStart, dayEnd, maxFetchResults)
	if err != nil {
		e.logger.Warn("Failed to fetch events", "error", err)
		events = nil
	}
	if len(events) == 0 {
		e.logger.Info("No activities found for today")
		return []models.Activity{}, nil
	}

	// Events are processed and persisted one at a time so one bad event
	// cannot block the rest.
	synced := 0
	for _, event := range events {
		activity := e.annotate(ctx, event)
		if err := e.store.UpsertActivity(ctx, activity); err != nil {
			e.logger.Warn("Failed to save activity", "eventID", event.ID, "title", event.Title, "error", err)
			continue
		}
		synced++
	}
	e.logger.Info("Sync finished", "fetched", len(events), "synced", synced)

	return e.store.ActivitiesBetween(ctx, dayStart, dayEnd)
}

// isFresh reports whether today's cache is recent enough to serve. It
// samples only the most recently synced row for today: if any row was
// written within maxAge the whole day counts as fresh. That is a
// deliberate coarseness, trading per-row accuracy for a single cheap
// query.
func (e *Engine) isFresh(ctx context.Context, dayStart, dayEnd time.Time) bool {
	lastSynced, err := e.store.LastSyncedBetween(ctx, dayStart, dayEnd)
	if err != nil {
		if !errors.Is(err, storage.ErrNoActivities) {
			e.logger.Warn("Freshness check failed", "error", err)
		}
		return false
	}
	return e.now().Sub(lastSynced) < e.maxAge
}

// annotate builds the Activity for one event. Each annotation call
// fails independently and is substituted with its default; the event
// is persisted either way.
func (e *Engine) annotate(ctx context.Context, event models.Event) *models.Activity {
	var summary sql.NullString
	text, err := e.annotator.GenerateSummary(ctx, event.Title, event.Description)
	if err != nil {
		e.logger.Warn("Failed to generate summary", "title", event.Title, "error", err)
	} else {
		summary = sql.NullString{String: text, Valid: true}
	}

	items, err := e.annotator.ExtractActionItems(ctx, event.Title, event.Description)
	if err != nil {
		e.logger.Warn("Failed to extract action items", "title", event.Title, "error", err)
		items = nil
	}

	return &models.Activity{
		EventID:     event.ID,
		Title:       event.Title,
		StartTime:   event.StartTime,
		EndTime:     event.EndTime,
		Description: event.Description,
		Attendees:   models.AttendeeList(event.Attendees),
		AISummary:   summary,
		ActionItems: models.ActionItemList(items),
		LastSynced:  e.now().UTC(),
	}
}

// todayWindow returns [midnight UTC today, midnight UTC tomorrow).
func (e *Engine) todayWindow() (time.Time, time.Time) {
	now := e.now().UTC()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.Add(24 * time.Hour)
}
