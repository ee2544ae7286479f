// Package storage defines the persistence boundary for activities.
package storage

import (
	"context"
	"errors"
	"time"

	"daybrief/internal/models"
)

var (
	// ErrConnectionFailed indicates the backing store could not be reached.
	ErrConnectionFailed = errors.New("failed to connect to storage")
	// ErrNoActivities indicates a range query matched no rows.
	ErrNoActivities = errors.New("no activities in range")
)

// Storage is the persistence contract the sync engine depends on.
//
// UpsertActivity must be a single conditional write keyed by EventID:
// insert when the row is new, replace every mutable field when it is
// not. Two concurrent writers racing on the same EventID converge to
// last-write-wins.
type Storage interface {
	UpsertActivity(ctx context.Context, activity *models.Activity) error
	// ActivitiesBetween returns activities with start_time in
	// [start, end), ordered by start_time ascending.
	ActivitiesBetween(ctx context.Context, start, end time.Time) ([]models.Activity, error)
	// LastSyncedBetween returns the newest last_synced timestamp among
	// activities with start_time in [start, end). Returns
	// ErrNoActivities when the range is empty.
	LastSyncedBetween(ctx context.Context, start, end time.Time) (time.Time, error)
	Close(ctx context.Context) error
}
