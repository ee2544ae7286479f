// Package memorystorage keeps activities in process memory. It mirrors
// the semantics of the SQL storage and is used by tests.
package memorystorage

import (
	"context"
	"sort"
	"sync"
	"time"

	"daybrief/internal/models"
	"daybrief/internal/storage"
)

type Storage struct {
	mu   sync.RWMutex
	data map[string]models.Activity
}

func New() *Storage {
	return &Storage{data: make(map[string]models.Activity)}
}

func (s *Storage) Close(_ context.Context) error {
	return nil
}

func (s *Storage) UpsertActivity(_ context.Context, activity *models.Activity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[activity.EventID] = *activity
	return nil
}

func (s *Storage) ActivitiesBetween(_ context.Context, start, end time.Time) ([]models.Activity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	activities := make([]models.Activity, 0)
	for _, a := range s.data {
		if withinRange(a.StartTime, start, end) {
			activities = append(activities, a)
		}
	}
	sort.Slice(activities, func(i, j int) bool {
		return activities[i].StartTime.Before(activities[j].StartTime)
	})
	return activities, nil
}

func (s *Storage) LastSyncedBetween(_ context.Context, start, end time.Time) (time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var newest time.Time
	found := false
	for _, a := range s.data {
		if !withinRange(a.StartTime, start, end) {
			continue
		}
		if !found || a.LastSynced.After(newest) {
			newest = a.LastSynced
			found = true
		}
	}
	if !found {
		return time.Time{}, storage.ErrNoActivities
	}
	return newest, nil
}

// Range check is [start, end) on start time.
func withinRange(t, start, end time.Time) bool {
	return !t.Before(start) && t.Before(end)
}
