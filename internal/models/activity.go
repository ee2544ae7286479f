package models

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Attendee is a single invitee on an activity.
type Attendee struct {
	Email  string `json:"email"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

// ActionItem is a task extracted from an activity description.
type ActionItem struct {
	Task     string `json:"task"`
	Assignee string `json:"assignee"`
	Status   string `json:"status"`
}

// Activity is the persisted record for one calendar event occurrence.
// Rows are keyed by EventID and replaced whole on every sync; nothing
// is ever patched field by field.
type Activity struct {
	EventID     string         `db:"event_id"`
	Title       string         `db:"title"`
	StartTime   time.Time      `db:"start_time"`
	EndTime     time.Time      `db:"end_time"`
	Description string         `db:"description"`
	Attendees   AttendeeList   `db:"attendees"`
	AISummary   sql.NullString `db:"ai_summary"`
	ActionItems ActionItemList `db:"action_items"`
	LastSynced  time.Time      `db:"last_synced"`
}

// AttendeeList stores attendees as a JSONB column.
type AttendeeList []Attendee

// ActionItemList stores action items as a JSONB column.
type ActionItemList []ActionItem

func (a AttendeeList) Value() (driver.Value, error) {
	return marshalJSONColumn(a)
}

func (a *AttendeeList) Scan(src interface{}) error {
	return scanJSONColumn(src, a)
}

func (a ActionItemList) Value() (driver.Value, error) {
	return marshalJSONColumn(a)
}

func (a *ActionItemList) Scan(src interface{}) error {
	return scanJSONColumn(src, a)
}

func marshalJSONColumn(v interface{}) (driver.Value, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal json column: %w", err)
	}
	// A nil slice marshals to "null"; the column expects an array.
	if string(data) == "null" {
		return []byte("[]"), nil
	}
	return data, nil
}

func scanJSONColumn(src, dst interface{}) error {
	if src == nil {
		return nil
	}
	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for json column", src)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("failed to unmarshal json column: %w", err)
	}
	return nil
}
