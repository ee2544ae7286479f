package ai

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"daybrief/internal/models"
)

func testClient(t *testing.T) *Client {
	t.Helper()
	client, err := NewClient(slog.New(slog.NewTextHandler(io.Discard, nil)), "test-key")
	require.NoError(t, err)
	return client
}

func TestNewClientRequiresKey(t *testing.T) {
	_, err := NewClient(slog.New(slog.NewTextHandler(io.Discard, nil)), "")
	require.Error(t, err)
}

func TestGenerateSummaryFallsBackWithoutDescription(t *testing.T) {
	// The fallback path must not reach the API, so it works with a
	// bogus key and no network.
	client := testClient(t)

	tests := []struct {
		name        string
		description string
	}{
		{name: "empty description", description: ""},
		{name: "whitespace only description", description: "   "},
		{name: "tabs and newlines", description: "\t\n "},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			summary, err := client.GenerateSummary(context.Background(), "Standup", tc.description)
			require.NoError(t, err)
			require.Equal(t, "Activity: Standup", summary)
		})
	}
}

func TestExtractActionItemsSkipsWithoutDescription(t *testing.T) {
	client := testClient(t)

	for _, description := range []string{"", "   "} {
		items, err := client.ExtractActionItems(context.Background(), "Standup", description)
		require.NoError(t, err)
		require.Empty(t, items)
	}
}

func TestNormalizeActionItems(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    []models.ActionItem
	}{
		{
			name:    "top level array",
			payload: `[{"task":"send notes","assignee":"Ana","status":"done"}]`,
			want:    []models.ActionItem{{Task: "send notes", Assignee: "Ana", Status: "pending"}},
		},
		{
			name:    "wrapped in action_items",
			payload: `{"action_items":[{"task":"send notes"}]}`,
			want:    []models.ActionItem{{Task: "send notes", Assignee: "Unassigned", Status: "pending"}},
		},
		{
			name:    "wrapped in actions",
			payload: `{"actions":[{"task":"book room","assignee":"Bo"}]}`,
			want:    []models.ActionItem{{Task: "book room", Assignee: "Bo", Status: "pending"}},
		},
		{
			name:    "wrapped in tasks",
			payload: `{"tasks":[{"task":"ship it"}]}`,
			want:    []models.ActionItem{{Task: "ship it", Assignee: "Unassigned", Status: "pending"}},
		},
		{
			name:    "items without task are dropped",
			payload: `[{"assignee":"Ana"},{"task":"keep me"}]`,
			want:    []models.ActionItem{{Task: "keep me", Assignee: "Unassigned", Status: "pending"}},
		},
		{
			name:    "status is always clamped to pending",
			payload: `[{"task":"a","status":"in_progress"},{"task":"b","status":"completed"}]`,
			want: []models.ActionItem{
				{Task: "a", Assignee: "Unassigned", Status: "pending"},
				{Task: "b", Assignee: "Unassigned", Status: "pending"},
			},
		},
		{
			name:    "unknown wrapper key yields nothing",
			payload: `{"todo_list":[{"task":"lost"}]}`,
			want:    nil,
		},
		{
			name:    "empty object",
			payload: `{}`,
			want:    nil,
		},
		{
			name:    "empty array",
			payload: `[]`,
			want:    nil,
		},
		{
			name:    "non-object entries are skipped",
			payload: `["just a string",{"task":"real"}]`,
			want:    []models.ActionItem{{Task: "real", Assignee: "Unassigned", Status: "pending"}},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			items, err := normalizeActionItems([]byte(tc.payload))
			require.NoError(t, err)
			require.Equal(t, tc.want, items)
		})
	}
}

func TestNormalizeActionItemsRejectsInvalidJSON(t *testing.T) {
	_, err := normalizeActionItems([]byte("not json"))
	require.Error(t, err)
}
