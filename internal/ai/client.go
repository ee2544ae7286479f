// Package ai annotates activities with OpenAI-generated summaries and
// action items.
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"daybrief/internal/models"
)

const (
	summarySystemPrompt = "You are a helpful assistant that creates concise activity summaries."
	actionsSystemPrompt = "You are a helpful assistant that extracts action items from activity notes. Always respond with valid JSON."

	defaultAssignee  = "Unassigned"
	defaultStatus    = "pending"
	summaryMaxTokens = 150
	actionsMaxTokens = 500
)

// Client annotates events via the OpenAI chat completions API.
type Client struct {
	client *openai.Client
	model  string
	logger *slog.Logger
}

// NewClient creates an annotator client.
func NewClient(logger *slog.Logger, apiKey string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key not found. Run the 'setup' command first")
	}
	return &Client{
		client: openai.NewClient(apiKey),
		model:  openai.GPT4oMini,
		logger: logger,
	}, nil
}

// FallbackSummary is the summary used for events that have nothing to
// summarize beyond their title.
func FallbackSummary(title string) string {
	return "Activity: " + title
}

// GenerateSummary produces a 1-2 sentence prep summary for an
// activity. Events without a description (missing or blank after
// trimming) get a deterministic fallback without any API call.
func (c *Client) GenerateSummary(ctx context.Context, title, description string) (string, error) {
	if strings.TrimSpace(description) == "" {
		return FallbackSummary(title), nil
	}

	prompt := fmt.Sprintf(`Generate a concise 1-2 sentence prep summary for this activity.

Activity Title: %s
Description: %s

Provide a brief summary that helps someone prepare for this activity. Focus on the key topics, goals, or action items mentioned.`, title, description)

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: summarySystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0.7,
		MaxTokens:   summaryMaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate summary: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("summary response contained no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// ExtractActionItems pulls tasks out of an activity description.
// Events without a description yield no items and no API call.
func (c *Client) ExtractActionItems(ctx context.Context, title, description string) ([]models.ActionItem, error) {
	if strings.TrimSpace(description) == "" {
		return nil, nil
	}

	prompt := fmt.Sprintf(`Extract action items from this activity.

Activity Title: %s
Description: %s

Identify any tasks, action items, or to-dos mentioned. For each action item, extract:
- task: What needs to be done
- assignee: Who is responsible (use "Unassigned" if not specified)
- status: Always set to "pending"

Return the results as a JSON array. If no action items found, return an empty array.`, title, description)

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: actionsSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0.7,
		MaxTokens:   actionsMaxTokens,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to extract action items: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("action items response contained no choices")
	}

	items, err := normalizeActionItems([]byte(strings.TrimSpace(resp.Choices[0].Message.Content)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse action items: %w", err)
	}
	return items, nil
}

// normalizeActionItems turns a model response into action items. The
// model is asked for an array but regularly wraps it in an object, so
// a fixed list of alternate keys is probed. Items without a task are
// dropped, the assignee defaults and the status is always forced to
// "pending".
func normalizeActionItems(data []byte) ([]models.ActionItem, error) {
	var parsed interface{}
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, err
	}

	var rawItems []interface{}
	switch v := parsed.(type) {
	case []interface{}:
		rawItems = v
	case map[string]interface{}:
		for _, key := range []string{"action_items", "actions", "tasks"} {
			if items, ok := v[key].([]interface{}); ok {
				rawItems = items
				break
			}
		}
	}

	var items []models.ActionItem
	for _, raw := range rawItems {
		entry, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		task, ok := entry["task"].(string)
		if !ok {
			continue
		}
		assignee, _ := entry["assignee"].(string)
		if assignee == "" {
			assignee = defaultAssignee
		}
		items = append(items, models.ActionItem{
			Task:     task,
			Assignee: assignee,
			Status:   defaultStatus,
		})
	}
	return items, nil
}
