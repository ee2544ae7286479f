// Package google implements the calendar event source on top of the
// Google Calendar API.
package google

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"daybrief/internal/models"
)

// Config holds OAuth credentials and token locations for the client.
type Config struct {
	ClientID        string
	ClientSecret    string
	CredentialsFile string
	TokenFile       string
}

// Client provides read access to the user's primary Google Calendar.
type Client struct {
	config  Config
	logger  *slog.Logger
	service *calendar.Service
}

// NewClient creates a calendar client. Call Authenticate before
// fetching events.
func NewClient(logger *slog.Logger, config Config) *Client {
	return &Client{config: config, logger: logger}
}

// Authenticate loads the saved OAuth token and builds the calendar
// service. The oauth2 token source refreshes expired access tokens
// transparently. Failure here is recoverable for callers that can fall
// back to cached data.
func (c *Client) Authenticate(ctx context.Context) error {
	oauthConfig, err := OAuthConfig(c.config)
	if err != nil {
		return fmt.Errorf("failed to get OAuth config: %w", err)
	}

	token, err := tokenFromFile(c.config.TokenFile)
	if err != nil {
		return fmt.Errorf("could not load token from %s: %w. Run the 'auth' command first", c.config.TokenFile, err)
	}

	service, err := calendar.NewService(ctx, option.WithHTTPClient(oauthConfig.Client(ctx, token)))
	if err != nil {
		return fmt.Errorf("failed to create calendar service: %w", err)
	}
	c.service = service
	return nil
}

// FetchEvents fetches events from the primary calendar with a start
// time in [start, end). Recurring events are expanded into single
// occurrences.
func (c *Client) FetchEvents(ctx context.Context, start, end time.Time, maxResults int64) ([]models.Event, error) {
	if c.service == nil {
		return nil, fmt.Errorf("not authenticated, call Authenticate first")
	}
	c.logger.Debug("Fetching events", "start", start, "end", end)

	events, err := c.service.Events.List("primary").
		TimeMin(start.UTC().Format(time.RFC3339)).
		TimeMax(end.UTC().Format(time.RFC3339)).
		MaxResults(maxResults).
		ShowDeleted(false).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve events: %w", err)
	}

	c.logger.Info("Fetched events from Google Calendar", "count", len(events.Items))
	return c.toInternalEvents(events.Items), nil
}

// toInternalEvents converts Google Calendar events to the internal Event model.
func (c *Client) toInternalEvents(googleEvents []*calendar.Event) []models.Event {
	internalEvents := make([]models.Event, 0, len(googleEvents))
	for _, item := range googleEvents {
		internalEvents = append(internalEvents, parseEvent(item))
	}
	return internalEvents
}

// parseEvent normalizes one provider event. Timed events carry
// dateTime, all-day events carry a bare date. A missing end defaults
// to one hour after the start.
func parseEvent(item *calendar.Event) models.Event {
	startTime := parseEventTime(item.Start)
	if startTime.IsZero() {
		startTime = time.Now().UTC()
	}
	endTime := parseEventTime(item.End)
	if endTime.IsZero() {
		endTime = startTime.Add(time.Hour)
	}

	title := item.Summary
	if title == "" {
		title = "(No title)"
	}

	var attendees []models.Attendee
	for _, a := range item.Attendees {
		name := a.DisplayName
		if name == "" {
			name = a.Email
		}
		status := a.ResponseStatus
		if status == "" {
			status = "needsAction"
		}
		attendees = append(attendees, models.Attendee{
			Email:  a.Email,
			Name:   name,
			Status: status,
		})
	}

	return models.Event{
		ID:          item.Id,
		Title:       title,
		Description: item.Description,
		StartTime:   startTime,
		EndTime:     endTime,
		Location:    item.Location,
		HTMLLink:    item.HtmlLink,
		Attendees:   attendees,
	}
}

func parseEventTime(t *calendar.EventDateTime) time.Time {
	if t == nil {
		return time.Time{}
	}
	if t.DateTime != "" {
		parsed, err := time.Parse(time.RFC3339, t.DateTime)
		if err != nil {
			return time.Time{}
		}
		return parsed.UTC()
	}
	if t.Date != "" {
		parsed, err := time.ParseInLocation(time.DateOnly, t.Date, time.UTC)
		if err != nil {
			return time.Time{}
		}
		return parsed
	}
	return time.Time{}
}

// OAuthConfig returns the oauth2 config for the desktop flow. It
// prioritizes explicit client ID/secret over a credentials.json file.
func OAuthConfig(config Config) (*oauth2.Config, error) {
	if config.ClientID != "" && config.ClientSecret != "" {
		return &oauth2.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			RedirectURL:  "urn:ietf:wg:oauth:2.0:oob",
			Scopes:       []string{calendar.CalendarReadonlyScope},
			Endpoint:     google.Endpoint,
		}, nil
	}

	b, err := os.ReadFile(config.CredentialsFile)
	if err != nil {
		if _, ok := err.(*fs.PathError); ok {
			return nil, fmt.Errorf("%s not found. Provide GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET env vars or run the 'setup' command", config.CredentialsFile)
		}
		return nil, fmt.Errorf("unable to read client secret file: %w", err)
	}

	oauthConfig, err := google.ConfigFromJSON(b, calendar.CalendarReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse client secret file to config: %w", err)
	}
	oauthConfig.RedirectURL = "urn:ietf:wg:oauth:2.0:oob" // For desktop app flow
	return oauthConfig, nil
}

// TokenFromWeb exchanges an authorization code for a token.
func TokenFromWeb(ctx context.Context, config *oauth2.Config, authCode string) (*oauth2.Token, error) {
	return config.Exchange(ctx, authCode)
}

// SaveToken saves a token to a file path.
func SaveToken(path string, token *oauth2.Token) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("unable to create token file: %w", err)
	}
	defer f.Close()
	return json.NewEncoder(f).Encode(token)
}

// tokenFromFile retrieves a token from a local file.
func tokenFromFile(file string) (*oauth2.Token, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	tok := &oauth2.Token{}
	err = json.NewDecoder(f).Decode(tok)
	return tok, err
}
