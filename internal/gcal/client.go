// Package gcal creates booking events in Google Calendar through a
// service-account credential.
package gcal

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// Scheduler wraps the Google Calendar API client for one fixed calendar.
type Scheduler struct {
	service    *calendar.Service
	calendarID string
	timezone   string
}

// Config configures the scheduler.
type Config struct {
	CredentialsFile string
	CalendarID      string
	Timezone        string
}

// NewScheduler authenticates with the service-account credential file and
// builds a calendar client bound to the configured calendar and timezone.
func NewScheduler(ctx context.Context, cfg Config) (*Scheduler, error) {
	data, err := os.ReadFile(cfg.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read service account file: %w", err)
	}

	jwtConfig, err := google.JWTConfigFromJSON(data, calendar.CalendarScope)
	if err != nil {
		return nil, fmt.Errorf("failed to parse service account credentials: %w", err)
	}

	service, err := calendar.NewService(ctx, option.WithHTTPClient(jwtConfig.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}

	return &Scheduler{
		service:    service,
		calendarID: cfg.CalendarID,
		timezone:   cfg.Timezone,
	}, nil
}
