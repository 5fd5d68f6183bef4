package gcal

import (
	"context"
	"fmt"
	"log"
	"time"

	"google.golang.org/api/calendar/v3"

	"github.com/slavka0990/transferbot/internal/booking"
)

// civilLayout is a local civil timestamp; the timezone travels in the
// EventDateTime.TimeZone field instead of an offset.
const civilLayout = "2006-01-02T15:04:05"

const reminderDuration = 15 * time.Minute

// Schedule creates the booking event plus a one-hour and a one-day reminder
// event. The three inserts are independent: a reminder failure is only
// logged and the primary event's confirmation link is still returned.
// Failure of the primary insert fails the whole call and skips the
// reminders.
func (s *Scheduler) Schedule(ctx context.Context, event booking.Event) (string, error) {
	if s.service == nil {
		return "", fmt.Errorf("calendar service not initialized")
	}

	main := &calendar.Event{
		Summary:     event.Summary,
		Description: event.Description,
		Start:       s.eventTime(event.Start),
		End:         s.eventTime(event.End),
		Reminders: &calendar.EventReminders{
			UseDefault:      false,
			Overrides:       []*calendar.EventReminder{},
			ForceSendFields: []string{"UseDefault"},
		},
	}

	created, err := s.service.Events.Insert(s.calendarID, main).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to create event: %w", err)
	}

	reminders := []struct {
		title   string
		lead    string
		offset  time.Duration
		colorID string
	}{
		{"⏰ НАПОМИНАНИЕ за 1 час: ", "через 1 час", time.Hour, "11"},
		{"📅 НАПОМИНАНИЕ за 1 день: ", "завтра", 24 * time.Hour, "9"},
	}

	for _, r := range reminders {
		start := event.Start.Add(-r.offset)
		reminder := &calendar.Event{
			Summary: r.title + event.Summary,
			Description: fmt.Sprintf("Напоминание о предстоящем событии %s:\n\n%s",
				r.lead, event.Description),
			Start:     s.eventTime(start),
			End:       s.eventTime(start.Add(reminderDuration)),
			Reminders: &calendar.EventReminders{UseDefault: true},
			ColorId:   r.colorID,
		}

		if _, err := s.service.Events.Insert(s.calendarID, reminder).Context(ctx).Do(); err != nil {
			log.Printf("Failed to create reminder event %q: %v", reminder.Summary, err)
		}
	}

	return created.HtmlLink, nil
}

func (s *Scheduler) eventTime(t time.Time) *calendar.EventDateTime {
	return &calendar.EventDateTime{
		DateTime: t.Format(civilLayout),
		TimeZone: s.timezone,
	}
}
