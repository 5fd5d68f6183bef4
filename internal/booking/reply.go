package booking

import (
	"strings"
	"time"
)

const (
	// DefaultSummary is the event title when the reply carries no vehicle type.
	DefaultSummary = "Заказ"

	vehicleLabel = "тип транспортного средства:"
	notSpecified = "не указано"
)

// Event is a calendar event assembled from a normalized reply. It only
// exists to be handed to the scheduler.
type Event struct {
	Summary     string
	Description string
	Start       time.Time
	End         time.Time
}

// StripEmphasis removes markdown bold/italic markers from s.
func StripEmphasis(s string) string {
	s = strings.ReplaceAll(s, "**", "")
	return strings.ReplaceAll(s, "*", "")
}

// VehicleType returns the value of the vehicle-type line of a normalized
// reply, or "" when the line is missing, empty, or marked not specified.
func VehicleType(reply string) string {
	for _, line := range strings.Split(reply, "\n") {
		if !strings.Contains(strings.ToLower(line), vehicleLabel) {
			continue
		}
		parts := strings.Split(line, ":")
		value := StripEmphasis(strings.TrimSpace(parts[len(parts)-1]))
		if value == "" || strings.EqualFold(value, notSpecified) {
			return ""
		}
		return value
	}
	return ""
}

// Summary derives the event title from a normalized reply: the vehicle type
// when present, the generic default otherwise.
func Summary(reply string) string {
	if vehicle := VehicleType(reply); vehicle != "" {
		return vehicle + " - " + DefaultSummary
	}
	return DefaultSummary
}

// NewEvent builds the calendar event for a normalized reply and a resolved
// date/time candidate. The reply itself, with emphasis stripped, becomes the
// event description.
func NewEvent(reply string, candidate Candidate, loc *time.Location) (Event, error) {
	start, end, err := candidate.StartEnd(loc)
	if err != nil {
		return Event{}, err
	}

	return Event{
		Summary:     Summary(reply),
		Description: strings.TrimSpace(StripEmphasis(reply)),
		Start:       start,
		End:         end,
	}, nil
}
