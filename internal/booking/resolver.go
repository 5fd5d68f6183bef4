package booking

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var (
	datePattern = regexp.MustCompile(`\d{1,2}\.\d{1,2}\.\d{2,4}`)
	timePattern = regexp.MustCompile(`\d{1,2}:\d{2}`)
)

// Source identifies which text the date/time pair was found in.
type Source string

const (
	// SourceReply means the pair came from the normalized reply.
	SourceReply Source = "bot_reply"
	// SourceOriginal means the pair came from the original raw text.
	SourceOriginal Source = "original_text"
)

// Candidate is a date/time pair located in one of the candidate texts.
// The strings are kept verbatim as matched; StartEnd converts them.
type Candidate struct {
	DateStr string
	TimeStr string
	Source  Source
}

// Resolve scans primary (the normalized reply, emphasis markers stripped)
// and then fallback (the original raw text) for a DD.MM.YY(YY) date and an
// HH:MM time, taking the first match of each. Both patterns must hit in the
// same text; otherwise the next text is tried. Returns false when neither
// text yields a complete pair.
func Resolve(primary, fallback string) (Candidate, bool) {
	candidates := []struct {
		source Source
		text   string
	}{
		{SourceReply, StripEmphasis(primary)},
		{SourceOriginal, fallback},
	}

	for _, c := range candidates {
		dateStr := datePattern.FindString(c.text)
		timeStr := timePattern.FindString(c.text)
		if dateStr != "" && timeStr != "" {
			return Candidate{DateStr: dateStr, TimeStr: timeStr, Source: c.source}, true
		}
	}

	return Candidate{}, false
}

// StartEnd converts the candidate into a start/end timestamp pair in the
// given location. Years with exactly two digits parse under the two-digit
// layout; everything else parses under the four-digit layout. The end time
// is always one hour after the start.
func (c Candidate) StartEnd(loc *time.Location) (time.Time, time.Time, error) {
	layout := "2.1.2006"
	if yearDigits(c.DateStr) == 2 {
		layout = "2.1.06"
	}

	date, err := time.ParseInLocation(layout, c.DateStr, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("unable to parse date %q: %w", c.DateStr, err)
	}

	clock, err := time.Parse("15:04", c.TimeStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("unable to parse time %q: %w", c.TimeStr, err)
	}

	start := time.Date(date.Year(), date.Month(), date.Day(), clock.Hour(), clock.Minute(), 0, 0, loc)
	return start, start.Add(time.Hour), nil
}

func yearDigits(dateStr string) int {
	return len(dateStr[strings.LastIndex(dateStr, ".")+1:])
}
