package ingestion

import (
	"strings"
	"time"

	"github.com/jonathan/job-tracker/internal/db"
)

// dateLayouts are tried in order. Month-only layouts resolve to the first of the month.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"January 2, 2006",
	"Jan 2, 2006",
	"January 2 2006",
	"Jan 2 2006",
	"2 January 2006",
	"2 Jan 2006",
	"01/02/2006",
	"2006/01/02",
	"January 2006",
	"Jan 2006",
}

// ParseDate parses a scraped date. Absent, empty or unrecognized input yields nil.
func ParseDate(s *string) *db.Date {
	if s == nil {
		return nil
	}
	value := strings.TrimSpace(*s)
	if value == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return db.NewDate(t)
		}
	}
	return nil
}
