package search

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/townbeat/townbeat-go/apperrors"
	"github.com/townbeat/townbeat-go/models"
)

const (
	displayLayout = "Jan 2, 2006 3:04 PM"

	// UnknownDate is the display fallback for records indexed without a
	// timestamp.
	UnknownDate = "Unknown Date"
)

// NormalizeHit converts one raw index document into the display shape.
// Missing category defaults to "Other"; other missing fields stay empty.
// A present timestamp in an unrecognized shape is an error, never a
// silent default.
func NormalizeHit(doc redis.Document) (models.EventSummary, error) {
	s := models.EventSummary{
		ID:       strings.TrimPrefix(doc.ID, KeyPrefix),
		Name:     doc.Fields["name"],
		Category: doc.Fields["category"],
		Address:  doc.Fields["address"],
		AgeGroup: doc.Fields["age_group"],
	}
	if s.Category == "" {
		s.Category = "Other"
	}

	formatted, err := FormatEventTime(doc.Fields["event_ts"])
	if err != nil {
		return models.EventSummary{}, err
	}
	s.EventDateTime = formatted
	return s, nil
}

// FormatEventTime decodes the indexed timestamp, which is either epoch
// seconds or an RFC3339 string depending on how the record was written.
func FormatEventTime(raw string) (string, error) {
	if raw == "" {
		return UnknownDate, nil
	}
	if secs, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return time.Unix(secs, 0).UTC().Format(displayLayout), nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC().Format(displayLayout), nil
	}
	return "", fmt.Errorf("%w: %q", apperrors.ErrBadTimestamp, raw)
}
