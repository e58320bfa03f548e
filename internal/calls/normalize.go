package calls

import (
	"encoding/json"
	"math"
	"regexp"
	"strings"
	"time"
)

// epochMillisBoundary separates epoch-seconds from epoch-milliseconds input.
// Below it a number is seconds, at or above it milliseconds. Second-epochs do
// not cross it until year ~33658, millisecond-epochs crossed it in 2001.
const epochMillisBoundary = 1e12

var dateOnlyPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Layouts tried for general date-string input, most specific first.
// Callers send whatever their runtime's date formatter produces, so the list
// is deliberately permissive.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.RFC1123Z,
	time.RFC1123,
	"Jan 2, 2006 15:04:05",
	"Jan 2, 2006",
	"January 2, 2006",
	"2006/01/02",
	"01/02/2006",
}

// NormalizeTimestamp converts heterogeneous timestamp input into a usable
// instant. It is total: any input, including nil, garbage strings and
// non-finite numbers, yields a valid time, falling back to now.
//
// Rules, in priority order:
//  1. absent/null: now
//  2. numeric: epoch seconds when the magnitude is below 1e12, else millis
//  3. YYYY-MM-DD: that calendar date combined with the current wall-clock
//     time of day, so date-only input still orders near other records from
//     the same run instead of collapsing to midnight
//  4. general date-string parsing, falling back to now
func NormalizeTimestamp(raw any, now time.Time) time.Time {
	switch v := raw.(type) {
	case nil:
		return now
	case float64:
		return fromEpoch(v, now)
	case int:
		return fromEpoch(float64(v), now)
	case int64:
		return fromEpoch(float64(v), now)
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return now
		}
		return fromEpoch(f, now)
	case string:
		return fromString(v, now)
	default:
		return now
	}
}

func fromEpoch(f float64, now time.Time) time.Time {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return now
	}
	if math.Abs(f) < epochMillisBoundary {
		return time.Unix(int64(f), 0).In(now.Location())
	}
	return time.UnixMilli(int64(f)).In(now.Location())
}

func fromString(s string, now time.Time) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return now
	}

	if dateOnlyPattern.MatchString(s) {
		d, err := time.ParseInLocation("2006-01-02", s, now.Location())
		if err != nil {
			return now
		}
		return time.Date(d.Year(), d.Month(), d.Day(),
			now.Hour(), now.Minute(), now.Second(), 0, now.Location())
	}

	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, now.Location()); err == nil {
			return t
		}
	}
	return now
}
