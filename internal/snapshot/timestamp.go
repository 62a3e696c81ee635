package snapshot

import (
	"encoding/json"
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// readLayouts are tried in order when decoding a timestamp.
var readLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// Timestamp is an instant that remembers whether it was written as a bare date.
//
// Published snapshots carry both forms: older runs wrote dates, newer ones write
// full datetimes. The zero Timestamp serializes as the empty string.
type Timestamp struct {
	t    time.Time
	date bool
}

// At returns a datetime-precision timestamp normalized to UTC.
func At(t time.Time) Timestamp {
	return Timestamp{t: t.UTC()}
}

// Date returns a date-precision timestamp for the calendar day of t (UTC).
func Date(t time.Time) Timestamp {
	u := t.UTC()
	return Timestamp{t: time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC), date: true}
}

// ParseTimestamp accepts a bare date, an RFC 3339 datetime, a zone-less
// datetime (assumed UTC) or the empty string.
func ParseTimestamp(s string) (Timestamp, error) {
	if s == "" {
		return Timestamp{}, nil
	}
	if t, err := time.Parse(dateLayout, s); err == nil {
		return Timestamp{t: t, date: true}, nil
	}
	for _, layout := range readLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Timestamp{t: t.UTC()}, nil
		}
	}
	return Timestamp{}, fmt.Errorf("invalid timestamp %q", s)
}

func (ts Timestamp) Time() time.Time { return ts.t }
func (ts Timestamp) IsZero() bool    { return ts.t.IsZero() }
func (ts Timestamp) IsDate() bool    { return ts.date }

// Before reports whether ts is strictly earlier than other.
func (ts Timestamp) Before(other Timestamp) bool { return ts.t.Before(other.t) }

// Equal compares instant and precision.
func (ts Timestamp) Equal(other Timestamp) bool {
	return ts.date == other.date && ts.t.Equal(other.t)
}

func (ts Timestamp) String() string {
	switch {
	case ts.t.IsZero():
		return ""
	case ts.date:
		return ts.t.Format(dateLayout)
	default:
		return ts.t.Format(time.RFC3339Nano)
	}
}

func (ts Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(ts.String())
}

func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	parsed, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	*ts = parsed
	return nil
}
