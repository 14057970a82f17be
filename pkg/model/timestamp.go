package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Timestamp is a JSON time that tolerates whatever the task service or the
// language model hands back. Unparseable values keep their raw text and
// report !Valid() instead of failing the whole decode.
type Timestamp struct {
	time.Time
	Raw string
}

// Layouts tried in order. Layouts without a zone are read in time.Local.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp parses the time formats seen on the wire. ISO 8601
// intervals ("start/end") resolve to their start.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '/'); i >= 0 {
		s = s[:i]
	}
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

func NewTimestamp(t time.Time) *Timestamp {
	return &Timestamp{Time: t}
}

func (ts Timestamp) Valid() bool { return !ts.Time.IsZero() }

// UnmarshalJSON implements the json.Unmarshaler interface for Timestamp.
func (ts *Timestamp) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*ts = Timestamp{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	t, err := ParseTimestamp(s)
	if err != nil {
		*ts = Timestamp{Raw: s}
		return nil
	}
	*ts = Timestamp{Time: t, Raw: s}
	return nil
}

// MarshalJSON implements the json.Marshaler interface for Timestamp.
func (ts Timestamp) MarshalJSON() ([]byte, error) {
	if ts.Time.IsZero() {
		if ts.Raw == "" {
			return []byte("null"), nil
		}
		return json.Marshal(ts.Raw)
	}
	return json.Marshal(ts.Time.Format(time.RFC3339))
}
