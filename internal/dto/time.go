package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// naiveLayouts are accepted for timestamps without an offset. Such values are
// read as UTC. Fractional seconds are accepted after the seconds field.
var naiveLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
}

// Time is a request timestamp. It takes RFC 3339 values as well as ISO 8601
// values with no offset, e.g. "2025-12-20T10:00:00".
type Time struct {
	time.Time
}

func (t *Time) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	parsed, err := ParseTime(raw)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

// Ptr returns the wrapped time, or nil when t is nil.
func (t *Time) Ptr() *time.Time {
	if t == nil {
		return nil
	}
	v := t.Time
	return &v
}

// ParseTime parses an RFC 3339 timestamp or an offset-free ISO 8601 one.
func ParseTime(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t, nil
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", raw)
}
