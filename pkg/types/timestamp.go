package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// LocalLayout is the wire format for timestamps: UTC without a zone suffix.
const LocalLayout = "2006-01-02T15:04:05"

var acceptedLayouts = []string{
	LocalLayout,
	"2006-01-02T15:04:05.999999999",
	time.RFC3339Nano,
}

// Timestamp serializes as LocalLayout and accepts LocalLayout or RFC 3339.
// Zone-less input is read as UTC.
type Timestamp struct {
	time.Time
}

func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t.UTC()}
}

// TimestampPtr returns nil for a nil input.
func TimestampPtr(t *time.Time) *Timestamp {
	if t == nil {
		return nil
	}
	ts := NewTimestamp(*t)
	return &ts
}

// MarshalJSON implements json.Marshaler.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.UTC().Format(LocalLayout))
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	var raw string
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	parsed, err := ParseTimestamp(raw)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

// ParseTimestamp parses any accepted layout and normalizes to UTC.
func ParseTimestamp(raw string) (time.Time, error) {
	for _, layout := range acceptedLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q, expected %s", raw, LocalLayout)
}
