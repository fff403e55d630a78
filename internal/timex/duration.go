// Package timex provides a time.Duration wrapper that round-trips through
// JSON config files in human-readable form.
package timex

import (
	"encoding/json"
	"fmt"
	"time"
)

// Duration unmarshals from either a string like "15s" or an integer number
// of nanoseconds, and always marshals back to the string form.
type Duration struct {
	time.Duration
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch t := v.(type) {
	case string:
		parsed, err := time.ParseDuration(t)
		if err != nil {
			return fmt.Errorf("parse duration %q: %w", t, err)
		}
		d.Duration = parsed
	case float64:
		d.Duration = time.Duration(t)
	default:
		return fmt.Errorf("duration must be a string or a number, got %T", v)
	}
	return nil
}
