package models

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// Clock is a time-of-day with second precision, detached from any calendar
// date. Attendance windows, scan timestamps and deadlines all compare on
// Clock values only.
type Clock struct {
	seconds int
}

// NewClock builds a Clock from hour, minute and second components.
func NewClock(hour, minute, second int) Clock {
	return Clock{seconds: hour*3600 + minute*60 + second}
}

// ClockOf extracts the time-of-day from a full timestamp.
func ClockOf(t time.Time) Clock {
	return NewClock(t.Hour(), t.Minute(), t.Second())
}

// ParseClock accepts "HH:MM" or "HH:MM:SS".
func ParseClock(raw string) (Clock, error) {
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return ClockOf(t), nil
		}
	}
	return Clock{}, fmt.Errorf("invalid clock value %q, expected HH:MM or HH:MM:SS", raw)
}

// Hour returns the hour component.
func (c Clock) Hour() int { return c.seconds / 3600 }

// Minute returns the minute component.
func (c Clock) Minute() int { return (c.seconds % 3600) / 60 }

// Second returns the second component.
func (c Clock) Second() int { return c.seconds % 60 }

// Before reports whether c is earlier than other.
func (c Clock) Before(other Clock) bool { return c.seconds < other.seconds }

// After reports whether c is later than other.
func (c Clock) After(other Clock) bool { return c.seconds > other.seconds }

// Add returns the clock shifted by d. The result saturates at the midnight
// boundaries rather than wrapping.
func (c Clock) Add(d time.Duration) Clock {
	s := c.seconds + int(d/time.Second)
	if s < 0 {
		s = 0
	}
	if s > 24*3600-1 {
		s = 24*3600 - 1
	}
	return Clock{seconds: s}
}

// Sub returns the duration from other to c.
func (c Clock) Sub(other Clock) time.Duration {
	return time.Duration(c.seconds-other.seconds) * time.Second
}

// String renders the clock as HH:MM:SS.
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", c.Hour(), c.Minute(), c.Second())
}

// MarshalJSON renders the clock as a JSON string.
func (c Clock) MarshalJSON() ([]byte, error) {
	return []byte(`"` + c.String() + `"`), nil
}

// UnmarshalJSON parses a JSON clock string.
func (c *Clock) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("invalid clock JSON %s", data)
	}
	parsed, err := ParseClock(string(data[1 : len(data)-1]))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Scan implements sql.Scanner. Postgres TIME columns arrive as strings via
// lib/pq; timestamps are reduced to their time-of-day.
func (c *Clock) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*c = Clock{}
		return nil
	case time.Time:
		*c = ClockOf(v)
		return nil
	case []byte:
		return c.scanString(string(v))
	case string:
		return c.scanString(v)
	default:
		return fmt.Errorf("cannot scan %T into Clock", src)
	}
}

func (c *Clock) scanString(raw string) error {
	parsed, err := ParseClock(raw)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Value implements driver.Valuer.
func (c Clock) Value() (driver.Value, error) {
	return c.String(), nil
}

// ClockPtr is a helper for optional clock columns.
func ClockPtr(hour, minute, second int) *Clock {
	c := NewClock(hour, minute, second)
	return &c
}
