package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClockFormats(t *testing.T) {
	full, err := ParseClock("07:30:15")
	require.NoError(t, err)
	assert.Equal(t, NewClock(7, 30, 15), full)

	short, err := ParseClock("07:30")
	require.NoError(t, err)
	assert.Equal(t, NewClock(7, 30, 0), short)

	_, err = ParseClock("25:00")
	assert.Error(t, err)
	_, err = ParseClock("not a clock")
	assert.Error(t, err)
}

func TestClockAddSaturates(t *testing.T) {
	late := NewClock(23, 59, 30)
	assert.Equal(t, "23:59:59", late.Add(time.Minute).String())

	early := NewClock(7, 30, 0)
	assert.Equal(t, "07:31:00", early.Add(time.Minute).String())
}

func TestClockOrdering(t *testing.T) {
	a := NewClock(7, 30, 0)
	b := NewClock(7, 30, 1)

	assert.True(t, a.Before(b))
	assert.True(t, b.After(a))
	assert.False(t, a.After(a))
	assert.False(t, a.Before(a))
}

func TestWeekdaySetRoundTrip(t *testing.T) {
	set := ParseWeekdaySet("Sabtu,Minggu")

	assert.True(t, set.Contains(time.Saturday))
	assert.True(t, set.Contains(time.Sunday))
	assert.False(t, set.Contains(time.Friday))
	assert.Equal(t, "Sabtu,Minggu", set.String())

	// Unknown names are dropped, not fatal.
	loose := ParseWeekdaySet("Senin, Funday ,")
	assert.True(t, loose.Contains(time.Monday))
	assert.False(t, loose.Contains(time.Tuesday))
}
