package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseDate(t *testing.T) {
	parsed := ParseDate("2024-03-15")
	assert.Equal(t, 2024, parsed.Year())
	assert.Equal(t, time.March, parsed.Month())
	assert.Equal(t, 15, parsed.Day())

	assert.True(t, ParseDate("15/03/2024").IsZero())
	assert.True(t, ParseDate("").IsZero())
}

func TestFormatDateRoundTrips(t *testing.T) {
	d := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "2024-03-15", FormatDate(d))
	assert.Equal(t, d, ParseDate(FormatDate(d)))
}

func TestDaysBetween(t *testing.T) {
	a := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 0, DaysBetween(a, a))
	assert.Equal(t, 31, DaysBetween(a, a.AddDate(0, 1, 0)))
	assert.Equal(t, -5, DaysBetween(a, a.AddDate(0, 0, -5)))
}

func TestRoundFloat(t *testing.T) {
	assert.InDelta(t, 3.14, RoundFloat(3.14159, 2), 1e-9)
	assert.InDelta(t, 3.0, RoundFloat(3.14159, 0), 1e-9)
	assert.InDelta(t, -2.7, RoundFloat(-2.66, 1), 1e-9)
}

func TestMinFloat(t *testing.T) {
	assert.Equal(t, 1.0, MinFloat(1, 2))
	assert.Equal(t, 1.0, MinFloat(2, 1))
	assert.Equal(t, -3.0, MinFloat(-3, 0))
}

func TestGenerateETagIsStable(t *testing.T) {
	payload := map[string]string{"a": "1"}
	first, err := GenerateETag(payload)
	assert.NoError(t, err)
	second, err := GenerateETag(payload)
	assert.NoError(t, err)
	assert.Equal(t, first, second)

	other, err := GenerateETag(map[string]string{"a": "2"})
	assert.NoError(t, err)
	assert.NotEqual(t, first, other)
}
