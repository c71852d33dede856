package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatClock(t *testing.T) {
	ts := time.Date(2025, 10, 13, 3, 5, 0, 0, time.UTC)
	assert.Equal(t, "09:05", FormatClock(&ts, DhakaTZ))
	assert.Equal(t, "03:05", FormatClock(&ts, time.UTC))
	assert.Equal(t, "-", FormatClock(nil, DhakaTZ))
}
