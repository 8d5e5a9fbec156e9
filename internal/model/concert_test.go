package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConcertStarted(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	assert.True(t, Concert{Date: now.Add(-time.Second)}.Started(now))
	assert.False(t, Concert{Date: now.Add(time.Second)}.Started(now))
	// The exact start instant still counts as not started.
	assert.False(t, Concert{Date: now}.Started(now))
}
