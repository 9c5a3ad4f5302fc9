package crawl

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBackoffDelayBounds(t *testing.T) {
	t.Parallel()
	p := DefaultBackoff()

	assert.Equal(t, time.Duration(0), p.Delay(1), "first attempt is immediate")

	for attempt := 2; attempt <= 10; attempt++ {
		d := p.Delay(attempt)
		assert.Greater(t, d, time.Duration(0), "attempt %d", attempt)
		assert.LessOrEqual(t, d, p.MaxDelay, "attempt %d", attempt)
	}
}

func TestBackoffDelayGrows(t *testing.T) {
	t.Parallel()
	p := BackoffPolicy{MaxAttempts: 5, BaseDelay: 100 * time.Millisecond, MaxDelay: time.Hour}

	// Jitter ranges [half, 2*half); the floor of attempt 4 sits above the
	// ceiling of attempt 2.
	assert.GreaterOrEqual(t, p.Delay(4), 200*time.Millisecond)
	assert.Less(t, p.Delay(2), 100*time.Millisecond+1)
}
