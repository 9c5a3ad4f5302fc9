package crawl

import (
	"crypto/rand"
	"math"
	"math/big"
	"time"
)

// BackoffPolicy controls how often a detail page is refetched when its
// structured content is missing or unparseable.
type BackoffPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// DefaultBackoff builds a policy with sane defaults.
func DefaultBackoff() BackoffPolicy {
	return BackoffPolicy{
		MaxAttempts: 3,
		BaseDelay:   500 * time.Millisecond,
		MaxDelay:    8 * time.Second,
	}
}

// Delay returns the jittered wait duration before the given attempt.
// Attempts are 1-based; the first attempt carries no delay.
func (p BackoffPolicy) Delay(attempt int) time.Duration {
	if attempt <= 1 {
		return 0
	}
	delay := float64(p.BaseDelay) * math.Pow(2, float64(attempt-2))
	if delay > float64(p.MaxDelay) {
		delay = float64(p.MaxDelay)
	}
	half := time.Duration(delay / 2)
	return half + randomJitter(half)
}

func randomJitter(limit time.Duration) time.Duration {
	if limit <= 0 {
		return 0
	}
	n, err := rand.Int(rand.Reader, big.NewInt(int64(limit)))
	if err != nil {
		return limit / 2
	}
	return time.Duration(n.Int64())
}
