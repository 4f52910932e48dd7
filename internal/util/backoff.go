package util

import (
	"math"
	"time"
)

// ExponentialBackoff computes baseDelay * 2^(attempt-1) capped at maxDelay,
// optionally spread by jitterPercent either way
func ExponentialBackoff(attempt int, baseDelay, maxDelay time.Duration, jitterPercent float64) time.Duration {
	if attempt <= 0 {
		return 0
	}

	backoff := float64(baseDelay) * math.Pow(2, float64(attempt-1))
	if backoff > float64(maxDelay) {
		backoff = float64(maxDelay)
	}

	if jitterPercent > 0 {
		// time based pseudo-random is plenty for spreading polls
		pseudoRandom := float64(time.Now().UnixNano()%1000) / 1000.0
		backoff += backoff * jitterPercent * (pseudoRandom - 0.5)
	}

	return time.Duration(backoff)
}

// PollDelay is the wait before the next status check. Healthy backends are
// checked every interval; after consecutive failures the check starts at
// retryBase and doubles back up to interval, so a restarted server is noticed
// quickly.
func PollDelay(consecutiveFailures int, retryBase, interval time.Duration) time.Duration {
	if consecutiveFailures <= 0 || retryBase >= interval {
		return interval
	}
	return ExponentialBackoff(consecutiveFailures, retryBase, interval, 0)
}
