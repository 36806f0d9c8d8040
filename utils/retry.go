package utils

import (
	"strings"
	"time"
)

var transientMarkers = []string{
	"network",
	"connection",
	"timeout",
	"fetch",
	"refused",
	"reset by peer",
	"no such host",
}

// IsTransient classifies an error as network-class by message. Only these
// errors are worth retrying; anything else fails immediately.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range transientMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// WithRetry runs fn up to attempts times, sleeping baseDelay·2^n between
// tries. Non-transient errors are returned straight away. The attempt cap is
// the only circuit breaker; exhaustion returns the last error rather than
// looping forever.
func WithRetry(attempts int, baseDelay time.Duration, fn func() error) error {
	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if !IsTransient(err) {
			return err
		}
		if attempt < attempts-1 {
			time.Sleep(baseDelay << uint(attempt))
		}
	}
	return err
}
