package model

import (
	"time"
)

// RetryConfig defines a bounded retry policy
type RetryConfig struct {
	MaxRetries    int           `json:"max_retries"`
	InitialDelay  time.Duration `json:"initial_delay"`
	MaxDelay      time.Duration `json:"max_delay"`
	BackoffFactor float64       `json:"backoff_factor"`
}

// DefaultLockRetry is the policy used while waiting for a locked log file
func DefaultLockRetry() RetryConfig {
	return RetryConfig{
		MaxRetries:    5,
		InitialDelay:  2 * time.Second,
		MaxDelay:      2 * time.Second,
		BackoffFactor: 1,
	}
}

// Delay returns how long to wait before the given attempt (0-based)
func (c RetryConfig) Delay(attempt int) time.Duration {
	delay := c.InitialDelay
	factor := c.BackoffFactor
	if factor < 1 {
		factor = 1
	}
	for i := 0; i < attempt; i++ {
		delay = time.Duration(float64(delay) * factor)
		if c.MaxDelay > 0 && delay > c.MaxDelay {
			return c.MaxDelay
		}
	}
	return delay
}
