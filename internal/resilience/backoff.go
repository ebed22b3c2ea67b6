// Copyright 2024 Designetica Project
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package resilience provides the retry, backoff and error taxonomy used by
// the generation client and the HTTP handlers.
package resilience

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"
)

// BackoffConfig holds configuration for exponential backoff retry logic
type BackoffConfig struct {
	BaseDelay   time.Duration
	MaxRetries  int
	MaxDelay    time.Duration
	Multiplier  float64
	MaxJitter   time.Duration
	RetryOnFunc func(error) bool

	// OnRetry runs before every retry attempt, after the delay has elapsed.
	OnRetry func(ctx context.Context, retry int, lastErr error)
	// Sleep and Jitter are replaceable so tests can observe delays without waiting.
	Sleep  func(ctx context.Context, d time.Duration) error
	Jitter func(max time.Duration) time.Duration
}

const (
	// DefaultMaxRetries is the default maximum number of retry attempts
	DefaultMaxRetries = 2
	// DefaultBaseDelay is the delay before the first retry, without jitter
	DefaultBaseDelay = time.Second
	// DefaultMaxDelay caps every computed delay
	DefaultMaxDelay = 5 * time.Second
	// DefaultMultiplier is the default exponential backoff multiplier
	DefaultMultiplier = 2.0
	// DefaultMaxJitter is the exclusive upper bound of the random jitter
	DefaultMaxJitter = time.Second
)

// DefaultBackoffConfig returns the generation retry policy:
// delay = min(1s * 2^retry + jitter[0,1s), 5s), two retries
func DefaultBackoffConfig() BackoffConfig {
	return BackoffConfig{
		BaseDelay:   DefaultBaseDelay,
		MaxRetries:  DefaultMaxRetries,
		MaxDelay:    DefaultMaxDelay,
		Multiplier:  DefaultMultiplier,
		MaxJitter:   DefaultMaxJitter,
		RetryOnFunc: DefaultRetryOnFunc,
		Sleep:       SleepContext,
		Jitter:      RandomJitter,
	}
}

// DefaultRetryOnFunc determines if an error should trigger a retry
func DefaultRetryOnFunc(err error) bool {
	if err == nil {
		return false
	}

	// Don't retry on cancellation
	if errors.Is(err, context.Canceled) {
		return false
	}

	var serviceErr *ServiceError
	if AsServiceError(err, &serviceErr) && serviceErr.Code == ErrorCodeValidationFailed {
		return false
	}

	return true
}

// SleepContext waits for d or until ctx is done
func SleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// RandomJitter returns a uniformly random duration in [0, max)
func RandomJitter(max time.Duration) time.Duration {
	if max <= 0 {
		return 0
	}
	return time.Duration(rand.Int64N(int64(max)))
}

// Delay computes the wait before retry number retry (zero based) for a given jitter
func (c BackoffConfig) Delay(retry int, jitter time.Duration) time.Duration {
	delay := time.Duration(float64(c.BaseDelay)*math.Pow(c.Multiplier, float64(retry))) + jitter
	if c.MaxDelay > 0 && delay > c.MaxDelay {
		delay = c.MaxDelay
	}
	return delay
}

// RetryFunc is a function that can be retried with exponential backoff
type RetryFunc func(ctx context.Context) error

// WithExponentialBackoff executes fn at most MaxRetries+1 times
func WithExponentialBackoff(ctx context.Context, logger *zap.Logger, config BackoffConfig, fn RetryFunc) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.RetryOnFunc == nil {
		config.RetryOnFunc = DefaultRetryOnFunc
	}
	if config.Sleep == nil {
		config.Sleep = SleepContext
	}
	if config.Jitter == nil {
		config.Jitter = RandomJitter
	}

	var lastErr error

	for attempt := 0; attempt <= config.MaxRetries; attempt++ {
		if attempt > 0 && config.OnRetry != nil {
			config.OnRetry(ctx, attempt, lastErr)
		}

		err := fn(ctx)
		if err == nil {
			if attempt > 0 {
				logger.Info("Operation succeeded after retry",
					zap.Int("attempt", attempt+1),
					zap.Int("total_attempts", config.MaxRetries+1))
			}
			return nil
		}

		lastErr = err

		if !config.RetryOnFunc(err) {
			logger.Debug("Error is not retryable, stopping attempts",
				zap.Error(err),
				zap.Int("attempt", attempt+1))
			return err
		}

		// Don't sleep on the last attempt
		if attempt == config.MaxRetries {
			break
		}

		delay := config.Delay(attempt, config.Jitter(config.MaxJitter))

		logger.Debug("Retrying after delay",
			zap.Error(err),
			zap.Int("attempt", attempt+1),
			zap.Duration("delay", delay),
			zap.Int("max_retries", config.MaxRetries))

		if err := config.Sleep(ctx, delay); err != nil {
			return err
		}
	}

	logger.Warn("All retry attempts exhausted",
		zap.Error(lastErr),
		zap.Int("total_attempts", config.MaxRetries+1))

	return fmt.Errorf("operation failed after %d attempts: %w", config.MaxRetries+1, lastErr)
}
