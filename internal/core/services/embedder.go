package services

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"

	"github.com/custodia-labs/chainaudit/internal/core/domain"
	"github.com/custodia-labs/chainaudit/internal/core/ports/driven"
	"github.com/custodia-labs/chainaudit/internal/logger"
)

// Retry policy for a single chunk embedding.
const (
	DefaultEmbedAttempts  = 3
	DefaultInitialBackoff = time.Second
)

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// ResilientEmbedder embeds one text at a time and never fails: after the
// retry budget is spent it substitutes the zero vector. Timeout-class
// errors are retried with doubling backoff; other errors are retried
// immediately.
type ResilientEmbedder struct {
	service  driven.EmbeddingService
	attempts int
	backoff  time.Duration
	dims     int
	sleep    SleepFunc
}

// NewResilientEmbedder wraps service with the default retry policy.
// service may be nil, in which case every text degrades to the zero vector.
func NewResilientEmbedder(service driven.EmbeddingService) *ResilientEmbedder {
	return &ResilientEmbedder{
		service:  service,
		attempts: DefaultEmbedAttempts,
		backoff:  DefaultInitialBackoff,
		dims:     domain.EmbeddingDimensions,
		sleep:    sleepContext,
	}
}

// WithSleep replaces the backoff wait. Used by tests.
func (e *ResilientEmbedder) WithSleep(fn SleepFunc) *ResilientEmbedder {
	e.sleep = fn
	return e
}

// Dimensions returns the length of every vector Embed returns.
func (e *ResilientEmbedder) Dimensions() int {
	return e.dims
}

// Embed returns a vector of exactly Dimensions() floats for text.
// degraded reports whether the zero vector was substituted.
func (e *ResilientEmbedder) Embed(ctx context.Context, text string) (vec []float32, degraded bool) {
	if e.service == nil {
		return domain.ZeroVector(e.dims), true
	}

	delay := e.backoff
	var lastErr error
	for attempt := 1; attempt <= e.attempts; attempt++ {
		v, err := e.service.Embed(ctx, text)
		if err == nil {
			if len(v) == e.dims {
				return v, false
			}
			logger.Warn("embedding has %d dimensions, want %d; using zero vector", len(v), e.dims)
			return domain.ZeroVector(e.dims), true
		}

		lastErr = err
		if attempt == e.attempts {
			break
		}
		if IsTimeout(err) {
			logger.Debug("embedding attempt %d/%d timed out, retrying in %s", attempt, e.attempts, delay)
			if e.sleep(ctx, delay) != nil {
				break
			}
			delay *= 2
			continue
		}
		logger.Debug("embedding attempt %d/%d failed: %v", attempt, e.attempts, err)
	}

	logger.Warn("embedding degraded to zero vector: %v", lastErr)
	return domain.ZeroVector(e.dims), true
}

// IsTimeout reports whether err is a timeout-class failure worth backing
// off for: an adapter-reported timeout, a deadline, a network timeout or
// a gateway timeout surfaced only in the error text.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, domain.ErrEmbeddingTimeout) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "504") ||
		strings.Contains(msg, "deadline exceeded") ||
		strings.Contains(msg, "timeout")
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
