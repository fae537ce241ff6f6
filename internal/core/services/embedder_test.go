package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/chainaudit/internal/core/domain"
)

func newTestEmbedder(svc *mockEmbeddingService) (*ResilientEmbedder, *recordingSleep) {
	rec := &recordingSleep{}
	return NewResilientEmbedder(svc).WithSleep(rec.sleep), rec
}

func TestResilientEmbedder_Success(t *testing.T) {
	svc := newMockEmbedding()
	e, rec := newTestEmbedder(svc)

	vec, degraded := e.Embed(context.Background(), "chunk")

	assert.False(t, degraded)
	assert.Equal(t, svc.embedding, vec)
	assert.Equal(t, 1, svc.callCount())
	assert.Empty(t, rec.delays)
}

func TestResilientEmbedder_TimeoutsBackOffThenDegrade(t *testing.T) {
	svc := newMockEmbedding()
	svc.embedErr = errTimeout
	e, rec := newTestEmbedder(svc)

	vec, degraded := e.Embed(context.Background(), "chunk")

	assert.True(t, degraded)
	assert.Len(t, vec, domain.EmbeddingDimensions)
	assert.True(t, domain.IsZeroVector(vec))
	assert.Equal(t, DefaultEmbedAttempts, svc.callCount())
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, rec.delays)
}

func TestResilientEmbedder_RecoversAfterTimeout(t *testing.T) {
	svc := newMockEmbedding()
	svc.script = []embedResponse{{err: domain.ErrEmbeddingTimeout}}
	e, rec := newTestEmbedder(svc)

	vec, degraded := e.Embed(context.Background(), "chunk")

	assert.False(t, degraded)
	assert.Equal(t, svc.embedding, vec)
	assert.Equal(t, 2, svc.callCount())
	assert.Equal(t, []time.Duration{time.Second}, rec.delays)
}

func TestResilientEmbedder_OtherErrorsRetryWithoutBackoff(t *testing.T) {
	svc := newMockEmbedding()
	svc.embedErr = errors.New("invalid api key")
	e, rec := newTestEmbedder(svc)

	vec, degraded := e.Embed(context.Background(), "chunk")

	assert.True(t, degraded)
	assert.True(t, domain.IsZeroVector(vec))
	assert.Equal(t, DefaultEmbedAttempts, svc.callCount())
	assert.Empty(t, rec.delays)
}

func TestResilientEmbedder_WrongDimensionsDegrade(t *testing.T) {
	svc := newMockEmbedding()
	svc.embedding = []float32{1, 2, 3}
	e, _ := newTestEmbedder(svc)

	vec, degraded := e.Embed(context.Background(), "chunk")

	assert.True(t, degraded)
	assert.Len(t, vec, domain.EmbeddingDimensions)
	assert.Equal(t, 1, svc.callCount())
}

func TestResilientEmbedder_NilService(t *testing.T) {
	vec, degraded := NewResilientEmbedder(nil).Embed(context.Background(), "chunk")

	assert.True(t, degraded)
	assert.Len(t, vec, domain.EmbeddingDimensions)
}

func TestResilientEmbedder_CancelledDuringBackoff(t *testing.T) {
	svc := newMockEmbedding()
	svc.embedErr = errTimeout
	e := NewResilientEmbedder(svc).WithSleep(func(ctx context.Context, _ time.Duration) error {
		return context.Canceled
	})

	vec, degraded := e.Embed(context.Background(), "chunk")

	assert.True(t, degraded)
	assert.Len(t, vec, domain.EmbeddingDimensions)
	assert.Equal(t, 1, svc.callCount())
}

func TestSleepContext(t *testing.T) {
	require.NoError(t, sleepContext(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sleepContext(ctx, time.Hour), context.Canceled)
}

type timeoutNetError struct{}

func (timeoutNetError) Error() string { return "i/o" }
func (timeoutNetError) Timeout() bool { return true }
func (timeoutNetError) Temporary() bool { return true }

func TestIsTimeout(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"sentinel", fmt.Errorf("gemini: %w", domain.ErrEmbeddingTimeout), true},
		{"deadline", fmt.Errorf("call: %w", context.DeadlineExceeded), true},
		{"net timeout", timeoutNetError{}, true},
		{"gateway text", errors.New("upstream returned 504"), true},
		{"deadline text", errors.New("rpc error: Deadline Exceeded"), true},
		{"timeout text", errors.New("Client.Timeout exceeded while awaiting headers"), true},
		{"auth", errors.New("401 unauthorized"), false},
		{"cancelled", context.Canceled, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTimeout(tt.err))
		})
	}
}
