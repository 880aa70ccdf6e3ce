package ratelimit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvalLimiter_Wait(t *testing.T) {
	el := NewEvalLimiter(AdapterRates{"matlab-reference": 100})

	// Should not block at high rate.
	err := el.Wait(context.Background(), "matlab-reference")
	require.NoError(t, err)
}

func TestEvalLimiter_UnknownAdapter(t *testing.T) {
	el := NewEvalLimiter(DefaultAdapterRates())

	// Unknown adapter should pass through.
	err := el.Wait(context.Background(), "unknown-adapter")
	assert.NoError(t, err)
}

func TestEvalLimiter_CancelledContext(t *testing.T) {
	// Create a very restrictive limiter.
	el := NewEvalLimiter(AdapterRates{"matlab-reference": 0.001})

	// Consume the burst.
	_ = el.Wait(context.Background(), "matlab-reference")

	// Next call with cancelled context should error.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := el.Wait(ctx, "matlab-reference")
	assert.Error(t, err)
}
