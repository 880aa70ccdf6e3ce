// Package ratelimit provides token-bucket rate limiters and per-algorithm
// evaluation budgets for the licensed toolchain adapters.
package ratelimit

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/time/rate"
)

// AdapterRates configures per-adapter evaluation rates (invocations per
// second). A licensed seat pool tolerates only so many concurrent runs.
type AdapterRates map[string]float64

// DefaultAdapterRates returns conservative rates for the toolchain adapters.
func DefaultAdapterRates() AdapterRates {
	return AdapterRates{
		"matlab-reference": 2,
		"candidate-binary": 20,
		"kalman-reference": 50,
	}
}

// EvalLimiter rate-limits adapter evaluations using per-adapter token buckets.
type EvalLimiter struct {
	mu       sync.RWMutex
	limiters map[string]*rate.Limiter
}

// NewEvalLimiter creates a limiter with the given per-adapter rates.
func NewEvalLimiter(rates AdapterRates) *EvalLimiter {
	limiters := make(map[string]*rate.Limiter, len(rates))
	for adapterID, r := range rates {
		burst := int(r)
		if burst < 1 {
			burst = 1
		}
		limiters[adapterID] = rate.NewLimiter(rate.Limit(r), burst)
	}
	return &EvalLimiter{limiters: limiters}
}

// Wait blocks until a token is available for the named adapter, or ctx is cancelled.
func (el *EvalLimiter) Wait(ctx context.Context, adapterID string) error {
	el.mu.RLock()
	limiter, ok := el.limiters[adapterID]
	el.mu.RUnlock()
	if !ok {
		return nil // unknown adapter = no limit
	}
	if err := limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit %s: %w", adapterID, err)
	}
	return nil
}
