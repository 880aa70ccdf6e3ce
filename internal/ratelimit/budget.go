package ratelimit

import (
	"fmt"
	"sync"
	"time"
)

// EvalBudget tracks per-algorithm evaluation counts within time windows.
// It caps how often one algorithm's suite can be re-run against the
// licensed toolchain.
type EvalBudget struct {
	mu     sync.Mutex
	counts map[string]*windowCounter

	maxPerWindow int
	windowSize   time.Duration
	now          func() time.Time
}

type windowCounter struct {
	count     int
	windowEnd time.Time
}

// NewEvalBudget creates a budget limiter.
// maxPerWindow limits runs per (algorithm, adapter) within windowSize.
func NewEvalBudget(maxPerWindow int, windowSize time.Duration) *EvalBudget {
	return &EvalBudget{
		counts:       make(map[string]*windowCounter),
		maxPerWindow: maxPerWindow,
		windowSize:   windowSize,
		now:          time.Now,
	}
}

func budgetKey(algorithm, adapterID string) string {
	return algorithm + "|" + adapterID
}

// Check returns an error if the algorithm has exhausted its runs on the adapter.
func (b *EvalBudget) Check(algorithm, adapterID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	key := budgetKey(algorithm, adapterID)
	wc, ok := b.counts[key]
	if !ok || b.now().After(wc.windowEnd) {
		return nil // no window or expired window
	}
	if wc.count >= b.maxPerWindow {
		return fmt.Errorf("evaluation budget exceeded: algorithm %s adapter %s (%d/%d in window)",
			algorithm, adapterID, wc.count, b.maxPerWindow)
	}
	return nil
}

// Record records a suite run for the algorithm on the adapter.
func (b *EvalBudget) Record(algorithm, adapterID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	key := budgetKey(algorithm, adapterID)
	wc, ok := b.counts[key]
	if !ok || b.now().After(wc.windowEnd) {
		b.counts[key] = &windowCounter{
			count:     1,
			windowEnd: b.now().Add(b.windowSize),
		}
		return
	}
	wc.count++
}
