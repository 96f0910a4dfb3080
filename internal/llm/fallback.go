// Why this file: ./internal/llm/fallback.go
// FallbackCompleter wraps an ordered list of Completers with a per-provider
// tri-state circuit breaker, trying each in turn until one succeeds.
// Grounded on gomind's resilience.CircuitBreaker state machine
// (closed/open/half-open) and on the teacher's FallbackHandler map of
// per-provider breakers (internal/llm/token_tracker.go), generalized from
// gomind's sliding error-rate window to a simpler consecutive-failure trip
// since the fabric only needs "stop trying a dead provider", not SRE-grade
// windowed accounting.
package llm

import (
	"context"
	"fmt"
	"sync"
	"time"
)

type circuitState int

const (
	stateClosed circuitState = iota
	stateOpen
	stateHalfOpen
)

type providerBreaker struct {
	mu               sync.Mutex
	state            circuitState
	consecutiveFails int
	threshold        int
	sleepWindow      time.Duration
	openedAt         time.Time
}

func newProviderBreaker(threshold int, sleepWindow time.Duration) *providerBreaker {
	if threshold <= 0 {
		threshold = 3
	}
	if sleepWindow <= 0 {
		sleepWindow = 30 * time.Second
	}
	return &providerBreaker{threshold: threshold, sleepWindow: sleepWindow}
}

func (b *providerBreaker) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case stateOpen:
		if time.Since(b.openedAt) >= b.sleepWindow {
			b.state = stateHalfOpen
			return true
		}
		return false
	default:
		return true
	}
}

func (b *providerBreaker) recordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.consecutiveFails = 0
	b.state = stateClosed
}

func (b *providerBreaker) recordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.consecutiveFails++
	if b.state == stateHalfOpen || b.consecutiveFails >= b.threshold {
		b.state = stateOpen
		b.openedAt = time.Now()
	}
}

// namedCompleter pairs a Completer with a label used in errors/metrics.
type namedCompleter struct {
	name      string
	completer Completer
}

// FallbackCompleter tries providers in a fixed order, skipping any whose
// breaker is open, and returns the first success.
type FallbackCompleter struct {
	providers []namedCompleter
	breakers  map[string]*providerBreaker
}

// NewFallbackCompleter builds a FallbackCompleter. providers is tried in
// order; name collisions are not allowed since they key the breaker map.
func NewFallbackCompleter(providers map[string]Completer, order []string, breakerThreshold int, sleepWindow time.Duration) *FallbackCompleter {
	f := &FallbackCompleter{breakers: make(map[string]*providerBreaker)}
	for _, name := range order {
		completer, ok := providers[name]
		if !ok {
			continue
		}
		f.providers = append(f.providers, namedCompleter{name: name, completer: completer})
		f.breakers[name] = newProviderBreaker(breakerThreshold, sleepWindow)
	}
	return f
}

// Complete tries each provider in order, returning the first success. If
// every provider is either breaker-open or fails, the last error is
// returned.
func (f *FallbackCompleter) Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	var lastErr error

	for _, p := range f.providers {
		breaker := f.breakers[p.name]
		if !breaker.allow() {
			lastErr = fmt.Errorf("provider %s: circuit open", p.name)
			continue
		}

		resp, err := p.completer.Complete(ctx, req)
		if err != nil {
			breaker.recordFailure()
			lastErr = fmt.Errorf("provider %s: %w", p.name, err)
			continue
		}

		breaker.recordSuccess()
		return resp, nil
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("no completion providers configured")
	}
	return CompletionResponse{}, lastErr
}
