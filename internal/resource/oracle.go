// Why this file: ./internal/resource/oracle.go
// ResourceOracle answers "can the router commit to this strategy right now".
// Any rate-limiting or circuit-breaker state lives here, not in the router,
// which stays stateless across requests per the fabric's concurrency model.
// Rate limiting is a token bucket (golang.org/x/time/rate, carried from the
// Replicant-Partners-Chrysalis go-services stack); breaker state is grounded
// on gomind's resilience.CircuitBreaker idiom, generalized to a simple
// failure-count trip rather than gomind's full half-open probing.
package resource

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/Rivega42/hybrid-rag-system/models"
)

// Oracle answers availability and reserves/releases capacity per strategy.
type Oracle struct {
	mu       sync.Mutex
	limiters map[models.Strategy]*rate.Limiter
	breakers map[models.Strategy]*breaker
}

type breaker struct {
	mu        sync.Mutex
	failures  int
	threshold int
	openUntil time.Time
	cooldown  time.Duration
}

// Config configures per-strategy capacity and breaker sensitivity.
type Config struct {
	RequestsPerSecond map[models.Strategy]float64
	Burst             map[models.Strategy]int
	BreakerThreshold  int
	BreakerCooldown   time.Duration
}

// New builds an Oracle. Strategies absent from cfg get an unbounded limiter
// and a breaker with the default threshold/cooldown.
func New(cfg Config) *Oracle {
	if cfg.BreakerThreshold <= 0 {
		cfg.BreakerThreshold = 5
	}
	if cfg.BreakerCooldown <= 0 {
		cfg.BreakerCooldown = 30 * time.Second
	}

	o := &Oracle{
		limiters: make(map[models.Strategy]*rate.Limiter),
		breakers: make(map[models.Strategy]*breaker),
	}

	for _, s := range []models.Strategy{models.StrategyClassic, models.StrategyAgentic, models.StrategyHybrid, models.StrategyCache} {
		rps := cfg.RequestsPerSecond[s]
		if rps <= 0 {
			rps = 1000 // effectively unbounded default
		}
		burst := cfg.Burst[s]
		if burst <= 0 {
			burst = int(rps)
			if burst < 1 {
				burst = 1
			}
		}
		o.limiters[s] = rate.NewLimiter(rate.Limit(rps), burst)
		o.breakers[s] = &breaker{threshold: cfg.BreakerThreshold, cooldown: cfg.BreakerCooldown}
	}

	return o
}

// Available reports whether strategy s can be committed to right now: its
// breaker must be closed and its limiter must have a token available.
func (o *Oracle) Available(ctx context.Context, s models.Strategy) bool {
	o.mu.Lock()
	limiter, okL := o.limiters[s]
	b, okB := o.breakers[s]
	o.mu.Unlock()

	if !okL || !okB {
		return true
	}

	if b.isOpen() {
		return false
	}

	return limiter.Allow()
}

// Reserve reserves capacity for s and returns a release func recording the
// outcome against the breaker. Call release(err) when the strategy's
// execution finishes; a non-nil err counts toward the breaker's trip count.
func (o *Oracle) Reserve(ctx context.Context, s models.Strategy) (release func(err error), err error) {
	if !o.Available(ctx, s) {
		return func(error) {}, models.NewFabricError(models.ErrResourceUnavailable, string(s)+" unavailable", nil)
	}

	o.mu.Lock()
	b := o.breakers[s]
	o.mu.Unlock()

	return func(execErr error) {
		if execErr != nil {
			b.recordFailure()
		} else {
			b.recordSuccess()
		}
	}, nil
}

func (b *breaker) isOpen() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failures < b.threshold {
		return false
	}
	if time.Now().After(b.openUntil) {
		b.failures = 0
		return false
	}
	return true
}

func (b *breaker) recordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures++
	if b.failures >= b.threshold {
		b.openUntil = time.Now().Add(b.cooldown)
	}
}

func (b *breaker) recordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failures > 0 {
		b.failures--
	}
}
