package store

import (
	"context"
	"time"

	"github.com/sony/gobreaker"
)

// BreakerConfig tunes the circuit breaker wrapped around a remote backend.
type BreakerConfig struct {
	Enabled         bool    `yaml:"enabled"`
	MaxRequests     uint32  `yaml:"max_requests"`
	IntervalSeconds int     `yaml:"interval_seconds"`
	TimeoutSeconds  int     `yaml:"timeout_seconds"`
	MinRequests     uint32  `yaml:"min_requests"`
	FailureRate     float64 `yaml:"failure_rate"`
}

// DefaultBreakerConfig trips after a 60% failure rate over at least 5 calls
// and probes again after 30 seconds.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		Enabled:         true,
		MaxRequests:     3,
		IntervalSeconds: 60,
		TimeoutSeconds:  30,
		MinRequests:     5,
		FailureRate:     0.6,
	}
}

func (c BreakerConfig) Interval() time.Duration {
	return time.Duration(c.IntervalSeconds) * time.Second
}

func (c BreakerConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Breaker wraps a KV backend with a circuit breaker so a dead Redis or
// Postgres fails fast instead of stalling every request on timeouts. Reads
// that fail open are surfaced as errors; the journal layer above converts
// them to its documented defaults.
type Breaker struct {
	inner KV
	cb    *gobreaker.CircuitBreaker
}

// WithBreaker wraps kv. A disabled config returns kv unchanged.
func WithBreaker(kv KV, cfg BreakerConfig) KV {
	if !cfg.Enabled {
		return kv
	}
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "store",
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval(),
		Timeout:     cfg.Timeout(),
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.FailureRate
		},
	})
	return &Breaker{inner: kv, cb: cb}
}

func (b *Breaker) Get(ctx context.Context, key string) (string, bool, error) {
	type result struct {
		value string
		found bool
	}
	out, err := b.cb.Execute(func() (interface{}, error) {
		v, ok, err := b.inner.Get(ctx, key)
		return result{v, ok}, err
	})
	if err != nil {
		return "", false, err
	}
	r := out.(result)
	return r.value, r.found, nil
}

func (b *Breaker) Set(ctx context.Context, key, value string) error {
	_, err := b.cb.Execute(func() (interface{}, error) {
		return nil, b.inner.Set(ctx, key, value)
	})
	return err
}

func (b *Breaker) Delete(ctx context.Context, key string) error {
	_, err := b.cb.Execute(func() (interface{}, error) {
		return nil, b.inner.Delete(ctx, key)
	})
	return err
}

func (b *Breaker) List(ctx context.Context, prefix string) ([]string, error) {
	out, err := b.cb.Execute(func() (interface{}, error) {
		return b.inner.List(ctx, prefix)
	})
	if err != nil {
		return nil, err
	}
	return out.([]string), nil
}

// Ping bypasses the breaker so health checks can observe recovery directly.
func (b *Breaker) Ping(ctx context.Context) error {
	return b.inner.Ping(ctx)
}

func (b *Breaker) Close() error {
	return b.inner.Close()
}

// State exposes the breaker state for the health endpoint.
func (b *Breaker) State() gobreaker.State {
	return b.cb.State()
}

var _ KV = (*Breaker)(nil)
