package circuitbreaker

import (
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

// Config tunes a breaker. Zero values fall back to the defaults below.
type Config struct {
	Name                string
	MaxHalfOpenRequests uint32
	Interval            time.Duration
	OpenTimeout         time.Duration
	ConsecutiveFailures uint32
	// IsSuccessful classifies errors that should not count as failures,
	// e.g. a "not found" answer from a healthy upstream.
	IsSuccessful func(err error) bool
}

const (
	defaultMaxHalfOpenRequests = 1
	defaultInterval            = 60 * time.Second
	defaultOpenTimeout         = 30 * time.Second
	defaultConsecutiveFailures = 5
)

// New creates a breaker that opens after ConsecutiveFailures failed calls
// and logs every state change.
func New[T any](cfg Config, log *zap.Logger) *gobreaker.CircuitBreaker[T] {
	if cfg.MaxHalfOpenRequests == 0 {
		cfg.MaxHalfOpenRequests = defaultMaxHalfOpenRequests
	}
	if cfg.Interval == 0 {
		cfg.Interval = defaultInterval
	}
	if cfg.OpenTimeout == 0 {
		cfg.OpenTimeout = defaultOpenTimeout
	}
	if cfg.ConsecutiveFailures == 0 {
		cfg.ConsecutiveFailures = defaultConsecutiveFailures
	}
	if log == nil {
		log = zap.NewNop()
	}

	threshold := cfg.ConsecutiveFailures
	return gobreaker.NewCircuitBreaker[T](gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxHalfOpenRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
		IsSuccessful: cfg.IsSuccessful,
	})
}
