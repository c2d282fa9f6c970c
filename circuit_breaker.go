package redis

import (
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/pior/redis/resp"
)

// CircuitBreaker shields a server from traffic while it is failing.
type CircuitBreaker interface {
	Execute(fn func() (resp.Value, error)) (resp.Value, error)
	State() string
}

// NewCircuitBreakerConfig returns a factory that creates one circuit
// breaker per server address, for use as Config.NewCircuitBreaker.
func NewCircuitBreakerConfig(maxRequests uint32, interval, timeout time.Duration) func(string) CircuitBreaker {
	return func(serverAddr string) CircuitBreaker {
		settings := gobreaker.Settings{
			Name:        serverAddr,
			MaxRequests: maxRequests,
			Interval:    interval,
			Timeout:     timeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
				return counts.Requests >= 3 && failureRatio >= 0.6
			},
		}
		return &breaker{cb: gobreaker.NewCircuitBreaker[resp.Value](settings)}
	}
}

type breaker struct {
	cb *gobreaker.CircuitBreaker[resp.Value]
}

func (b *breaker) Execute(fn func() (resp.Value, error)) (resp.Value, error) {
	return b.cb.Execute(fn)
}

func (b *breaker) State() string {
	return b.cb.State().String()
}
