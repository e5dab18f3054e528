package gateway

import (
	"context"

	"github.com/centsible/centsible-go/internal/infra/resilience"

	"github.com/sony/gobreaker"
)

// Policy is the opt-in request policy: retry with backoff, an optional
// circuit breaker and an optional bulkhead. The client never retries on its
// own — a domain method that wants retries attaches a Policy to its
// RequestOptions. Client errors (4xx) are never retried; see
// resilience.Retryable.
type Policy struct {
	Retry    resilience.Config
	Breaker  *gobreaker.CircuitBreaker
	Bulkhead *resilience.Bulkhead
}

// NewPolicy builds a policy with a named circuit breaker. A bulkhead is added
// when retry.MaxConcurrency is positive.
func NewPolicy(name string, retry resilience.Config) *Policy {
	p := &Policy{
		Retry:   retry,
		Breaker: resilience.NewCircuitBreaker(name),
	}
	if retry.MaxConcurrency > 0 {
		p.Bulkhead = resilience.NewBulkhead(retry.MaxConcurrency)
	}
	return p
}

func (p *Policy) execute(ctx context.Context, fn func() error) error {
	if p.Bulkhead != nil {
		if err := p.Bulkhead.Acquire(ctx); err != nil {
			return err
		}
		defer p.Bulkhead.Release()
	}

	attempt := func() error {
		return resilience.RetryWithBackoff(ctx, p.Retry, fn)
	}

	if p.Breaker == nil {
		return attempt()
	}
	_, err := p.Breaker.Execute(func() (any, error) {
		return nil, attempt()
	})
	return err
}
