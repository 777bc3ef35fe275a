package llm

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/sells-group/startup-analyst/internal/resilience"
)

// Resilient wraps a Client with rate limiting and bounded retry so that
// provider hiccups surface as slow calls rather than failed ones.
type Resilient struct {
	inner   Client
	limiter *rate.Limiter
	retry   resilience.RetryConfig
}

// NewResilient wraps inner. A non-positive rps disables rate limiting.
func NewResilient(inner Client, rps float64, burst int, retry resilience.RetryConfig) *Resilient {
	var limiter *rate.Limiter
	if rps > 0 {
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
	return &Resilient{inner: inner, limiter: limiter, retry: retry}
}

func (c *Resilient) Generate(ctx context.Context, prompt string) (string, error) {
	return resilience.DoVal(ctx, c.retry, func(ctx context.Context) (string, error) {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return "", err
			}
		}
		return c.inner.Generate(ctx, prompt)
	})
}
