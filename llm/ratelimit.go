package llm

import (
	"context"

	"golang.org/x/time/rate"
)

type rateLimited struct {
	next    Generator
	limiter *rate.Limiter
}

// NewRateLimited throttles calls to next to requestsPerMinute, allowing
// bursts of burst calls. A non-positive rate disables throttling.
func NewRateLimited(next Generator, requestsPerMinute, burst int) Generator {
	if requestsPerMinute <= 0 {
		return next
	}
	if burst <= 0 {
		burst = 1
	}
	limit := rate.Limit(float64(requestsPerMinute) / 60.0)
	return &rateLimited{next: next, limiter: rate.NewLimiter(limit, burst)}
}

func (r *rateLimited) Generate(ctx context.Context, systemPrompt, userPrompt string, maxTokens int) (string, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		// the wait would outlast the deadline
		return "", &UpstreamError{Body: err.Error(), Kind: ErrRateLimited}
	}
	return r.next.Generate(ctx, systemPrompt, userPrompt, maxTokens)
}
