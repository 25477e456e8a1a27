package process

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"
)

// RateLimitedRunner spaces out command starts so a large batch does not
// trip registry throttling.
type RateLimitedRunner struct {
	next    Runner
	limiter *rate.Limiter
	log     *log.Logger
}

// NewRateLimitedRunner allows rps command starts per second with the given
// burst. A non-positive rps disables the limit.
func NewRateLimitedRunner(next Runner, rps float64, burst int, logger *log.Logger) *RateLimitedRunner {
	limit := rate.Inf
	if rps > 0 {
		limit = rate.Limit(rps)
	}
	if burst < 1 {
		burst = 1
	}

	return &RateLimitedRunner{
		next:    next,
		limiter: rate.NewLimiter(limit, burst),
		log:     logger.WithPrefix("process"),
	}
}

// Run waits for a slot, then runs cmd.
func (r *RateLimitedRunner) Run(ctx context.Context, cmd Command) (string, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait for %s: %w", cmd.Name, err)
	}
	return r.next.Run(ctx, cmd)
}
