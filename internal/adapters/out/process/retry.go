package process

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/charmbracelet/log"
)

// RetryPolicy bounds how often a failing command is retried.
type RetryPolicy struct {
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultRetryPolicy matches the retry behavior pipelines expect from registry tools.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:      3,
		InitialInterval: 2 * time.Second,
		MaxInterval:     30 * time.Second,
	}
}

// RetryingRunner retries failed commands with exponential backoff.
type RetryingRunner struct {
	next   Runner
	policy RetryPolicy
	log    *log.Logger
}

// NewRetryingRunner wraps next with policy.
func NewRetryingRunner(next Runner, policy RetryPolicy, logger *log.Logger) *RetryingRunner {
	return &RetryingRunner{
		next:   next,
		policy: policy,
		log:    logger.WithPrefix("process"),
	}
}

// Run executes cmd, retrying until it succeeds, the policy is exhausted or
// ctx is done. A missing executable is not retried.
func (r *RetryingRunner) Run(ctx context.Context, cmd Command) (string, error) {
	attempts := 0
	op := func() (string, error) {
		attempts++
		out, err := r.next.Run(ctx, cmd)
		if err != nil && errors.Is(err, exec.ErrNotFound) {
			return "", backoff.Permanent(err)
		}
		return out, err
	}

	notify := func(err error, wait time.Duration) {
		r.log.Warn("command failed, retrying", "cmd", cmd.String(), "attempt", attempts, "wait", wait, "err", err)
	}

	out, err := backoff.RetryNotifyWithData(op, r.backOff(ctx), notify)
	if err != nil {
		return out, fmt.Errorf("%s failed after %d attempt(s): %w", cmd.Name, attempts, err)
	}
	return out, nil
}

func (r *RetryingRunner) backOff(ctx context.Context) backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	if r.policy.InitialInterval > 0 {
		exp.InitialInterval = r.policy.InitialInterval
	}
	if r.policy.MaxInterval > 0 {
		exp.MaxInterval = r.policy.MaxInterval
	}
	exp.MaxElapsedTime = 0

	retries := r.policy.MaxRetries
	if retries < 0 {
		retries = 0
	}
	return backoff.WithContext(backoff.WithMaxRetries(exp, uint64(retries)), ctx)
}
