package linear

import (
	"context"
	"math"
	"math/rand/v2"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Retry defaults.
const (
	DefaultMaxRetries = 3
	DefaultBaseDelay  = 100 * time.Millisecond
	DefaultMaxDelay   = 10 * time.Second
	DefaultJitter     = 0.2
)

// RetryPolicy configures Retry. The zero value never retries.
type RetryPolicy struct {
	// MaxRetries is the number of attempts allowed after the first.
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
	// Jitter scales each delay by a random factor in [1, 1+Jitter).
	Jitter float64

	// Notify is called before each sleep with the error that caused it,
	// the attempt that failed, and the delay about to be slept.
	Notify func(err error, attempt int, delay time.Duration)

	// Timer drives the sleeps; nil uses a real timer.
	Timer backoff.Timer

	random func() float64
}

// DefaultRetryPolicy returns 3 retries with 100ms..10s exponential backoff.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries: DefaultMaxRetries,
		BaseDelay:  DefaultBaseDelay,
		MaxDelay:   DefaultMaxDelay,
		Jitter:     DefaultJitter,
	}
}

// maxDelay is the delay cap. A non-positive MaxDelay means DefaultMaxDelay.
func (p RetryPolicy) maxDelay() time.Duration {
	if p.MaxDelay <= 0 {
		return DefaultMaxDelay
	}
	return p.MaxDelay
}

// Delay returns the unclamped-by-history delay before retry n (1-based),
// never more than the cap.
func (p RetryPolicy) Delay(n int, u float64) time.Duration {
	if n < 1 {
		n = 1
	}
	limit := p.maxDelay()
	d := float64(p.BaseDelay) * math.Pow(2, float64(n-1)) * (1 + p.Jitter*u)
	if d > float64(limit) || math.IsNaN(d) {
		return limit
	}
	return time.Duration(d)
}

// policyBackOff is a backoff.BackOff whose delays never decrease. A rate
// limit hint from the last error raises the next delay, up to MaxDelay.
type policyBackOff struct {
	policy RetryPolicy
	n      int
	prev   time.Duration
	hint   time.Duration
}

func (b *policyBackOff) NextBackOff() time.Duration {
	b.n++
	u := 0.0
	if b.policy.Jitter > 0 {
		if b.policy.random != nil {
			u = b.policy.random()
		} else {
			u = rand.Float64()
		}
	}
	d := b.policy.Delay(b.n, u)
	if d < b.prev {
		d = b.prev
	}
	if b.hint > d {
		d = min(b.hint, b.policy.maxDelay())
	}
	b.hint = 0
	b.prev = d
	return d
}

func (b *policyBackOff) Reset() {
	b.n = 0
	b.prev = 0
	b.hint = 0
}

// Retry runs op until it succeeds, fails with a non-retryable error, or
// exhausts p.MaxRetries. On exhaustion the last error op returned is
// surfaced unchanged. Cancelling ctx while sleeping stops immediately with a
// Cancelled error.
func Retry[T any](ctx context.Context, p RetryPolicy, op func(ctx context.Context, attempt int) (T, error)) (T, error) {
	retries := p.MaxRetries
	if retries < 0 {
		retries = 0
	}
	bo := &policyBackOff{policy: p}

	attempt := 0
	operation := func() (T, error) {
		attempt++
		v, err := op(ctx, attempt)
		if err == nil {
			return v, nil
		}
		if !IsRetryable(err) {
			return v, backoff.Permanent(err)
		}
		if apiErr, ok := AsAPIError(err); ok && apiErr.Kind == KindRateLimited {
			bo.hint = time.Duration(apiErr.ResetSeconds) * time.Second
		}
		return v, err
	}

	var notify backoff.Notify
	if p.Notify != nil {
		notify = func(err error, d time.Duration) {
			p.Notify(err, attempt, d)
		}
	}

	b := backoff.WithContext(backoff.WithMaxRetries(bo, uint64(retries)), ctx)
	v, err := backoff.RetryNotifyWithTimerAndData(operation, b, notify, p.Timer)
	if err == nil {
		return v, nil
	}
	if _, ok := AsAPIError(err); !ok && ctx.Err() != nil {
		return v, NewCancelled(ctx.Err())
	}
	return v, err
}
