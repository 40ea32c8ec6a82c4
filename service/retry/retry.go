package retry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"net/http"
	"time"
)

// Doer executes a single HTTP request. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// DoerFunc adapts a plain function to the Doer interface.
type DoerFunc func(req *http.Request) (*http.Response, error)

// Do calls f(req).
func (f DoerFunc) Do(req *http.Request) (*http.Response, error) {
	return f(req)
}

// Policy configures retry behavior for failed HTTP requests.
type Policy struct {
	// MinInterval is the delay before the first retry.
	MinInterval time.Duration
	// MaxInterval caps the delay between attempts.
	MaxInterval time.Duration
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries int
	// Multiplier is the factor by which the delay grows per attempt.
	Multiplier float64
	// Jitter is the randomization factor (0.0 to 1.0) applied to each delay.
	Jitter float64
	// RetryableOn reports whether a status code should trigger a retry.
	RetryableOn func(statusCode int) bool
}

// DefaultPolicy returns the retry policy used when none is configured.
func DefaultPolicy() *Policy {
	return &Policy{
		MinInterval: 500 * time.Millisecond,
		MaxInterval: time.Second,
		MaxRetries:  3,
		Multiplier:  2.0,
		Jitter:      0.2,
		RetryableOn: IsTransientStatus,
	}
}

// IsTransientStatus reports whether the status is a transient condition:
// 408, 429, or any 5xx server error.
func IsTransientStatus(statusCode int) bool {
	switch {
	case statusCode == http.StatusRequestTimeout,
		statusCode == http.StatusTooManyRequests:
		return true
	default:
		return statusCode >= 500 && statusCode <= 599
	}
}

// Validate checks the policy bounds.
func (p *Policy) Validate() error {
	var errs []error
	if p.MaxRetries < 0 {
		errs = append(errs, fmt.Errorf("max retries must not be negative, got %d", p.MaxRetries))
	}
	if p.MinInterval <= 0 {
		errs = append(errs, fmt.Errorf("min retry interval must be positive, got %v", p.MinInterval))
	}
	if p.MaxInterval < p.MinInterval {
		errs = append(errs, fmt.Errorf("max retry interval (%v) cannot be less than min retry interval (%v)",
			p.MaxInterval, p.MinInterval))
	}
	if p.Jitter < 0 || p.Jitter > 1 {
		errs = append(errs, fmt.Errorf("jitter must be between 0 and 1, got %v", p.Jitter))
	}
	return errors.Join(errs...)
}

// ShouldRetry reports whether a response with the given status should be
// retried after the given zero-based attempt.
func (p *Policy) ShouldRetry(attempt int, statusCode int) bool {
	if attempt >= p.MaxRetries {
		return false
	}
	if p.RetryableOn == nil {
		return IsTransientStatus(statusCode)
	}
	return p.RetryableOn(statusCode)
}

// Delay calculates the wait before retry number attempt (zero-based). The
// result always lies within [MinInterval, MaxInterval].
func (p *Policy) Delay(attempt int) time.Duration {
	multiplier := p.Multiplier
	if multiplier < 1 {
		multiplier = 1
	}
	delay := float64(p.MinInterval) * math.Pow(multiplier, float64(attempt))
	if delay > float64(p.MaxInterval) {
		delay = float64(p.MaxInterval)
	}

	if p.Jitter > 0 {
		jitterAmount := delay * p.Jitter
		delay = delay - jitterAmount + (rand.Float64() * 2 * jitterAmount)
	}

	if delay < float64(p.MinInterval) {
		delay = float64(p.MinInterval)
	}
	if delay > float64(p.MaxInterval) {
		delay = float64(p.MaxInterval)
	}
	return time.Duration(delay)
}

// Wait blocks for d or until ctx is done.
func Wait(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Event describes a retry that is about to be scheduled.
type Event struct {
	Request *http.Request
	// Attempt is the zero-based index of the attempt that failed.
	Attempt int
	// StatusCode is zero when the attempt failed without a response.
	StatusCode int
	Err        error
	Delay      time.Duration
}

// Retrier decorates a Doer with a retry policy.
type Retrier struct {
	next    Doer
	policy  *Policy
	wait    func(ctx context.Context, d time.Duration) error
	onRetry func(Event)
}

// Option configures a Retrier.
type Option func(*Retrier)

// WithWait replaces the function used to sleep between attempts.
func WithWait(wait func(ctx context.Context, d time.Duration) error) Option {
	return func(r *Retrier) {
		r.wait = wait
	}
}

// WithOnRetry registers a hook invoked before every retry.
func WithOnRetry(fn func(Event)) Option {
	return func(r *Retrier) {
		r.onRetry = fn
	}
}

// New wraps next with the given policy. A nil policy uses DefaultPolicy.
func New(next Doer, policy *Policy, opts ...Option) *Retrier {
	if policy == nil {
		policy = DefaultPolicy()
	}
	r := &Retrier{
		next:   next,
		policy: policy,
		wait:   Wait,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Result is the outcome of a retried request.
type Result struct {
	Response *http.Response
	Attempts int
}

// Do executes req, re-issuing it while the policy allows. On success or a
// non-retryable status the response is returned with a nil error. When the
// budget is spent the last response, or the last transport error, is returned.
// The caller owns the returned response body.
func (r *Retrier) Do(req *http.Request) (*Result, error) {
	ctx := req.Context()

	for attempt := 0; ; attempt++ {
		attemptReq, err := rewind(req, attempt)
		if err != nil {
			return &Result{Attempts: attempt}, err
		}

		resp, err := r.next.Do(attemptReq)
		if err != nil {
			if ctx.Err() != nil || attempt >= r.policy.MaxRetries {
				return &Result{Attempts: attempt + 1}, err
			}
		} else if !r.policy.ShouldRetry(attempt, resp.StatusCode) {
			return &Result{Response: resp, Attempts: attempt + 1}, nil
		}

		delay := r.policy.Delay(attempt)
		event := Event{Request: req, Attempt: attempt, Err: err, Delay: delay}
		if resp != nil {
			event.StatusCode = resp.StatusCode
			drain(resp)
		}
		if r.onRetry != nil {
			r.onRetry(event)
		}

		if werr := r.wait(ctx, delay); werr != nil {
			if err == nil {
				err = werr
			}
			return &Result{Attempts: attempt + 1}, err
		}
	}
}

// rewind returns a request whose body can be read again for the given attempt.
func rewind(req *http.Request, attempt int) (*http.Request, error) {
	if attempt == 0 || req.Body == nil || req.Body == http.NoBody {
		return req, nil
	}
	if req.GetBody == nil {
		return nil, fmt.Errorf("request body cannot be replayed for retry")
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, fmt.Errorf("failed to rewind request body: %w", err)
	}
	clone := req.Clone(req.Context())
	clone.Body = body
	return clone, nil
}

// drain discards a response that will not be returned so the connection can be reused.
func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	resp.Body.Close()
}
