/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"time"
)

var (
	// ErrCanceled reports that the caller's context ended the fetch. It is
	// never retried and is distinct from a failed request.
	ErrCanceled = errors.New("fetch canceled")

	// ErrAttemptTimeout reports that an attempt exceeded Policy.Timeout.
	ErrAttemptTimeout = errors.New("fetch attempt timed out")

	// ErrInvalidTarget reports a target that cannot form a request.
	ErrInvalidTarget = errors.New("invalid fetch target")
)

// IsCanceled reports whether err came from caller cancellation rather than a
// network or server failure.
func IsCanceled(err error) bool {
	return errors.Is(err, ErrCanceled)
}

// Doer is satisfied by *http.Client.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Observer receives per-attempt notifications, e.g. for metrics.
type Observer interface {
	Attempt(target string, attempt int, status int, err error, elapsed time.Duration)
	Retry(target string, attempt int, delay time.Duration, reason string)
}

// Fetcher issues GET requests under a retry Policy. A Fetcher holds no
// per-call state and is safe for concurrent use.
type Fetcher struct {
	Client   Doer
	Policy   Policy
	Observer Observer

	now    func() time.Time
	sleep  func(ctx context.Context, d time.Duration) error
	jitter func(ceiling time.Duration) time.Duration
}

func NewFetcher(client Doer, policy Policy) *Fetcher {
	return &Fetcher{Client: client, Policy: policy}
}

// Do performs a single retrying GET of target with the given headers.
func Do(ctx context.Context, client Doer, target string, header http.Header,
	policy Policy) (*http.Response, error) {

	return NewFetcher(client, policy).Fetch(ctx, target, header)
}

// Fetch performs up to Policy.Retries+1 attempts. A response whose status is
// not retryable is returned immediately, so callers must still check
// StatusCode. When attempts are exhausted the final response (retryable
// status) or the final error is returned unchanged.
func (f *Fetcher) Fetch(ctx context.Context, target string,
	header http.Header) (*http.Response, error) {

	policy := f.Policy.normalized()
	attempts := policy.Retries + 1

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, canceled(ctx)
		}

		start := f.clock()
		resp, err := f.attempt(ctx, target, header, policy)
		f.observeAttempt(target, attempt, resp, err, f.clock().Sub(start))

		if err != nil {
			if IsCanceled(err) || errors.Is(err, ErrInvalidTarget) ||
				attempt >= attempts {
				return nil, err
			}
			delay := policy.Backoff(attempt, 0, f.randJitter(policy.JitterCeiling(attempt)))
			f.observeRetry(target, attempt, delay, retryReason(err))
			if err := f.wait(ctx, delay); err != nil {
				return nil, err
			}
			continue
		}

		if !policy.Retryable(resp.StatusCode) || attempt >= attempts {
			return resp, nil
		}

		retryAfter, _ := ParseRetryAfter(resp.Header.Get("Retry-After"), f.clock())
		discard(resp)

		delay := policy.Backoff(attempt, retryAfter, f.randJitter(policy.JitterCeiling(attempt)))
		f.observeRetry(target, attempt, delay, fmt.Sprintf("status %d", resp.StatusCode))
		if err := f.wait(ctx, delay); err != nil {
			return nil, err
		}
	}
}

func (f *Fetcher) attempt(ctx context.Context, target string, header http.Header,
	policy Policy) (*http.Response, error) {

	attemptCtx, cancel := ctx, context.CancelFunc(func() {})
	if policy.Timeout > 0 {
		attemptCtx, cancel = context.WithTimeout(ctx, policy.Timeout)
	}

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, target, nil)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("%w %q: %w", ErrInvalidTarget, target, err)
	}
	for name, values := range header {
		for _, v := range values {
			req.Header.Add(name, v)
		}
	}

	resp, err := f.Client.Do(req)
	if ctx.Err() != nil {
		// cancellation wins over a response that raced it
		if resp != nil {
			discard(resp)
		}
		cancel()
		return nil, canceled(ctx)
	}
	if err != nil {
		timedOut := attemptCtx.Err() != nil
		cancel()
		if timedOut {
			return nil, fmt.Errorf("%w after %v: %w", ErrAttemptTimeout, policy.Timeout, err)
		}
		return nil, err
	}

	// the attempt context must outlive Fetch so the caller can read the body
	resp.Body = &cancelOnClose{ReadCloser: resp.Body, cancel: cancel}
	return resp, nil
}

func (f *Fetcher) wait(ctx context.Context, d time.Duration) error {
	sleep := f.sleep
	if sleep == nil {
		sleep = sleepCtx
	}
	if err := sleep(ctx, d); err != nil {
		return canceled(ctx)
	}
	return nil
}

func (f *Fetcher) clock() time.Time {
	if f.now != nil {
		return f.now()
	}
	return time.Now()
}

func (f *Fetcher) randJitter(ceiling time.Duration) time.Duration {
	if ceiling <= 0 {
		return 0
	}
	if f.jitter != nil {
		return f.jitter(ceiling)
	}
	return rand.N(ceiling + 1)
}

func (f *Fetcher) observeAttempt(target string, attempt int, resp *http.Response,
	err error, elapsed time.Duration) {

	if f.Observer == nil {
		return
	}
	status := 0
	if resp != nil {
		status = resp.StatusCode
	}
	f.Observer.Attempt(target, attempt, status, err, elapsed)
}

func (f *Fetcher) observeRetry(target string, attempt int, delay time.Duration,
	reason string) {

	if f.Observer != nil {
		f.Observer.Retry(target, attempt, delay, reason)
	}
}

func retryReason(err error) string {
	if errors.Is(err, ErrAttemptTimeout) {
		return "timeout"
	}
	return "network"
}

func canceled(ctx context.Context) error {
	return fmt.Errorf("%w: %w", ErrCanceled, context.Cause(ctx))
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// discard drains a bounded amount of the body so the connection can be reused.
func discard(resp *http.Response) {
	io.CopyN(io.Discard, resp.Body, 64<<10)
	resp.Body.Close()
}

type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelOnClose) Close() error {
	err := c.ReadCloser.Close()
	c.cancel()
	return err
}
