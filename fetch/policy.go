/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package fetch

import (
	"math"
	"net/http"
	"slices"
	"time"
)

const (
	DefaultRetries   = 3
	DefaultBaseDelay = 350 * time.Millisecond
	DefaultMaxDelay  = 5 * time.Second

	maxJitter = 250 * time.Millisecond
)

var defaultRetryOn = []int{
	http.StatusRequestTimeout,      // 408
	http.StatusTooEarly,            // 425
	http.StatusTooManyRequests,     // 429
	http.StatusInternalServerError, // 500
	http.StatusBadGateway,          // 502
	http.StatusServiceUnavailable,  // 503
	http.StatusGatewayTimeout,      // 504
}

// Policy describes how a single fetch retries. It is a plain value; the With*
// methods return modified copies.
type Policy struct {
	// Retries is the number of attempts after the first one.
	Retries   int
	BaseDelay time.Duration
	MaxDelay  time.Duration
	// Timeout bounds each individual attempt. Zero means no per-attempt timeout.
	Timeout time.Duration
	// RetryOn lists the HTTP statuses that trigger another attempt.
	RetryOn []int
}

func DefaultPolicy() Policy {
	return Policy{
		Retries:   DefaultRetries,
		BaseDelay: DefaultBaseDelay,
		MaxDelay:  DefaultMaxDelay,
		RetryOn:   slices.Clone(defaultRetryOn),
	}
}

func (p Policy) WithRetries(n int) Policy {
	p.Retries = n
	return p
}

func (p Policy) WithTimeout(d time.Duration) Policy {
	p.Timeout = d
	return p
}

func (p Policy) WithBaseDelay(d time.Duration) Policy {
	p.BaseDelay = d
	return p
}

func (p Policy) WithMaxDelay(d time.Duration) Policy {
	p.MaxDelay = d
	return p
}

func (p Policy) WithRetryOn(statuses ...int) Policy {
	p.RetryOn = slices.Clone(statuses)
	return p
}

// normalized fills unset fields with defaults.
func (p Policy) normalized() Policy {
	if p.Retries < 0 {
		p.Retries = 0
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = DefaultBaseDelay
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = DefaultMaxDelay
	}
	if p.Timeout < 0 {
		p.Timeout = 0
	}
	if p.RetryOn == nil {
		p.RetryOn = defaultRetryOn
	}
	return p
}

// Attempts returns the total number of attempts the policy allows.
func (p Policy) Attempts() int {
	return p.normalized().Retries + 1
}

func (p Policy) Retryable(status int) bool {
	return slices.Contains(p.normalized().RetryOn, status)
}

// exponential returns BaseDelay * 2^(attempt-1), saturating at MaxDelay so the
// shift cannot overflow for large attempt numbers.
func (p Policy) exponential(attempt int) time.Duration {
	p = p.normalized()
	if attempt < 1 {
		attempt = 1
	}
	exp := float64(p.BaseDelay) * math.Pow(2, float64(attempt-1))
	if exp > float64(p.MaxDelay) {
		return p.MaxDelay
	}
	return time.Duration(exp)
}

// JitterCeiling is the upper bound of the random jitter added after the given
// attempt: min(250ms, 20% of the exponential delay).
func (p Policy) JitterCeiling(attempt int) time.Duration {
	return min(maxJitter, p.exponential(attempt)/5)
}

// Backoff computes the delay before the attempt following `attempt` (1-based):
// min(MaxDelay, max(retryAfter, BaseDelay*2^(attempt-1)) + jitter).
func (p Policy) Backoff(attempt int, retryAfter time.Duration,
	jitter time.Duration) time.Duration {

	p = p.normalized()
	delay := max(retryAfter, p.exponential(attempt))
	if delay >= p.MaxDelay || jitter >= p.MaxDelay-delay {
		return p.MaxDelay
	}
	return delay + max(jitter, 0)
}
