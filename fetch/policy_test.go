/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package fetch

import (
	"math"
	"net/http"
	"testing"
	"time"
)

func TestDefaultPolicy(t *testing.T) {
	p := DefaultPolicy()
	if p.Attempts() != 4 {
		t.Errorf("Attempts() = %v; want 4", p.Attempts())
	}
	for _, status := range []int{408, 425, 429, 500, 502, 503, 504} {
		if !p.Retryable(status) {
			t.Errorf("status %v should be retryable", status)
		}
	}
	for _, status := range []int{200, 301, 400, 404, 501} {
		if p.Retryable(status) {
			t.Errorf("status %v should not be retryable", status)
		}
	}
}

func TestPolicyValueSemantics(t *testing.T) {
	base := DefaultPolicy()
	custom := base.WithRetries(4).WithTimeout(15 * time.Second).WithRetryOn(http.StatusTeapot)
	if base.Retries != DefaultRetries || base.Timeout != 0 {
		t.Errorf("With* mutated the receiver: %+v", base)
	}
	if !custom.Retryable(http.StatusTeapot) || custom.Retryable(http.StatusServiceUnavailable) {
		t.Errorf("custom RetryOn not applied: %+v", custom)
	}
	if (Policy{Retries: -2}).Attempts() != 1 {
		t.Errorf("negative retries should mean a single attempt")
	}
	if !(Policy{}).Retryable(http.StatusTooManyRequests) {
		t.Errorf("nil RetryOn should fall back to the default set")
	}
}

func TestBackoff(t *testing.T) {
	p := DefaultPolicy()
	cases := []struct {
		name       string
		attempt    int
		retryAfter time.Duration
		jitter     time.Duration
		want       time.Duration
	}{
		{"first attempt", 1, 0, 0, 350 * time.Millisecond},
		{"second attempt", 2, 0, 0, 700 * time.Millisecond},
		{"third attempt with jitter", 3, 0, 100 * time.Millisecond, 1500 * time.Millisecond},
		{"retry-after dominates", 1, 2 * time.Second, 10 * time.Millisecond, 2010 * time.Millisecond},
		{"exponential dominates retry-after", 3, time.Second, 0, 1400 * time.Millisecond},
		{"capped at max", 6, 0, 250 * time.Millisecond, 5 * time.Second},
		{"retry-after capped at max", 1, time.Minute, 0, 5 * time.Second},
		{"huge attempt does not overflow", 200, 0, 0, 5 * time.Second},
		{"saturated retry-after with jitter", 1, time.Duration(math.MaxInt64), 250 * time.Millisecond, 5 * time.Second},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := p.Backoff(c.attempt, c.retryAfter, c.jitter); got != c.want {
				t.Errorf("Backoff(%v, %v, %v) = %v; want %v", c.attempt, c.retryAfter,
					c.jitter, got, c.want)
			}
		})
	}
}

func TestHugeRetryAfterBacksOffToMax(t *testing.T) {
	ra, ok := ParseRetryAfter("1e300", time.Now())
	if !ok || ra < 0 {
		t.Fatalf("ParseRetryAfter(1e300) = %v, %v", ra, ok)
	}
	p := DefaultPolicy()
	if got := p.Backoff(1, ra, 0); got != p.MaxDelay {
		t.Errorf("Backoff with huge Retry-After = %v; want %v", got, p.MaxDelay)
	}
}

func TestJitterCeiling(t *testing.T) {
	p := DefaultPolicy()
	if got := p.JitterCeiling(1); got != 70*time.Millisecond {
		t.Errorf("JitterCeiling(1) = %v; want 70ms", got)
	}
	if got := p.JitterCeiling(5); got != 250*time.Millisecond {
		t.Errorf("JitterCeiling(5) = %v; want 250ms", got)
	}
}

func TestRandJitterBounds(t *testing.T) {
	f := NewFetcher(nil, DefaultPolicy())
	for i := 0; i < 1000; i++ {
		j := f.randJitter(70 * time.Millisecond)
		if j < 0 || j > 70*time.Millisecond {
			t.Fatalf("jitter %v out of range", j)
		}
	}
	if f.randJitter(0) != 0 {
		t.Errorf("zero ceiling must yield zero jitter")
	}
}

func TestParseRetryAfter(t *testing.T) {
	now := time.Date(2025, time.May, 1, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		value  string
		want   time.Duration
		wantOK bool
	}{
		{"2", 2 * time.Second, true},
		{" 0.5 ", 500 * time.Millisecond, true},
		{"0", 0, true},
		{"-3", 0, false},
		{"", 0, false},
		{"soon", 0, false},
		{"Thu, 01 May 2025 12:00:10 GMT", 10 * time.Second, true},
		{"Thu, 01 May 2025 11:00:00 GMT", 0, true},
		{"2025-05-01T12:01:00Z", time.Minute, true},
		{"1e300", time.Duration(math.MaxInt64), true},
	}
	for _, c := range cases {
		got, ok := ParseRetryAfter(c.value, now)
		if ok != c.wantOK || got != c.want {
			t.Errorf("ParseRetryAfter(%q) = %v, %v; want %v, %v", c.value, got, ok,
				c.want, c.wantOK)
		}
	}
}
