/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package fetch

import (
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/mikeb26/fidecompare/internal"
)

// ParseRetryAfter interprets a Retry-After header value either as a number
// of seconds or as an HTTP date relative to now. Dates in the past yield 0.
// ok is false for empty or unparseable values.
func ParseRetryAfter(value string, now time.Time) (time.Duration, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}

	if secs, err := strconv.ParseFloat(value, 64); err == nil {
		if secs < 0 || math.IsNaN(secs) || math.IsInf(secs, 0) {
			return 0, false
		}
		// very large values saturate instead of overflowing into negatives
		if secs >= float64(math.MaxInt64)/float64(time.Second) {
			return time.Duration(math.MaxInt64), true
		}
		return time.Duration(secs * float64(time.Second)), true
	}

	when, err := http.ParseTime(value)
	if err != nil {
		// some proxies emit non-RFC dates; dateparse is lenient about those
		when, err = internal.ParseDateOrZero(value)
		if err != nil || when.IsZero() {
			return 0, false
		}
	}

	delta := when.Sub(now)
	if delta < 0 {
		delta = 0
	}
	return delta, true
}
