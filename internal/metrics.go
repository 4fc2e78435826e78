/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package internal

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// FetchMetrics records provider request attempts. It satisfies
// fetch.Observer.
type FetchMetrics struct {
	registry *prometheus.Registry
	attempts *prometheus.CounterVec
	retries  *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewFetchMetrics registers the fetch collectors on a private registry so
// several instances (e.g. in tests) never collide.
func NewFetchMetrics() (*FetchMetrics, error) {
	m := &FetchMetrics{
		registry: prometheus.NewRegistry(),
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fidecompare_fetch_attempts_total",
			Help: "Provider request attempts by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		retries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fidecompare_fetch_retries_total",
			Help: "Provider request retries by endpoint and reason.",
		}, []string{"endpoint", "reason"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fidecompare_fetch_attempt_seconds",
			Help:    "Duration of a single provider request attempt.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		}, []string{"endpoint"}),
	}

	for _, c := range []prometheus.Collector{m.attempts, m.retries, m.duration} {
		if err := m.registry.Register(c); err != nil {
			return nil, fmt.Errorf("metrics: registering collector: %w", err)
		}
	}
	return m, nil
}

func (m *FetchMetrics) Attempt(target string, attempt int, status int, err error,
	elapsed time.Duration) {

	ep := endpointLabel(target)
	m.attempts.WithLabelValues(ep, outcomeLabel(status, err)).Inc()
	m.duration.WithLabelValues(ep).Observe(elapsed.Seconds())
}

func (m *FetchMetrics) Retry(target string, attempt int, delay time.Duration,
	reason string) {

	m.retries.WithLabelValues(endpointLabel(target), reason).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *FetchMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *FetchMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// endpointLabel keeps label cardinality bounded by dropping ids and hosts:
// ".../a_chart_data.phtml?event=123" becomes "a_chart_data.phtml".
func endpointLabel(target string) string {
	u, err := url.Parse(target)
	if err != nil || u.Path == "" {
		return "unknown"
	}
	return path.Base(u.Path)
}

func outcomeLabel(status int, err error) string {
	switch {
	case err != nil && errors.Is(err, context.Canceled):
		return "canceled"
	case err != nil && errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case err != nil:
		return "error"
	case status >= 200 && status < 400:
		return "ok"
	default:
		return strconv.Itoa(status)
	}
}
