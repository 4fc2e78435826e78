/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package internal

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gregjones/httpcache"
	"github.com/mikeb26/fidecompare/s3cache"
)

// CacheSettings selects where cached provider responses live.
type CacheSettings struct {
	// Bucket is the S3 bucket backing the cache; empty means in-memory only.
	Bucket string
	Gzip   bool
}

// NewCachedHttpClient returns an http.Client that caches via httpcache, backed
// by S3 when a bucket is configured and reachable. If S3 initialization fails
// it falls back to an in-memory cache instead of no cache. It also enforces a
// client-side TTL by rewriting origin cache headers.
func NewCachedHttpClient(ctx context.Context, settings CacheSettings,
	maxAge time.Duration) *http.Client {

	var cache httpcache.Cache
	if settings.Bucket != "" {
		s3c := s3cache.New(ctx, s3cache.Options{
			Bucket:    settings.Bucket,
			Gzip:      settings.Gzip,
			LogErrors: true,
		})
		if err := s3c.Init(); err != nil {
			log.Printf("httpcache: warning failed to init S3 cache: %v; falling back to memory cache", err)
		} else {
			cache = s3c
		}
	}
	if cache == nil {
		cache = httpcache.NewMemoryCache()
	}

	return &http.Client{Transport: newTTLTransport(cache, http.DefaultTransport, maxAge)}
}

func newTTLTransport(cache httpcache.Cache, base http.RoundTripper,
	maxAge time.Duration) *httpcache.Transport {

	hc := httpcache.NewTransport(cache)
	// we have to inject our own header overrides here in order to override
	// server responses that might indicate caching shouldn't be done
	hc.Transport = &HeaderOverrideTransport{
		wrappedRT: base,
		Response: func(resp *http.Response) error {
			// only successful responses are worth keeping; the provider
			// answers throttled requests with 429/5xx which must be retried
			if resp.StatusCode != http.StatusOK {
				return nil
			}
			// Strip any cache-busting headers from origin
			resp.Header.Del("Pragma")
			resp.Header.Del("Expires")
			resp.Header.Del("Cache-Control")
			// Enforce the provided TTL
			resp.Header.Set("Cache-Control", fmt.Sprintf("public, max-age=%d", int(maxAge/time.Second)))
			return nil
		},
	}

	return hc
}

type HeaderOverrideTransport struct {
	Request  func(req *http.Request)
	Response func(resp *http.Response) error

	// Underlying RoundTripper (e.g. default transport or another decorator)
	wrappedRT http.RoundTripper
}

// RoundTrip applies Request and Response hooks around the underlying transport.
func (t *HeaderOverrideTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// clone so we don’t stomp on the caller’s original
	req2 := req.Clone(req.Context())
	if t.Request != nil {
		t.Request(req2)
	}

	resp, err := t.wrappedRT.RoundTrip(req2)
	if err != nil {
		return nil, err
	}

	if t.Response != nil {
		if err := t.Response(resp); err != nil {
			return nil, err
		}
	}
	return resp, nil
}
