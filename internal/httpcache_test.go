/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package internal

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gregjones/httpcache"
)

func TestTTLTransportCachesOK(t *testing.T) {
	var hits atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		// origin tries to disable caching; the transport overrides it
		w.Header().Set("Cache-Control", "no-store")
		w.Write([]byte(`[{"date_2":"2025-May"}]`))
	}))
	defer ts.Close()

	client := &http.Client{Transport: newTTLTransport(httpcache.NewMemoryCache(),
		http.DefaultTransport, 5*time.Minute)}

	for i := 0; i < 3; i++ {
		resp, err := client.Get(ts.URL)
		if err != nil {
			t.Fatalf("get %v: %v", i, err)
		}
		data, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil || len(data) == 0 {
			t.Fatalf("empty body on attempt %v: %v", i, err)
		}
		if i > 0 && resp.Header.Get(httpcache.XFromCache) != "1" {
			t.Errorf("attempt %v: object not cached", i)
		}
	}
	if got := hits.Load(); got != 1 {
		t.Errorf("expected 1 origin hit, got %v", got)
	}
}

func TestTTLTransportSkipsErrors(t *testing.T) {
	var hits atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	client := &http.Client{Transport: newTTLTransport(httpcache.NewMemoryCache(),
		http.DefaultTransport, 5*time.Minute)}
	for i := 0; i < 2; i++ {
		resp, err := client.Get(ts.URL)
		if err != nil {
			t.Fatalf("get %v: %v", i, err)
		}
		resp.Body.Close()
	}
	if got := hits.Load(); got != 2 {
		t.Errorf("expected 503 responses to bypass the cache, got %v origin hits", got)
	}
}

func TestNewCachedHttpClientMemoryFallback(t *testing.T) {
	client := NewCachedHttpClient(context.Background(), CacheSettings{}, time.Minute)
	if client == nil || client == http.DefaultClient {
		t.Fatalf("expected a dedicated cached client")
	}
	if _, ok := client.Transport.(*httpcache.Transport); !ok {
		t.Errorf("expected httpcache transport, got %T", client.Transport)
	}
}

func TestParseDateOrZero(t *testing.T) {
	for _, s := range []string{"", "null", "  "} {
		got, err := ParseDateOrZero(s)
		if err != nil || !got.IsZero() {
			t.Errorf("ParseDateOrZero(%q) = %v, %v; want zero", s, got, err)
		}
	}
	got, err := ParseDateOrZero("Wed, 21 Oct 2015 07:28:00 GMT")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Year() != 2015 || got.Month() != time.October || got.Day() != 21 {
		t.Errorf("unexpected parse %v", got)
	}
}
