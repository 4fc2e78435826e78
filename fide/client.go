/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package fide

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mikeb26/fidecompare/fetch"
	"github.com/mikeb26/fidecompare/internal"
)

// provider endpoints, relative to the provider base URL
const (
	SearchEndpoint  = "incl_search_l.php"
	HistoryEndpoint = "a_chart_data.phtml"
	CompareEndpoint = "a_data_stats.php"
)

// Config controls how a Client reaches the rating provider.
type Config struct {
	// ProxyURL is the CORS relay; requests go to <ProxyURL>/cors/<ProviderURL>/...
	// An empty ProxyURL talks to the provider directly.
	ProxyURL         string
	ProviderURL      string
	PinnedFederation string

	Policy        fetch.Policy
	ComparePolicy fetch.Policy
	Observer      fetch.Observer

	Cache     internal.CacheSettings
	CacheTTL  time.Duration
	SearchTTL time.Duration
}

// DefaultConfig mirrors the public relay and pins Australian players first.
func DefaultConfig() Config {
	return Config{
		ProxyURL:         internal.DefaultProxyURL,
		ProviderURL:      internal.DefaultProviderURL,
		PinnedFederation: internal.DefaultPinnedFederation,
		Policy:           fetch.DefaultPolicy(),
		ComparePolicy:    fetch.DefaultPolicy().WithRetries(4).WithTimeout(15 * time.Second),
		CacheTTL:         24 * time.Hour,
		SearchTTL:        time.Hour,
	}
}

// ConfigFrom maps the application configuration onto a client Config.
func ConfigFrom(cfg *internal.Config) Config {
	ret := DefaultConfig()
	ret.ProxyURL = cfg.ProxyURL
	ret.ProviderURL = cfg.ProviderURL
	ret.PinnedFederation = cfg.PinnedFederation
	ret.Policy = policyFrom(cfg.Retry)
	ret.ComparePolicy = policyFrom(cfg.Compare)
	ret.Cache = cfg.CacheSettings()
	ret.CacheTTL = cfg.Cache.TTL
	ret.SearchTTL = cfg.Cache.SearchTTL
	return ret
}

func policyFrom(rc internal.RetryConfig) fetch.Policy {
	return fetch.DefaultPolicy().
		WithRetries(rc.Retries).
		WithBaseDelay(rc.BaseDelay).
		WithMaxDelay(rc.MaxDelay).
		WithTimeout(rc.Timeout)
}

type Client struct {
	cfg          Config
	searchClient fetch.Doer
	dataClient   fetch.Doer
	searches     *SearchCache
}

// NewClient returns a Client whose responses are cached per Config.Cache.
// Search results age out faster than rating data.
func NewClient(ctx context.Context, cfg Config) *Client {
	return &Client{
		cfg:          cfg,
		searchClient: internal.NewCachedHttpClient(ctx, cfg.Cache, cfg.SearchTTL),
		dataClient:   internal.NewCachedHttpClient(ctx, cfg.Cache, cfg.CacheTTL),
		searches:     NewSearchCache(),
	}
}

// NewClientWithHTTP returns an uncached Client using doer for every request.
func NewClientWithHTTP(doer fetch.Doer, cfg Config) *Client {
	return &Client{
		cfg:          cfg,
		searchClient: doer,
		dataClient:   doer,
		searches:     NewSearchCache(),
	}
}

// Searches returns the per-keyword results of previous successful searches.
func (client *Client) Searches() *SearchCache {
	return client.searches
}

func (client *Client) endpoint(name string, query url.Values) string {
	base := strings.TrimRight(client.cfg.ProviderURL, "/")
	if base == "" {
		base = internal.DefaultProviderURL
	}
	if proxy := strings.TrimRight(client.cfg.ProxyURL, "/"); proxy != "" {
		base = proxy + "/cors/" + base
	}
	return base + "/" + name + "?" + query.Encode()
}

func requestHeader() http.Header {
	h := make(http.Header)
	h.Set("X-Requested-With", "XMLHttpRequest")
	h.Set("User-Agent", internal.UserAgent)
	return h
}

func (client *Client) get(ctx context.Context, doer fetch.Doer, target string,
	policy fetch.Policy) (*http.Response, error) {

	f := fetch.NewFetcher(doer, policy)
	f.Observer = client.cfg.Observer
	return f.Fetch(ctx, target, requestHeader())
}

// decodeJSON decodes body into v keeping numbers exact. It reports false
// when the body is not valid JSON of the expected shape.
func decodeJSON(body io.Reader, v any) bool {
	dec := json.NewDecoder(body)
	dec.UseNumber()
	return dec.Decode(v) == nil
}

func statusError(what string, resp *http.Response) error {
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
	return fmt.Errorf("unexpected %v status %d: %s", what, resp.StatusCode,
		strings.TrimSpace(string(snippet)))
}
