/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package internal

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.ProxyURL != DefaultProxyURL {
		t.Errorf("ProxyURL = %q; want %q", cfg.ProxyURL, DefaultProxyURL)
	}
	if cfg.DefaultPlayer.ID != DefaultPlayerID {
		t.Errorf("DefaultPlayer.ID = %q; want %q", cfg.DefaultPlayer.ID, DefaultPlayerID)
	}
	if cfg.Retry.Retries != 3 || cfg.Retry.BaseDelay != 350*time.Millisecond {
		t.Errorf("unexpected retry defaults %+v", cfg.Retry)
	}
	if cfg.Compare.Retries != 4 || cfg.Compare.Timeout != 15*time.Second {
		t.Errorf("unexpected compare defaults %+v", cfg.Compare)
	}
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fidecompare.yaml")
	data := []byte("proxy_url: https://proxy.example/\npinned_federation: VIE\nretry:\n  retries: 1\n  timeout: 2s\n")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("FIDECOMPARE_CACHE_BUCKET", "my-bucket")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.ProxyURL != "https://proxy.example" {
		t.Errorf("ProxyURL = %q; want trailing slash trimmed", cfg.ProxyURL)
	}
	if cfg.PinnedFederation != "VIE" {
		t.Errorf("PinnedFederation = %q", cfg.PinnedFederation)
	}
	if cfg.Retry.Retries != 1 || cfg.Retry.Timeout != 2*time.Second {
		t.Errorf("unexpected retry %+v", cfg.Retry)
	}
	if cfg.Cache.Bucket != "my-bucket" {
		t.Errorf("Cache.Bucket = %q; want env override", cfg.Cache.Bucket)
	}
}

func TestLoadConfigBadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fidecompare.yaml")
	if err := os.WriteFile(path, []byte("retry: [unclosed"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected error for malformed config")
	}
}
