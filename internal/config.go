/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package internal

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the runtime settings shared by the fidecompare binaries.
type Config struct {
	ProxyURL         string        `mapstructure:"proxy_url"`
	ProviderURL      string        `mapstructure:"provider_url"`
	PinnedFederation string        `mapstructure:"pinned_federation"`
	ListenAddr       string        `mapstructure:"listen_addr"`
	ShareBaseURL     string        `mapstructure:"share_base_url"`
	DefaultPlayer    PlayerConfig  `mapstructure:"default_player"`
	Cache            CacheConfig   `mapstructure:"cache"`
	Retry            RetryConfig   `mapstructure:"retry"`
	Compare          RetryConfig   `mapstructure:"compare"`
	Discord          DiscordConfig `mapstructure:"discord"`
}

type PlayerConfig struct {
	ID   string `mapstructure:"id"`
	Name string `mapstructure:"name"`
}

type CacheConfig struct {
	Bucket    string        `mapstructure:"bucket"`
	Gzip      bool          `mapstructure:"gzip"`
	TTL       time.Duration `mapstructure:"ttl"`
	SearchTTL time.Duration `mapstructure:"search_ttl"`
}

// RetryConfig mirrors fetch.Policy; zero durations keep the policy defaults.
type RetryConfig struct {
	Retries   int           `mapstructure:"retries"`
	BaseDelay time.Duration `mapstructure:"base_delay"`
	MaxDelay  time.Duration `mapstructure:"max_delay"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

type DiscordConfig struct {
	Token     string `mapstructure:"token"`
	PublicKey string `mapstructure:"public_key"`
	AppID     string `mapstructure:"app_id"`
	CommandID string `mapstructure:"command_id"`
}

const (
	configName = "fidecompare"
	envPrefix  = "FIDECOMPARE"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("proxy_url", DefaultProxyURL)
	v.SetDefault("provider_url", DefaultProviderURL)
	v.SetDefault("pinned_federation", DefaultPinnedFederation)
	v.SetDefault("listen_addr", DefaultListenAddr)
	v.SetDefault("share_base_url", DefaultShareBaseURL)
	v.SetDefault("default_player.id", DefaultPlayerID)
	v.SetDefault("default_player.name", DefaultPlayerName)
	v.SetDefault("cache.bucket", "")
	v.SetDefault("cache.gzip", true)
	v.SetDefault("cache.ttl", 24*time.Hour)
	v.SetDefault("cache.search_ttl", time.Hour)
	v.SetDefault("retry.retries", 3)
	v.SetDefault("retry.base_delay", 350*time.Millisecond)
	v.SetDefault("retry.max_delay", 5*time.Second)
	v.SetDefault("retry.timeout", time.Duration(0))
	v.SetDefault("compare.retries", 4)
	v.SetDefault("compare.base_delay", 350*time.Millisecond)
	v.SetDefault("compare.max_delay", 5*time.Second)
	v.SetDefault("compare.timeout", 15*time.Second)
	v.SetDefault("discord.token", "")
	v.SetDefault("discord.public_key", "")
	v.SetDefault("discord.app_id", "")
	v.SetDefault("discord.command_id", "")
}

// LoadConfig reads fidecompare.{yaml,toml,json} from configPath (if non-empty)
// or from the working directory and $HOME/.config/fidecompare, then applies
// FIDECOMPARE_* environment overrides. A missing config file is not an error.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName(configName)
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", configName))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: reading %v: %w", v.ConfigFileUsed(), err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decoding: %w", err)
	}
	cfg.ProxyURL = strings.TrimSuffix(cfg.ProxyURL, "/")
	cfg.ProviderURL = strings.TrimSuffix(cfg.ProviderURL, "/")

	return &cfg, nil
}

func (cfg *Config) CacheSettings() CacheSettings {
	return CacheSettings{Bucket: cfg.Cache.Bucket, Gzip: cfg.Cache.Gzip}
}
