package config

import (
	"fmt"
	"strconv"
)

// Config represents the persistent chatvault configuration stored as
// config.toml in the .chatvault/ directory. The TOML layout uses sections
// for logical grouping.
type Config struct {
	Version  int            `toml:"version"`
	Storage  StorageConfig  `toml:"storage"`
	WordVec  WordVecConfig  `toml:"wordvec"`
	Cache    CacheConfig    `toml:"cache"`
	Search   SearchConfig   `toml:"search"`
	Backfill BackfillConfig `toml:"backfill"`
}

// StorageConfig holds the structured store settings.
type StorageConfig struct {
	SQLitePath string `toml:"sqlite_path,omitempty"`
}

// WordVecConfig holds the word-vector provider settings.
type WordVecConfig struct {
	// Path points at the GloVe-style plain-text vector table.
	Path string `toml:"path,omitempty"`
}

// CacheConfig holds the embedding cache settings.
type CacheConfig struct {
	Size uint `toml:"size,omitempty"`
}

// SearchConfig holds similarity search settings.
type SearchConfig struct {
	Shards uint `toml:"shards,omitempty"`
	TopK   uint `toml:"top_k,omitempty"`
}

// BackfillConfig holds backfill batch settings.
type BackfillConfig struct {
	BatchSize uint `toml:"batch_size,omitempty"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"storage.sqlite_path": {
		get: func(c *Config) string { return c.Storage.SQLitePath },
		set: func(c *Config, v string) error { c.Storage.SQLitePath = v; return nil },
	},
	"wordvec.path": {
		get: func(c *Config) string { return c.WordVec.Path },
		set: func(c *Config, v string) error { c.WordVec.Path = v; return nil },
	},
	"cache.size": {
		get: func(c *Config) string { return formatUint(c.Cache.Size) },
		set: func(c *Config, v string) error {
			n, err := parseUint("cache.size", v)
			if err != nil {
				return err
			}
			c.Cache.Size = n
			return nil
		},
	},
	"search.shards": {
		get: func(c *Config) string { return formatUint(c.Search.Shards) },
		set: func(c *Config, v string) error {
			n, err := parseUint("search.shards", v)
			if err != nil {
				return err
			}
			c.Search.Shards = n
			return nil
		},
	},
	"search.top_k": {
		get: func(c *Config) string { return formatUint(c.Search.TopK) },
		set: func(c *Config, v string) error {
			n, err := parseUint("search.top_k", v)
			if err != nil {
				return err
			}
			c.Search.TopK = n
			return nil
		},
	},
	"backfill.batch_size": {
		get: func(c *Config) string { return formatUint(c.Backfill.BatchSize) },
		set: func(c *Config, v string) error {
			n, err := parseUint("backfill.batch_size", v)
			if err != nil {
				return err
			}
			c.Backfill.BatchSize = n
			return nil
		},
	},
}

func formatUint(n uint) string {
	if n == 0 {
		return ""
	}
	return strconv.FormatUint(uint64(n), 10)
}

func parseUint(key, v string) (uint, error) {
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %w", key, err)
	}
	return uint(n), nil
}
