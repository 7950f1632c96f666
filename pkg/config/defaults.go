package config

const (
	defaultSQLiteFile = "chatvault.db"

	defaultCacheSize = 1024

	defaultSearchShards = 4
	defaultSearchTopK   = 5

	defaultBackfillBatchSize = 64
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Storage: StorageConfig{
			SQLitePath: defaultSQLiteFile,
		},
		Cache: CacheConfig{
			Size: defaultCacheSize,
		},
		Search: SearchConfig{
			Shards: defaultSearchShards,
			TopK:   defaultSearchTopK,
		},
		Backfill: BackfillConfig{
			BatchSize: defaultBackfillBatchSize,
		},
	}
}
