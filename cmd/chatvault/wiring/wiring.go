// Package wiring assembles a chatvault.Service for CLI commands from the
// viper configuration chain. It is the CLI's composition root: commands get
// a fully wired service and a cleanup function, nothing global.
package wiring

import (
	"fmt"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/halcyonco/chatvault/pkg/chatvault"
	"github.com/halcyonco/chatvault/pkg/storage/sqlite"
	"github.com/halcyonco/chatvault/pkg/wordvec"
)

// BuildService opens the SQLite store and word-vector table named by the
// viper config and assembles the service. The returned cleanup closes
// everything; call it even on later errors.
func BuildService(v *viper.Viper, logger *zap.Logger) (*chatvault.Service, func() error, error) {
	vectorsPath := v.GetString("wordvec.path")
	if vectorsPath == "" {
		return nil, nil, fmt.Errorf("wordvec.path is not configured (set it via 'chatvault config set wordvec.path <file>' or --vectors)")
	}

	provider, err := wordvec.NewFile(vectorsPath, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("loading word vectors: %w", err)
	}

	store, err := sqlite.NewDriver(v.GetString("storage.sqlite_path"), logger)
	if err != nil {
		provider.Close()
		return nil, nil, fmt.Errorf("opening store: %w", err)
	}

	svc, err := chatvault.New(chatvault.Config{
		Store:             store,
		Provider:          provider,
		CacheSize:         int(v.GetUint("cache.size")),
		SearchShards:      int(v.GetUint("search.shards")),
		BackfillBatchSize: int(v.GetUint("backfill.batch_size")),
		Logger:            logger,
	})
	if err != nil {
		store.Close()
		provider.Close()
		return nil, nil, err
	}

	return svc, svc.Close, nil
}
