// Package backfillcmder provides the `chatvault backfill` CLI command.
package backfillcmder

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/halcyonco/chatvault/pkg/backfill"
	"github.com/halcyonco/chatvault/pkg/config"
	"github.com/halcyonco/chatvault/pkg/embedding"
	"github.com/halcyonco/chatvault/pkg/logger"
	"github.com/halcyonco/chatvault/pkg/storage/sqlite"
	"github.com/halcyonco/chatvault/pkg/wordvec"
)

const backfillLongDesc string = `Compute embeddings for messages that lack one.

Walks the local database for messages without a stored vector and drives
each through the embedding computer in batches. Safe to run repeatedly and
alongside a live chatvault process: messages vectorized elsewhere are
skipped, and a failure on one message never aborts the batch.

Examples:
  chatvault backfill
  chatvault backfill --batch-size 128
  chatvault backfill --sqlite ./history.db --vectors ./glove.txt`

const backfillShortDesc string = "Compute embeddings for messages that lack one"

type backfillCommander struct {
	sqlitePath  string
	vectorsPath string
	batchSize   uint
	cacheSize   uint
}

// NewBackfillCmd creates the backfill cobra command.
func NewBackfillCmd() *cobra.Command {
	cmder := &backfillCommander{}

	cmd := &cobra.Command{
		Use:   "backfill",
		Short: backfillShortDesc,
		Long:  backfillLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd)
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagSQLite, &cmder.sqlitePath)
	config.AddStringFlag(cmd, config.Flags, config.FlagWordVecs, &cmder.vectorsPath)
	config.AddUintFlag(cmd, config.Flags, config.FlagBackfillBatch, &cmder.batchSize)
	config.AddUintFlag(cmd, config.Flags, config.FlagCacheSize, &cmder.cacheSize)

	return cmd
}

func (c *backfillCommander) run(cmd *cobra.Command) error {
	configDir, _ := cmd.Flags().GetString("config-dir")
	debug, _ := cmd.Flags().GetBool("debug")

	v, err := config.InitViper(configDir)
	if err != nil {
		return err
	}
	config.BindRegisteredFlags(v, cmd, config.Flags, []string{
		config.FlagSQLite,
		config.FlagWordVecs,
		config.FlagBackfillBatch,
		config.FlagCacheSize,
	})

	log := logger.NewLogger(debug)
	defer func() { _ = log.Sync() }()

	vectorsPath := v.GetString("wordvec.path")
	if vectorsPath == "" {
		return fmt.Errorf("wordvec.path is not configured (set it via 'chatvault config set wordvec.path <file>' or --vectors)")
	}

	provider, err := wordvec.NewFile(vectorsPath, log)
	if err != nil {
		return err
	}
	defer func() { _ = provider.Close() }()

	store, err := sqlite.NewDriver(v.GetString("storage.sqlite_path"), log)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	// The one-shot command runs the coordinator directly; the background
	// runner only matters inside a long-lived process.
	computer := embedding.NewComputer(provider, embedding.NewCache(int(v.GetUint("cache.size"))), log)
	coordinator := backfill.NewCoordinator(store, computer, log)

	pretty := logger.NewPretty(debug)
	pretty.Info("starting backfill",
		"db", v.GetString("storage.sqlite_path"),
		"batch_size", v.GetUint("backfill.batch_size"),
	)

	result, err := coordinator.Run(cmd.Context(), int(v.GetUint("backfill.batch_size")))
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), result.Summary())
	return nil
}
