// Package prunecmder provides the `chatvault prune` CLI command.
package prunecmder

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/halcyonco/chatvault/pkg/config"
	"github.com/halcyonco/chatvault/pkg/logger"
	"github.com/halcyonco/chatvault/pkg/storage/sqlite"
)

const pruneLongDesc string = `Bulk-purge stored vectors older than a cutoff.

Removes embedding vectors written before the given age. Messages themselves
are untouched; a later backfill recomputes vectors for any message that
still matters. This is the explicit bulk-purge escape hatch; day to day,
vectors only disappear when their message is deleted.

Examples:
  chatvault prune --older-than 720h
  chatvault prune --older-than 24h --sqlite ./history.db`

const pruneShortDesc string = "Bulk-purge stored vectors older than a cutoff"

type pruneCommander struct {
	sqlitePath string
	olderThan  time.Duration
}

// NewPruneCmd creates the prune cobra command.
func NewPruneCmd() *cobra.Command {
	cmder := &pruneCommander{}

	cmd := &cobra.Command{
		Use:   "prune",
		Short: pruneShortDesc,
		Long:  pruneLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd)
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagSQLite, &cmder.sqlitePath)
	cmd.Flags().DurationVar(&cmder.olderThan, "older-than", 0, "Purge vectors older than this duration (required)")
	_ = cmd.MarkFlagRequired("older-than")

	return cmd
}

func (c *pruneCommander) run(cmd *cobra.Command) error {
	configDir, _ := cmd.Flags().GetString("config-dir")
	debug, _ := cmd.Flags().GetBool("debug")

	if c.olderThan <= 0 {
		return fmt.Errorf("--older-than must be a positive duration")
	}

	v, err := config.InitViper(configDir)
	if err != nil {
		return err
	}
	config.BindRegisteredFlags(v, cmd, config.Flags, []string{
		config.FlagSQLite,
	})

	log := logger.NewLogger(debug)
	defer func() { _ = log.Sync() }()

	store, err := sqlite.NewDriver(v.GetString("storage.sqlite_path"), log)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	cutoff := time.Now().UTC().Add(-c.olderThan)
	removed, err := store.DeleteVectorsOlderThan(cmd.Context(), cutoff)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Purged %d vectors older than %s\n", removed, c.olderThan)
	return nil
}
