// Package searchcmder provides the `chatvault search` CLI command.
package searchcmder

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/halcyonco/chatvault/cmd/chatvault/wiring"
	"github.com/halcyonco/chatvault/pkg/config"
	"github.com/halcyonco/chatvault/pkg/logger"
	"github.com/halcyonco/chatvault/pkg/utils"
)

const searchLongDesc string = `Search stored messages by semantic similarity.

The query is embedded with the same word-vector table used at save time and
scored against every stored message vector with cosine similarity. Results
come back ranked, best match first. A query with no recognizable words
returns nothing rather than erroring.

Examples:
  chatvault search "plant care"
  chatvault search -k 10 "what did I say about the garden"`

const searchShortDesc string = "Search stored messages by semantic similarity"

type searchCommander struct {
	sqlitePath  string
	vectorsPath string
	topK        uint
	shards      uint
}

// NewSearchCmd creates the search cobra command.
func NewSearchCmd() *cobra.Command {
	cmder := &searchCommander{}

	cmd := &cobra.Command{
		Use:   "search <query>...",
		Short: searchShortDesc,
		Long:  searchLongDesc,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd, args)
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagSQLite, &cmder.sqlitePath)
	config.AddStringFlag(cmd, config.Flags, config.FlagWordVecs, &cmder.vectorsPath)
	config.AddUintFlag(cmd, config.Flags, config.FlagSearchTopK, &cmder.topK)
	config.AddUintFlag(cmd, config.Flags, config.FlagSearchShards, &cmder.shards)

	return cmd
}

func (c *searchCommander) run(cmd *cobra.Command, args []string) error {
	configDir, _ := cmd.Flags().GetString("config-dir")
	debug, _ := cmd.Flags().GetBool("debug")

	v, err := config.InitViper(configDir)
	if err != nil {
		return err
	}
	config.BindRegisteredFlags(v, cmd, config.Flags, []string{
		config.FlagSQLite,
		config.FlagWordVecs,
		config.FlagSearchTopK,
		config.FlagSearchShards,
	})

	log := logger.NewLogger(debug)
	defer func() { _ = log.Sync() }()

	svc, cleanup, err := wiring.BuildService(v, log)
	if err != nil {
		return err
	}
	defer func() { _ = cleanup() }()

	query := strings.Join(args, " ")
	results, err := svc.Search(cmd.Context(), query, int(v.GetUint("search.top_k")))
	if err != nil {
		return err
	}

	if len(results) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No results.")
		return nil
	}

	for i, r := range results {
		role := "assistant"
		if r.IsUser {
			role = "user"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%2d. [%.4f] (%s) %s\n",
			i+1, r.Score, role, utils.Truncate(r.Content, 96))
	}
	return nil
}
