// Package savecmder provides the `chatvault save` CLI command.
package savecmder

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/halcyonco/chatvault/cmd/chatvault/wiring"
	"github.com/halcyonco/chatvault/pkg/config"
	"github.com/halcyonco/chatvault/pkg/logger"
)

const saveLongDesc string = `Save a chat message and embed it.

The message text is persisted to the local SQLite database, its embedding is
computed from the configured word-vector table, and the vector is stored
alongside the message for later semantic search.

Examples:
  chatvault save "remember to water the plants"
  chatvault save --assistant "watering reminder set for 6pm"
  chatvault save --sqlite ./history.db "hello world"`

const saveShortDesc string = "Save a chat message and embed it"

type saveCommander struct {
	sqlitePath  string
	vectorsPath string
	assistant   bool
}

// NewSaveCmd creates the save cobra command.
func NewSaveCmd() *cobra.Command {
	cmder := &saveCommander{}

	cmd := &cobra.Command{
		Use:   "save <text>...",
		Short: saveShortDesc,
		Long:  saveLongDesc,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd, args)
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagSQLite, &cmder.sqlitePath)
	config.AddStringFlag(cmd, config.Flags, config.FlagWordVecs, &cmder.vectorsPath)
	cmd.Flags().BoolVar(&cmder.assistant, "assistant", false, "Mark the message as assistant-authored")

	return cmd
}

func (c *saveCommander) run(cmd *cobra.Command, args []string) error {
	configDir, _ := cmd.Flags().GetString("config-dir")
	debug, _ := cmd.Flags().GetBool("debug")

	v, err := config.InitViper(configDir)
	if err != nil {
		return err
	}
	config.BindRegisteredFlags(v, cmd, config.Flags, []string{
		config.FlagSQLite,
		config.FlagWordVecs,
	})

	log := logger.NewLogger(debug)
	defer func() { _ = log.Sync() }()

	svc, cleanup, err := wiring.BuildService(v, log)
	if err != nil {
		return err
	}
	defer func() { _ = cleanup() }()

	text := strings.Join(args, " ")
	id, err := svc.Save(cmd.Context(), text, !c.assistant)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), id.String())
	return nil
}
