// Package chatvaultcmder
package chatvaultcmder

import (
	"github.com/spf13/cobra"

	backfillcmder "github.com/halcyonco/chatvault/cmd/chatvault/backfill"
	configcmder "github.com/halcyonco/chatvault/cmd/chatvault/config"
	prunecmder "github.com/halcyonco/chatvault/cmd/chatvault/prune"
	savecmder "github.com/halcyonco/chatvault/cmd/chatvault/save"
	searchcmder "github.com/halcyonco/chatvault/cmd/chatvault/search"
	versioncmder "github.com/halcyonco/chatvault/cmd/version"
)

const chatvaultLongDesc string = `Chatvault is on-device semantic recall for your chat history.

Every saved message gets a fixed-length embedding computed from a local
word-vector table; search ranks prior messages by cosine similarity to a
query. Everything runs in-process against a local SQLite database.

Common commands:
  chatvault save       Save a message and embed it
  chatvault search     Find the messages most similar to a query
  chatvault backfill   Compute embeddings for messages that lack one`

const chatvaultShortDesc string = "Chatvault - on-device semantic chat recall"

func NewChatvaultCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chatvault",
		Short: chatvaultShortDesc,
		Long:  chatvaultLongDesc,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override the .chatvault/ directory")

	// Add subcommands
	cmd.AddCommand(savecmder.NewSaveCmd())
	cmd.AddCommand(searchcmder.NewSearchCmd())
	cmd.AddCommand(backfillcmder.NewBackfillCmd())
	cmd.AddCommand(prunecmder.NewPruneCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
