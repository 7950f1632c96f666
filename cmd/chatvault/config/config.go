// Package configcmder provides the config command for managing persistent
// chatvault configuration stored in the .chatvault/ directory.
package configcmder

import (
	"github.com/spf13/cobra"
)

const configLongDesc string = `Manage persistent chatvault configuration.

Configuration is stored as config.toml in the .chatvault/ directory and
provides default values for command flags. CLI flags always take precedence
over config file values.

Keys use dotted notation matching the TOML section structure:
  storage.sqlite_path, wordvec.path, cache.size,
  search.shards, search.top_k, backfill.batch_size

Use subcommands to get, set, or list configuration values:
  chatvault config set <key> <value>    Set a configuration value
  chatvault config get <key>            Get a configuration value
  chatvault config list                 List all configuration values

Examples:
  chatvault config set wordvec.path ~/.chatvault/glove.6B.100d.txt
  chatvault config set search.top_k 10
  chatvault config get storage.sqlite_path
  chatvault config list`

const configShortDesc string = "Manage persistent chatvault configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}
