// Package commands implements the ta-indexer command line.
package commands

import (
	"github.com/futig/virtual-ta/internal/builder"
	"github.com/spf13/cobra"
)

const indexerLongDesc string = `ta-indexer prepares the data the virtual TA answers from.

  ta-indexer migrate               Create the forum post tables
  ta-indexer import posts.json     Load scraped forum posts
  ta-indexer build --pages dir     Chunk, embed and write the index snapshot`

const indexerShortDesc string = "Build the virtual TA index snapshot"

func NewIndexerCmd() *cobra.Command {
	var env string

	cmd := &cobra.Command{
		Use:          "ta-indexer",
		Short:        indexerShortDesc,
		Long:         indexerLongDesc,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&env, "env", "e", "local", "Environment name, selects the .env.<env> file")

	open := func(cmd *cobra.Command) (*builder.Indexer, error) {
		return builder.BuildIndexer(cmd.Context(), env)
	}

	cmd.AddCommand(newMigrateCmd(open))
	cmd.AddCommand(newImportCmd(open))
	cmd.AddCommand(newBuildCmd(open))

	return cmd
}

type indexerOpener func(cmd *cobra.Command) (*builder.Indexer, error)
