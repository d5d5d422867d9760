package commands

import (
	"github.com/spf13/cobra"
)

func newMigrateCmd(open indexerOpener) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply forum post store migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			indexer, err := open(cmd)
			if err != nil {
				return err
			}
			defer indexer.Close()

			return indexer.Migrate()
		},
	}
}
