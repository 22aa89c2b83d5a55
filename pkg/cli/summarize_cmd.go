package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"looksee/internal/domain"
)

func newSummarizeCmd(a *app, configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summarize <file> <column>",
		Short: "Ingest a dataset and print summary statistics for one column",
		Long: `Summary statistics depend on the column's type family: numeric columns get
min/max/mean/stddev, temporal columns min/max, everything else distinct and
null counts. Columns with five or fewer distinct values list them.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(*configPath); err != nil {
				return err
			}

			if !a.ingest.Ingest(cmd.Context(), domain.Source{Location: args[0]}) {
				return fmt.Errorf("ingestion of %q failed (see %s)", args[0], a.cfg.Settings.LogFile)
			}
			return printJSON(cmd.OutOrStdout(), a.profile.Summarize(cmd.Context(), args[1]))
		},
	}
	return cmd
}
