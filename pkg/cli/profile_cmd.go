package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"looksee/internal/domain"
)

func newProfileCmd(a *app, configPath *string) *cobra.Command {
	var declaredName string
	cmd := &cobra.Command{
		Use:   "profile <file>",
		Short: "Ingest a dataset and print per-column metadata",
		Example: `  # Profile a local CSV
  looksee profile data/orders.csv

  # Profile a remote parquet file
  looksee profile https://example.com/trips.parquet --output json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(*configPath); err != nil {
				return err
			}

			src := domain.Source{Location: args[0], DeclaredName: declaredName}
			if !a.ingest.Ingest(cmd.Context(), src) {
				return fmt.Errorf("ingestion of %q failed (see %s)", args[0], a.cfg.Settings.LogFile)
			}

			for _, f := range a.ingest.LastFindings() {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: column %s: %d row(s) do not fit declared type %s\n",
					f.Column, f.MismatchCount, f.DeclaredType)
			}

			records := a.profile.ExtractMetadata(cmd.Context())
			if getOutputFormat(cmd) == "json" {
				return printJSON(cmd.OutOrStdout(), records)
			}
			printMetadataTable(cmd.OutOrStdout(), records)
			return nil
		},
	}
	cmd.Flags().StringVar(&declaredName, "declared-name", "", "original filename, when <file> is a renamed temp path")
	return cmd
}
