package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"looksee/internal/catalog"
	"looksee/internal/domain"
)

func newDatasetsCmd(a *app, configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "datasets",
		Short: "List the demo-dataset catalog",
		RunE: func(cmd *cobra.Command, _ []string) error {
			datasets, err := loadDatasets(a, *configPath)
			if err != nil {
				return err
			}
			if getOutputFormat(cmd) == "json" {
				return printJSON(cmd.OutOrStdout(), datasets)
			}
			printDatasetsTable(cmd.OutOrStdout(), datasets)
			return nil
		},
	}
	cmd.AddCommand(newDatasetsProfileCmd(a, configPath))
	return cmd
}

func newDatasetsProfileCmd(a *app, configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "profile <name>",
		Short: "Ingest a demo dataset by name and print its metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			datasets, err := loadDatasets(a, *configPath)
			if err != nil {
				return err
			}
			ds, err := catalog.Find(datasets, args[0])
			if err != nil {
				return err
			}
			if err := a.open(*configPath); err != nil {
				return err
			}
			if !a.ingest.Ingest(cmd.Context(), domain.Source{Location: ds.Location}) {
				return fmt.Errorf("ingestion of dataset %q failed (see %s)", ds.Name, a.cfg.Settings.LogFile)
			}
			records := a.profile.ExtractMetadata(cmd.Context())
			if getOutputFormat(cmd) == "json" {
				return printJSON(cmd.OutOrStdout(), records)
			}
			printMetadataTable(cmd.OutOrStdout(), records)
			return nil
		},
	}
}

func loadDatasets(a *app, configPath string) ([]domain.Dataset, error) {
	if err := a.loadConfig(configPath); err != nil {
		return nil, err
	}
	if a.cfg.Settings.DatasetCatalog == "" {
		return nil, fmt.Errorf("no dataset catalog configured (settings.dataset_catalog)")
	}
	return catalog.Load(a.cfg.Settings.DatasetCatalog)
}
