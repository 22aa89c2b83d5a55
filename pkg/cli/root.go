// Package cli implements the looksee command tree.
package cli

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"looksee/internal/config"
	"looksee/internal/engine"
	"looksee/internal/logging"
	"looksee/internal/service/ingest"
	"looksee/internal/service/profile"
)

// app carries the lazily-opened engine and services shared by subcommands.
type app struct {
	cfg     *config.Config
	log     *slog.Logger
	db      *sql.DB
	ingest  *ingest.Service
	profile *profile.Service

	closers []func() error
}

// open loads configuration, sets up logging, and opens the engine. Called by
// commands that need the profiling core; the catalog-only commands load just
// the config.
func (a *app) open(configPath string) error {
	if a.db != nil {
		return nil
	}
	if err := a.loadConfig(configPath); err != nil {
		return err
	}

	logger, closeLog, err := logging.Setup(a.cfg)
	if err != nil {
		return err
	}
	a.log = logger
	a.closers = append(a.closers, closeLog)

	db, err := engine.Open()
	if err != nil {
		return err
	}
	a.db = db
	a.closers = append(a.closers, db.Close)

	table := a.cfg.Settings.DefaultTableName
	a.ingest = ingest.New(db, a.cfg, table, logger.With("component", "ingest"))
	a.profile = profile.New(db, table, logger.With("component", "profile"))
	return nil
}

func (a *app) loadConfig(configPath string) error {
	if a.cfg != nil {
		return nil
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg
	return nil
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		_ = a.closers[i]()
	}
}

// NewRootCmd builds the looksee command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}

	var configPath string
	root := &cobra.Command{
		Use:           "looksee",
		Short:         "Interactive dataset profiling backed by DuckDB",
		Long:          "looksee ingests a tabular file (CSV, TSV, Parquet, JSON) into an\nanalytical table and reports per-column metadata and summary statistics.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPostRun: func(*cobra.Command, []string) {
			a.close()
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", defaultConfigPath(), "path to the configuration file")
	root.PersistentFlags().StringP("output", "o", "table", "output format: table or json")
	// Accept underscored flag spellings (--declared_name) alongside the
	// canonical dashed ones.
	root.PersistentFlags().SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	root.AddCommand(
		newProfileCmd(a, &configPath),
		newSummarizeCmd(a, &configPath),
		newDatasetsCmd(a, &configPath),
		newPublishCmd(a, &configPath),
		newVersionCmd(),
	)
	return root
}

// defaultConfigPath honours LOOKSEE_CONFIG before falling back to the
// well-known file name.
func defaultConfigPath() string {
	if p := os.Getenv("LOOKSEE_CONFIG"); p != "" {
		return p
	}
	return config.DefaultPath
}

func getOutputFormat(cmd *cobra.Command) string {
	out, _ := cmd.Flags().GetString("output")
	if out != "json" {
		return "table"
	}
	return out
}

// Execute runs the root command, printing any error to stderr.
func Execute() error {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(root.ErrOrStderr(), "Error:", err)
		return err
	}
	return nil
}
