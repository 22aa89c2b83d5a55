package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"looksee/internal/logging"
	"looksee/internal/service/publish"
)

func newPublishCmd(a *app, configPath *string) *cobra.Command {
	var serverURL string
	cmd := &cobra.Command{
		Use:   "publish <document.qmd>",
		Short: "Render a Quarto document and publish it to a Connect server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.loadConfig(*configPath); err != nil {
				return err
			}
			logger, closeLog, err := logging.Setup(a.cfg)
			if err != nil {
				return err
			}
			a.closers = append(a.closers, closeLog)

			if serverURL == "" {
				serverURL = a.cfg.Publish.ServerURL
			}
			if serverURL == "" {
				return fmt.Errorf("no server URL: pass --server or set publish.server_url")
			}

			svc := publish.New(nil, logger.With("component", "publish"))
			return svc.RenderAndPublish(cmd.Context(), args[0], serverURL)
		},
	}
	cmd.Flags().StringVar(&serverURL, "server", "", "target Connect server URL")
	return cmd
}
