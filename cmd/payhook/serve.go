package payhook

import (
	"github.com/spf13/cobra"

	"payhook/pkg/server"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the webhook server",
		Long: "Run the webhook server that ingests PayPal webhooks, normalizes payloads, " +
			"persists records, and publishes matching events to configured topics.",
		Example: "  payhook serve --config config.yaml",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return server.RunConfig(configPath)
		},
	}
	return cmd
}
