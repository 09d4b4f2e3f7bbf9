package payhook

import "github.com/spf13/cobra"

// NewRootCmd returns the Cobra entrypoint for the CLI/server.
func NewRootCmd() *cobra.Command {
	configPath = "config.yaml"
	root := &cobra.Command{
		Use:   "payhook",
		Short: "PayPal webhook normalizer and dispatcher",
		Long: "payhook ingests PayPal webhook notifications, normalizes them into flat " +
			"records, persists them to a record store and a tabular row sink, and " +
			"publishes matching events to configurable bus topics.",
		Example: "  payhook serve --config config.yaml",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", configPath, "Path to config file")
	root.AddCommand(newServeCmd())
	return root
}

var configPath string
