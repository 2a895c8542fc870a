package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// configPath points at an explicit config file; empty means the default
// search locations.
var configPath string

var rootCmd = &cobra.Command{
	Use:   "modelhub-web",
	Short: "Front server for the model hub",
	Long: `modelhub-web serves the model hub front page and proxies /api/* to the
model management API.

  modelhub-web                    # same as serve
  modelhub-web serve              # run the server
  modelhub-web routes             # print the rewrite table
  modelhub-web --config app.yaml  # use an explicit config file`,
	SilenceUsage: true,
	RunE:         runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: ./config/config.yaml or ./config.yaml)")
}

// Execute runs the root command.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		return fmt.Errorf("cli error: %w", err)
	}
	return nil
}
