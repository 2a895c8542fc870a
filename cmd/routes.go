package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/angeloszaimis/modelhub-web/config"
	"github.com/angeloszaimis/modelhub-web/internal/rewrite"
)

var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "Print the compiled rewrite table",
	RunE:  runRoutes,
}

func init() {
	rootCmd.AddCommand(routesCmd)
}

func runRoutes(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadFile(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	router, err := rewrite.Compile(rewriteTable(cfg.Rewrites))
	if err != nil {
		return fmt.Errorf("compile rewrites: %w", err)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SOURCE\tDESTINATION")
	for _, rule := range router.Rules() {
		fmt.Fprintf(w, "%s\t%s\n", rule.Source, rule.Destination)
	}
	return w.Flush()
}
