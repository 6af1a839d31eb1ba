package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/kakaka820/Titanic/internal/logging"
)

func newEDACommand() *cobra.Command {
	return &cobra.Command{
		Use:   "eda <csv_path>",
		Short: "Print per-feature transport rates as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			summary, err := newAnalyzer(cfg, logging.WithRunID(logger), nil).Explore(args[0])
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(summary)
		},
	}
}
