package main

import (
	"github.com/spf13/cobra"

	"github.com/kakaka820/Titanic/internal/chart"
	"github.com/kakaka820/Titanic/internal/logging"
)

func newPlotCommand() *cobra.Command {
	var out, modelsOut string

	cmd := &cobra.Command{
		Use:   "plot <csv_path>",
		Short: "Run the analysis and render the importance ranking as a bar chart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			entry := logging.WithRunID(logger)
			res, err := newAnalyzer(cfg, entry, nil).RunFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := chart.Importances(res.Importances, out); err != nil {
				return err
			}
			entry.WithField("file", out).Info("importance chart saved")
			if modelsOut != "" {
				if err := chart.Models(res.Metrics, modelsOut); err != nil {
					return err
				}
				entry.WithField("file", modelsOut).Info("model chart saved")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "importances.png", "Output image for the importance chart")
	cmd.Flags().StringVar(&modelsOut, "models-out", "", "Optional output image for the model comparison chart")
	return cmd
}
