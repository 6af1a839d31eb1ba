package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/kakaka820/Titanic/internal/config"
	"github.com/kakaka820/Titanic/internal/logging"
	"github.com/kakaka820/Titanic/pkg/analysis"
)

var (
	configPath string
	logLevel   string
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	rootCmd := newRootCommand()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logging.LogError(logging.New(logLevel), "titanic", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "titanic <csv_path>",
		Short: "Rank passenger features and compare transport classifiers",
		Long: `titanic loads a passenger table (CSV or XLSX), imputes missing values,
derives engineered features, ranks feature importance with a random forest and
compares four classifier families. The result is one JSON document on stdout.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			a := newAnalyzer(cfg, logging.WithRunID(logger), nil)
			res, err := a.RunFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return res.WriteJSON(cmd.OutOrStdout())
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a config file (yaml, json or toml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level override (debug, info, warn, error)")

	rootCmd.AddCommand(newEDACommand())
	rootCmd.AddCommand(newPlotCommand())
	rootCmd.AddCommand(newServeCommand())
	return rootCmd
}

// setup loads configuration and builds the stderr logger.
func setup() (*config.Config, *logrus.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	return cfg, logging.New(cfg.Log.Level), nil
}

func newAnalyzer(cfg *config.Config, logger logrus.FieldLogger, rec analysis.Recorder) *analysis.Analyzer {
	return analysis.NewAnalyzer(analysis.Options{
		Seed:        cfg.Analysis.Seed,
		Trees:       cfg.Analysis.Trees,
		Folds:       cfg.Analysis.Folds,
		TestRatio:   cfg.Analysis.TestRatio,
		TopFeatures: cfg.Analysis.TopFeatures,
	}, logger, rec)
}
