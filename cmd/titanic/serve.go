package main

import (
	"github.com/spf13/cobra"

	"github.com/kakaka820/Titanic/internal/logging"
	"github.com/kakaka820/Titanic/internal/metrics"
	"github.com/kakaka820/Titanic/internal/server"
	"github.com/kakaka820/Titanic/internal/store"
	"github.com/kakaka820/Titanic/pkg/data"
)

func newServeCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve <csv_path>",
		Short: "Load the passenger table and serve the analysis API",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			ctx := cmd.Context()
			m := metrics.NewMetrics()
			entry := logging.WithRunID(logger)
			a := newAnalyzer(cfg, entry, m)

			var st store.Store = store.NewMemoryStore()
			if cfg.Database.URL != "" {
				pg, err := store.OpenPostgres(ctx, cfg.Database.URL)
				if err != nil {
					return err
				}
				defer pg.Close()
				st = pg
				logging.LogInfo(logger, "using postgres passenger store")
			}

			ps, err := data.LoadPassengers(args[0])
			if err != nil {
				return err
			}
			if err := a.Prepare(ps); err != nil {
				return err
			}
			if err := st.SeedPassengers(ctx, ps); err != nil {
				return err
			}
			entry.WithField("rows", len(ps)).Info("passengers seeded")

			return server.New(st, a, logger, m).ListenAndServe(ctx, cfg.Server.Addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides server.addr)")
	return cmd
}
