package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"jobmatrimony/config"
	"jobmatrimony/db"
)

func newMigrateCmd(load loader) *cobra.Command {
	var reset bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := load()
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			if cfg.Store.Driver != config.DriverPostgres {
				return fmt.Errorf("migrate: store.driver is %q, migrations need %q", cfg.Store.Driver, config.DriverPostgres)
			}

			ctx := cmd.Context()
			pool, err := db.NewPool(ctx, cfg.Database.URL, cfg.Database.MaxConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			if reset {
				if err := db.Reset(ctx, pool); err != nil {
					return err
				}
				logger.Warn("database reset")
			}
			applied, err := db.Migrate(ctx, pool, logger)
			if err != nil {
				return err
			}
			logger.Info("migrations applied", zap.Int("count", applied))
			fmt.Fprintf(cmd.OutOrStdout(), "applied %d migration(s)\n", applied)
			return nil
		},
	}
	cmd.Flags().BoolVar(&reset, "reset", false, "drop every table before migrating")
	return cmd
}
