package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"jobmatrimony/config"
	"jobmatrimony/logging"
)

const app = "jobmatrimony"

// Actual version can be specified in build command.
var version = "unknown"

func newRootCmd() *cobra.Command {
	var cfgFile string

	root := &cobra.Command{
		Use:           app,
		Short:         "jobmatrimony serves job search and matrimonial matchmaking over one identity",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is config.yaml in . or ./configs)")

	load := func() (*config.Config, *zap.Logger, error) {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return nil, nil, err
		}
		logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format)
		if err != nil {
			return nil, nil, fmt.Errorf("creating a logger: %w", err)
		}
		return cfg, logger, nil
	}

	root.AddCommand(
		newServeCmd(load),
		newMigrateCmd(load),
		newTokenCmd(load),
		&cobra.Command{
			Use:   "version",
			Short: "Print the version",
			Run: func(cmd *cobra.Command, _ []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s version: %s\n", app, version)
			},
		},
	)
	return root
}

type loader func() (*config.Config, *zap.Logger, error)
