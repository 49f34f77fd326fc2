package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"jobmatrimony/access"
	"jobmatrimony/domain"
)

func newTokenCmd(load loader) *cobra.Command {
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "token <identity>",
		Short: "Issue a bearer token for local development",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := load()
			if err != nil {
				return err
			}
			token, err := access.NewTokens(cfg.Auth.JWTSecret).Issue(domain.Identity(args[0]), ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return cmd
}
