package main

import (
	"fmt"
	"time"

	"github.com/jengzang/mobility-metrics-go/internal/config"
	"github.com/jengzang/mobility-metrics-go/internal/middleware"
	"github.com/spf13/cobra"
)

var (
	optSubject string
	optTTL     time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a bearer token for the write routes",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(optConfigFile)
		if err != nil {
			return err
		}
		if !cfg.AuthEnabled() {
			return fmt.Errorf("jwt_secret is not configured")
		}

		token, err := middleware.IssueToken(cfg.JWTSecret, optSubject, optTTL)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tokenCmd)
	tokenCmd.Flags().StringVar(&optSubject, "subject", "admin", "token subject")
	tokenCmd.Flags().DurationVar(&optTTL, "ttl", 24*time.Hour, "token lifetime")
}
