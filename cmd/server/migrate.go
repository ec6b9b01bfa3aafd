package main

import (
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		// newApp migrates on open
		a, err := newApp()
		if err != nil {
			return err
		}
		a.Close()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
