package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"valentine/internal/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.DatabaseURL == "" {
			return fmt.Errorf("missing env: DATABASE_URL")
		}
		gdb, err := db.Connect(cfg.DatabaseURL)
		if err != nil {
			return err
		}
		if err := db.Migrate(cmd.Context(), gdb); err != nil {
			return err
		}
		v, err := db.Status(cmd.Context(), gdb)
		if err != nil {
			return err
		}
		logger.Info("migrations applied", zap.Int64("version", v))
		return nil
	},
}
