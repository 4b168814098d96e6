package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/soaringjerry/findrisc/internal/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending SQLite migrations and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.SQLitePath == "" {
			return errors.New("sqlite_path is required (set FINDRISC_SQLITE_PATH or sqlite_path in the config file)")
		}
		conn, err := db.Open(cfg.SQLitePath)
		if err != nil {
			return err
		}
		defer conn.Close()
		applied, err := db.RunMigrations(conn, cfg.MigrationsDir)
		if err != nil {
			return err
		}
		if len(applied) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
			return nil
		}
		for _, f := range applied {
			fmt.Fprintln(cmd.OutOrStdout(), "applied", f)
		}
		return nil
	},
}
