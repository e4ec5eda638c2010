package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"accountflow/internal/config"
	"accountflow/internal/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all up migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		dsn, err := postgresURL()
		if err != nil {
			return err
		}
		if err := db.MigrateUp(dsn); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
		return nil
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back the last migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		dsn, err := postgresURL()
		if err != nil {
			return err
		}
		if err := db.MigrateDown(dsn); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "rolled back one migration")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd)
}

func postgresURL() (string, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return "", err
	}
	if cfg.Database.Driver != config.DriverPostgres {
		return "", errors.New("migrations need database.driver=postgres")
	}
	return cfg.Database.DSN, nil
}
