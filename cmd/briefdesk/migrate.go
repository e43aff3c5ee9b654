package main

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vbonduro/briefdesk/internal/config"
	"github.com/vbonduro/briefdesk/internal/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the local draft database schema",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply pending migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		// Opening the database applies pending migrations.
		return withDatabase(func(database *sql.DB) error {
			return printVersion(cmd, database)
		})
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back every migration, dropping all local drafts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withDatabase(func(database *sql.DB) error {
			if err := db.MigrateDown(database); err != nil {
				return err
			}
			return printVersion(cmd, database)
		})
	},
}

var migrateVersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the applied schema version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withDatabase(func(database *sql.DB) error {
			return printVersion(cmd, database)
		})
	},
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd, migrateVersionCmd)
}

func withDatabase(fn func(*sql.DB) error) (err error) {
	cfg := config.Load()
	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := database.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close database: %w", cerr)
		}
	}()
	return fn(database)
}

func printVersion(cmd *cobra.Command, database *sql.DB) error {
	v, dirty, err := db.Version(database)
	if err != nil {
		return err
	}
	if dirty {
		cmd.Printf("schema version %d (dirty)\n", v)
		return nil
	}
	cmd.Printf("schema version %d\n", v)
	return nil
}
