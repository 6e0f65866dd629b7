package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/shopfront/database/seeders"
	"github.com/shashiranjanraj/shopfront/pkg/database"
	"github.com/shashiranjanraj/shopfront/pkg/migration"
)

func runner(cmd *cobra.Command) (*migration.Runner, error) {
	if err := bootDB(cmd.Context()); err != nil {
		return nil, err
	}
	return migration.New(database.DB, cmd.OutOrStdout()), nil
}

// shopfront migrate
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the MongoDB indexes that have not been applied yet",
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := runner(cmd)
		if err != nil {
			return err
		}
		defer database.Disconnect(context.Background())
		fmt.Fprintln(cmd.OutOrStdout(), "Running migrations…")
		return r.Run(cmd.Context())
	},
}

// shopfront migrate:rollback
var migrateRollbackCmd = &cobra.Command{
	Use:   "migrate:rollback",
	Short: "Roll back the last batch of migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := runner(cmd)
		if err != nil {
			return err
		}
		defer database.Disconnect(context.Background())
		fmt.Fprintln(cmd.OutOrStdout(), "Rolling back last batch…")
		return r.Rollback(cmd.Context())
	},
}

// shopfront migrate:status
var migrateStatusCmd = &cobra.Command{
	Use:   "migrate:status",
	Short: "Show the status of each migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := runner(cmd)
		if err != nil {
			return err
		}
		defer database.Disconnect(context.Background())
		return r.Status(cmd.Context())
	},
}

// shopfront seed
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert the admin account and demo catalogue",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, release, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer release()
		fmt.Fprintln(cmd.OutOrStdout(), "Running seeders…")
		return seeders.RunAll(cmd.Context(), store, cmd.OutOrStdout())
	},
}
