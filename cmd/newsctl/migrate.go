package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"amazetimes/internal/infra/db"

	"github.com/spf13/cobra"
)

var errNoDSN = errors.New("migrations need a PostgreSQL DSN (--dsn or DATABASE_URL)")

func newMigrateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back the database schema",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Create the schema and seed the party table",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return a.migrate(cmd.Context(), db.MigrateUp, cmd, "schema is up to date")
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Drop every table",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return a.migrate(cmd.Context(), db.MigrateDown, cmd, "schema dropped")
			},
		},
	)
	return cmd
}

func (a *app) migrate(ctx context.Context, step func(context.Context, *sql.DB) error, cmd *cobra.Command, done string) error {
	if a.dsn == "" {
		return errNoDSN
	}
	conn, err := db.Open(ctx, a.dsn, db.ConnectionConfigFromEnv())
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	if err := step(ctx, conn); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), done)
	return nil
}
