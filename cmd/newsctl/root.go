// Command newsctl is the operator CLI for the news store, its feed sources
// and the ingestion seen-set.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"amazetimes/internal/i18n"
	"amazetimes/internal/infra/db"
	"amazetimes/internal/infra/storage"
	"amazetimes/internal/observability/logging"
	"amazetimes/internal/preference"
	pkgconfig "amazetimes/pkg/config"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// app carries the state shared by every subcommand.
type app struct {
	driver   string
	dsn      string
	langFile string
	redisURL string
	logger   *slog.Logger

	// open is replaced in tests to share one in-memory store across commands.
	open func(ctx context.Context) (*storage.Store, error)
}

func newApp() *app {
	a := &app{logger: logging.NewTextLogger()}
	a.open = a.openStore
	return a
}

func (a *app) openStore(ctx context.Context) (*storage.Store, error) {
	return storage.Open(ctx, storage.Options{
		Driver: a.driver,
		DSN:    a.dsn,
		Pool:   db.ConnectionConfigFromEnv(),
	})
}

// preferences opens the language preference kept in the operator's config dir.
func (a *app) preferences(ctx context.Context) (*preference.Store, error) {
	path := a.langFile
	if path == "" {
		p, err := preference.DefaultFilePath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	return preference.Open(ctx, preference.NewFilePersister(path)), nil
}

// resolver returns the resolver for the stored language. A preference that
// cannot be located falls back to English.
func (a *app) resolver(ctx context.Context) i18n.Resolver {
	prefs, err := a.preferences(ctx)
	if err != nil {
		a.logger.Warn("language preference unavailable", slog.Any("error", err))
		return i18n.NewResolver(i18n.Default)
	}
	return prefs.Resolver()
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "newsctl",
		Short: "Operate the Amaze Times news site",
		Long: `newsctl manages the bilingual news store from the command line.

Example usage:
  newsctl lang set ta              # Show titles in Tamil
  newsctl articles list --status draft
  newsctl articles create --title-en "..." --title-ta "..." --content-en "..." --content-ta "..."
  newsctl feeds check --json
  newsctl migrate up`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.driver, "storage", pkgconfig.GetEnvString("STORAGE_DRIVER", storage.DriverPostgres), "storage driver (memory or postgres)")
	flags.StringVar(&a.dsn, "dsn", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
	flags.StringVar(&a.langFile, "lang-file", "", "language preference file (default is the user config dir)")
	flags.StringVar(&a.redisURL, "redis", os.Getenv("REDIS_URL"), "Redis URL of the ingestion seen-set")

	root.AddCommand(
		newLangCmd(a),
		newArticlesCmd(a),
		newPartiesCmd(a),
		newMigrateCmd(a),
		newSeenCmd(a),
		newFeedsCmd(a),
	)
	return root
}

func run(args []string, stdout, stderr io.Writer) int {
	_ = godotenv.Load()

	root := newRootCmd(newApp())
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return 1
	}
	return 0
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}
