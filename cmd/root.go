package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"headless-cms-backend/pkg/config"
	"headless-cms-backend/pkg/database"
	"headless-cms-backend/pkg/logger"
	"headless-cms-backend/pkg/server"
)

var (
	flagDriver string
	flagDSN    string
	flagDebug  bool
)

var rootCmd = &cobra.Command{
	Use:   "cms",
	Short: "Headless CMS backend",
	Long: `cms serves the headless content API and manages its storage.

Examples:

  cms serve
  cms migrate
  cms validate -f blog.yaml
  cms apply -f blog.yaml
  cms collections
`,
	SilenceUsage: true,
}

// Execute runs the CLI
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println("❌", err)
		os.Exit(1)
	}
}

// Register subcommands
func init() {
	rootCmd.PersistentFlags().StringVar(&flagDriver, "driver", "", "Database driver (sqlite, postgres, pgx); overrides DATABASE_DRIVER")
	rootCmd.PersistentFlags().StringVar(&flagDSN, "dsn", "", "PostgreSQL DSN or SQLite path; overrides DATABASE_URL / SQLITE_PATH")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Verbose logging")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(applyCmd)
	rootCmd.AddCommand(collectionsCmd)
}

// loadConfig reads the environment and applies command line overrides.
func loadConfig() *config.Config {
	cfg := config.LoadConfig()
	if flagDriver != "" {
		cfg.DatabaseDriver = flagDriver
	}
	if flagDSN != "" {
		if d, err := database.ParseDialect(cfg.DatabaseDriver); err == nil && d == database.SQLite {
			cfg.SQLitePath = flagDSN
		} else {
			cfg.DatabaseURL = flagDSN
		}
	}
	if flagDebug {
		cfg.Debug = true
	}
	return cfg
}

// openDatabase connects and applies the schema for one-shot commands.
func openDatabase(ctx context.Context, cfg *config.Config, log *zap.SugaredLogger) (*database.DB, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}
	db, err := database.Open(ctx, server.DatabaseConfig(cfg), log)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func newLogger(cfg *config.Config) (*zap.SugaredLogger, error) {
	return logger.New(cfg.Debug)
}
