// Command smartspeakctl runs maintenance tasks against the SmartSpeak database
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"smartspeak/internal/config"
	"smartspeak/internal/database"
	"smartspeak/internal/logger"
)

var logMode string

var rootCmd = &cobra.Command{
	Use:   "smartspeakctl",
	Short: "SmartSpeak database maintenance",
	Long: `Maintenance commands for a SmartSpeak installation.

The database is selected the same way the server selects it:
  DATABASE_TYPE    sqlite, postgres or mysql (default: sqlite)
  DB_PATH          SQLite database path (default: ./smartspeak.db)
  DATABASE_URL     PostgreSQL or MySQL connection URL`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logMode, "log-mode", "", "Log mode, development or production (default: LOG_MODE)")
	rootCmd.AddCommand(exportCmd, importCmd, migrateCmd, ensureAdminCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// env is what every subcommand needs: configuration, a logger and a migrated database
type env struct {
	cfg *config.Config
	log *logger.Logger
	db  *database.DB
}

func openEnv() (*env, error) {
	cfg := config.Load()
	mode := logMode
	if mode == "" {
		mode = cfg.LogMode
	}
	log, err := logger.New(mode)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Run migrations to ensure schema is up to date
	if _, err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return &env{cfg: cfg, log: log, db: db}, nil
}

func (e *env) Close() {
	e.db.Close()
	e.log.Sync()
}
