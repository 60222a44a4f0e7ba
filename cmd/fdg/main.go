// Command fdg is the terminal client of the Flor de Grace inventory system.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/sbilibin2017/fdg-inventory-auth/internal/logger"
	"github.com/sbilibin2017/fdg-inventory-auth/internal/repositories"
)

var (
	configPath string
	endpoint   string
	loginPath  string
	shape      string
	storePath  string
	verbose    bool

	// loaded by rootCmd before any subcommand runs
	cfg clientConfig
)

var rootCmd = &cobra.Command{
	Use:   "fdg",
	Short: "Flor de Grace School inventory client",
	Long: `Terminal client of the Flor de Grace School, Inc inventory management system.

Sign in with 'fdg login'. The session is kept in a local store
so later commands can use it until 'fdg logout'.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", defaultConfigPath(), "Path to client configuration file")
	rootCmd.PersistentFlags().StringVar(&endpoint, "endpoint", "", "Authentication server base URL")
	rootCmd.PersistentFlags().StringVar(&loginPath, "path", "", "Login path on the server (/api/login or /login)")
	rootCmd.PersistentFlags().StringVar(&shape, "shape", "", "Login response shape: token or user")
	rootCmd.PersistentFlags().StringVar(&storePath, "store", "", "Path to the local session store")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(logoutCmd)
}

// loadConfig merges the YAML file with flags and starts file logging.
func loadConfig(cmd *cobra.Command, _ []string) error {
	loaded, err := loadClientConfig(configPath, cmd.Flags().Changed("config"))
	if err != nil {
		return err
	}

	if endpoint != "" {
		loaded.Endpoint = endpoint
	}
	if loginPath != "" {
		loaded.Path = loginPath
	}
	if shape != "" {
		loaded.Shape = shape
	}
	if storePath != "" {
		loaded.StorePath = storePath
	}
	if verbose {
		loaded.LogLevel = "debug"
	}
	cfg = loaded

	// the terminal belongs to the UI, logs go to a file
	if cfg.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o755); err != nil {
			return fmt.Errorf("create log directory: %w", err)
		}
		if err := logger.Initialize(cfg.LogLevel, cfg.LogFile); err != nil {
			return fmt.Errorf("initialize logger: %w", err)
		}
	}
	return nil
}

// openStore opens the local session store.
func openStore(ctx context.Context) (*repositories.SQLiteKVRepository, *sqlx.DB, error) {
	db, err := repositories.OpenSQLite(ctx, cfg.StorePath)
	if err != nil {
		return nil, nil, fmt.Errorf("open session store: %w", err)
	}
	return repositories.NewSQLiteKVRepository(db), db, nil
}

func main() {
	defer logger.Sync()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
