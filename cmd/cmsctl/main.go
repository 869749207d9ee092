// Package main provides cmsctl, the maintenance CLI for the content database.
package main

import (
	"fmt"
	"os"

	"github.com/centaura/cms/internal/config"
	"github.com/centaura/cms/internal/db"
	"github.com/centaura/cms/internal/logger"
	"github.com/spf13/cobra"
)

var (
	cfg config.AppConfig
	log *logger.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "cmsctl",
	Short: "Maintenance commands for the Centaura content database",
	Long: `cmsctl imports seed content and manages editor accounts.
Database and logging settings come from the same environment
variables the server reads.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			log.Sync()
		}
	},
}

func init() {
	rootCmd.AddCommand(newSeedCmd())
	rootCmd.AddCommand(newCreateUserCmd())
}

// setup loads config and opens the database once per invocation.
func setup(cmd *cobra.Command, args []string) error {
	cfg = config.Load()

	var err error
	log, err = logger.New(cfg.LogMode)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	if err := db.Init(cfg.DatabaseDSN()); err != nil {
		return fmt.Errorf("init database: %w", err)
	}
	return nil
}
