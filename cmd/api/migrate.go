package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/user/price-scraper/internal/adapter/postgres"
)

func newMigrateCommand() *cobra.Command {
	var (
		down    bool
		steps   int
		version bool
	)

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply (or roll back) database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap(os.Stdout)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			pool, err := openDatabase(cmd.Context(), cfg, false, log)
			if err != nil {
				return err
			}
			defer pool.Close()

			switch {
			case version:
				v, dirty, err := postgres.MigrationVersion(pool)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty: %t)\n", v, dirty)
				return nil
			case down:
				return postgres.MigrateDown(pool, steps, log)
			default:
				log.Info("Running migrations", zap.String("direction", "up"))
				return postgres.RunMigrations(pool, log)
			}
		},
	}

	cmd.Flags().BoolVar(&down, "down", false, "roll back instead of applying")
	cmd.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back with --down")
	cmd.Flags().BoolVar(&version, "version", false, "print the applied migration version and exit")
	return cmd
}
