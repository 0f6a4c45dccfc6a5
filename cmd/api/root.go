package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/user/price-scraper/pkg/config"
	"github.com/user/price-scraper/pkg/logger"
)

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "api",
		Short:         "Product price scraper API",
		Long:          `Scrapes product listings into PostgreSQL and serves them over a REST API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	root.AddCommand(newServeCommand())
	root.AddCommand(newMigrateCommand())
	root.AddCommand(newScrapeCommand())
	return root
}

// bootstrap loads configuration and builds the logger every command shares.
func bootstrap(logOut io.Writer) (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if logOut == nil {
		logOut = os.Stdout
	}
	log, err := logger.New(logOut, cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}
