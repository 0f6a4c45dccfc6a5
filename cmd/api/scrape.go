package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/user/price-scraper/internal/adapter/http_scraper"
	"github.com/user/price-scraper/internal/adapter/postgres"
	"github.com/user/price-scraper/internal/repository"
	"github.com/user/price-scraper/internal/usecase"
)

func newScrapeCommand() *cobra.Command {
	var (
		store   bool
		source  string
		markers = http_scraper.DefaultItemMarkers()
	)

	cmd := &cobra.Command{
		Use:   "scrape [url]",
		Short: "Scrape one page (or the demo catalog) and print the records as JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Logs go to stderr so stdout stays valid JSON.
			cfg, log, err := bootstrap(os.Stderr)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			ctx := cmd.Context()
			deps, err := newScrapeDeps(ctx, cfg, markers, log)
			if err != nil {
				return err
			}
			defer deps.close()

			var productRepo repository.ProductRepository
			if store {
				pool, err := openDatabase(ctx, cfg, cfg.AutoMigrate, log)
				if err != nil {
					return err
				}
				defer pool.Close()
				productRepo = postgres.NewProductRepo(pool)
			}

			populator := usecase.NewPopulator(deps.scraper, deps.catalog, deps.robots, productRepo,
				usecase.PopulatorConfig{
					RespectRobots:  cfg.RespectRobots,
					FallbackToDemo: cfg.FallbackToDemo,
				}, log)

			req := usecase.PopulateRequest{Source: usecase.Source(source)}
			if len(args) == 1 {
				req.URL = args[0]
			}

			var res *usecase.PopulateResult
			if store {
				res, err = populator.Populate(ctx, req)
			} else {
				res, err = populator.Collect(ctx, req)
			}
			if err != nil {
				return fmt.Errorf("scrape failed: %w", err)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(res.Records)
		},
	}

	cmd.Flags().BoolVar(&store, "store", false, "replace the stored products with the result")
	cmd.Flags().StringVar(&source, "source", "", `"demo" or "live" (default: live when a URL is given)`)
	cmd.Flags().StringVar(&markers.Container, "container", markers.Container, "CSS selector of one product item")
	cmd.Flags().StringVar(&markers.Name, "name", markers.Name, "CSS selector of the name inside an item")
	cmd.Flags().StringVar(&markers.Price, "price", markers.Price, "CSS selector of the price inside an item")
	cmd.Flags().StringVar(&markers.Link, "link", markers.Link, "CSS selector of the link inside an item")
	cmd.Flags().StringVar(&markers.Description, "description", markers.Description, "CSS selector of the description inside an item")
	return cmd
}
