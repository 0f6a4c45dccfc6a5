package repository

import (
	"context"
	"time"

	"github.com/user/price-scraper/internal/entity"
)

// ScraperRepository defines the contract for fetching one page and extracting its products.
type ScraperRepository interface {
	// Scrape returns a *FetchError for page-level failures. An empty result is not an error.
	Scrape(ctx context.Context, url string) (entity.ScrapeResult, error)
}

// CatalogRepository produces records without any network access.
type CatalogRepository interface {
	Catalog() entity.ScrapeResult
}

// RobotsPolicy reports whether a URL may be fetched.
type RobotsPolicy interface {
	Allowed(ctx context.Context, url string) (bool, error)
}

// CourtesyGate spaces consecutive scrapes of the same host.
type CourtesyGate interface {
	// Wait blocks until no courtesy hold is active for host, or ctx is done.
	Wait(ctx context.Context, host string) error
	// Hold starts a courtesy hold of d for host. A non-positive d is a no-op.
	Hold(ctx context.Context, host string, d time.Duration) error
}
