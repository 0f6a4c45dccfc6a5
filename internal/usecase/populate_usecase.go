package usecase

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/user/price-scraper/internal/entity"
	"github.com/user/price-scraper/internal/repository"
	"github.com/user/price-scraper/pkg/metrics"
	"github.com/user/price-scraper/pkg/utils"
)

var (
	ErrNothingScraped = errors.New("no products found during scraping")
	ErrUnknownSource  = errors.New("unknown scrape source")
)

// Source selects where records come from.
type Source string

const (
	SourceDemo Source = "demo"
	SourceLive Source = "live"
)

// PopulateRequest asks for one scrape. An empty Source means demo when URL
// is empty and live otherwise.
type PopulateRequest struct {
	URL    string
	Source Source
}

// PopulateResult describes what a scrape produced. Source is the source
// that actually supplied the records, which differs from the request on fallback.
type PopulateResult struct {
	Count   int
	Source  Source
	URL     string
	Records entity.ScrapeResult
}

// PopulatorConfig toggles the optional live-scrape behaviours.
type PopulatorConfig struct {
	RespectRobots  bool
	FallbackToDemo bool
}

// Populator defines the interface for scraping products and storing them.
type Populator interface {
	// Collect scrapes without touching the store.
	Collect(ctx context.Context, req PopulateRequest) (*PopulateResult, error)
	// Populate scrapes and replaces the stored products with the result.
	Populate(ctx context.Context, req PopulateRequest) (*PopulateResult, error)
}

type populateUseCase struct {
	scraperRepo repository.ScraperRepository
	catalogRepo repository.CatalogRepository
	robotsRepo  repository.RobotsPolicy
	productRepo repository.ProductRepository
	cfg         PopulatorConfig
	logger      *zap.Logger
}

// NewPopulator creates a new Populator use case. robotsRepo may be nil.
func NewPopulator(
	scraperRepo repository.ScraperRepository,
	catalogRepo repository.CatalogRepository,
	robotsRepo repository.RobotsPolicy,
	productRepo repository.ProductRepository,
	cfg PopulatorConfig,
	logger *zap.Logger,
) Populator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &populateUseCase{
		scraperRepo: scraperRepo,
		catalogRepo: catalogRepo,
		robotsRepo:  robotsRepo,
		productRepo: productRepo,
		cfg:         cfg,
		logger:      logger.With(zap.String("component", "populator")),
	}
}

func (uc *populateUseCase) Collect(ctx context.Context, req PopulateRequest) (*PopulateResult, error) {
	source := req.Source
	if source == "" {
		source = SourceDemo
		if req.URL != "" {
			source = SourceLive
		}
	}

	var (
		records entity.ScrapeResult
		target  string
	)
	switch source {
	case SourceDemo:
		records = uc.catalogRepo.Catalog()
	case SourceLive:
		var err error
		target, records, err = uc.scrapeLive(ctx, req.URL)
		if err != nil {
			if !uc.shouldFallback(err) {
				recordScrape(source, err)
				return nil, err
			}
			uc.logger.Warn("Live scrape failed, falling back to demo data",
				zap.String("url", req.URL), zap.Error(err))
			recordScrape(source, err)
			source = SourceDemo
			records = uc.catalogRepo.Catalog()
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSource, source)
	}

	records = records.Valid()
	if len(records) == 0 {
		recordScrape(source, ErrNothingScraped)
		return nil, ErrNothingScraped
	}
	recordScrape(source, nil)

	return &PopulateResult{
		Count:   len(records),
		Source:  source,
		URL:     target,
		Records: records,
	}, nil
}

func (uc *populateUseCase) Populate(ctx context.Context, req PopulateRequest) (*PopulateResult, error) {
	res, err := uc.Collect(ctx, req)
	if err != nil {
		return nil, err
	}

	n, err := uc.productRepo.ReplaceAll(ctx, res.Records)
	if err != nil {
		return nil, fmt.Errorf("failed to store scraped products: %w", err)
	}
	res.Count = n

	uc.logger.Info("Stored scraped products",
		zap.String("source", string(res.Source)),
		zap.String("url", res.URL),
		zap.Int("count", n),
	)
	return res, nil
}

// scrapeLive normalizes rawURL, checks robots.txt and scrapes the page.
func (uc *populateUseCase) scrapeLive(ctx context.Context, rawURL string) (string, entity.ScrapeResult, error) {
	if _, err := utils.ParseScrapeURL(rawURL); err != nil {
		return "", nil, repository.NewFetchError(repository.KindInvalidURL, rawURL, 0, err)
	}
	target, err := utils.Normalize(rawURL)
	if err != nil {
		return "", nil, repository.NewFetchError(repository.KindInvalidURL, rawURL, 0, err)
	}

	if uc.cfg.RespectRobots && uc.robotsRepo != nil {
		allowed, err := uc.robotsRepo.Allowed(ctx, target)
		switch {
		case err != nil:
			uc.logger.Warn("robots.txt check failed, assuming allowed", zap.String("url", target), zap.Error(err))
		case !allowed:
			return target, nil, repository.NewFetchError(repository.KindDisallowed, target, 0, nil)
		}
	}

	records, err := uc.scraperRepo.Scrape(ctx, target)
	if err != nil {
		return target, nil, err
	}
	return target, records, nil
}

// shouldFallback keeps caller mistakes visible even when demo fallback is on.
func (uc *populateUseCase) shouldFallback(err error) bool {
	if !uc.cfg.FallbackToDemo {
		return false
	}
	return !errors.Is(err, repository.ErrInvalidURL) && !errors.Is(err, context.Canceled)
}

func recordScrape(source Source, err error) {
	if err == nil {
		metrics.ScrapesTotal.WithLabelValues(string(source), "success", "").Inc()
		return
	}

	errorType := "unknown"
	if fe, ok := repository.AsFetchError(err); ok {
		errorType = string(fe.Kind)
	} else if errors.Is(err, ErrNothingScraped) {
		errorType = "empty"
	}
	metrics.ScrapesTotal.WithLabelValues(string(source), "failure", errorType).Inc()
}
