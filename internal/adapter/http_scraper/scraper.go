package http_scraper

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/user/price-scraper/internal/entity"
	"github.com/user/price-scraper/internal/repository"
	"github.com/user/price-scraper/pkg/metrics"
	"github.com/user/price-scraper/pkg/utils"
)

// DefaultCourtesyDelay is the pause owed to a host after a successful pass.
const DefaultCourtesyDelay = time.Second

// Scraper pairs a Fetcher with an Extractor and applies the courtesy delay
// per target host. Scrapes of different hosts never wait on each other.
type Scraper struct {
	fetcher   *Fetcher
	extractor *Extractor
	gate      repository.CourtesyGate
	delay     time.Duration
	logger    *zap.Logger
}

// NewScraper creates a Scraper. A nil gate or a zero delay disables the courtesy delay.
func NewScraper(fetcher *Fetcher, extractor *Extractor, gate repository.CourtesyGate, delay time.Duration, logger *zap.Logger) *Scraper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scraper{
		fetcher:   fetcher,
		extractor: extractor,
		gate:      gate,
		delay:     delay,
		logger:    logger.With(zap.String("component", "scraper")),
	}
}

// Scrape runs Fetch → Extract → courtesy hold for one URL.
func (s *Scraper) Scrape(ctx context.Context, rawURL string) (entity.ScrapeResult, error) {
	host, err := utils.Host(rawURL)
	if err != nil {
		return nil, repository.NewFetchError(repository.KindInvalidURL, rawURL, 0, err)
	}

	if s.gate != nil {
		if err := s.gate.Wait(ctx, host); err != nil {
			return nil, classifyTransportError(rawURL, err)
		}
	}

	start := time.Now()
	page, err := s.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		s.logger.Error("Request error when scraping", zap.String("url", rawURL), zap.Error(err))
		return nil, err
	}

	products := s.extractor.Extract(page)
	metrics.ScrapeDuration.WithLabelValues(host).Observe(time.Since(start).Seconds())

	if s.gate != nil && s.delay > 0 {
		if err := s.gate.Hold(ctx, host, s.delay); err != nil {
			// The page is already scraped; a missed hold only costs politeness.
			s.logger.Warn("Failed to record courtesy delay", zap.String("host", host), zap.Error(err))
		}
	}

	s.logger.Info("Successfully scraped products",
		zap.String("url", rawURL),
		zap.Int("count", len(products)),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
	return products, nil
}
