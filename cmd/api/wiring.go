package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/user/price-scraper/internal/adapter/http_scraper"
	"github.com/user/price-scraper/internal/adapter/memory"
	"github.com/user/price-scraper/internal/adapter/postgres"
	redis_adapter "github.com/user/price-scraper/internal/adapter/redis"
	"github.com/user/price-scraper/internal/adapter/robots"
	"github.com/user/price-scraper/internal/repository"
	"github.com/user/price-scraper/pkg/config"
)

// scrapeDeps are the store-independent parts of a scrape.
type scrapeDeps struct {
	scraper *http_scraper.Scraper
	catalog *http_scraper.DemoCatalog
	robots  *robots.Checker
	close   func()
}

func newScrapeDeps(ctx context.Context, cfg *config.Config, markers http_scraper.ItemMarkers, log *zap.Logger) (*scrapeDeps, error) {
	gate, closeGate, err := newCourtesyGate(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	fetcher := http_scraper.NewFetcher(cfg.UserAgent, cfg.FetchTimeout)
	extractor := http_scraper.NewExtractor(markers, log)

	return &scrapeDeps{
		scraper: http_scraper.NewScraper(fetcher, extractor, gate, cfg.CourtesyDelay, log),
		catalog: http_scraper.NewDemoCatalog(nil, log),
		robots:  robots.NewChecker(cfg.UserAgent, cfg.FetchTimeout, 0, log),
		close:   closeGate,
	}, nil
}

// newCourtesyGate uses Redis when REDIS_ADDR is set so replicas share holds.
func newCourtesyGate(ctx context.Context, cfg *config.Config, log *zap.Logger) (repository.CourtesyGate, func(), error) {
	if cfg.RedisAddr == "" {
		log.Info("Using in-process courtesy gate")
		return memory.NewCourtesyGate(), func() {}, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		_ = rdb.Close()
		return nil, nil, fmt.Errorf("unable to connect to Redis: %w", err)
	}
	log.Info("Redis connection established", zap.String("addr", cfg.RedisAddr))
	return redis_adapter.NewCourtesyGate(rdb), func() { _ = rdb.Close() }, nil
}

// openDatabase connects the pool and applies migrations when autoMigrate is set.
func openDatabase(ctx context.Context, cfg *config.Config, autoMigrate bool, log *zap.Logger) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to reach database: %w", err)
	}
	log.Info("PostgreSQL connection pool established")

	if autoMigrate {
		if err := postgres.RunMigrations(pool, log); err != nil {
			pool.Close()
			return nil, err
		}
	}
	return pool, nil
}
