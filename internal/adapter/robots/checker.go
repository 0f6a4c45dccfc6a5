package robots

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/benjaminestes/robots"
	"go.uber.org/zap"
)

const (
	defaultCacheTTL = 24 * time.Hour

	maxRobotsBodyBytes = 512 * 1024 // 512 KB
)

// Checker implements repository.RobotsPolicy. Parsed robots.txt files are
// cached per robots URL, which covers scheme, host and port.
type Checker struct {
	client    *http.Client
	userAgent string
	cacheTTL  time.Duration
	logger    *zap.Logger

	mu    sync.RWMutex
	cache map[string]cacheEntry
}

// cacheEntry with a nil rules value means "allow everything".
type cacheEntry struct {
	rules     *robots.Robots
	fetchedAt time.Time
}

// NewChecker creates a Checker. A zero cacheTTL means 24 hours.
func NewChecker(userAgent string, timeout, cacheTTL time.Duration, logger *zap.Logger) *Checker {
	if cacheTTL <= 0 {
		cacheTTL = defaultCacheTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Checker{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
		cacheTTL:  cacheTTL,
		logger:    logger.With(zap.String("component", "robots")),
		cache:     make(map[string]cacheEntry),
	}
}

// Allowed reports whether the configured user agent may fetch rawURL.
// An unreachable or unparsable robots.txt allows everything.
func (c *Checker) Allowed(ctx context.Context, rawURL string) (allowed bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Warn("panic in robots.txt parsing, assuming allowed",
				zap.String("url", rawURL), zap.Any("panic", r))
			allowed, err = true, nil
		}
	}()

	robotsURL, err := robots.Locate(rawURL)
	if err != nil {
		return false, fmt.Errorf("robots: locate for %q: %w", rawURL, err)
	}

	rules, ok := c.cached(robotsURL)
	if !ok {
		rules = c.fetch(ctx, robotsURL)
		c.mu.Lock()
		c.cache[robotsURL] = cacheEntry{rules: rules, fetchedAt: time.Now()}
		c.mu.Unlock()
	}

	if rules == nil {
		return true, nil
	}
	return rules.Test(c.userAgent, rawURL), nil
}

func (c *Checker) cached(robotsURL string) (*robots.Robots, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.cache[robotsURL]
	if !ok || time.Since(entry.fetchedAt) > c.cacheTTL {
		return nil, false
	}
	return entry.rules, true
}

// fetch downloads and parses robots.txt, returning nil on any failure.
func (c *Checker) fetch(ctx context.Context, robotsURL string) *robots.Robots {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, http.NoBody)
	if err != nil {
		c.logger.Warn("failed to build robots.txt request", zap.String("url", robotsURL), zap.Error(err))
		return nil
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Warn("failed to fetch robots.txt", zap.String("url", robotsURL), zap.Error(err))
		return nil
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxRobotsBodyBytes))
	if err != nil {
		c.logger.Warn("failed to read robots.txt", zap.String("url", robotsURL), zap.Error(err))
		return nil
	}

	c.logger.Debug("robots.txt response",
		zap.String("url", robotsURL),
		zap.Int("status_code", resp.StatusCode),
		zap.Int("body_length", len(body)),
	)

	rules, err := robots.From(resp.StatusCode, bytes.NewReader(body))
	if err != nil {
		c.logger.Warn("failed to parse robots.txt", zap.String("url", robotsURL), zap.Error(err))
		return nil
	}
	return rules
}
