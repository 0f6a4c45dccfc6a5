package http_scraper

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/user/price-scraper/internal/entity"
	"github.com/user/price-scraper/internal/repository"
	"github.com/user/price-scraper/pkg/utils"
)

const (
	// DefaultFetchTimeout bounds a whole fetch, body read included.
	DefaultFetchTimeout = 10 * time.Second

	maxBodyBytes = 10 << 20 // 10 MB
)

// Fetcher performs a single bounded GET per call. It does not retry.
// A Fetcher is safe for concurrent use.
type Fetcher struct {
	client    *http.Client
	userAgent string
	timeout   time.Duration
}

// NewFetcher creates a Fetcher sending userAgent with every request.
func NewFetcher(userAgent string, timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	return &Fetcher{
		client:    &http.Client{},
		userAgent: userAgent,
		timeout:   timeout,
	}
}

// Fetch retrieves rawURL. Failures are always *repository.FetchError.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*entity.RawPage, error) {
	if _, err := utils.ParseScrapeURL(rawURL); err != nil {
		return nil, repository.NewFetchError(repository.KindInvalidURL, rawURL, 0, err)
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, repository.NewFetchError(repository.KindInvalidURL, rawURL, 0, err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, classifyTransportError(rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, repository.NewFetchError(repository.KindHTTPStatus, rawURL, resp.StatusCode, nil)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, classifyTransportError(rawURL, err)
	}

	return &entity.RawPage{
		Body:        body,
		ContentType: resp.Header.Get("Content-Type"),
	}, nil
}

// classifyTransportError separates deadline expiry from other transport failures.
func classifyTransportError(rawURL string, err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return repository.NewFetchError(repository.KindTimeout, rawURL, 0, err)
	}
	return repository.NewFetchError(repository.KindNetwork, rawURL, 0, err)
}
