package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/purell"
)

// HashURL creates a SHA256 hash of a URL string.
// This is useful for creating consistent, safe keys for Redis.
func HashURL(rawURL string) string {
	h := sha256.New()
	h.Write([]byte(rawURL))
	return hex.EncodeToString(h.Sum(nil))
}

// ParseScrapeURL accepts only absolute http or https URLs with a host.
func ParseScrapeURL(rawURL string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, err
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return nil, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("missing host in %q", rawURL)
	}
	return u, nil
}

// Normalize canonicalizes a scrape URL so equivalent spellings share one host key.
// The fragment is dropped; it never reaches the server anyway.
func Normalize(rawURL string) (string, error) {
	flags := purell.FlagLowercaseScheme |
		purell.FlagLowercaseHost |
		purell.FlagRemoveDefaultPort |
		purell.FlagRemoveFragment |
		purell.FlagDecodeUnnecessaryEscapes |
		purell.FlagRemoveDuplicateSlashes |
		purell.FlagRemoveDotSegments

	return purell.NormalizeURLString(strings.TrimSpace(rawURL), flags)
}

// Host returns the lowercased host (with port, if any) of an absolute URL.
func Host(rawURL string) (string, error) {
	u, err := ParseScrapeURL(rawURL)
	if err != nil {
		return "", err
	}
	return strings.ToLower(u.Host), nil
}
