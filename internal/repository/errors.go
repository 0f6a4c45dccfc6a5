package repository

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a stored record does not exist.
	ErrNotFound = errors.New("record not found")

	ErrFetchTimeout    = errors.New("fetch timed out")
	ErrFetchNetwork    = errors.New("network error during fetch")
	ErrFetchHTTPStatus = errors.New("unsuccessful HTTP status")
	ErrInvalidURL      = errors.New("invalid scrape URL")
	ErrDisallowed      = errors.New("disallowed by robots.txt")
)

// FetchKind classifies a page-level scrape failure.
type FetchKind string

const (
	KindTimeout    FetchKind = "timeout"
	KindNetwork    FetchKind = "network"
	KindHTTPStatus FetchKind = "http_status"
	KindInvalidURL FetchKind = "invalid_url"
	KindDisallowed FetchKind = "disallowed"
)

var kindSentinels = map[FetchKind]error{
	KindTimeout:    ErrFetchTimeout,
	KindNetwork:    ErrFetchNetwork,
	KindHTTPStatus: ErrFetchHTTPStatus,
	KindInvalidURL: ErrInvalidURL,
	KindDisallowed: ErrDisallowed,
}

// FetchError is the typed failure surfaced by the fetch side of a scrape.
// Status is only set for KindHTTPStatus.
type FetchError struct {
	Kind   FetchKind
	URL    string
	Status int
	Err    error
}

// NewFetchError creates a new FetchError.
func NewFetchError(kind FetchKind, url string, status int, err error) *FetchError {
	return &FetchError{Kind: kind, URL: url, Status: status, Err: err}
}

func (e *FetchError) Error() string {
	switch {
	case e.Kind == KindHTTPStatus:
		return fmt.Sprintf("fetch %s: received status code %d", e.URL, e.Status)
	case e.Err != nil:
		return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Kind, e.Err)
	default:
		return fmt.Sprintf("fetch %s: %s", e.URL, e.Kind)
	}
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match a FetchError against the sentinel for its kind.
func (e *FetchError) Is(target error) bool {
	return kindSentinels[e.Kind] == target
}

// AsFetchError extracts a FetchError from an error chain.
func AsFetchError(err error) (*FetchError, bool) {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}
