package entity

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrInvalidRecord is returned when an extracted record violates its field constraints.
var ErrInvalidRecord = errors.New("invalid extracted record")

// RawPage is the undecoded body of a fetched page. It is owned by the call that produced it.
type RawPage struct {
	Body        []byte
	ContentType string
}

// ExtractedRecord is one product entry pulled from a page or produced by the demo catalog.
type ExtractedRecord struct {
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Link        string  `json:"link"`
	Description string  `json:"description"`
}

// ScrapeResult holds records in document order. Duplicates are allowed.
type ScrapeResult []ExtractedRecord

// NewExtractedRecord builds a record and validates it.
func NewExtractedRecord(name string, price float64, link, description string) (ExtractedRecord, error) {
	rec := ExtractedRecord{
		Name:        strings.TrimSpace(name),
		Price:       price,
		Link:        strings.TrimSpace(link),
		Description: strings.TrimSpace(description),
	}
	if err := rec.Validate(); err != nil {
		return ExtractedRecord{}, err
	}
	return rec, nil
}

// Validate checks the constraints every stored record must satisfy.
func (r ExtractedRecord) Validate() error {
	switch {
	case strings.TrimSpace(r.Name) == "":
		return fmt.Errorf("%w: name is empty", ErrInvalidRecord)
	case math.IsNaN(r.Price) || math.IsInf(r.Price, 0):
		return fmt.Errorf("%w: price is not a finite number", ErrInvalidRecord)
	case r.Price < 0:
		return fmt.Errorf("%w: price %.2f is negative", ErrInvalidRecord, r.Price)
	case strings.TrimSpace(r.Link) == "":
		return fmt.Errorf("%w: link is empty", ErrInvalidRecord)
	}
	return nil
}

// Valid returns the records that pass Validate, preserving order.
func (res ScrapeResult) Valid() ScrapeResult {
	out := make(ScrapeResult, 0, len(res))
	for _, rec := range res {
		if rec.Validate() == nil {
			out = append(out, rec)
		}
	}
	return out
}
