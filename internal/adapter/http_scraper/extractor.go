package http_scraper

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"

	"github.com/user/price-scraper/internal/entity"
	"github.com/user/price-scraper/pkg/metrics"
)

// ItemMarkers are the CSS selectors identifying one product entry and its fields.
// Field selectors are evaluated inside the container; the first match wins.
type ItemMarkers struct {
	Container   string
	Name        string
	Price       string
	Link        string
	Description string
}

// DefaultItemMarkers returns the markup pattern of a generic product listing.
func DefaultItemMarkers() ItemMarkers {
	return ItemMarkers{
		Container:   "div.product-item",
		Name:        "h3.product-title",
		Price:       "span.price",
		Link:        "a[href]",
		Description: "p.description",
	}
}

// Extractor turns a raw page into product records. It never fails: bad markup
// only yields fewer records.
type Extractor struct {
	markers ItemMarkers
	logger  *zap.Logger
}

// NewExtractor creates an Extractor. Empty marker fields fall back to the defaults.
func NewExtractor(markers ItemMarkers, logger *zap.Logger) *Extractor {
	def := DefaultItemMarkers()
	if markers.Container == "" {
		markers.Container = def.Container
	}
	if markers.Name == "" {
		markers.Name = def.Name
	}
	if markers.Price == "" {
		markers.Price = def.Price
	}
	if markers.Link == "" {
		markers.Link = def.Link
	}
	if markers.Description == "" {
		markers.Description = def.Description
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{markers: markers, logger: logger}
}

// Extract parses page leniently and returns the well-formed items in document order.
func (e *Extractor) Extract(page *entity.RawPage) entity.ScrapeResult {
	result := entity.ScrapeResult{}
	if page == nil || len(page.Body) == 0 {
		return result
	}

	doc, err := parseDocument(page)
	if err != nil {
		e.logger.Debug("could not parse page", zap.Error(err))
		return result
	}

	skipped := 0
	doc.Find(e.markers.Container).Each(func(i int, s *goquery.Selection) {
		rec, err := e.extractItem(s)
		if err != nil {
			skipped++
			e.logger.Debug("skipping product element", zap.Int("index", i), zap.Error(err))
			return
		}
		result = append(result, rec)
	})

	metrics.ScrapeItemsTotal.WithLabelValues("extracted").Add(float64(len(result)))
	metrics.ScrapeItemsTotal.WithLabelValues("skipped").Add(float64(skipped))
	return result
}

// parseDocument decodes the body per its declared charset and builds the tree
// with the HTML5 parser, which recovers from malformed markup the way browsers do.
func parseDocument(page *entity.RawPage) (*goquery.Document, error) {
	var r io.Reader = bytes.NewReader(page.Body)
	if decoded, err := charset.NewReader(r, page.ContentType); err == nil {
		r = decoded
	} else {
		r = bytes.NewReader(page.Body)
	}

	root, err := html.Parse(r)
	if err != nil {
		return nil, err
	}
	return goquery.NewDocumentFromNode(root), nil
}

// extractItem pulls one record out of a container. Any failure, including a
// panic in the selector engine, rejects the whole container.
func (e *Extractor) extractItem(s *goquery.Selection) (rec entity.ExtractedRecord, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic during extraction: %v", r)
		}
	}()

	name := s.Find(e.markers.Name).First()
	if name.Length() == 0 {
		return rec, fmt.Errorf("missing name element %q", e.markers.Name)
	}
	priceEl := s.Find(e.markers.Price).First()
	if priceEl.Length() == 0 {
		return rec, fmt.Errorf("missing price element %q", e.markers.Price)
	}
	href, ok := s.Find(e.markers.Link).First().Attr("href")
	if !ok {
		return rec, fmt.Errorf("missing link element %q", e.markers.Link)
	}

	price, err := ParsePrice(priceEl.Text())
	if err != nil {
		return rec, err
	}

	description := ""
	if desc := s.Find(e.markers.Description).First(); desc.Length() > 0 {
		description = visibleText(desc)
	}

	return entity.NewExtractedRecord(visibleText(name), price, href, description)
}

// ParsePrice reads a price like "$1,299.00" after stripping "$" and thousands separators.
func ParsePrice(text string) (float64, error) {
	cleaned := strings.NewReplacer("$", "", ",", "").Replace(strings.TrimSpace(text))
	cleaned = strings.TrimSpace(cleaned)
	price, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("unparsable price %q", text)
	}
	if price < 0 {
		return 0, fmt.Errorf("negative price %q", text)
	}
	return price, nil
}

// visibleText returns the element's text with tags stripped and whitespace runs collapsed.
func visibleText(s *goquery.Selection) string {
	return strings.Join(strings.Fields(s.Text()), " ")
}
