package http_scraper

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/user/price-scraper/internal/entity"
)

// demoProducts is the fixed catalog served when no live target is available.
var demoProducts = []entity.ExtractedRecord{
	{
		Name:        "Apple iPhone 15 Pro",
		Price:       999.99,
		Link:        "https://example.com/iphone-15-pro",
		Description: "Latest iPhone with titanium design and A17 Pro chip",
	},
	{
		Name:        "Samsung Galaxy S24 Ultra",
		Price:       1199.99,
		Link:        "https://example.com/galaxy-s24-ultra",
		Description: "Premium Android phone with S Pen and AI features",
	},
	{
		Name:        "MacBook Air M3",
		Price:       1099.99,
		Link:        "https://example.com/macbook-air-m3",
		Description: "Lightweight laptop with M3 chip and all-day battery",
	},
	{
		Name:        "Dell XPS 13",
		Price:       899.99,
		Link:        "https://example.com/dell-xps-13",
		Description: "Compact Windows laptop with premium build quality",
	},
	{
		Name:        "Sony WH-1000XM5",
		Price:       399.99,
		Link:        "https://example.com/sony-wh1000xm5",
		Description: "Industry-leading noise canceling headphones",
	},
}

// DemoCatalog returns the fixed catalog with each price jittered by ±10%.
type DemoCatalog struct {
	mu     sync.Mutex
	rng    *rand.Rand
	logger *zap.Logger
}

// NewDemoCatalog creates a DemoCatalog. A nil rng is seeded from the clock.
func NewDemoCatalog(rng *rand.Rand, logger *zap.Logger) *DemoCatalog {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DemoCatalog{rng: rng, logger: logger}
}

// Catalog builds a fresh result on every call.
func (d *DemoCatalog) Catalog() entity.ScrapeResult {
	d.mu.Lock()
	defer d.mu.Unlock()

	result := make(entity.ScrapeResult, 0, len(demoProducts))
	for _, p := range demoProducts {
		variation := 0.9 + d.rng.Float64()*0.2
		price := math.Round(p.Price*variation*100) / 100

		rec, err := entity.NewExtractedRecord(p.Name, price, p.Link, p.Description)
		if err != nil {
			d.logger.Error("Demo product failed validation", zap.String("name", p.Name), zap.Error(err))
			continue
		}
		result = append(result, rec)
	}

	d.logger.Info("Generated demo products", zap.Int("count", len(result)))
	return result
}
