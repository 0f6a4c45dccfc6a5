package http_scraper_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/price-scraper/internal/adapter/http_scraper"
)

var basePrices = map[string]float64{
	"Apple iPhone 15 Pro":      999.99,
	"Samsung Galaxy S24 Ultra": 1199.99,
	"MacBook Air M3":           1099.99,
	"Dell XPS 13":              899.99,
	"Sony WH-1000XM5":          399.99,
}

func TestDemoCatalog_Shape(t *testing.T) {
	t.Parallel()

	got := http_scraper.NewDemoCatalog(rand.New(rand.NewSource(42)), nil).Catalog()

	require.Len(t, got, 5)
	for _, rec := range got {
		base, ok := basePrices[rec.Name]
		require.True(t, ok, "unexpected product %q", rec.Name)
		assert.NoError(t, rec.Validate())
		assert.Greater(t, rec.Price, 0.0)
		assert.GreaterOrEqual(t, rec.Price, base*0.9-0.01)
		assert.LessOrEqual(t, rec.Price, base*1.1+0.01)
		assert.NotEmpty(t, rec.Link)
		assert.NotEmpty(t, rec.Description)
	}
}

func TestDemoCatalog_KeepsOrder(t *testing.T) {
	t.Parallel()

	got := http_scraper.NewDemoCatalog(nil, nil).Catalog()

	require.Len(t, got, 5)
	assert.Equal(t, "Apple iPhone 15 Pro", got[0].Name)
	assert.Equal(t, "Sony WH-1000XM5", got[4].Name)
}

func TestDemoCatalog_PricesRoundedToCents(t *testing.T) {
	t.Parallel()

	got := http_scraper.NewDemoCatalog(rand.New(rand.NewSource(7)), nil).Catalog()

	for _, rec := range got {
		cents := rec.Price * 100
		assert.InDelta(t, cents, float64(int64(cents+0.5)), 1e-6, rec.Name)
	}
}

func TestDemoCatalog_VariesBetweenCalls(t *testing.T) {
	t.Parallel()

	catalog := http_scraper.NewDemoCatalog(rand.New(rand.NewSource(1)), nil)
	first := catalog.Catalog()
	second := catalog.Catalog()

	require.Len(t, second, len(first))
	assert.NotEqual(t, first, second)
	for i := range first {
		assert.Equal(t, first[i].Name, second[i].Name)
		assert.Equal(t, first[i].Link, second[i].Link)
	}
}
