package http_scraper_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/price-scraper/internal/adapter/http_scraper"
	"github.com/user/price-scraper/internal/entity"
)

// listingHTML has three containers; the middle one has no price.
const listingHTML = `<!DOCTYPE html>
<html>
<head><title>Shop</title></head>
<body>
  <div class="product-item">
    <h3 class="product-title">  Alpha   <b>Phone</b> </h3>
    <span class="price">$1,299.00</span>
    <a href="/alpha">View</a>
    <p class="description">
      Flagship   phone
    </p>
  </div>
  <div class="product-item">
    <h3 class="product-title">Beta</h3>
    <a href="/beta">View</a>
  </div>
  <div class="product-item featured">
    <h3 class="product-title">Gamma</h3>
    <span class="price">49.5</span>
    <a href="https://shop.example.com/gamma">View</a>
  </div>
</body>
</html>`

func newExtractor(t *testing.T) *http_scraper.Extractor {
	t.Helper()

	return http_scraper.NewExtractor(http_scraper.DefaultItemMarkers(), nil)
}

func extract(t *testing.T, body string) entity.ScrapeResult {
	t.Helper()

	return newExtractor(t).Extract(&entity.RawPage{Body: []byte(body), ContentType: "text/html; charset=utf-8"})
}

func TestExtract_SkipsMalformedKeepsOrder(t *testing.T) {
	t.Parallel()

	got := extract(t, listingHTML)

	require.Len(t, got, 2)
	assert.Equal(t, entity.ExtractedRecord{
		Name:        "Alpha Phone",
		Price:       1299.00,
		Link:        "/alpha",
		Description: "Flagship phone",
	}, got[0])
	assert.Equal(t, entity.ExtractedRecord{
		Name:  "Gamma",
		Price: 49.5,
		Link:  "https://shop.example.com/gamma",
	}, got[1])
}

func TestExtract_RequiredFields(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		item string
	}{
		{"missing name", `<span class="price">$5</span><a href="/x">x</a>`},
		{"missing price", `<h3 class="product-title">X</h3><a href="/x">x</a>`},
		{"missing link", `<h3 class="product-title">X</h3><span class="price">$5</span>`},
		{"anchor without href", `<h3 class="product-title">X</h3><span class="price">$5</span><a>x</a>`},
		{"empty href", `<h3 class="product-title">X</h3><span class="price">$5</span><a href="  ">x</a>`},
		{"empty name", `<h3 class="product-title">  </h3><span class="price">$5</span><a href="/x">x</a>`},
		{"free price", `<h3 class="product-title">X</h3><span class="price">free</span><a href="/x">x</a>`},
		{"negative price", `<h3 class="product-title">X</h3><span class="price">-$5</span><a href="/x">x</a>`},
		{"nan price", `<h3 class="product-title">X</h3><span class="price">NaN</span><a href="/x">x</a>`},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := extract(t, `<div class="product-item">`+tt.item+`</div>`)
			assert.Empty(t, got)
		})
	}
}

func TestExtract_DescriptionOptional(t *testing.T) {
	t.Parallel()

	got := extract(t, `<div class="product-item"><h3 class="product-title">X</h3><span class="price">0</span><a href="#x">x</a></div>`)

	require.Len(t, got, 1)
	assert.Equal(t, "", got[0].Description)
	assert.Equal(t, "#x", got[0].Link)
	assert.Zero(t, got[0].Price)
}

func TestExtract_FirstLinkWithHref(t *testing.T) {
	t.Parallel()

	got := extract(t, `<div class="product-item">
		<a name="anchor">no href</a>
		<h3 class="product-title">X</h3><span class="price">1</span>
		<a href="/first">1</a><a href="/second">2</a></div>`)

	require.Len(t, got, 1)
	assert.Equal(t, "/first", got[0].Link)
}

func TestExtract_NoContainers(t *testing.T) {
	t.Parallel()

	assert.Empty(t, extract(t, `<html><body><p>Nothing for sale</p></body></html>`))
	assert.Empty(t, extract(t, ``))
	assert.NotNil(t, extract(t, ``))
	assert.Empty(t, newExtractor(t).Extract(nil))
}

func TestExtract_MalformedMarkup(t *testing.T) {
	t.Parallel()

	// Unquoted attributes, an unclosed container and <p>, and a stray end tag.
	// The HTML5 parser nests the second item inside the first; both still match.
	body := `<body>
<div class=product-item><h3 class=product-title>One</h3><span class=price>$10</span><a href=/1>go</a><p class=description>first
<div class="product-item"><h3 class="product-title">Two</h3></span><span class="price">$20</span><a href="/2">go</a>`

	got := extract(t, body)

	require.Len(t, got, 2)
	assert.Equal(t, entity.ExtractedRecord{Name: "One", Price: 10, Link: "/1", Description: "first"}, got[0])
	assert.Equal(t, entity.ExtractedRecord{Name: "Two", Price: 20, Link: "/2"}, got[1])
}

func TestExtract_BinaryGarbageDoesNotPanic(t *testing.T) {
	t.Parallel()

	body := strings.Repeat("\x00\xff<div class=\"product-item\"><<>>", 100)

	assert.NotPanics(t, func() {
		extract(t, body)
	})
}

func TestExtract_DecodesDeclaredCharset(t *testing.T) {
	t.Parallel()

	// "Café" in ISO-8859-1.
	body := []byte("<div class=\"product-item\"><h3 class=\"product-title\">Caf\xe9</h3><span class=\"price\">$3</span><a href=\"/c\">c</a></div>")

	got := newExtractor(t).Extract(&entity.RawPage{Body: body, ContentType: "text/html; charset=iso-8859-1"})

	require.Len(t, got, 1)
	assert.Equal(t, "Café", got[0].Name)
}

func TestExtract_CustomMarkers(t *testing.T) {
	t.Parallel()

	ext := http_scraper.NewExtractor(http_scraper.ItemMarkers{
		Container: "li.card",
		Name:      ".title",
		Price:     ".cost",
	}, nil)

	got := ext.Extract(&entity.RawPage{Body: []byte(`<ul>
		<li class="card"><span class="title">Lamp</span><em class="cost">$12.50</em><a href="/lamp">l</a><p class="description">Warm</p></li>
	</ul>`)})

	require.Len(t, got, 1)
	assert.Equal(t, entity.ExtractedRecord{Name: "Lamp", Price: 12.5, Link: "/lamp", Description: "Warm"}, got[0])
}

func TestParsePrice(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"$1,299.00", 1299.00, false},
		{" 19.99 ", 19.99, false},
		{"$ 5", 5, false},
		{"0", 0, false},
		{"1,000,000", 1000000, false},
		{"free", 0, true},
		{"", 0, true},
		{"$", 0, true},
		{"-3", 0, true},
		{"€12", 0, true},
	}

	for _, tt := range tests {
		got, err := http_scraper.ParsePrice(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.InDelta(t, tt.want, got, 1e-9, tt.in)
	}
}
