package router_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/user/price-scraper/internal/delivery/http/handler"
	"github.com/user/price-scraper/internal/delivery/http/router"
	"github.com/user/price-scraper/internal/entity"
	"github.com/user/price-scraper/internal/usecase"
)

// stubProducts is a fixed in-memory ProductManager.
type stubProducts struct{}

func (stubProducts) List(context.Context, int, int) ([]*entity.Product, error) {
	return []*entity.Product{{ID: 1, Name: "Alpha", Price: 1, Link: "/a"}}, nil
}

func (stubProducts) Get(_ context.Context, id int64) (*entity.Product, error) {
	if id != 1 {
		return nil, usecase.ErrProductNotFound
	}
	return &entity.Product{ID: 1, Name: "Alpha", Price: 1, Link: "/a"}, nil
}

func (stubProducts) Delete(context.Context, int64) error { return nil }

func (stubProducts) Health(context.Context) error { return nil }

type stubPopulator struct{}

func (stubPopulator) Collect(context.Context, usecase.PopulateRequest) (*usecase.PopulateResult, error) {
	return &usecase.PopulateResult{Count: 5, Source: usecase.SourceDemo}, nil
}

func (stubPopulator) Populate(context.Context, usecase.PopulateRequest) (*usecase.PopulateResult, error) {
	return &usecase.PopulateResult{Count: 5, Source: usecase.SourceDemo}, nil
}

func newTestRouter() http.Handler {
	h := handler.NewHandler(stubProducts{}, stubPopulator{}, zap.NewNop())
	return router.New(h, zap.NewNop(), []string{"http://localhost:3000", "https://*.vercel.app"})
}

func TestRouter_Routes(t *testing.T) {
	r := newTestRouter()

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/", http.StatusOK},
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodGet, "/products", http.StatusOK},
		{http.MethodGet, "/products/", http.StatusOK},
		{http.MethodGet, "/products/1", http.StatusOK},
		{http.MethodGet, "/products/9", http.StatusNotFound},
		{http.MethodDelete, "/products/1", http.StatusOK},
		{http.MethodPost, "/products/scrape", http.StatusOK},
		{http.MethodGet, "/metrics", http.StatusOK},
		{http.MethodGet, "/nope", http.StatusNotFound},
		{http.MethodPut, "/products/1", http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(tt.method, tt.path, nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, tt.want, w.Code, "%s %s", tt.method, tt.path)
	}
}

func TestRouter_CORS(t *testing.T) {
	r := newTestRouter()

	tests := []struct {
		origin  string
		allowed bool
	}{
		{"http://localhost:3000", true},
		{"https://my-app.vercel.app", true},
		{"https://evil.example.com", false},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodOptions, "/products", nil)
		req.Header.Set("Origin", tt.origin)
		req.Header.Set("Access-Control-Request-Method", http.MethodGet)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		got := w.Header().Get("Access-Control-Allow-Origin")
		if tt.allowed {
			assert.Equal(t, tt.origin, got, tt.origin)
		} else {
			assert.Empty(t, got, tt.origin)
		}
	}
}

func TestRouter_MetricsExposeRoutePattern(t *testing.T) {
	r := newTestRouter()

	for _, path := range []string{"/products/1", "/products/9"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.True(t, strings.Contains(body, `path="/products/{id}"`), "metrics should be labelled by route pattern")
	assert.NotContains(t, body, `path="/products/9"`)
}
