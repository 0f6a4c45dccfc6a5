package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/user/price-scraper/internal/delivery/http/request"
	"github.com/user/price-scraper/internal/delivery/http/response"
	"github.com/user/price-scraper/internal/entity"
	"github.com/user/price-scraper/internal/repository"
	"github.com/user/price-scraper/internal/usecase"
)

const (
	apiVersion         = "1.0.0"
	healthCheckTimeout = 2 * time.Second
	maxScrapeBodyBytes = 1 << 20
)

type Handler struct {
	productManager usecase.ProductManager
	populator      usecase.Populator
	logger         *zap.Logger
}

func NewHandler(productManager usecase.ProductManager, populator usecase.Populator, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		productManager: productManager,
		populator:      populator,
		logger:         logger,
	}
}

func (h *Handler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, response.InfoResponse{
		Message: "Product Price Scraper API",
		Version: apiVersion,
		Endpoints: map[string]string{
			"products": "/products",
			"scrape":   "/products/scrape",
			"health":   "/health",
			"metrics":  "/metrics",
		},
	})
}

func (h *Handler) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	resp := response.HealthResponse{
		Status:  "healthy",
		Message: "API is running",
		Checks:  map[string]string{"postgres": "healthy"},
	}
	status := http.StatusOK

	if err := h.productManager.Health(ctx); err != nil {
		h.logger.Error("health check failed for postgres", zap.Error(err))
		resp.Status = "unhealthy"
		resp.Message = "Database is unreachable"
		resp.Checks["postgres"] = "unhealthy"
		status = http.StatusServiceUnavailable
	}

	h.writeJSON(w, status, resp)
}

func (h *Handler) HandleListProducts(w http.ResponseWriter, r *http.Request) {
	skip, err := queryInt(r, "skip", 0)
	if err != nil {
		h.writeJSONError(w, "skip must be a non-negative integer", http.StatusBadRequest)
		return
	}
	limit, err := queryInt(r, "limit", usecase.DefaultPageLimit)
	if err != nil {
		h.writeJSONError(w, "limit must be a non-negative integer", http.StatusBadRequest)
		return
	}

	products, err := h.productManager.List(r.Context(), skip, limit)
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidPagination) {
			h.writeJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.logger.Error("Failed to list products", zap.Error(err))
		h.writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	resp := make([]response.ProductResponse, 0, len(products))
	for _, p := range products {
		resp = append(resp, toProductResponse(p))
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) HandleGetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r)
	if !ok {
		return
	}

	p, err := h.productManager.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, usecase.ErrProductNotFound) {
			h.writeJSONError(w, "Product not found", http.StatusNotFound)
			return
		}
		h.logger.Error("Failed to get product", zap.Int64("id", id), zap.Error(err))
		h.writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, toProductResponse(p))
}

func (h *Handler) HandleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r)
	if !ok {
		return
	}

	if err := h.productManager.Delete(r.Context(), id); err != nil {
		if errors.Is(err, usecase.ErrProductNotFound) {
			h.writeJSONError(w, "Product not found", http.StatusNotFound)
			return
		}
		h.logger.Error("Failed to delete product", zap.Int64("id", id), zap.Error(err))
		h.writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, response.MessageResponse{Message: "Product deleted successfully"})
}

func (h *Handler) HandleScrape(w http.ResponseWriter, r *http.Request) {
	var req request.ScrapeRequest
	// The body is optional; an empty one means the demo catalog.
	if err := json.NewDecoder(io.LimitReader(r.Body, maxScrapeBodyBytes)).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		h.writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	res, err := h.populator.Populate(r.Context(), usecase.PopulateRequest{
		URL:    req.URL,
		Source: usecase.Source(req.Source),
	})
	if err != nil {
		status, detail := scrapeErrorStatus(err)
		if status >= http.StatusInternalServerError {
			h.logger.Error("Error during scraping", zap.String("url", req.URL), zap.Error(err))
		}
		h.writeJSONError(w, detail, status)
		return
	}

	h.writeJSON(w, http.StatusOK, response.ScrapeResponse{
		Message: fmt.Sprintf("Successfully scraped and stored %d products", res.Count),
		Count:   res.Count,
		Source:  string(res.Source),
		URL:     res.URL,
	})
}

// scrapeErrorStatus maps a Populate failure to a status code and client message.
func scrapeErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, usecase.ErrNothingScraped):
		return http.StatusBadRequest, "No products found during scraping"
	case errors.Is(err, usecase.ErrUnknownSource):
		return http.StatusBadRequest, "source must be \"demo\" or \"live\""
	}

	fe, ok := repository.AsFetchError(err)
	if !ok {
		return http.StatusInternalServerError, "Error during scraping process"
	}
	switch fe.Kind {
	case repository.KindInvalidURL:
		return http.StatusBadRequest, "Invalid URL: an absolute http or https URL is required"
	case repository.KindDisallowed:
		return http.StatusForbidden, "Scraping this URL is disallowed by robots.txt"
	case repository.KindTimeout:
		return http.StatusGatewayTimeout, "Timed out fetching the target page"
	case repository.KindHTTPStatus:
		return http.StatusBadGateway, fmt.Sprintf("Target page returned status code %d", fe.Status)
	case repository.KindNetwork:
		return http.StatusBadGateway, "Could not reach the target page"
	default:
		return http.StatusInternalServerError, "Error during scraping process"
	}
}

func (h *Handler) productID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.writeJSONError(w, "Product id must be an integer", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func queryInt(r *http.Request, key string, def int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("%s must be non-negative", key)
	}
	return n, nil
}

func toProductResponse(p *entity.Product) response.ProductResponse {
	resp := response.ProductResponse{
		ID:        p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Link:      p.Link,
		ScrapedAt: p.ScrapedAt,
		UpdatedAt: p.UpdatedAt,
	}
	if p.Description != "" {
		desc := p.Description
		resp.Description = &desc
	}
	return resp
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to write JSON response", zap.Error(err))
	}
}

func (h *Handler) writeJSONError(w http.ResponseWriter, message string, status int) {
	h.writeJSON(w, status, response.ErrorResponse{Detail: message})
}
