package response

import "time"

// ErrorResponse matches the {"detail": "..."} body clients already parse.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type InfoResponse struct {
	Message   string            `json:"message"`
	Version   string            `json:"version"`
	Endpoints map[string]string `json:"endpoints"`
}

type HealthResponse struct {
	Status  string            `json:"status"`
	Message string            `json:"message"`
	Checks  map[string]string `json:"checks,omitempty"`
}

// ProductResponse is a DTO for a stored product, mirroring entity.Product
type ProductResponse struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Price       float64    `json:"price"`
	Link        string     `json:"link"`
	Description *string    `json:"description"`
	ScrapedAt   time.Time  `json:"scraped_at"`
	UpdatedAt   *time.Time `json:"updated_at"`
}

type ScrapeResponse struct {
	Message string `json:"message"`
	Count   int    `json:"count"`
	Source  string `json:"source"`
	URL     string `json:"url,omitempty"`
}
