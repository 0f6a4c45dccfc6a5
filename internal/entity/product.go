package entity

import "time"

// Product mirrors the `products` PostgreSQL table schema.
type Product struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Price       float64    `json:"price"`
	Link        string     `json:"link"`
	Description string     `json:"description,omitempty"`
	ScrapedAt   time.Time  `json:"scraped_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}
