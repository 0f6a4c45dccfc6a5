package repository

import (
	"context"

	"github.com/user/price-scraper/internal/entity"
)

// ProductRepository defines the interface for storing and retrieving product rows.
type ProductRepository interface {
	// List returns products ordered by ID, skipping offset rows and returning at most limit rows.
	List(ctx context.Context, offset, limit int) ([]*entity.Product, error)
	// FindByID returns ErrNotFound if no product has the given ID.
	FindByID(ctx context.Context, id int64) (*entity.Product, error)
	// Delete returns ErrNotFound if no product has the given ID.
	Delete(ctx context.Context, id int64) error
	// ReplaceAll removes every stored product and inserts records in one transaction.
	ReplaceAll(ctx context.Context, records entity.ScrapeResult) (int, error)
	Ping(ctx context.Context) error
}
