package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/user/price-scraper/internal/entity"
	"github.com/user/price-scraper/internal/repository"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrInvalidPagination = errors.New("skip and limit must be non-negative")
)

const (
	DefaultPageLimit = 100
	MaxPageLimit     = 1000
)

// ProductManager defines the interface for reading and removing stored products.
type ProductManager interface {
	List(ctx context.Context, skip, limit int) ([]*entity.Product, error)
	Get(ctx context.Context, id int64) (*entity.Product, error)
	Delete(ctx context.Context, id int64) error
	Health(ctx context.Context) error
}

type productUseCase struct {
	productRepo repository.ProductRepository
}

// NewProductManager creates a new ProductManager use case.
func NewProductManager(productRepo repository.ProductRepository) ProductManager {
	return &productUseCase{productRepo: productRepo}
}

// List pages through products by id. A limit above MaxPageLimit is capped.
func (uc *productUseCase) List(ctx context.Context, skip, limit int) ([]*entity.Product, error) {
	if skip < 0 || limit < 0 {
		return nil, ErrInvalidPagination
	}
	limit = min(limit, MaxPageLimit)

	products, err := uc.productRepo.List(ctx, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

func (uc *productUseCase) Get(ctx context.Context, id int64) (*entity.Product, error) {
	p, err := uc.productRepo.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find product %d: %w", id, err)
	}
	return p, nil
}

func (uc *productUseCase) Delete(ctx context.Context, id int64) error {
	err := uc.productRepo.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrProductNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete product %d: %w", id, err)
	}
	return nil
}

// Health reports whether the product store is reachable.
func (uc *productUseCase) Health(ctx context.Context) error {
	return uc.productRepo.Ping(ctx)
}
