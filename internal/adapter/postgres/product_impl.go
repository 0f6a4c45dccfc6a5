package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/price-scraper/internal/entity"
	"github.com/user/price-scraper/internal/repository"
)

// ProductRepoImpl provides a concrete implementation for the ProductRepository interface using PostgreSQL.
type ProductRepoImpl struct {
	db *pgxpool.Pool
}

// NewProductRepo creates a new instance of ProductRepoImpl.
func NewProductRepo(db *pgxpool.Pool) *ProductRepoImpl {
	return &ProductRepoImpl{db: db}
}

const productColumns = `id, name, price, link, COALESCE(description, ''), scraped_at, updated_at`

// List returns products ordered by id.
func (r *ProductRepoImpl) List(ctx context.Context, offset, limit int) ([]*entity.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		ORDER BY id ASC
		OFFSET $1 LIMIT $2;
	`
	rows, err := r.db.Query(ctx, query, offset, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make([]*entity.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}

	return products, rows.Err()
}

// FindByID returns repository.ErrNotFound when no product has the id.
func (r *ProductRepoImpl) FindByID(ctx context.Context, id int64) (*entity.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE id = $1;
	`
	p, err := scanProduct(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Delete removes a product. It returns repository.ErrNotFound if nothing was deleted.
func (r *ProductRepoImpl) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1;`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ReplaceAll swaps the whole table for records in one transaction.
// Readers see either the old set or the new one.
func (r *ProductRepoImpl) ReplaceAll(ctx context.Context, records entity.ScrapeResult) (int, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM products;`); err != nil {
		return 0, fmt.Errorf("clear products: %w", err)
	}

	batch := &pgx.Batch{}
	for _, rec := range records {
		batch.Queue(`
			INSERT INTO products (name, price, link, description)
			VALUES ($1, $2, $3, NULLIF($4, ''));
		`, rec.Name, rec.Price, rec.Link, rec.Description)
	}

	results := tx.SendBatch(ctx, batch)
	for i := range records {
		if _, err := results.Exec(); err != nil {
			_ = results.Close()
			return 0, fmt.Errorf("insert product %d: %w", i, err)
		}
	}
	if err := results.Close(); err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return len(records), nil
}

// Ping checks that the database is reachable.
func (r *ProductRepoImpl) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	if err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Price,
		&p.Link,
		&p.Description,
		&p.ScrapedAt,
		&p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &p, nil
}
