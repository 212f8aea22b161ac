package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"roamly/api/models"
)

const productColumns = `id, title, description, price, image, type, active, created_at, updated_at`

type ProductStore struct {
	db *sql.DB
}

func NewProductStore(db *sql.DB) *ProductStore {
	return &ProductStore{db: db}
}

func (s *ProductStore) ListProducts(ctx context.Context, activeOnly bool) ([]models.Product, error) {
	query := "SELECT " + productColumns + " FROM products"
	if activeOnly {
		query += " WHERE active"
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}
	return products, nil
}

func (s *ProductStore) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("product %q: %w", id, ErrNotFound)
	}
	p, err := scanProduct(s.db.QueryRowContext(ctx, "SELECT "+productColumns+" FROM products WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("product %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return p, nil
}

func (s *ProductStore) CreateProduct(ctx context.Context, in models.ProductInput) (*models.Product, error) {
	query := `
		INSERT INTO products (id, title, description, price, image, type, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + productColumns
	return scanProduct(s.db.QueryRowContext(ctx, query,
		uuid.NewString(), in.Title, in.Description, in.Price, in.Image, in.Type, in.Active))
}

func (s *ProductStore) UpdateProduct(ctx context.Context, id string, in models.ProductInput) (*models.Product, error) {
	query := `
		UPDATE products SET title = $2, description = $3, price = $4, image = $5, type = $6, active = $7, updated_at = now()
		WHERE id = $1
		RETURNING ` + productColumns
	p, err := scanProduct(s.db.QueryRowContext(ctx, query,
		id, in.Title, in.Description, in.Price, in.Image, in.Type, in.Active))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("product %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return p, nil
}

func (s *ProductStore) DeleteProduct(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return expectRow(res, "product "+id)
}

func scanProduct(row rowScanner) (*models.Product, error) {
	p := &models.Product{}
	err := row.Scan(&p.ID, &p.Title, &p.Description, &p.Price, &p.Image, &p.Type, &p.Active, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan product: %w", err)
	}
	return p, nil
}
