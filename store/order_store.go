package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"roamly/api/checkout"
	"roamly/api/models"
)

const orderColumns = `id, status, email, first_name, last_name, country, phone, address, city, postal_code, notes,
	payment_method, proof_url, lines, total, created_at, updated_at`

type OrderStore struct {
	db *sql.DB
}

func NewOrderStore(db *sql.DB) *OrderStore {
	return &OrderStore{db: db}
}

// PlaceOrder stores a checkout submission as pending review.
func (s *OrderStore) PlaceOrder(ctx context.Context, o checkout.Order) (string, error) {
	lines := make([]models.OrderLine, 0, len(o.Lines))
	for _, l := range o.Lines {
		lines = append(lines, models.OrderLine{
			ProductID: l.ID,
			Title:     l.Title,
			Type:      l.Type,
			Price:     l.Price,
			Quantity:  l.Quantity,
		})
	}
	linesJSON, err := json.Marshal(lines)
	if err != nil {
		return "", fmt.Errorf("encode order lines: %w", err)
	}

	id := "ord_" + ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
	c := o.Contact
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO orders (id, status, email, first_name, last_name, country, phone, address, city, postal_code, notes,
			payment_method, proof_url, lines, total)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`, id, models.OrderPendingReview, c.Email, c.FirstName, c.LastName, c.Country, c.Phone, c.Address, c.City,
		c.PostalCode, c.Notes, string(o.Payment.Method), o.Payment.ProofURL, linesJSON, o.Total)
	if err != nil {
		return "", fmt.Errorf("failed to insert order: %w", err)
	}
	return id, nil
}

func (s *OrderStore) ListOrders(ctx context.Context, status string, limit int) ([]models.Order, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	query := "SELECT " + orderColumns + " FROM orders"
	args := []interface{}{}
	if status != "" {
		args = append(args, status)
		query += " WHERE status = $1"
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	orders := []models.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}
	return orders, nil
}

func (s *OrderStore) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	o, err := scanOrder(s.db.QueryRowContext(ctx, "SELECT "+orderColumns+" FROM orders WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("order %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return o, nil
}

func (s *OrderStore) UpdateOrderStatus(ctx context.Context, id, status string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE orders SET status = $2, updated_at = now() WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	return expectRow(res, "order "+id)
}

func scanOrder(row rowScanner) (*models.Order, error) {
	o := &models.Order{}
	var lines []byte
	err := row.Scan(&o.ID, &o.Status, &o.Email, &o.FirstName, &o.LastName, &o.Country, &o.Phone, &o.Address,
		&o.City, &o.PostalCode, &o.Notes, &o.PaymentMethod, &o.ProofURL, &lines, &o.Total, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan order: %w", err)
	}
	if err := json.Unmarshal(lines, &o.Lines); err != nil {
		return nil, fmt.Errorf("decode order lines for %s: %w", o.ID, err)
	}
	return o, nil
}
