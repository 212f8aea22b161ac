package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"roamly/api/cart"
)

// CartStore persists cart snapshots so a visitor's cart outlives the process.
type CartStore struct {
	db *sql.DB
}

func NewCartStore(db *sql.DB) *CartStore {
	return &CartStore{db: db}
}

func (s *CartStore) LoadCart(ctx context.Context, visitorID string) ([]cart.Line, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx, `SELECT lines FROM cart_snapshots WHERE visitor_id = $1`, visitorID).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	var lines []cart.Line
	if err := json.Unmarshal(raw, &lines); err != nil {
		return nil, fmt.Errorf("decode cart snapshot: %w", err)
	}
	return lines, nil
}

// SaveCart replaces the snapshot. An empty cart deletes it.
func (s *CartStore) SaveCart(ctx context.Context, visitorID string, lines []cart.Line) error {
	if len(lines) == 0 {
		if _, err := s.db.ExecContext(ctx, `DELETE FROM cart_snapshots WHERE visitor_id = $1`, visitorID); err != nil {
			return fmt.Errorf("failed to delete cart: %w", err)
		}
		return nil
	}
	raw, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("encode cart snapshot: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO cart_snapshots (visitor_id, lines, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (visitor_id) DO UPDATE SET lines = EXCLUDED.lines, updated_at = now()
	`, visitorID, raw)
	if err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}
