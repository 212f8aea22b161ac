package cart

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const saveTimeout = 5 * time.Second

// Snapshotter stores whole-cart snapshots keyed by visitor.
type Snapshotter interface {
	LoadCart(ctx context.Context, visitorID string) ([]Line, error)
	SaveCart(ctx context.Context, visitorID string, lines []Line) error
}

// Load restores the visitor's cart from snap. A failed load starts an empty cart.
func Load(ctx context.Context, snap Snapshotter, visitorID string, logger *zap.Logger) *Store {
	if snap == nil {
		return New()
	}
	lines, err := snap.LoadCart(ctx, visitorID)
	if err != nil {
		if logger != nil {
			logger.Warn("load cart snapshot", zap.String("visitor_id", visitorID), zap.Error(err))
		}
		return New()
	}
	return New(lines...)
}

// Mirror saves a snapshot after every change to s. Save failures are logged;
// the in-memory cart stays authoritative. An event older than one already
// handled is skipped so a late listener call never overwrites a newer snapshot.
func Mirror(s *Store, snap Snapshotter, visitorID string, logger *zap.Logger) (stop func()) {
	if snap == nil {
		return func() {}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	var (
		mu   sync.Mutex
		last uint64
	)
	return s.Subscribe(func(ev Event) {
		mu.Lock()
		defer mu.Unlock()
		if ev.Version <= last {
			return
		}
		last = ev.Version
		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		defer cancel()
		if err := snap.SaveCart(ctx, visitorID, ev.Lines); err != nil {
			logger.Warn("save cart snapshot",
				zap.String("visitor_id", visitorID),
				zap.String("event", string(ev.Kind)),
				zap.Error(err),
			)
		}
	})
}
