// Package session keeps the per-visitor state behind the visitor cookie:
// the cart, the checkout flow and the active route.
package session

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"roamly/api/cart"
	"roamly/api/checkout"
	"roamly/api/routes"
)

// Visitor is one browser's state.
type Visitor struct {
	ID       string
	Cart     *cart.Store
	Checkout *checkout.Flow

	mu       sync.Mutex
	nav      routes.State
	lastSeen time.Time
	stop     func()
}

// Route returns the visitor's navigation state.
func (v *Visitor) Route() routes.State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.nav
}

// ApplyNavigation records a completed navigation.
func (v *Visitor) ApplyNavigation(nav routes.Navigation) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.nav.Apply(nav)
}

// ResetRoute replaces the navigation state, as on a full page load.
func (v *Visitor) ResetRoute(s routes.State) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.nav = s
}

func (v *Visitor) touch(now time.Time) {
	v.mu.Lock()
	v.lastSeen = now
	v.mu.Unlock()
}

func (v *Visitor) idleSince(now time.Time) time.Duration {
	v.mu.Lock()
	defer v.mu.Unlock()
	return now.Sub(v.lastSeen)
}

func (v *Visitor) close() {
	v.Checkout.Close()
	if v.stop != nil {
		v.stop()
	}
}

// Registry creates visitors on first use and drops them once idle.
type Registry struct {
	mu       sync.Mutex
	visitors map[string]*Visitor

	snapshots  cart.Snapshotter
	placer     checkout.OrderPlacer
	clearDelay time.Duration
	logger     *zap.Logger
	now        func() time.Time
}

// NewRegistry builds a registry. snapshots may be nil to keep carts in memory only.
func NewRegistry(snapshots cart.Snapshotter, placer checkout.OrderPlacer, clearDelay time.Duration, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		visitors:   map[string]*Visitor{},
		snapshots:  snapshots,
		placer:     placer,
		clearDelay: clearDelay,
		logger:     logger,
		now:        time.Now,
	}
}

// Get returns the visitor for id, restoring the cart from its snapshot on first use.
func (r *Registry) Get(ctx context.Context, id string) *Visitor {
	r.mu.Lock()
	v, ok := r.visitors[id]
	r.mu.Unlock()
	if ok {
		v.touch(r.now())
		return v
	}

	// Load outside the lock; a racing request for the same id keeps whichever visitor landed first.
	c := cart.Load(ctx, r.snapshots, id, r.logger)
	fresh := &Visitor{
		ID:   id,
		Cart: c,
		Checkout: checkout.NewFlow(c, r.placer,
			checkout.WithClearDelay(r.clearDelay),
			checkout.WithLogger(r.logger.With(zap.String("visitor_id", id))),
		),
		nav:      routes.State{Active: routes.HomeRoute},
		lastSeen: r.now(),
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if v, ok := r.visitors[id]; ok {
		return v
	}
	fresh.stop = cart.Mirror(c, r.snapshots, id, r.logger)
	r.visitors[id] = fresh
	return fresh
}

// Len returns the number of live visitors.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.visitors)
}

// Sweep drops visitors idle for longer than maxIdle. Their carts stay in the
// snapshot store and are restored on the next visit.
func (r *Registry) Sweep(maxIdle time.Duration) int {
	now := r.now()
	var dropped []*Visitor

	r.mu.Lock()
	for id, v := range r.visitors {
		if v.idleSince(now) > maxIdle {
			dropped = append(dropped, v)
			delete(r.visitors, id)
		}
	}
	r.mu.Unlock()

	for _, v := range dropped {
		v.close()
	}
	if len(dropped) > 0 {
		r.logger.Debug("swept idle visitors", zap.Int("count", len(dropped)))
	}
	return len(dropped)
}

// Run sweeps every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval, maxIdle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep(maxIdle)
		}
	}
}

// Close releases every visitor.
func (r *Registry) Close() {
	r.mu.Lock()
	visitors := r.visitors
	r.visitors = map[string]*Visitor{}
	r.mu.Unlock()

	for _, v := range visitors {
		v.close()
	}
}
