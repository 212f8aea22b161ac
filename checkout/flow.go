// Package checkout runs the three-step manual-payment checkout for one visitor.
package checkout

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"roamly/api/cart"
)

// DefaultClearDelay is how long the cart survives after a successful submission.
const DefaultClearDelay = 2 * time.Second

// OrderPlacer records a submitted order and returns its id. Nothing is charged;
// a human reviews the proof of payment later.
type OrderPlacer interface {
	PlaceOrder(ctx context.Context, order Order) (string, error)
}

// Stopper cancels a scheduled call.
type Stopper interface {
	Stop() bool
}

// Snapshot is the flow state exposed to the front-end.
type Snapshot struct {
	Step    Step     `json:"step"`
	Contact Contact  `json:"contact"`
	Method  Method   `json:"method,omitempty"`
	OrderID string   `json:"orderId,omitempty"`
	Methods []Method `json:"methods"`
}

// Flow moves a visitor from info to payment to success.
type Flow struct {
	mu         sync.Mutex
	step       Step
	contact    Contact
	payment    Payment
	orderID    string
	submitting bool
	pending    Stopper
	clearSeq   uint64

	cart       *cart.Store
	placer     OrderPlacer
	clearDelay time.Duration
	afterFunc  func(time.Duration, func()) Stopper
	logger     *zap.Logger
}

// Option configures a Flow.
type Option func(*Flow)

// WithClearDelay overrides DefaultClearDelay.
func WithClearDelay(d time.Duration) Option {
	return func(f *Flow) {
		if d >= 0 {
			f.clearDelay = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(f *Flow) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithAfterFunc replaces the scheduler used for the delayed cart clear.
func WithAfterFunc(fn func(time.Duration, func()) Stopper) Option {
	return func(f *Flow) {
		if fn != nil {
			f.afterFunc = fn
		}
	}
}

// NewFlow starts a flow on the info step for the given cart.
func NewFlow(c *cart.Store, placer OrderPlacer, opts ...Option) *Flow {
	f := &Flow{
		step:       StepInfo,
		cart:       c,
		placer:     placer,
		clearDelay: DefaultClearDelay,
		afterFunc: func(d time.Duration, fn func()) Stopper {
			return time.AfterFunc(d, fn)
		},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	return f
}

// Snapshot returns the current state.
func (f *Flow) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return Snapshot{
		Step:    f.step,
		Contact: f.contact,
		Method:  f.payment.Method,
		OrderID: f.orderID,
		Methods: append([]Method(nil), Methods...),
	}
}

// Step returns the current step.
func (f *Flow) Step() Step {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.step
}

// SubmitInfo stores the contact details and moves to payment.
func (f *Flow) SubmitInfo(c Contact) error {
	c = c.trimmed()
	if err := validateStruct(c); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.step != StepInfo {
		return fmt.Errorf("%w: submit info from %s", ErrInvalidTransition, f.step)
	}
	f.contact = c
	f.step = StepPayment
	return nil
}

// Back returns from payment to info. Contact fields are kept.
func (f *Flow) Back() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.step != StepPayment || f.submitting {
		return fmt.Errorf("%w: back from %s", ErrInvalidTransition, f.step)
	}
	f.step = StepInfo
	return nil
}

// SubmitPayment records the order and moves to success. The cart is cleared
// after the clear delay. A second submission, concurrent or after success,
// fails with ErrInvalidTransition.
func (f *Flow) SubmitPayment(ctx context.Context, p Payment) (string, error) {
	if err := validateStruct(p); err != nil {
		return "", err
	}

	f.mu.Lock()
	if f.step != StepPayment || f.submitting {
		step := f.step
		f.mu.Unlock()
		return "", fmt.Errorf("%w: submit payment from %s", ErrInvalidTransition, step)
	}
	lines := f.cart.Lines()
	if len(lines) == 0 {
		f.mu.Unlock()
		return "", ErrEmptyCart
	}
	f.submitting = true
	order := Order{
		Contact: f.contact,
		Payment: p,
		Lines:   lines,
		Total:   totalOf(lines),
	}
	f.mu.Unlock()

	orderID, err := f.place(ctx, order)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitting = false
	if err != nil {
		return "", err
	}
	f.payment = p
	f.orderID = orderID
	f.step = StepSuccess
	f.scheduleClearLocked()

	f.logger.Info("checkout submitted",
		zap.String("order_id", orderID),
		zap.String("method", string(p.Method)),
		zap.String("total", order.Total.StringFixed(2)),
	)
	return orderID, nil
}

// Reset leaves the success step and starts a new checkout, keeping contact details.
func (f *Flow) Reset() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.step != StepSuccess {
		return fmt.Errorf("%w: reset from %s", ErrInvalidTransition, f.step)
	}
	f.step = StepInfo
	f.payment = Payment{}
	f.orderID = ""
	return nil
}

// Close cancels a pending cart clear.
func (f *Flow) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pending != nil {
		f.pending.Stop()
		f.pending = nil
	}
}

func (f *Flow) place(ctx context.Context, order Order) (string, error) {
	if f.placer == nil {
		return "", fmt.Errorf("checkout: no order placer configured")
	}
	id, err := f.placer.PlaceOrder(ctx, order)
	if err != nil {
		return "", fmt.Errorf("place order: %w", err)
	}
	return id, nil
}

// scheduleClearLocked replaces any pending clear; the new one empties the cart anyway.
func (f *Flow) scheduleClearLocked() {
	if f.pending != nil {
		f.pending.Stop()
	}
	f.clearSeq++
	seq := f.clearSeq
	f.pending = f.afterFunc(f.clearDelay, func() { f.clearCart(seq) })
}

func (f *Flow) clearCart(seq uint64) {
	f.cart.Clear()
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.clearSeq == seq {
		f.pending = nil
	}
}

func totalOf(lines []cart.Line) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Subtotal())
	}
	return total
}
