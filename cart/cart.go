// Package cart holds a visitor's shopping cart and notifies subscribers of every change.
package cart

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
)

// ErrInvalidItem is returned by Add for an item with no id or a negative price.
var ErrInvalidItem = errors.New("cart: invalid item")

// Item is a product as it is added to the cart.
type Item struct {
	ID    string          `json:"id"`
	Title string          `json:"title"`
	Price decimal.Decimal `json:"price"`
	Image string          `json:"image"`
	Type  string          `json:"type"`
}

// Line is one product in the cart. Quantity is always at least 1.
type Line struct {
	Item
	Quantity int `json:"quantity"`
}

// Subtotal is price times quantity.
func (l Line) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// EventKind says which mutation produced an Event.
type EventKind string

const (
	EventAdded   EventKind = "added"
	EventUpdated EventKind = "updated"
	EventRemoved EventKind = "removed"
	EventCleared EventKind = "cleared"
)

// Event is delivered to subscribers after each mutation, with the cart as it now is.
// Version increases with every mutation; listeners run outside the lock, so two
// events may arrive out of order and Version tells which one is newer.
type Event struct {
	Kind    EventKind
	ID      string
	Version uint64
	Lines   []Line
	Total   decimal.Decimal
	Count   int
}

// Listener receives cart events.
type Listener func(Event)

// Store is a cart. The zero value is not usable; call New.
type Store struct {
	mu        sync.Mutex
	lines     []Line
	listeners map[int]Listener
	order     []int
	nextID    int
	version   uint64
}

// New returns a cart holding a copy of initial. Lines with an empty id or a
// quantity below 1 are dropped, and duplicates are merged.
func New(initial ...Line) *Store {
	s := &Store{listeners: map[int]Listener{}}
	for _, l := range initial {
		if l.ID == "" || l.Quantity < 1 {
			continue
		}
		if i := s.index(l.ID); i >= 0 {
			s.lines[i].Quantity += l.Quantity
			continue
		}
		s.lines = append(s.lines, l)
	}
	return s
}

// Add puts one of item in the cart, incrementing the quantity if the id is already present.
func (s *Store) Add(item Item) error {
	item.ID = strings.TrimSpace(item.ID)
	if item.ID == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidItem)
	}
	if item.Price.IsNegative() {
		return fmt.Errorf("%w: negative price for %s", ErrInvalidItem, item.ID)
	}

	s.mu.Lock()
	if i := s.index(item.ID); i >= 0 {
		s.lines[i].Quantity++
	} else {
		s.lines = append(s.lines, Line{Item: item, Quantity: 1})
	}
	ev := s.eventLocked(EventAdded, item.ID)
	s.mu.Unlock()

	s.publish(ev)
	return nil
}

// Remove deletes the line with id. Absent ids are ignored.
func (s *Store) Remove(id string) {
	s.mu.Lock()
	if !s.removeLocked(id) {
		s.mu.Unlock()
		return
	}
	ev := s.eventLocked(EventRemoved, id)
	s.mu.Unlock()

	s.publish(ev)
}

// UpdateQuantity sets the quantity of id. A quantity of zero or less removes the line.
func (s *Store) UpdateQuantity(id string, quantity int) {
	if quantity <= 0 {
		s.Remove(id)
		return
	}

	s.mu.Lock()
	i := s.index(id)
	if i < 0 || s.lines[i].Quantity == quantity {
		s.mu.Unlock()
		return
	}
	s.lines[i].Quantity = quantity
	ev := s.eventLocked(EventUpdated, id)
	s.mu.Unlock()

	s.publish(ev)
}

// Clear empties the cart.
func (s *Store) Clear() {
	s.mu.Lock()
	s.lines = nil
	ev := s.eventLocked(EventCleared, "")
	s.mu.Unlock()

	s.publish(ev)
}

// Lines returns a copy of the lines in insertion order.
func (s *Store) Lines() []Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Total is the sum of price times quantity over all lines.
func (s *Store) Total() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalLocked()
}

// Count is the sum of quantities.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.countLocked()
}

// Subscribe registers fn for every later change and returns a func that removes it.
// Listeners run synchronously after the change, in subscription order, without the
// cart lock held, so they may read the cart.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.order = append(s.order, id)
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.listeners, id)
			for i, v := range s.order {
				if v == id {
					s.order = append(s.order[:i], s.order[i+1:]...)
					break
				}
			}
		})
	}
}

func (s *Store) publish(ev Event) {
	s.mu.Lock()
	fns := make([]Listener, 0, len(s.order))
	for _, id := range s.order {
		fns = append(fns, s.listeners[id])
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}

func (s *Store) eventLocked(kind EventKind, id string) Event {
	s.version++
	return Event{
		Kind:    kind,
		ID:      id,
		Version: s.version,
		Lines:   s.snapshotLocked(),
		Total:   s.totalLocked(),
		Count:   s.countLocked(),
	}
}

func (s *Store) index(id string) int {
	for i := range s.lines {
		if s.lines[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) removeLocked(id string) bool {
	i := s.index(id)
	if i < 0 {
		return false
	}
	s.lines = append(s.lines[:i], s.lines[i+1:]...)
	return true
}

func (s *Store) snapshotLocked() []Line {
	out := make([]Line, len(s.lines))
	copy(out, s.lines)
	return out
}

func (s *Store) totalLocked() decimal.Decimal {
	total := decimal.Zero
	for _, l := range s.lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

func (s *Store) countLocked() int {
	n := 0
	for _, l := range s.lines {
		n += l.Quantity
	}
	return n
}
