// Package cart holds the process-wide cart container: line items keyed by
// product, merge-on-add, removal at zero quantity, and totals derived on
// every read.
package cart

import (
	"math"
	"sync"

	"github.com/Skotchmaster/hortifood/internal/models"
)

type Phase int

const (
	PhaseEmpty Phase = iota
	PhaseNonEmpty
)

func (p Phase) String() string {
	if p == PhaseNonEmpty {
		return "non_empty"
	}
	return "empty"
}

// State is a snapshot handed to subscribers.
type State struct {
	Items      []models.CartLineItem `json:"items"`
	TotalItems int                   `json:"total_items"`
	TotalPrice float64               `json:"total_price"`
}

type Store struct {
	mu    sync.Mutex
	items []models.CartLineItem

	subMu  sync.Mutex
	subs   map[int]func(State)
	nextID int
}

func New() *Store {
	return &Store{subs: make(map[int]func(State))}
}

// AddItem increments the line for product.ID, or appends a new line with
// quantity 1.
func (s *Store) AddItem(product models.Product, store models.StoreContext) {
	s.AddItemN(product, store, 1)
}

// AddItemN behaves like n calls to AddItem applied under one lock. n < 1 is
// a no-op; the line quantity saturates at math.MaxInt.
func (s *Store) AddItemN(product models.Product, store models.StoreContext, n int) {
	if n < 1 {
		return
	}

	s.mu.Lock()
	if i := s.indexOf(product.ID); i >= 0 {
		if s.items[i].Quantity > math.MaxInt-n {
			s.items[i].Quantity = math.MaxInt
		} else {
			s.items[i].Quantity += n
		}
	} else {
		s.items = append(s.items, models.CartLineItem{
			ProductID: product.ID,
			Name:      product.Name,
			UnitPrice: product.Price,
			Unit:      product.Unit,
			Quantity:  n,
			StoreID:   store.StoreID,
			StoreName: store.StoreName,
		})
	}
	st := s.snapshot()
	s.mu.Unlock()

	s.notify(st)
}

// UpdateQuantity sets the quantity of an existing line; quantity <= 0 removes it.
func (s *Store) UpdateQuantity(productID, quantity int) {
	s.mu.Lock()
	i := s.indexOf(productID)
	if i < 0 {
		s.mu.Unlock()
		return
	}
	if quantity <= 0 {
		s.removeAt(i)
	} else {
		s.items[i].Quantity = quantity
	}
	st := s.snapshot()
	s.mu.Unlock()

	s.notify(st)
}

func (s *Store) RemoveItem(productID int) {
	s.mu.Lock()
	i := s.indexOf(productID)
	if i < 0 {
		s.mu.Unlock()
		return
	}
	s.removeAt(i)
	st := s.snapshot()
	s.mu.Unlock()

	s.notify(st)
}

func (s *Store) ClearCart() {
	s.mu.Lock()
	s.items = nil
	st := s.snapshot()
	s.mu.Unlock()

	s.notify(st)
}

// Drain empties the cart and returns what it held, in one step.
func (s *Store) Drain() State {
	s.mu.Lock()
	held := s.snapshot()
	s.items = nil
	st := s.snapshot()
	s.mu.Unlock()

	if len(held.Items) > 0 {
		s.notify(st)
	}
	return held
}

func (s *Store) ItemQuantity(productID int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(productID); i >= 0 {
		return s.items[i].Quantity
	}
	return 0
}

func (s *Store) TotalItems() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalItems()
}

// TotalPrice is recomputed from the lines on each call.
func (s *Store) TotalPrice() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalPrice()
}

// Items returns a copy in insertion order.
func (s *Store) Items() []models.CartLineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyItems()
}

func (s *Store) IsEmpty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items) == 0
}

func (s *Store) Phase() Phase {
	if s.IsEmpty() {
		return PhaseEmpty
	}
	return PhaseNonEmpty
}

func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// Subscribe registers fn to receive a snapshot after every mutation.
// Callbacks run on the mutating goroutine after the cart lock is released.
func (s *Store) Subscribe(fn func(State)) (unsubscribe func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Store) notify(st State) {
	s.subMu.Lock()
	fns := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(st)
	}
}

func (s *Store) indexOf(productID int) int {
	for i := range s.items {
		if s.items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

func (s *Store) removeAt(i int) {
	s.items = append(s.items[:i], s.items[i+1:]...)
}

func (s *Store) copyItems() []models.CartLineItem {
	out := make([]models.CartLineItem, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Store) totalItems() int {
	n := 0
	for _, it := range s.items {
		n += it.Quantity
	}
	return n
}

func (s *Store) totalPrice() float64 {
	var total float64
	for _, it := range s.items {
		total += it.LineTotal()
	}
	return total
}

func (s *Store) snapshot() State {
	return State{
		Items:      s.copyItems(),
		TotalItems: s.totalItems(),
		TotalPrice: s.totalPrice(),
	}
}
