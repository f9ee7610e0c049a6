package checkout

import (
	"sync"

	"github.com/Skotchmaster/hortifood/internal/models"
)

// History keeps the orders placed in this process.
type History struct {
	mu     sync.RWMutex
	orders []models.Order
}

func NewHistory() *History {
	return &History{}
}

func (h *History) Record(o models.Order) {
	h.mu.Lock()
	defer h.mu.Unlock()
	o.Items = append([]models.CartLineItem(nil), o.Items...)
	h.orders = append(h.orders, o)
}

// Orders returns the user's orders, newest first.
func (h *History) Orders(userID models.UserID) []models.Order {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]models.Order, 0)
	for i := len(h.orders) - 1; i >= 0; i-- {
		o := h.orders[i]
		if o.UserID != userID {
			continue
		}
		o.Items = append([]models.CartLineItem(nil), o.Items...)
		out = append(out, o)
	}
	return out
}
