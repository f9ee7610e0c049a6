// Package checkout simulates payment for the current cart. Payment always
// succeeds after a fixed delay; the cart is then cleared and the caller is
// told where to redirect.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/hortifood/internal/cart"
	"github.com/Skotchmaster/hortifood/internal/events"
	"github.com/Skotchmaster/hortifood/internal/logging"
	"github.com/Skotchmaster/hortifood/internal/metrics"
	"github.com/Skotchmaster/hortifood/internal/models"
	"github.com/Skotchmaster/hortifood/internal/session"
)

var (
	ErrEmptyCart  = errors.New("cart is empty")
	ErrValidation = errors.New("validation error")
)

const (
	MethodCredit = "credit"
	MethodDebit  = "debit"

	DefaultPaymentDelay  = 3 * time.Second
	DefaultRedirectDelay = 2 * time.Second

	HomePath = "/"
)

type PaymentDetails struct {
	Address       string `json:"address"`
	City          string `json:"city"`
	ZipCode       string `json:"zipCode"`
	PaymentMethod string `json:"paymentMethod"`
	CardNumber    string `json:"cardNumber"`
	CardName      string `json:"cardName"`
	ExpiryDate    string `json:"expiryDate"`
	CVV           string `json:"cvv"`
}

// Validate normalizes PaymentMethod and reports the first missing field.
func (d *PaymentDetails) Validate() error {
	switch strings.ToLower(strings.TrimSpace(d.PaymentMethod)) {
	case "", MethodCredit:
		d.PaymentMethod = MethodCredit
	case MethodDebit:
		d.PaymentMethod = MethodDebit
	default:
		return fmt.Errorf("%w: unknown payment method %q", ErrValidation, d.PaymentMethod)
	}

	required := []struct {
		name, value string
	}{
		{"address", d.Address},
		{"city", d.City},
		{"zipCode", d.ZipCode},
		{"cardNumber", d.CardNumber},
		{"cardName", d.CardName},
		{"expiryDate", d.ExpiryDate},
		{"cvv", d.CVV},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return fmt.Errorf("%w: %s is required", ErrValidation, f.name)
		}
	}
	return nil
}

type Result struct {
	Order         models.Order  `json:"order"`
	RedirectTo    string        `json:"redirect_to"`
	RedirectAfter time.Duration `json:"redirect_after"`
}

type Service struct {
	Cart      *cart.Store
	Session   *session.Store
	Publisher events.Publisher
	History   *History
	Metrics   *metrics.Metrics

	PaymentDelay  time.Duration
	RedirectDelay time.Duration

	// OnRedirect, when set, runs RedirectDelay after a successful Submit.
	OnRedirect func(path string)
}

func (s *Service) Submit(ctx context.Context, details PaymentDetails) (*Result, error) {
	l := logging.FromContext(ctx).With("svc", "checkout.submit")

	if s.Cart.IsEmpty() {
		l.Warn("checkout_error", "reason", "empty cart")
		return nil, ErrEmptyCart
	}
	if err := details.Validate(); err != nil {
		l.Warn("checkout_error", "reason", "invalid payment details", "error", err)
		return nil, err
	}

	timer := time.NewTimer(s.paymentDelay())
	defer timer.Stop()
	select {
	case <-ctx.Done():
		l.Warn("checkout_cancelled", "error", ctx.Err())
		return nil, fmt.Errorf("checkout: %w", ctx.Err())
	case <-timer.C:
	}

	held := s.Cart.Drain()
	if len(held.Items) == 0 {
		l.Warn("checkout_error", "reason", "cart emptied during payment")
		return nil, ErrEmptyCart
	}
	order := models.Order{
		ID:            uuid.New(),
		StoreName:     storeName(held.Items),
		Items:         held.Items,
		Total:         held.TotalPrice,
		Status:        models.OrderStatusConfirmed,
		PaymentMethod: details.PaymentMethod,
		CreatedAt:     time.Now().UTC(),
	}
	if s.Session != nil {
		if u := s.Session.CurrentUser(); u != nil {
			order.UserID = u.ID
		}
	}

	if s.History != nil {
		s.History.Record(order)
	}
	s.Metrics.OrderPlaced(order.Total)
	s.publish(ctx, order)

	redirectAfter := s.redirectDelay()
	if s.OnRedirect != nil {
		fn := s.OnRedirect
		time.AfterFunc(redirectAfter, func() { fn(HomePath) })
	}

	l.Info("order_placed", "order_id", order.ID.String(), "total", order.Total, "items", len(order.Items))
	return &Result{Order: order, RedirectTo: HomePath, RedirectAfter: redirectAfter}, nil
}

func (s *Service) publish(ctx context.Context, order models.Order) {
	if s.Publisher == nil {
		return
	}
	event := map[string]any{
		"type":     "order_placed",
		"order_id": order.ID.String(),
		"user_id":  order.UserID.String(),
		"total":    order.Total,
		"items":    len(order.Items),
		"at":       order.CreatedAt.Format(time.RFC3339),
	}
	if err := s.Publisher.PublishEvent(ctx, events.TopicOrder, order.ID.String(), event); err != nil {
		logging.FromContext(ctx).Error("kafka_publish_error", "type", "order_placed", "error", err)
	}
}

func (s *Service) paymentDelay() time.Duration {
	if s.PaymentDelay > 0 {
		return s.PaymentDelay
	}
	return DefaultPaymentDelay
}

func (s *Service) redirectDelay() time.Duration {
	if s.RedirectDelay > 0 {
		return s.RedirectDelay
	}
	return DefaultRedirectDelay
}

func storeName(items []models.CartLineItem) string {
	if len(items) == 0 {
		return ""
	}
	return items[0].StoreName
}
