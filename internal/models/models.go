package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// UserID is backend-assigned and opaque: the backend may send it as a JSON
// string or a JSON number.
type UserID string

func (id *UserID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = UserID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("user id must be a string or a number: %w", err)
	}
	*id = UserID(n.String())
	return nil
}

func (id UserID) String() string { return string(id) }

type UserIdentity struct {
	ID    UserID `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (u *UserIdentity) Valid() bool {
	return u != nil &&
		strings.TrimSpace(string(u.ID)) != "" &&
		strings.TrimSpace(u.Name) != "" &&
		strings.TrimSpace(u.Email) != ""
}

type Product struct {
	ID          int     `yaml:"id"          json:"id"`
	Name        string  `yaml:"name"        json:"name"`
	Price       float64 `yaml:"price"       json:"price"`
	Unit        string  `yaml:"unit"        json:"unit"`
	Category    string  `yaml:"category"    json:"category"`
	Description string  `yaml:"description" json:"description"`
	Image       string  `yaml:"image"       json:"image"`
}

type Store struct {
	ID          int       `yaml:"id"           json:"id"`
	Name        string    `yaml:"name"         json:"name"`
	Hours       string    `yaml:"hours"        json:"hours"`
	Rating      float64   `yaml:"rating"       json:"rating"`
	Distance    string    `yaml:"distance"     json:"distance"`
	DeliveryFee float64   `yaml:"delivery_fee" json:"delivery_fee"`
	Products    []Product `yaml:"products"     json:"products,omitempty"`
}

func (s Store) Context() StoreContext {
	return StoreContext{StoreID: s.ID, StoreName: s.Name}
}

type StoreContext struct {
	StoreID   int    `json:"store_id"`
	StoreName string `json:"store_name"`
}

type CartLineItem struct {
	ProductID int     `json:"product_id"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unit_price"`
	Unit      string  `json:"unit"`
	Quantity  int     `json:"quantity"`
	StoreID   int     `json:"store_id"`
	StoreName string  `json:"store_name"`
}

func (i CartLineItem) LineTotal() float64 {
	return i.UnitPrice * float64(i.Quantity)
}

const OrderStatusConfirmed = "confirmed"

type Order struct {
	ID            uuid.UUID      `json:"id"`
	UserID        UserID         `json:"user_id,omitempty"`
	StoreName     string         `json:"store_name"`
	Items         []CartLineItem `json:"items"`
	Total         float64        `json:"total"`
	Status        string         `json:"status"`
	PaymentMethod string         `json:"payment_method"`
	CreatedAt     time.Time      `json:"created_at"`
}
