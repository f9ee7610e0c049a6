package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Skotchmaster/hortifood/internal/models"
)

// AllCategories selects every product of a store.
const AllCategories = "Todos"

var ErrNotFound = errors.New("not found")

//go:embed catalog.yaml
var defaultData []byte

type Catalog struct {
	CategoryNames []string       `yaml:"categories"`
	StoreList     []models.Store `yaml:"stores"`
}

func Default() *Catalog {
	c, err := Parse(defaultData)
	if err != nil {
		panic(fmt.Sprintf("embedded catalog: %v", err))
	}
	return c
}

func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Catalog) validate() error {
	stores := make(map[int]bool)
	for _, s := range c.StoreList {
		if stores[s.ID] {
			return fmt.Errorf("duplicate store id %d", s.ID)
		}
		stores[s.ID] = true

		products := make(map[int]bool)
		for _, p := range s.Products {
			if products[p.ID] {
				return fmt.Errorf("store %d: duplicate product id %d", s.ID, p.ID)
			}
			if p.Price < 0 {
				return fmt.Errorf("store %d: product %d has negative price", s.ID, p.ID)
			}
			products[p.ID] = true
		}
	}
	return nil
}

// Stores lists stores without their products.
func (c *Catalog) Stores() []models.Store {
	out := make([]models.Store, 0, len(c.StoreList))
	for _, s := range c.StoreList {
		s.Products = nil
		out = append(out, s)
	}
	return out
}

func (c *Catalog) Store(id int) (models.Store, error) {
	for _, s := range c.StoreList {
		if s.ID == id {
			return s, nil
		}
	}
	return models.Store{}, fmt.Errorf("store %d: %w", id, ErrNotFound)
}

// Products filters a store's products by category; "" and "Todos" mean all.
func (c *Catalog) Products(storeID int, category string) ([]models.Product, error) {
	s, err := c.Store(storeID)
	if err != nil {
		return nil, err
	}
	out := make([]models.Product, 0, len(s.Products))
	for _, p := range s.Products {
		if category == "" || category == AllCategories || strings.EqualFold(p.Category, category) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (c *Catalog) Product(storeID, productID int) (models.Product, models.StoreContext, error) {
	s, err := c.Store(storeID)
	if err != nil {
		return models.Product{}, models.StoreContext{}, err
	}
	for _, p := range s.Products {
		if p.ID == productID {
			return p, s.Context(), nil
		}
	}
	return models.Product{}, models.StoreContext{}, fmt.Errorf("product %d in store %d: %w", productID, storeID, ErrNotFound)
}

func (c *Catalog) Categories() []string {
	return append([]string{AllCategories}, c.CategoryNames...)
}

type SearchHit struct {
	Product models.Product      `json:"product"`
	Store   models.StoreContext `json:"store"`
}

// Search matches product and store names case-insensitively.
func (c *Catalog) Search(query string) []SearchHit {
	q := strings.ToLower(strings.TrimSpace(query))
	var hits []SearchHit
	for _, s := range c.StoreList {
		storeMatch := q != "" && strings.Contains(strings.ToLower(s.Name), q)
		for _, p := range s.Products {
			if q == "" || storeMatch || strings.Contains(strings.ToLower(p.Name), q) {
				hits = append(hits, SearchHit{Product: p, Store: s.Context()})
			}
		}
	}
	return hits
}
