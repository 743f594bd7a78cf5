package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Category is the closed set of product groupings, plus the All filter tag
type Category string

const (
	All      Category = "All"
	Cakes    Category = "Cakes"
	Pastries Category = "Pastries"
	Cookies  Category = "Cookies"
	Custom   Category = "Custom"
)

var ErrUnknownCategory = errors.New("unknown category")

// Categories returns the filter tags in display order
func Categories() []Category {
	return []Category{All, Cakes, Pastries, Cookies, Custom}
}

// ParseCategory resolves a tag case-insensitively
func ParseCategory(s string) (Category, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return All, nil
	}
	for _, c := range Categories() {
		if strings.EqualFold(string(c), s) {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
}

func (c Category) purchasable() bool {
	return c == Cakes || c == Pastries || c == Cookies || c == Custom
}

// Item is a purchasable catalog entry
type Item struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    Category        `json:"category"`
	Image       string          `json:"image"`
}

// Catalog is an immutable, ordered list of items indexed by id
type Catalog struct {
	items []Item
	byID  map[string]int
}

// New builds a catalog from items, validating ids, prices and categories
func New(items []Item) (*Catalog, error) {
	c := &Catalog{
		items: make([]Item, len(items)),
		byID:  make(map[string]int, len(items)),
	}
	copy(c.items, items)

	for i, item := range c.items {
		if item.ID == "" {
			return nil, fmt.Errorf("item at position %d has an empty id", i)
		}
		if _, dup := c.byID[item.ID]; dup {
			return nil, fmt.Errorf("duplicate item id %q", item.ID)
		}
		if item.Price.IsNegative() {
			return nil, fmt.Errorf("item %q has a negative price", item.ID)
		}
		if !item.Category.purchasable() {
			return nil, fmt.Errorf("item %q: %w: %q", item.ID, ErrUnknownCategory, item.Category)
		}
		c.byID[item.ID] = i
	}

	return c, nil
}

// MustNew is New for statically defined catalogs
func MustNew(items []Item) *Catalog {
	c, err := New(items)
	if err != nil {
		panic(err)
	}
	return c
}

// Items returns a copy of all items in catalog order
func (c *Catalog) Items() []Item {
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

// Lookup finds an item by id
func (c *Catalog) Lookup(id string) (Item, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Item{}, false
	}
	return c.items[i], true
}

// Len returns the number of items
func (c *Catalog) Len() int {
	return len(c.items)
}

// Filter returns the items visible under tag
func (c *Catalog) Filter(tag Category) []Item {
	return Filter(c.items, tag)
}

// Filter returns the ordered subsequence of items in category tag, or all of
// them (copied) when tag is All.
func Filter(items []Item, tag Category) []Item {
	out := make([]Item, 0, len(items))
	for _, item := range items {
		if tag == All || item.Category == tag {
			out = append(out, item)
		}
	}
	return out
}
