package cart

import (
	"encoding/json"

	"storefront/internal/catalog"

	"github.com/shopspring/decimal"
)

// MaxQuantity caps a single line
const MaxQuantity = 999

// Line is a catalog item with its selected quantity (1 to MaxQuantity)
type Line struct {
	Item     catalog.Item `json:"item"`
	Quantity int          `json:"quantity"`
}

// Total returns price × quantity for the line
func (l Line) Total() decimal.Decimal {
	return l.Item.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart holds at most one line per item id, in insertion order
type Cart struct {
	lines []Line
}

// New creates an empty cart
func New() *Cart {
	return &Cart{}
}

// AddItem increments the line for item, appending a new line with quantity 1
// when the item is not in the cart yet.
func (c *Cart) AddItem(item catalog.Item) {
	if i := c.index(item.ID); i >= 0 {
		c.lines[i].Quantity = clamp(c.lines[i].Quantity, 1)
		return
	}
	c.lines = append(c.lines, Line{Item: item, Quantity: 1})
}

// RemoveItem deletes the line with id; absent ids are ignored
func (c *Cart) RemoveItem(id string) {
	i := c.index(id)
	if i < 0 {
		return
	}
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
}

// UpdateQuantity shifts the quantity of id by delta, kept between 1 and
// MaxQuantity. Lines are only removed through RemoveItem.
func (c *Cart) UpdateQuantity(id string, delta int) {
	i := c.index(id)
	if i < 0 {
		return
	}
	c.lines[i].Quantity = clamp(c.lines[i].Quantity, delta)
}

// clamp adds delta to a quantity already in range without overflowing
func clamp(quantity, delta int) int {
	switch {
	case delta >= MaxQuantity-quantity:
		return MaxQuantity
	case delta <= 1-quantity:
		return 1
	default:
		return quantity + delta
	}
}

// Clear empties the cart
func (c *Cart) Clear() {
	c.lines = nil
}

// Subtotal sums price × quantity over all lines
func (c *Cart) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.lines {
		total = total.Add(l.Total())
	}
	return total
}

// ItemCount sums quantities over all lines
func (c *Cart) ItemCount() int {
	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

// Lines returns a copy of the lines in insertion order
func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

// Clone returns an independent copy of the cart
func (c *Cart) Clone() *Cart {
	return &Cart{lines: c.Lines()}
}

// Len returns the number of distinct lines
func (c *Cart) Len() int {
	return len(c.lines)
}

// IsEmpty reports whether the cart has no lines
func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

func (c *Cart) index(id string) int {
	for i := range c.lines {
		if c.lines[i].Item.ID == id {
			return i
		}
	}
	return -1
}

// MarshalJSON encodes the lines as a JSON array
func (c *Cart) MarshalJSON() ([]byte, error) {
	lines := c.lines
	if lines == nil {
		lines = []Line{}
	}
	return json.Marshal(lines)
}

// UnmarshalJSON restores lines, merging duplicate ids and clamping quantities
// so a decoded cart keeps the same invariants as one built through AddItem.
func (c *Cart) UnmarshalJSON(data []byte) error {
	var lines []Line
	if err := json.Unmarshal(data, &lines); err != nil {
		return err
	}
	c.lines = nil
	for _, l := range lines {
		if l.Quantity < 1 {
			l.Quantity = 1
		}
		if l.Quantity > MaxQuantity {
			l.Quantity = MaxQuantity
		}
		if i := c.index(l.Item.ID); i >= 0 {
			c.lines[i].Quantity = clamp(c.lines[i].Quantity, l.Quantity)
			continue
		}
		c.lines = append(c.lines, l)
	}
	return nil
}
