package cart

import (
	"github.com/pkg/errors"

	"github.com/imrishuroy/go-glucose-guard-orderflow/internal/health"
)

var (
	ErrInvalidQuantity = errors.New("quantity must not be negative")
	ErrItemNotFound    = errors.New("item not in cart")
	ErrMissingItemID   = errors.New("item id is required")
)

// Cart holds lines keyed by food item id in insertion order. A line never
// has quantity zero; setting zero removes it.
type Cart struct {
	lines []health.CartItem
}

// New returns a cart seeded with a copy of items. Lines with a non-positive
// quantity are dropped.
func New(items []health.CartItem) *Cart {
	c := &Cart{}
	for _, it := range items {
		if it.Quantity > 0 {
			c.lines = append(c.lines, it)
		}
	}
	return c
}

// Items returns an independent copy of the lines.
func (c *Cart) Items() []health.CartItem {
	return health.CloneItems(c.lines)
}

// Len is the number of distinct lines.
func (c *Cart) Len() int { return len(c.lines) }

// Count is the total number of units across lines.
func (c *Cart) Count() int {
	n := 0
	for _, it := range c.lines {
		n += it.Quantity
	}
	return n
}

func (c *Cart) index(id string) int {
	for i, it := range c.lines {
		if it.ID == id {
			return i
		}
	}
	return -1
}

// Add merges qty units of item into the cart.
func (c *Cart) Add(item health.FoodItem, qty int) error {
	if item.ID == "" {
		return ErrMissingItemID
	}
	if qty < 0 {
		return ErrInvalidQuantity
	}
	if qty == 0 {
		return nil
	}
	if i := c.index(item.ID); i >= 0 {
		c.lines[i].Quantity += qty
		return nil
	}
	c.lines = append(c.lines, health.CartItem{FoodItem: item, Quantity: qty})
	return nil
}

// SetQuantity replaces the quantity of a line; zero removes it.
func (c *Cart) SetQuantity(id string, qty int) error {
	if qty < 0 {
		return ErrInvalidQuantity
	}
	i := c.index(id)
	if i < 0 {
		return errors.Wrapf(ErrItemNotFound, "item %s", id)
	}
	if qty == 0 {
		c.removeAt(i)
		return nil
	}
	c.lines[i].Quantity = qty
	return nil
}

// Remove deletes a line.
func (c *Cart) Remove(id string) error {
	i := c.index(id)
	if i < 0 {
		return errors.Wrapf(ErrItemNotFound, "item %s", id)
	}
	c.removeAt(i)
	return nil
}

func (c *Cart) removeAt(i int) {
	c.lines = append(c.lines[:i:i], c.lines[i+1:]...)
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.lines = nil
}

// Prospective returns the lines as they would be after adding qty units of
// item, leaving the cart untouched.
func (c *Cart) Prospective(item health.FoodItem, qty int) []health.CartItem {
	next := New(c.lines)
	_ = next.Add(item, qty)
	return next.Items()
}
