package services

import (
	"strconv"
	"strings"

	"github.com/navaneethdubbaka/Food-Engine/models"

	"github.com/shopspring/decimal"
)

// Cart is the client-held order before submission. Line items keep the order
// in which they were first added and never repeat an item id.
//
// A Cart is not safe for concurrent use; Register serializes access.
type Cart struct {
	items []models.LineItem
}

func NewCart() *Cart {
	return &Cart{}
}

// AddItem increments the quantity of an existing line or appends a new one.
func (c *Cart) AddItem(itemID int64, name string, price decimal.Decimal, image string) {
	if i := c.index(itemID); i >= 0 {
		c.items[i].Quantity++
		return
	}
	c.items = append(c.items, models.LineItem{
		ItemID:   itemID,
		Name:     name,
		Price:    price,
		Image:    image,
		Quantity: 1,
	})
}

// SetQuantity sets the quantity, clamped to at least 1. Unknown ids are ignored.
func (c *Cart) SetQuantity(itemID int64, quantity int) bool {
	i := c.index(itemID)
	if i < 0 {
		return false
	}
	c.items[i].Quantity = clampQuantity(quantity)
	return true
}

// SetQuantityText is SetQuantity for raw user input.
func (c *Cart) SetQuantityText(itemID int64, raw string) bool {
	return c.SetQuantity(itemID, ParseQuantity(raw))
}

// AdjustQuantity adds delta (usually +1 / -1) with the same clamping.
func (c *Cart) AdjustQuantity(itemID int64, delta int) bool {
	i := c.index(itemID)
	if i < 0 {
		return false
	}
	c.items[i].Quantity = clampQuantity(c.items[i].Quantity + delta)
	return true
}

func (c *Cart) RemoveItem(itemID int64) bool {
	i := c.index(itemID)
	if i < 0 {
		return false
	}
	c.items = append(c.items[:i], c.items[i+1:]...)
	return true
}

// Clear empties the cart and reports whether there was anything to clear.
func (c *Cart) Clear() bool {
	if len(c.items) == 0 {
		return false
	}
	c.items = nil
	return true
}

// Items returns a copy of the line items in insertion order.
func (c *Cart) Items() []models.LineItem {
	out := make([]models.LineItem, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Cart) Len() int { return len(c.items) }

func (c *Cart) IsEmpty() bool { return len(c.items) == 0 }

func (c *Cart) index(itemID int64) int {
	for i := range c.items {
		if c.items[i].ItemID == itemID {
			return i
		}
	}
	return -1
}

// ParseQuantity reads a quantity typed by the user. Anything that is not a
// positive integer becomes 1; a leading integer ("3 plates", "2.7") is kept.
func ParseQuantity(raw string) int {
	s := strings.TrimSpace(raw)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 1
	}
	return clampQuantity(n)
}

func clampQuantity(q int) int {
	if q < 1 {
		return 1
	}
	return q
}
