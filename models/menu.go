package models

import (
	"io"

	"github.com/shopspring/decimal"
)

// MenuItem is a read-only copy of a backend catalog entry.
type MenuItem struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description,omitempty"`
	Image       string          `json:"image,omitempty"`
}

const (
	CategoryBeverage   = "beverage"
	CategoryDessert    = "dessert"
	CategoryMainCourse = "main_course"
	CategorySalad      = "salad"
	CategorySideDish   = "side_dish"
	CategoryAppetizer  = "appetizer"
)

// Categories is the fixed category set in display order.
var Categories = []string{
	CategoryAppetizer,
	CategoryMainCourse,
	CategorySideDish,
	CategorySalad,
	CategoryDessert,
	CategoryBeverage,
}

func ValidCategory(c string) bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// MenuItemForm is the payload of the add/update menu item forms.
// Image is optional; when set, ImageName carries the original file name.
type MenuItemForm struct {
	Name        string
	Category    string
	Price       decimal.Decimal
	Description string
	ImageName   string
	Image       io.Reader
}
