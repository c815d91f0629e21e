package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// LineItem is one distinct menu item in the cart.
type LineItem struct {
	ItemID   int64           `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Image    string          `json:"image"`
	Quantity int             `json:"quantity"`
}

// LineTotal is price * quantity, unrounded.
func (li LineItem) LineTotal() decimal.Decimal {
	return li.Price.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// RateConfig holds the percentage surcharges applied to the subtotal.
type RateConfig struct {
	TaxRatePercent           decimal.Decimal
	ServiceChargeRatePercent decimal.Decimal
}

// BillTotals is derived from line items and rates; it is never stored.
type BillTotals struct {
	Subtotal            decimal.Decimal
	TaxAmount           decimal.Decimal
	ServiceChargeAmount decimal.Decimal
	GrandTotal          decimal.Decimal
}

// Settings is the rate and display configuration served by the backend.
// Rates are kept raw; services.RatePolicy decides how to read them.
type Settings struct {
	TaxRate           string
	ServiceChargeRate string
	RestaurantName    string
	RestaurantAddress string
	RestaurantPhone   string
}

// BillResult is the backend answer to a bill submission.
type BillResult struct {
	Success    bool   `json:"success"`
	BillNumber string `json:"bill_number,omitempty"`
	Message    string `json:"message,omitempty"`
}

// ActionResult is the backend answer to menu add/update/delete.
type ActionResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// BillGenerated is published after the backend accepted a bill.
type BillGenerated struct {
	BillNumber    string     `json:"bill_number"`
	Terminal      string     `json:"terminal"`
	Items         []LineItem `json:"items"`
	Subtotal      string     `json:"subtotal"`
	TaxAmount     string     `json:"tax_amount"`
	ServiceCharge string     `json:"service_charge"`
	Total         string     `json:"total"`
	CreatedAt     time.Time  `json:"created_at"`
}
