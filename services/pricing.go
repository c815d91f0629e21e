package services

import (
	"github.com/navaneethdubbaka/Food-Engine/models"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ComputeTotals derives the bill totals from the line items and rates.
// Nothing is rounded here; use FormatAmount when presenting.
func ComputeTotals(items []models.LineItem, rates models.RateConfig) models.BillTotals {
	subtotal := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(it.LineTotal())
	}
	tax := subtotal.Mul(rates.TaxRatePercent).Div(hundred)
	service := subtotal.Mul(rates.ServiceChargeRatePercent).Div(hundred)
	return models.BillTotals{
		Subtotal:            subtotal,
		TaxAmount:           tax,
		ServiceChargeAmount: service,
		GrandTotal:          subtotal.Add(tax).Add(service),
	}
}

// FormatAmount renders a monetary amount rounded to two decimals.
func FormatAmount(symbol string, d decimal.Decimal) string {
	return symbol + d.StringFixed(2)
}
