package services

import (
	"fmt"
	"strings"

	"github.com/navaneethdubbaka/Food-Engine/config"
	"github.com/navaneethdubbaka/Food-Engine/models"

	"github.com/shopspring/decimal"
)

const (
	FallbackPlaceholder = "placeholder"
	FallbackZero        = "zero"
)

// RatePolicy turns raw settings values into a RateConfig. Missing, empty,
// unparseable or negative values take the fallback rate of the policy.
type RatePolicy struct {
	Name            string
	TaxFallback     decimal.Decimal
	ServiceFallback decimal.Decimal
}

func NewRatePolicy(cfg config.PricingConfig) (RatePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.FallbackPolicy)) {
	case FallbackZero:
		return RatePolicy{Name: FallbackZero, TaxFallback: decimal.Zero, ServiceFallback: decimal.Zero}, nil
	case FallbackPlaceholder, "":
		tax, ok := parseRate(cfg.TaxRateFallback)
		if !ok {
			return RatePolicy{}, fmt.Errorf("invalid TAX_RATE_FALLBACK %q", cfg.TaxRateFallback)
		}
		service, ok := parseRate(cfg.ServiceChargeRateFallback)
		if !ok {
			return RatePolicy{}, fmt.Errorf("invalid SERVICE_CHARGE_RATE_FALLBACK %q", cfg.ServiceChargeRateFallback)
		}
		return RatePolicy{Name: FallbackPlaceholder, TaxFallback: tax, ServiceFallback: service}, nil
	default:
		return RatePolicy{}, fmt.Errorf("unknown rate fallback policy %q", cfg.FallbackPolicy)
	}
}

// DefaultRatePolicy mirrors the backend's seeded settings (10% tax, 5% service).
func DefaultRatePolicy() RatePolicy {
	return RatePolicy{
		Name:            FallbackPlaceholder,
		TaxFallback:     decimal.NewFromInt(10),
		ServiceFallback: decimal.NewFromInt(5),
	}
}

// Fallback is the RateConfig used before settings are loaded.
func (p RatePolicy) Fallback() models.RateConfig {
	return models.RateConfig{TaxRatePercent: p.TaxFallback, ServiceChargeRatePercent: p.ServiceFallback}
}

// Resolve reads the rates from settings. usedFallback reports whether either
// rate came from the policy instead of the backend.
func (p RatePolicy) Resolve(s models.Settings) (rates models.RateConfig, usedFallback bool) {
	tax, ok := parseRate(s.TaxRate)
	if !ok {
		tax, usedFallback = p.TaxFallback, true
	}
	service, ok := parseRate(s.ServiceChargeRate)
	if !ok {
		service, usedFallback = p.ServiceFallback, true
	}
	return models.RateConfig{TaxRatePercent: tax, ServiceChargeRatePercent: service}, usedFallback
}

func parseRate(raw string) (decimal.Decimal, bool) {
	raw = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(raw), "%"))
	if raw == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(raw)
	if err != nil || d.IsNegative() {
		return decimal.Zero, false
	}
	return d, true
}
