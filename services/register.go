package services

import (
	"context"
	"sync"
	"time"

	"github.com/navaneethdubbaka/Food-Engine/models"

	"go.uber.org/zap"
)

// BillingBackend is the part of the backend a terminal session needs.
type BillingBackend interface {
	GenerateBill(ctx context.Context, items []models.LineItem) (models.BillResult, error)
	Settings(ctx context.Context) (models.Settings, error)
}

// BillPublisher receives accepted bills, e.g. for kitchen displays.
type BillPublisher interface {
	PublishBillGenerated(ctx context.Context, ev models.BillGenerated) error
}

// Summary is the derived view of a register after a command.
type Summary struct {
	Lines       []models.LineItem
	Totals      models.BillTotals
	Rates       models.RateConfig
	RatesLoaded bool
}

func (s Summary) IsEmpty() bool { return len(s.Lines) == 0 }

// Register is one terminal session: a cart, a rate snapshot and the commands
// the presentation layer binds to. It is safe for concurrent use.
type Register struct {
	terminal string
	catalog  *Catalog
	backend  BillingBackend
	policy   RatePolicy
	events   BillPublisher
	log      *zap.Logger
	now      func() time.Time

	mu          sync.Mutex
	cart        *Cart
	rates       models.RateConfig
	ratesLoaded bool
	settings    models.Settings
}

type RegisterOptions struct {
	Terminal string
	Catalog  *Catalog
	Backend  BillingBackend
	Policy   RatePolicy
	Events   BillPublisher // optional
	Log      *zap.Logger
}

func NewRegister(opts RegisterOptions) *Register {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &Register{
		terminal: opts.Terminal,
		catalog:  opts.Catalog,
		backend:  opts.Backend,
		policy:   opts.Policy,
		events:   opts.Events,
		log:      log.With(zap.String("terminal", opts.Terminal)),
		now:      time.Now,
		cart:     NewCart(),
		rates:    opts.Policy.Fallback(),
	}
}

func (r *Register) Terminal() string { return r.terminal }

func (r *Register) Catalog() *Catalog { return r.catalog }

func (r *Register) Summary() Summary {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.summaryLocked()
}

// Settings returns the last loaded backend settings.
func (r *Register) Settings() models.Settings {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.settings
}

// Add puts one unit of item on the bill.
func (r *Register) Add(item models.MenuItem) (Summary, Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cart.AddItem(item.ID, item.Name, item.Price, item.Image)
	return r.summaryLocked(), notice(LevelSuccess, "alert.item_added", item.Name)
}

// AddByID resolves id through the catalog before adding it.
func (r *Register) AddByID(id int64) (Summary, Notice) {
	item, ok := r.catalog.Lookup(id)
	if !ok {
		return r.Summary(), notice(LevelWarning, "alert.item_not_found")
	}
	return r.Add(item)
}

// SetQuantity applies user-typed quantity text; bad input becomes 1.
func (r *Register) SetQuantity(id int64, raw string) Summary {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cart.SetQuantityText(id, raw)
	return r.summaryLocked()
}

func (r *Register) AdjustQuantity(id int64, delta int) Summary {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cart.AdjustQuantity(id, delta)
	return r.summaryLocked()
}

func (r *Register) Remove(id int64) (Summary, Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cart.RemoveItem(id)
	return r.summaryLocked(), notice(LevelInfo, "alert.item_removed")
}

func (r *Register) Clear() (Summary, Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.cart.Clear() {
		return r.summaryLocked(), notice(LevelInfo, "alert.bill_already_empty")
	}
	return r.summaryLocked(), notice(LevelInfo, "alert.bill_cleared")
}

// Submission is the outcome of Submit.
type Submission struct {
	BillNumber string
	Lines      []models.LineItem // what was billed; set only on success
	Totals     models.BillTotals
	Summary    Summary
	Notice     Notice
}

// Submit sends the cart to the backend. The cart is cleared only after the
// backend accepted the bill; every failure leaves it untouched.
//
// The lock is held across the backend call so a second submit waits and then
// sees the cleared cart instead of sending the same bill twice.
func (r *Register) Submit(ctx context.Context) Submission {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cart.IsEmpty() {
		return Submission{Summary: r.summaryLocked(), Notice: notice(LevelWarning, "alert.bill_empty")}
	}

	items := r.cart.Items()
	totals := ComputeTotals(items, r.rates)
	res, err := r.backend.GenerateBill(ctx, items)
	if err != nil {
		r.log.Error("generate bill", zap.Error(err))
		return Submission{Summary: r.summaryLocked(), Notice: notice(LevelDanger, "alert.bill_error")}
	}
	if !res.Success {
		r.log.Warn("bill rejected", zap.String("message", res.Message))
		n := verbatim(LevelDanger, res.Message)
		if res.Message == "" {
			n = notice(LevelDanger, "alert.bill_error")
		}
		return Submission{Summary: r.summaryLocked(), Notice: n}
	}

	r.cart.Clear()
	r.log.Info("bill generated", zap.String("bill_number", res.BillNumber), zap.Int("lines", len(items)))
	r.publish(ctx, res.BillNumber, items, totals)

	return Submission{
		BillNumber: res.BillNumber,
		Lines:      items,
		Totals:     totals,
		Summary:    r.summaryLocked(),
		Notice:     notice(LevelSuccess, "alert.bill_generated"),
	}
}

// LoadSettings refreshes rates and restaurant details. On failure the
// previous snapshot is kept.
func (r *Register) LoadSettings(ctx context.Context) (Summary, error) {
	s, err := r.backend.Settings(ctx)
	if err != nil {
		r.log.Warn("load settings", zap.Error(err))
		return r.Summary(), err
	}
	return r.ApplySettings(s), nil
}

// ApplySettings replaces the rate snapshot with one resolved from s.
func (r *Register) ApplySettings(s models.Settings) Summary {
	r.mu.Lock()
	defer r.mu.Unlock()
	rates, usedFallback := r.policy.Resolve(s)
	if usedFallback {
		r.log.Info("rate fallback applied", zap.String("policy", r.policy.Name),
			zap.String("tax_rate", s.TaxRate), zap.String("service_charge_rate", s.ServiceChargeRate))
	}
	r.settings = s
	r.rates = rates
	r.ratesLoaded = true
	return r.summaryLocked()
}

func (r *Register) publish(ctx context.Context, billNumber string, items []models.LineItem, totals models.BillTotals) {
	if r.events == nil {
		return
	}
	ev := models.BillGenerated{
		BillNumber:    billNumber,
		Terminal:      r.terminal,
		Items:         items,
		Subtotal:      totals.Subtotal.StringFixed(2),
		TaxAmount:     totals.TaxAmount.StringFixed(2),
		ServiceCharge: totals.ServiceChargeAmount.StringFixed(2),
		Total:         totals.GrandTotal.StringFixed(2),
		CreatedAt:     r.now().UTC(),
	}
	if err := r.events.PublishBillGenerated(ctx, ev); err != nil {
		r.log.Warn("publish bill event", zap.String("bill_number", billNumber), zap.Error(err))
	}
}

func (r *Register) summaryLocked() Summary {
	items := r.cart.Items()
	return Summary{
		Lines:       items,
		Totals:      ComputeTotals(items, r.rates),
		Rates:       r.rates,
		RatesLoaded: r.ratesLoaded,
	}
}
