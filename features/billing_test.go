package features

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/navaneethdubbaka/Food-Engine/models"
	"github.com/navaneethdubbaka/Food-Engine/services"

	"github.com/cucumber/godog"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// fakeBackend serves the menu and records bill submissions.
type fakeBackend struct {
	mu       sync.Mutex
	items    []models.MenuItem
	settings models.Settings
	result   models.BillResult
	err      error
	bills    int
	catCalls map[string]int
}

func (b *fakeBackend) MenuItemsByCategory(ctx context.Context, category string) ([]models.MenuItem, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.catCalls[category]++
	var out []models.MenuItem
	for _, it := range b.items {
		if it.Category == category {
			out = append(out, it)
		}
	}
	return out, nil
}

func (b *fakeBackend) AllMenuItems(ctx context.Context) ([]models.MenuItem, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]models.MenuItem(nil), b.items...), nil
}

func (b *fakeBackend) GenerateBill(ctx context.Context, items []models.LineItem) (models.BillResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.bills++
	return b.result, b.err
}

func (b *fakeBackend) Settings(ctx context.Context) (models.Settings, error) {
	return b.settings, nil
}

type billingTestContext struct {
	backend    *fakeBackend
	catalog    *services.Catalog
	register   *services.Register
	summary    services.Summary
	submission services.Submission
	notice     services.Notice
	found      []models.MenuItem
}

func (c *billingTestContext) reset() {
	c.backend = &fakeBackend{
		catCalls: make(map[string]int),
		result:   models.BillResult{Success: true, BillNumber: "BILL-0001"},
	}
	c.catalog = nil
	c.register = nil
	c.summary = services.Summary{}
	c.submission = services.Submission{}
	c.notice = services.Notice{}
	c.found = nil
}

func (c *billingTestContext) theBackendMenu(table *godog.Table) error {
	for i, row := range table.Rows {
		if i == 0 {
			continue // header
		}
		id, err := strconv.ParseInt(row.Cells[0].Value, 10, 64)
		if err != nil {
			return err
		}
		price, err := decimal.NewFromString(row.Cells[3].Value)
		if err != nil {
			return err
		}
		c.backend.items = append(c.backend.items, models.MenuItem{
			ID:          id,
			Name:        row.Cells[1].Value,
			Category:    row.Cells[2].Value,
			Price:       price,
			Description: row.Cells[4].Value,
		})
	}
	return nil
}

func (c *billingTestContext) theBackendSettingsHaveRates(tax, service string) error {
	c.backend.settings = models.Settings{TaxRate: tax, ServiceChargeRate: service}
	return nil
}

func (c *billingTestContext) aTerminalSession() error {
	if c.catalog == nil {
		c.catalog = services.NewCatalog(c.backend, zap.NewNop())
		if err := c.catalog.Preload(context.Background()); err != nil {
			return err
		}
	}
	c.register = services.NewRegister(services.RegisterOptions{
		Terminal: "feature",
		Catalog:  c.catalog,
		Backend:  c.backend,
		Policy:   services.DefaultRatePolicy(),
		Log:      zap.NewNop(),
	})
	sum, err := c.register.LoadSettings(context.Background())
	c.summary = sum
	return err
}

func (c *billingTestContext) aFreshCatalog() error {
	c.catalog = services.NewCatalog(c.backend, zap.NewNop())
	return nil
}

func (c *billingTestContext) theBackendAcceptsBillsAs(number string) error {
	c.backend.result = models.BillResult{Success: true, BillNumber: number}
	return nil
}

func (c *billingTestContext) theBackendRejectsBillsWith(message string) error {
	c.backend.result = models.BillResult{Success: false, Message: message}
	return nil
}

func (c *billingTestContext) theBackendIsUnreachable() error {
	c.backend.err = errors.New("connection refused")
	return nil
}

func (c *billingTestContext) iAddItem(id int64) error {
	c.summary, c.notice = c.register.AddByID(id)
	if c.notice.Level != services.LevelSuccess {
		return fmt.Errorf("add %d: %s", id, c.notice.Text("en"))
	}
	return nil
}

func (c *billingTestContext) iSetTheQuantityOfItemTo(id int64, typed string) error {
	c.summary = c.register.SetQuantity(id, typed)
	return nil
}

func (c *billingTestContext) iRemoveItem(id int64) error {
	c.summary, c.notice = c.register.Remove(id)
	return nil
}

func (c *billingTestContext) iSubmitTheBill() error {
	c.submission = c.register.Submit(context.Background())
	c.summary = c.submission.Summary
	c.notice = c.submission.Notice
	return nil
}

func (c *billingTestContext) iBrowseCategoryTimes(category string, times int) error {
	for i := 0; i < times; i++ {
		if _, err := c.catalog.ByCategory(context.Background(), category); err != nil {
			return err
		}
	}
	return nil
}

func (c *billingTestContext) iSearchFor(term string) error {
	c.found = c.catalog.Search(term)
	return nil
}

func (c *billingTestContext) theBillHasLines(n int) error {
	if got := len(c.register.Summary().Lines); got != n {
		return fmt.Errorf("expected %d lines, got %d", n, got)
	}
	return nil
}

func (c *billingTestContext) itemHasQuantity(id int64, q int) error {
	for _, li := range c.register.Summary().Lines {
		if li.ItemID == id {
			if li.Quantity != q {
				return fmt.Errorf("item %d: expected quantity %d, got %d", id, q, li.Quantity)
			}
			return nil
		}
	}
	return fmt.Errorf("item %d not on the bill", id)
}

func (c *billingTestContext) amountIs(name string, get func(models.BillTotals) decimal.Decimal) func(string) error {
	return func(want string) error {
		if got := get(c.register.Summary().Totals).StringFixed(2); got != want {
			return fmt.Errorf("expected %s %s, got %s", name, want, got)
		}
		return nil
	}
}

func (c *billingTestContext) theNoticeIs(want string) error {
	if got := c.notice.Text("en"); got != want {
		return fmt.Errorf("expected notice %q, got %q", want, got)
	}
	return nil
}

func (c *billingTestContext) theBillNumberIs(want string) error {
	if c.submission.BillNumber != want {
		return fmt.Errorf("expected bill number %q, got %q", want, c.submission.BillNumber)
	}
	return nil
}

func (c *billingTestContext) theBackendReceivedBills(n int) error {
	c.backend.mu.Lock()
	defer c.backend.mu.Unlock()
	if c.backend.bills != n {
		return fmt.Errorf("expected %d submissions, got %d", n, c.backend.bills)
	}
	return nil
}

func (c *billingTestContext) theBackendServedCategoryTimes(category string, n int) error {
	c.backend.mu.Lock()
	defer c.backend.mu.Unlock()
	if got := c.backend.catCalls[category]; got != n {
		return fmt.Errorf("expected %d fetches of %s, got %d", n, category, got)
	}
	return nil
}

func (c *billingTestContext) theSearchReturnsItem(id int64) error {
	if len(c.found) != 1 || c.found[0].ID != id {
		var ids []string
		for _, it := range c.found {
			ids = append(ids, strconv.FormatInt(it.ID, 10))
		}
		return fmt.Errorf("expected only item %d, got [%s]", id, strings.Join(ids, ","))
	}
	return nil
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := &billingTestContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	// Given steps
	ctx.Step(`^the backend menu:$`, tc.theBackendMenu)
	ctx.Step(`^the backend settings have tax rate "([^"]*)" and service charge rate "([^"]*)"$`, tc.theBackendSettingsHaveRates)
	ctx.Step(`^a terminal session$`, tc.aTerminalSession)
	ctx.Step(`^a fresh catalog$`, tc.aFreshCatalog)
	ctx.Step(`^the backend accepts bills as "([^"]*)"$`, tc.theBackendAcceptsBillsAs)
	ctx.Step(`^the backend rejects bills with "([^"]*)"$`, tc.theBackendRejectsBillsWith)
	ctx.Step(`^the backend is unreachable$`, tc.theBackendIsUnreachable)

	// When steps
	ctx.Step(`^I add item (\d+)$`, tc.iAddItem)
	ctx.Step(`^I set the quantity of item (\d+) to "([^"]*)"$`, tc.iSetTheQuantityOfItemTo)
	ctx.Step(`^I remove item (\d+)$`, tc.iRemoveItem)
	ctx.Step(`^I submit the bill$`, tc.iSubmitTheBill)
	ctx.Step(`^I browse category "([^"]*)" (\d+) times$`, tc.iBrowseCategoryTimes)
	ctx.Step(`^I search for "([^"]*)"$`, tc.iSearchFor)

	// Then steps
	ctx.Step(`^the bill has (\d+) lines$`, tc.theBillHasLines)
	ctx.Step(`^item (\d+) has quantity (\d+)$`, tc.itemHasQuantity)
	ctx.Step(`^the subtotal is "([^"]*)"$`, tc.amountIs("subtotal", func(t models.BillTotals) decimal.Decimal { return t.Subtotal }))
	ctx.Step(`^the tax is "([^"]*)"$`, tc.amountIs("tax", func(t models.BillTotals) decimal.Decimal { return t.TaxAmount }))
	ctx.Step(`^the service charge is "([^"]*)"$`, tc.amountIs("service charge", func(t models.BillTotals) decimal.Decimal { return t.ServiceChargeAmount }))
	ctx.Step(`^the grand total is "([^"]*)"$`, tc.amountIs("grand total", func(t models.BillTotals) decimal.Decimal { return t.GrandTotal }))
	ctx.Step(`^the notice is "([^"]*)"$`, tc.theNoticeIs)
	ctx.Step(`^the bill number is "([^"]*)"$`, tc.theBillNumberIs)
	ctx.Step(`^the backend received (\d+) bills$`, tc.theBackendReceivedBills)
	ctx.Step(`^the backend served category "([^"]*)" (\d+) times$`, tc.theBackendServedCategoryTimes)
	ctx.Step(`^the search returns item (\d+)$`, tc.theSearchReturnsItem)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"billing.feature"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
