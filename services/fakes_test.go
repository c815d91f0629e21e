package services

import (
	"context"
	"errors"
	"sync"

	"github.com/navaneethdubbaka/Food-Engine/models"

	"github.com/shopspring/decimal"
)

var errOffline = errors.New("connection refused")

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type fakeMenuSource struct {
	mu       sync.Mutex
	items    []models.MenuItem
	failAll  bool
	failCat  bool
	catCalls map[string]int
	allCalls int
	block    chan struct{} // when set, category fetches wait on it
	entered  chan string   // when set, receives the category of each fetch
}

func newFakeMenuSource(items ...models.MenuItem) *fakeMenuSource {
	return &fakeMenuSource{items: items, catCalls: make(map[string]int)}
}

func (f *fakeMenuSource) MenuItemsByCategory(ctx context.Context, category string) ([]models.MenuItem, error) {
	f.mu.Lock()
	f.catCalls[category]++
	block, entered, fail := f.block, f.entered, f.failCat
	f.mu.Unlock()
	if entered != nil {
		entered <- category
	}
	if block != nil {
		<-block
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if fail {
		return nil, errOffline
	}
	var out []models.MenuItem
	for _, it := range f.items {
		if it.Category == category {
			out = append(out, it)
		}
	}
	return out, nil
}

func (f *fakeMenuSource) AllMenuItems(ctx context.Context) ([]models.MenuItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.allCalls++
	if f.failAll {
		return nil, errOffline
	}
	return append([]models.MenuItem(nil), f.items...), nil
}

func (f *fakeMenuSource) calls(category string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.catCalls[category]
}

type fakeBilling struct {
	result      models.BillResult
	err         error
	settings    models.Settings
	settingsErr error
	submitted   [][]models.LineItem
}

func (f *fakeBilling) GenerateBill(ctx context.Context, items []models.LineItem) (models.BillResult, error) {
	f.submitted = append(f.submitted, items)
	return f.result, f.err
}

func (f *fakeBilling) Settings(ctx context.Context) (models.Settings, error) {
	return f.settings, f.settingsErr
}

type recordingPublisher struct {
	events []models.BillGenerated
	err    error
}

func (p *recordingPublisher) PublishBillGenerated(ctx context.Context, ev models.BillGenerated) error {
	p.events = append(p.events, ev)
	return p.err
}

var (
	fries = models.MenuItem{ID: 1, Name: "French Fries", Category: models.CategorySideDish, Price: dec("100"), Description: "Crispy golden french fries"}
	lassi = models.MenuItem{ID: 2, Name: "Mango Lassi", Category: models.CategoryBeverage, Price: dec("50"), Image: "lassi.jpg"}
	tikka = models.MenuItem{ID: 3, Name: "Paneer Tikka", Category: models.CategoryAppetizer, Price: dec("180"), Description: "Grilled cottage cheese"}
)
