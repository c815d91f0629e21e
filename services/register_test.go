package services

import (
	"context"
	"testing"
	"time"

	"github.com/navaneethdubbaka/Food-Engine/models"

	"go.uber.org/zap"
)

func newTestRegister(backend *fakeBilling, pub BillPublisher) *Register {
	src := newFakeMenuSource(fries, lassi, tikka)
	cat := NewCatalog(src, zap.NewNop())
	_ = cat.Preload(context.Background())
	opts := RegisterOptions{
		Terminal: "t-1",
		Catalog:  cat,
		Backend:  backend,
		Policy:   DefaultRatePolicy(),
		Log:      zap.NewNop(),
	}
	if pub != nil {
		opts.Events = pub
	}
	r := NewRegister(opts)
	r.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	return r
}

func TestRegisterAddProducesTotals(t *testing.T) {
	r := newTestRegister(&fakeBilling{}, nil)
	r.Add(fries)
	r.Add(fries)
	sum, n := r.Add(lassi)

	if n.Level != LevelSuccess || n.Text("en") != "Mango Lassi added to bill" {
		t.Errorf("notice = %+v / %q", n, n.Text("en"))
	}
	if got := sum.Totals.GrandTotal.StringFixed(2); got != "287.50" {
		t.Errorf("grand total = %s, want 287.50", got)
	}
	if sum.RatesLoaded {
		t.Error("RatesLoaded before LoadSettings")
	}
}

func TestRegisterAddByID(t *testing.T) {
	r := newTestRegister(&fakeBilling{}, nil)
	sum, n := r.AddByID(tikka.ID)
	if n.Level != LevelSuccess || len(sum.Lines) != 1 {
		t.Fatalf("AddByID(known) = %+v, %+v", sum, n)
	}
	sum, n = r.AddByID(404)
	if n.Key != "alert.item_not_found" || len(sum.Lines) != 1 {
		t.Errorf("AddByID(unknown) = %+v, %+v", sum, n)
	}
}

func TestRegisterQuantityCommands(t *testing.T) {
	r := newTestRegister(&fakeBilling{}, nil)
	r.Add(fries)

	if sum := r.SetQuantity(fries.ID, "4"); sum.Lines[0].Quantity != 4 {
		t.Errorf("quantity = %d, want 4", sum.Lines[0].Quantity)
	}
	if sum := r.SetQuantity(fries.ID, "zero"); sum.Lines[0].Quantity != 1 {
		t.Errorf("quantity = %d, want 1", sum.Lines[0].Quantity)
	}
	if sum := r.AdjustQuantity(fries.ID, -1); sum.Lines[0].Quantity != 1 {
		t.Errorf("quantity = %d, want 1", sum.Lines[0].Quantity)
	}
	sum, n := r.Remove(fries.ID)
	if !sum.IsEmpty() || n.Key != "alert.item_removed" {
		t.Errorf("Remove = %+v, %+v", sum, n)
	}
}

func TestRegisterClear(t *testing.T) {
	r := newTestRegister(&fakeBilling{}, nil)
	if _, n := r.Clear(); n.Key != "alert.bill_already_empty" {
		t.Errorf("Clear(empty) notice = %q", n.Key)
	}
	r.Add(fries)
	sum, n := r.Clear()
	if n.Key != "alert.bill_cleared" || !sum.IsEmpty() {
		t.Errorf("Clear = %+v, %+v", sum, n)
	}
}

func TestRegisterSubmit(t *testing.T) {
	tests := []struct {
		name        string
		backend     *fakeBilling
		emptyCart   bool
		wantKey     string
		wantMessage string
		wantCleared bool
		wantCalls   int
	}{
		{
			name:      "empty cart never reaches the backend",
			backend:   &fakeBilling{},
			emptyCart: true,
			wantKey:   "alert.bill_empty",
		},
		{
			name:        "accepted",
			backend:     &fakeBilling{result: models.BillResult{Success: true, BillNumber: "BILL-0001"}},
			wantKey:     "alert.bill_generated",
			wantCleared: true,
			wantCalls:   1,
		},
		{
			name:        "rejected with message",
			backend:     &fakeBilling{result: models.BillResult{Success: false, Message: "Printer offline"}},
			wantMessage: "Printer offline",
			wantCalls:   1,
		},
		{
			name:      "rejected without message",
			backend:   &fakeBilling{result: models.BillResult{Success: false}},
			wantKey:   "alert.bill_error",
			wantCalls: 1,
		},
		{
			name:      "transport failure",
			backend:   &fakeBilling{err: errOffline},
			wantKey:   "alert.bill_error",
			wantCalls: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRegister(tt.backend, nil)
			if !tt.emptyCart {
				r.Add(fries)
				r.SetQuantity(fries.ID, "2")
				r.Add(lassi)
			}
			before := r.Summary()

			sub := r.Submit(context.Background())

			if sub.Notice.Key != tt.wantKey || sub.Notice.Message != tt.wantMessage {
				t.Errorf("notice = %+v", sub.Notice)
			}
			if len(tt.backend.submitted) != tt.wantCalls {
				t.Errorf("backend calls = %d, want %d", len(tt.backend.submitted), tt.wantCalls)
			}
			if tt.wantCleared {
				if !sub.Summary.IsEmpty() || !r.Summary().IsEmpty() {
					t.Error("cart not cleared after accepted bill")
				}
				if sub.BillNumber != "BILL-0001" || sub.Totals.GrandTotal.StringFixed(2) != "287.50" {
					t.Errorf("submission = %+v", sub)
				}
				return
			}
			after := r.Summary()
			if len(after.Lines) != len(before.Lines) {
				t.Errorf("cart changed on failure: %d -> %d lines", len(before.Lines), len(after.Lines))
			}
		})
	}
}

func TestRegisterSubmitSendsCartLines(t *testing.T) {
	backend := &fakeBilling{result: models.BillResult{Success: true, BillNumber: "B1"}}
	r := newTestRegister(backend, nil)
	r.Add(fries)
	r.Add(fries)
	r.Add(lassi)
	r.Submit(context.Background())

	sent := backend.submitted[0]
	if len(sent) != 2 || sent[0].ItemID != fries.ID || sent[0].Quantity != 2 || sent[1].ItemID != lassi.ID {
		t.Errorf("sent = %+v", sent)
	}
}

func TestRegisterSubmitPublishesEvent(t *testing.T) {
	pub := &recordingPublisher{err: errOffline}
	backend := &fakeBilling{result: models.BillResult{Success: true, BillNumber: "BILL-42"}}
	r := newTestRegister(backend, pub)
	r.Add(fries)

	sub := r.Submit(context.Background())
	if sub.Notice.Key != "alert.bill_generated" {
		t.Fatalf("publish failure leaked into the outcome: %+v", sub.Notice)
	}
	if len(pub.events) != 1 {
		t.Fatalf("events = %d, want 1", len(pub.events))
	}
	ev := pub.events[0]
	if ev.BillNumber != "BILL-42" || ev.Terminal != "t-1" || ev.Subtotal != "100.00" || ev.Total != "115.00" {
		t.Errorf("event = %+v", ev)
	}
	if !ev.CreatedAt.Equal(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)) {
		t.Errorf("CreatedAt = %v", ev.CreatedAt)
	}
}

func TestRegisterLoadSettings(t *testing.T) {
	backend := &fakeBilling{settings: models.Settings{TaxRate: "18", ServiceChargeRate: "0", RestaurantName: "Spice Hub"}}
	r := newTestRegister(backend, nil)
	r.Add(fries)

	sum, err := r.LoadSettings(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !sum.RatesLoaded || sum.Totals.GrandTotal.StringFixed(2) != "118.00" {
		t.Errorf("summary = %+v", sum)
	}
	if r.Settings().RestaurantName != "Spice Hub" {
		t.Errorf("settings = %+v", r.Settings())
	}

	backend.settingsErr = errOffline
	backend.settings = models.Settings{TaxRate: "50"}
	sum, err = r.LoadSettings(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if !sum.Rates.TaxRatePercent.Equal(dec("18")) || !sum.RatesLoaded {
		t.Errorf("failed reload replaced the snapshot: %+v", sum.Rates)
	}
}

func TestRegisterLoadSettingsFailureBeforeFirstLoad(t *testing.T) {
	r := newTestRegister(&fakeBilling{settingsErr: errOffline}, nil)
	sum, err := r.LoadSettings(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if sum.RatesLoaded {
		t.Error("RatesLoaded after failed load")
	}
	if !sum.Rates.TaxRatePercent.Equal(dec("10")) {
		t.Errorf("rates = %+v, want placeholder", sum.Rates)
	}
}

func TestRegisterApplySettingsKeepsCart(t *testing.T) {
	r := newTestRegister(&fakeBilling{}, nil)
	r.Add(fries)
	r.Add(lassi)

	sum := r.ApplySettings(models.Settings{TaxRate: "20", ServiceChargeRate: "10", RestaurantName: "Spice Hub"})
	if len(sum.Lines) != 2 || !sum.RatesLoaded {
		t.Fatalf("summary = %+v", sum)
	}
	// 150 + 30 + 15
	if got := sum.Totals.GrandTotal.StringFixed(2); got != "195.00" {
		t.Errorf("grand total = %s, want 195.00", got)
	}
	if r.Settings().RestaurantName != "Spice Hub" {
		t.Errorf("settings = %+v", r.Settings())
	}
}

func TestRegistersDoNotShareCarts(t *testing.T) {
	a := newTestRegister(&fakeBilling{}, nil)
	b := newTestRegister(&fakeBilling{}, nil)
	a.Add(fries)
	if !b.Summary().IsEmpty() {
		t.Error("register b saw register a's cart")
	}
}
