package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/navaneethdubbaka/Food-Engine/models"

	"go.uber.org/zap"
)

func TestByCategoryFetchesOnce(t *testing.T) {
	src := newFakeMenuSource(fries, lassi, tikka)
	c := NewCatalog(src, zap.NewNop())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		items, err := c.ByCategory(ctx, models.CategoryBeverage)
		if err != nil {
			t.Fatalf("ByCategory: %v", err)
		}
		if len(items) != 1 || items[0].ID != lassi.ID {
			t.Fatalf("items = %+v", items)
		}
	}
	if n := src.calls(models.CategoryBeverage); n != 1 {
		t.Errorf("backend called %d times, want 1", n)
	}
}

func TestByCategoryConcurrentMissesShareOneFetch(t *testing.T) {
	src := newFakeMenuSource(fries, lassi)
	src.block = make(chan struct{})
	c := NewCatalog(src, zap.NewNop())

	const callers = 8
	var wg sync.WaitGroup
	errs := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.ByCategory(context.Background(), models.CategorySideDish)
			errs <- err
		}()
	}
	// let the callers pile up on the in-flight fetch
	time.Sleep(50 * time.Millisecond)
	close(src.block)
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("ByCategory: %v", err)
		}
	}
	if n := src.calls(models.CategorySideDish); n != 1 {
		t.Errorf("backend called %d times, want 1", n)
	}
}

func TestByCategoryEmptyCategoryIsCached(t *testing.T) {
	src := newFakeMenuSource(fries)
	c := NewCatalog(src, zap.NewNop())
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		items, err := c.ByCategory(ctx, models.CategoryDessert)
		if err != nil {
			t.Fatal(err)
		}
		if items == nil || len(items) != 0 {
			t.Fatalf("items = %#v, want empty non-nil", items)
		}
	}
	if n := src.calls(models.CategoryDessert); n != 1 {
		t.Errorf("backend called %d times, want 1", n)
	}
}

func TestByCategoryErrorIsNotCached(t *testing.T) {
	src := newFakeMenuSource(lassi)
	src.failCat = true
	c := NewCatalog(src, zap.NewNop())
	ctx := context.Background()

	if _, err := c.ByCategory(ctx, models.CategoryBeverage); err == nil {
		t.Fatal("expected error")
	}
	src.mu.Lock()
	src.failCat = false
	src.mu.Unlock()

	items, err := c.ByCategory(ctx, models.CategoryBeverage)
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if len(items) != 1 {
		t.Errorf("items = %+v", items)
	}
	if n := src.calls(models.CategoryBeverage); n != 2 {
		t.Errorf("backend called %d times, want 2", n)
	}
}

func TestPreloadServesEveryCategory(t *testing.T) {
	src := newFakeMenuSource(fries, lassi, tikka)
	c := NewCatalog(src, zap.NewNop())
	ctx := context.Background()

	if err := c.Preload(ctx); err != nil {
		t.Fatalf("Preload: %v", err)
	}
	for _, cat := range models.Categories {
		if _, err := c.ByCategory(ctx, cat); err != nil {
			t.Fatalf("ByCategory(%s): %v", cat, err)
		}
		if n := src.calls(cat); n != 0 {
			t.Errorf("category %s hit the backend %d times after preload", cat, n)
		}
	}
}

func TestPreloadFailureFallsBackToLazyFetch(t *testing.T) {
	src := newFakeMenuSource(fries)
	src.failAll = true
	c := NewCatalog(src, zap.NewNop())
	ctx := context.Background()

	if err := c.Preload(ctx); err == nil {
		t.Fatal("expected preload error")
	}
	if got := c.Search("fries"); len(got) != 0 {
		t.Errorf("search after failed preload = %+v", got)
	}
	items, err := c.ByCategory(ctx, models.CategorySideDish)
	if err != nil || len(items) != 1 {
		t.Fatalf("ByCategory = %+v, %v", items, err)
	}
}

func TestSearch(t *testing.T) {
	src := newFakeMenuSource(fries, lassi, tikka)
	c := NewCatalog(src, zap.NewNop())
	if err := c.Preload(context.Background()); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		term string
		want []int64
	}{
		{"fries", []int64{fries.ID}},
		{"FRIES", []int64{fries.ID}},
		{"  mango ", []int64{lassi.ID}},
		{"beverage", []int64{lassi.ID}},
		{"cottage", []int64{tikka.ID}},
		{"pizza", nil},
		{"", nil},
	}
	for _, tt := range tests {
		got := c.Search(tt.term)
		if got == nil {
			t.Errorf("Search(%q) returned nil slice", tt.term)
			continue
		}
		if len(got) != len(tt.want) {
			t.Errorf("Search(%q) = %d items, want %d", tt.term, len(got), len(tt.want))
			continue
		}
		for i, id := range tt.want {
			if got[i].ID != id {
				t.Errorf("Search(%q)[%d] = %d, want %d", tt.term, i, got[i].ID, id)
			}
		}
	}
}

func TestSearchSeesLazilyFetchedItemsOnce(t *testing.T) {
	src := newFakeMenuSource(fries)
	c := NewCatalog(src, zap.NewNop())
	ctx := context.Background()

	if _, err := c.ByCategory(ctx, models.CategorySideDish); err != nil {
		t.Fatal(err)
	}
	if err := c.Preload(ctx); err != nil {
		t.Fatal(err)
	}
	if got := c.Search("fries"); len(got) != 1 {
		t.Errorf("Search = %d items, want 1 (no duplicates)", len(got))
	}
}

func TestLookupAndReset(t *testing.T) {
	src := newFakeMenuSource(fries, lassi)
	c := NewCatalog(src, zap.NewNop())
	ctx := context.Background()

	if _, ok := c.Lookup(lassi.ID); ok {
		t.Fatal("Lookup hit on empty catalog")
	}
	if _, err := c.ByCategory(ctx, models.CategoryBeverage); err != nil {
		t.Fatal(err)
	}
	got, ok := c.Lookup(lassi.ID)
	if !ok || got.Name != lassi.Name {
		t.Fatalf("Lookup = %+v, %v", got, ok)
	}

	c.Reset()
	if _, ok := c.Lookup(lassi.ID); ok {
		t.Error("Lookup hit after Reset")
	}
	if _, err := c.ByCategory(ctx, models.CategoryBeverage); err != nil {
		t.Fatal(err)
	}
	if n := src.calls(models.CategoryBeverage); n != 2 {
		t.Errorf("backend called %d times, want 2 after Reset", n)
	}
}

func TestByCategoryReturnsCopies(t *testing.T) {
	src := newFakeMenuSource(lassi)
	c := NewCatalog(src, zap.NewNop())
	ctx := context.Background()

	items, _ := c.ByCategory(ctx, models.CategoryBeverage)
	items[0].Name = "changed"
	again, _ := c.ByCategory(ctx, models.CategoryBeverage)
	if again[0].Name != lassi.Name {
		t.Error("caller mutation leaked into the cache")
	}
}

func TestReloadKeepsSearchAndLookup(t *testing.T) {
	src := newFakeMenuSource(fries, lassi)
	c := NewCatalog(src, zap.NewNop())
	ctx := context.Background()
	if err := c.Preload(ctx); err != nil {
		t.Fatal(err)
	}

	if err := c.Reload(ctx); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if got := c.Search("fries"); len(got) != 1 || got[0].ID != fries.ID {
		t.Errorf("Search after Reload = %+v", got)
	}
	if _, ok := c.Lookup(lassi.ID); !ok {
		t.Error("Lookup missed after Reload")
	}
	if src.allCalls != 2 {
		t.Errorf("full loads = %d, want 2", src.allCalls)
	}
}

func TestCanceledCallerDoesNotFailSharedFetch(t *testing.T) {
	src := newFakeMenuSource(fries, lassi)
	src.block = make(chan struct{})
	src.entered = make(chan string, 1)
	c := NewCatalog(src, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	first := make(chan error, 1)
	go func() {
		_, err := c.ByCategory(ctx, models.CategoryBeverage)
		first <- err
	}()
	<-src.entered
	cancel()
	if err := <-first; err != context.Canceled {
		t.Fatalf("canceled caller err = %v, want context.Canceled", err)
	}

	second := make(chan error, 1)
	go func() {
		items, err := c.ByCategory(context.Background(), models.CategoryBeverage)
		if err == nil && len(items) != 1 {
			t.Errorf("items = %+v", items)
		}
		second <- err
	}()
	close(src.block)
	if err := <-second; err != nil {
		t.Fatalf("waiting caller err = %v", err)
	}
	if n := src.calls(models.CategoryBeverage); n != 1 {
		t.Errorf("backend called %d times, want 1", n)
	}
}

func TestResetDuringFetchDiscardsResult(t *testing.T) {
	src := newFakeMenuSource(fries)
	src.block = make(chan struct{})
	src.entered = make(chan string, 1)
	c := NewCatalog(src, zap.NewNop())

	done := make(chan error, 1)
	go func() {
		_, err := c.ByCategory(context.Background(), models.CategorySideDish)
		done <- err
	}()
	<-src.entered
	c.Reset()
	close(src.block)
	if err := <-done; err != nil {
		t.Fatal(err)
	}

	if _, ok := c.Lookup(fries.ID); ok {
		t.Error("fetch started before Reset was stored")
	}
	src.entered = nil
	if _, err := c.ByCategory(context.Background(), models.CategorySideDish); err != nil {
		t.Fatal(err)
	}
	if n := src.calls(models.CategorySideDish); n != 2 {
		t.Errorf("backend called %d times, want 2", n)
	}
}
