package services

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"github.com/navaneethdubbaka/Food-Engine/models"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// MenuSource is the backend side of the catalog.
type MenuSource interface {
	MenuItemsByCategory(ctx context.Context, category string) ([]models.MenuItem, error)
	AllMenuItems(ctx context.Context) ([]models.MenuItem, error)
}

// Catalog mirrors the backend menu for the lifetime of the terminal process.
// Each category is fetched at most once; concurrent misses share one request.
type Catalog struct {
	src MenuSource
	log *zap.Logger

	mu         sync.RWMutex
	byCategory map[string][]models.MenuItem
	all        []models.MenuItem
	seen       map[int64]struct{}
	gen        uint64 // bumped by Reset; fetches started earlier are not stored

	fetches singleflight.Group
}

func NewCatalog(src MenuSource, log *zap.Logger) *Catalog {
	return &Catalog{
		src:        src,
		log:        log,
		byCategory: make(map[string][]models.MenuItem),
		seen:       make(map[int64]struct{}),
	}
}

// Preload fetches the whole menu once. On failure the cache stays empty and
// browsing falls back to per-category fetches.
func (c *Catalog) Preload(ctx context.Context) error {
	gen := c.generation()
	items, err := c.src.AllMenuItems(ctx)
	if err != nil {
		c.log.Warn("catalog preload failed", zap.Error(err))
		return err
	}

	parts := make(map[string][]models.MenuItem)
	for _, cat := range models.Categories {
		parts[cat] = []models.MenuItem{}
	}
	for _, it := range items {
		parts[it.Category] = append(parts[it.Category], it)
	}

	c.mu.Lock()
	if c.gen != gen {
		c.mu.Unlock()
		c.log.Info("catalog preload discarded after reset")
		return nil
	}
	for cat, list := range parts {
		c.byCategory[cat] = list
	}
	for _, it := range items {
		c.remember(it)
	}
	c.mu.Unlock()

	c.log.Info("catalog preloaded", zap.Int("items", len(items)))
	return nil
}

// ByCategory returns the cached items of a category, fetching them on a miss.
func (c *Catalog) ByCategory(ctx context.Context, category string) ([]models.MenuItem, error) {
	if items, ok := c.cached(category); ok {
		return items, nil
	}

	gen := c.generation()
	// The flight outlives any single caller: a caller that gives up must not
	// fail the others waiting on the same category.
	fetchCtx := context.WithoutCancel(ctx)
	ch := c.fetches.DoChan(strconv.FormatUint(gen, 10)+":"+category, func() (interface{}, error) {
		// A concurrent call may have stored the category between our
		// cache check and entering the flight.
		if items, ok := c.cached(category); ok {
			return items, nil
		}
		items, err := c.src.MenuItemsByCategory(fetchCtx, category)
		if err != nil {
			return nil, err
		}
		if items == nil {
			items = []models.MenuItem{}
		}
		c.mu.Lock()
		if c.gen == gen {
			c.byCategory[category] = items
			for _, it := range items {
				c.remember(it)
			}
		}
		c.mu.Unlock()
		c.log.Debug("catalog category fetched", zap.String("category", category), zap.Int("items", len(items)))
		return items, nil
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-ch:
	}
	if res.Err != nil {
		c.log.Warn("catalog fetch failed", zap.String("category", category), zap.Error(res.Err))
		return nil, res.Err
	}
	return copyItems(res.Val.([]models.MenuItem)), nil
}

// Lookup finds a cached item by id.
func (c *Catalog) Lookup(id int64) (models.MenuItem, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, it := range c.all {
		if it.ID == id {
			return it, true
		}
	}
	return models.MenuItem{}, false
}

// Search matches term case-insensitively against name, category and
// description of every cached item.
func (c *Catalog) Search(term string) []models.MenuItem {
	term = strings.ToLower(strings.TrimSpace(term))
	out := []models.MenuItem{}
	if term == "" {
		return out
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, it := range c.all {
		if strings.Contains(strings.ToLower(it.Name), term) ||
			strings.Contains(strings.ToLower(it.Category), term) ||
			strings.Contains(strings.ToLower(it.Description), term) {
			out = append(out, it)
		}
	}
	return out
}

// Reset forgets everything; the next browse refetches. Fetches already in
// flight complete for their callers but are not stored.
func (c *Catalog) Reset() {
	c.mu.Lock()
	c.byCategory = make(map[string][]models.MenuItem)
	c.all = nil
	c.seen = make(map[int64]struct{})
	c.gen++
	c.mu.Unlock()
}

// Reload drops the cache and preloads the whole menu again. When the load
// fails the cache stays empty and browsing fetches per category.
func (c *Catalog) Reload(ctx context.Context) error {
	c.Reset()
	return c.Preload(ctx)
}

func (c *Catalog) generation() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.gen
}

func (c *Catalog) cached(category string) ([]models.MenuItem, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	items, ok := c.byCategory[category]
	if !ok {
		return nil, false
	}
	return copyItems(items), true
}

// remember adds it to the flat search list. Callers hold c.mu.
func (c *Catalog) remember(it models.MenuItem) {
	if _, dup := c.seen[it.ID]; dup {
		return
	}
	c.seen[it.ID] = struct{}{}
	c.all = append(c.all, it)
}

func copyItems(items []models.MenuItem) []models.MenuItem {
	out := make([]models.MenuItem, len(items))
	copy(out, items)
	return out
}
