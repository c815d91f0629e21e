package services

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/navaneethdubbaka/Food-Engine/models"

	"go.uber.org/zap"
)

// MenuBackend is the menu CRUD and settings part of the backend.
type MenuBackend interface {
	AddMenuItem(ctx context.Context, form models.MenuItemForm) (models.ActionResult, error)
	UpdateMenuItem(ctx context.Context, id int64, form models.MenuItemForm) (models.ActionResult, error)
	DeleteMenuItem(ctx context.Context, id int64) (models.ActionResult, error)
	UpdateSettings(ctx context.Context, s models.Settings) (models.ActionResult, error)
	Settings(ctx context.Context) (models.Settings, error)
}

var allowedImageExt = map[string]bool{".png": true, ".jpg": true, ".jpeg": true, ".gif": true}

// ValidateMenuItem checks a form before it is sent to the backend.
func ValidateMenuItem(form models.MenuItemForm) error {
	if strings.TrimSpace(form.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if !models.ValidCategory(form.Category) {
		return fmt.Errorf("invalid category: %s", form.Category)
	}
	if form.Price.IsNegative() {
		return fmt.Errorf("price must be >= 0")
	}
	if form.Image != nil && !allowedImageExt[strings.ToLower(filepath.Ext(form.ImageName))] {
		return fmt.Errorf("image must be png, jpg, jpeg or gif")
	}
	return nil
}

// ValidateSettings checks the rate fields of an update; empty fields are
// left unchanged by the backend and pass.
func ValidateSettings(s models.Settings) error {
	for _, f := range []struct{ name, raw string }{
		{"tax rate", s.TaxRate},
		{"service charge rate", s.ServiceChargeRate},
	} {
		if strings.TrimSpace(f.raw) == "" {
			continue
		}
		if _, ok := parseRate(f.raw); !ok {
			return fmt.Errorf("%s must be a number >= 0", f.name)
		}
	}
	return nil
}

// MenuAdmin runs menu CRUD and settings updates against the backend, keeps
// the catalog in step and tells open registers about new settings.
type MenuAdmin struct {
	backend MenuBackend
	catalog *Catalog
	log     *zap.Logger

	mu        sync.Mutex
	listeners []func(models.Settings)
}

func NewMenuAdmin(backend MenuBackend, catalog *Catalog, log *zap.Logger) *MenuAdmin {
	return &MenuAdmin{backend: backend, catalog: catalog, log: log}
}

func (m *MenuAdmin) Add(ctx context.Context, form models.MenuItemForm) Notice {
	if err := ValidateMenuItem(form); err != nil {
		return notice(LevelWarning, "alert.invalid_item", err.Error())
	}
	form.Name = strings.TrimSpace(form.Name)
	res, err := m.backend.AddMenuItem(ctx, form)
	return m.outcome(ctx, "add", 0, res, err, "alert.item_add_ok", "alert.item_add_error")
}

func (m *MenuAdmin) Update(ctx context.Context, id int64, form models.MenuItemForm) Notice {
	if err := ValidateMenuItem(form); err != nil {
		return notice(LevelWarning, "alert.invalid_item", err.Error())
	}
	form.Name = strings.TrimSpace(form.Name)
	res, err := m.backend.UpdateMenuItem(ctx, id, form)
	return m.outcome(ctx, "update", id, res, err, "alert.item_update_ok", "alert.item_update_error")
}

func (m *MenuAdmin) Delete(ctx context.Context, id int64) Notice {
	res, err := m.backend.DeleteMenuItem(ctx, id)
	return m.outcome(ctx, "delete", id, res, err, "alert.item_delete_ok", "alert.item_delete_error")
}

// OnSettingsChanged registers fn to receive the settings the backend serves
// after every successful update.
func (m *MenuAdmin) OnSettingsChanged(fn func(models.Settings)) {
	m.mu.Lock()
	m.listeners = append(m.listeners, fn)
	m.mu.Unlock()
}

// Settings reads the settings the backend currently serves.
func (m *MenuAdmin) Settings(ctx context.Context) (models.Settings, error) {
	return m.backend.Settings(ctx)
}

func (m *MenuAdmin) UpdateSettings(ctx context.Context, s models.Settings) Notice {
	s = models.Settings{
		TaxRate:           strings.TrimSpace(s.TaxRate),
		ServiceChargeRate: strings.TrimSpace(s.ServiceChargeRate),
		RestaurantName:    strings.TrimSpace(s.RestaurantName),
		RestaurantAddress: strings.TrimSpace(s.RestaurantAddress),
		RestaurantPhone:   strings.TrimSpace(s.RestaurantPhone),
	}
	if err := ValidateSettings(s); err != nil {
		return notice(LevelWarning, "alert.invalid_settings", err.Error())
	}
	res, err := m.backend.UpdateSettings(ctx, s)
	if n, ok := m.failed("update settings", 0, res, err, "alert.settings_update_error"); !ok {
		return n
	}

	current, err := m.backend.Settings(ctx)
	if err != nil {
		// saved; registers pick the change up on their next reload
		m.log.Warn("read settings after update", zap.Error(err))
		return notice(LevelSuccess, "alert.settings_update_ok")
	}
	m.mu.Lock()
	listeners := append([]func(models.Settings){}, m.listeners...)
	m.mu.Unlock()
	for _, fn := range listeners {
		fn(current)
	}
	m.log.Info("settings updated", zap.String("tax_rate", current.TaxRate),
		zap.String("service_charge_rate", current.ServiceChargeRate))
	return notice(LevelSuccess, "alert.settings_update_ok")
}

// failed maps a transport error or a {success:false} answer to its notice.
func (m *MenuAdmin) failed(op string, id int64, res models.ActionResult, err error, errKey string) (Notice, bool) {
	if err != nil {
		m.log.Error("menu "+op, zap.Int64("item_id", id), zap.Error(err))
		return notice(LevelDanger, errKey), false
	}
	if !res.Success {
		m.log.Warn("menu "+op+" rejected", zap.Int64("item_id", id), zap.String("message", res.Message))
		if res.Message == "" {
			return notice(LevelDanger, errKey), false
		}
		return verbatim(LevelDanger, res.Message), false
	}
	return Notice{}, true
}

func (m *MenuAdmin) outcome(ctx context.Context, op string, id int64, res models.ActionResult, err error, okKey, errKey string) Notice {
	if n, ok := m.failed(op, id, res, err, errKey); !ok {
		return n
	}
	// a failed reload leaves the catalog empty and browsing refetches lazily
	_ = m.catalog.Reload(ctx)
	return notice(LevelSuccess, okKey)
}
