package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/navaneethdubbaka/Food-Engine/backend"
	"github.com/navaneethdubbaka/Food-Engine/bot"
	"github.com/navaneethdubbaka/Food-Engine/config"
	"github.com/navaneethdubbaka/Food-Engine/db"
	"github.com/navaneethdubbaka/Food-Engine/events"
	"github.com/navaneethdubbaka/Food-Engine/httpapi"
	"github.com/navaneethdubbaka/Food-Engine/services"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	log, err := newLogger(cfg.Log)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Check for migrate subcommand
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		runMigrate(ctx, cfg, log)
		return
	}

	if cfg.Telegram.Token == "" && cfg.Telegram.AdminToken == "" && cfg.HTTP.Addr == "" {
		log.Fatal("nothing to run: set TOKEN, ADMIN_TOKEN or HTTP_ADDR")
	}

	var prefs services.LanguageStore = services.NewMemoryLanguageStore()
	if cfg.DB.Enabled() {
		if err := db.Init(ctx, cfg.DB); err != nil {
			log.Fatal("db", zap.Error(err))
		}
		defer db.Close()

		// Set AUTO_MIGRATE=1 (or "true") to apply embedded migrations on start.
		if v := strings.TrimSpace(os.Getenv("AUTO_MIGRATE")); v == "1" || strings.EqualFold(v, "true") {
			if err := applyMigrations(ctx, log, false); err != nil {
				log.Fatal("migrate", zap.Error(err))
			}
		}
		prefs = services.NewPgLanguageStore(db.Pool)
	} else {
		log.Info("DB_HOST not set, language preferences kept in memory")
	}

	policy, err := services.NewRatePolicy(cfg.Pricing)
	if err != nil {
		log.Fatal("pricing", zap.Error(err))
	}

	client := backend.New(cfg.API, log.Named("backend"))
	catalog := services.NewCatalog(client, log.Named("catalog"))
	// failure is logged; categories are then fetched on first browse
	_ = catalog.Preload(ctx)

	var publisher services.BillPublisher
	if cfg.AMQP.URL != "" {
		p, err := events.Dial(ctx, cfg.AMQP, log.Named("events"))
		if err != nil {
			log.Warn("bill events disabled", zap.Error(err))
		} else {
			defer p.Close()
			publisher = p
		}
	}

	menu := services.NewMenuAdmin(client, catalog, log.Named("menu"))

	g, ctx := errgroup.WithContext(ctx)

	if cfg.Telegram.Token != "" {
		b, err := bot.New(cfg, bot.Deps{
			Catalog: catalog,
			Backend: client,
			Policy:  policy,
			Events:  publisher,
			Prefs:   prefs,
			Log:     log,
		})
		if err != nil {
			log.Fatal("bot", zap.Error(err))
		}
		menu.OnSettingsChanged(b.ApplySettings)
		g.Go(func() error {
			b.Start(ctx)
			return nil
		})
	}

	if cfg.Telegram.AdminToken != "" {
		admin, err := bot.NewAdminBot(cfg, menu, catalog, log)
		if err != nil {
			log.Fatal("admin bot", zap.Error(err))
		}
		g.Go(func() error {
			admin.Start(ctx)
			return nil
		})
	}

	if cfg.HTTP.Addr != "" {
		api := httpapi.New(cfg, httpapi.Deps{
			Catalog: catalog,
			Backend: client,
			Policy:  policy,
			Events:  publisher,
			Prefs:   prefs,
			Menu:    menu,
			Log:     log,
		})
		menu.OnSettingsChanged(api.ApplySettings)
		g.Go(func() error {
			return api.ListenAndServe(ctx)
		})
	}

	log.Info("terminal started", zap.String("backend", cfg.API.BaseURL))
	if err := g.Wait(); err != nil {
		log.Error("stopped", zap.Error(err))
		os.Exit(1)
	}
	log.Info("terminal stopped")
}

func newLogger(cfg config.LogConfig) (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	zc := zap.NewProductionConfig()
	if level.Level() == zap.DebugLevel {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = level
	return zc.Build()
}

func runMigrate(ctx context.Context, cfg *config.Config, log *zap.Logger) {
	if err := db.Init(ctx, cfg.DB); err != nil {
		log.Fatal("db", zap.Error(err))
	}
	defer db.Close()

	if err := applyMigrations(ctx, log, true); err != nil {
		log.Fatal("migrate", zap.Error(err))
	}
}
