// Package httpapi exposes terminal sessions over JSON for browser front-ends.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/navaneethdubbaka/Food-Engine/config"
	"github.com/navaneethdubbaka/Food-Engine/models"
	"github.com/navaneethdubbaka/Food-Engine/services"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

// Deps are the process-wide services the API serves from.
type Deps struct {
	Catalog *services.Catalog
	Backend services.BillingBackend
	Policy  services.RatePolicy
	Events  services.BillPublisher // optional
	Prefs   services.LanguageStore
	Menu    *services.MenuAdmin // optional, serves the admin routes
	Log     *zap.Logger
}

var errTooManySessions = errors.New("too many open sessions")

type session struct {
	reg      *services.Register
	lastSeen time.Time // guarded by Server.mu

	mu   sync.RWMutex
	lang string
}

func (s *session) locale() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lang
}

func (s *session) setLocale(code string) {
	s.mu.Lock()
	s.lang = code
	s.mu.Unlock()
}

type Server struct {
	cfg  *config.Config
	deps Deps
	log  *zap.Logger

	now func() time.Time

	mu       sync.Mutex
	sessions map[uuid.UUID]*session
}

func New(cfg *config.Config, deps Deps) *Server {
	return &Server{
		cfg:      cfg,
		deps:     deps,
		log:      deps.Log.Named("http"),
		now:      time.Now,
		sessions: make(map[uuid.UUID]*session),
	}
}

// Handler is the router wrapped in CORS.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Route("/api", func(r chi.Router) {
		r.Get("/categories", s.Categories)
		r.Get("/categories/{category}/items", s.CategoryItems)
		r.Get("/search", s.Search)
		r.Get("/strings/{locale}", s.Strings)

		if s.cfg.HTTP.AdminKey != "" && s.deps.Menu != nil {
			r.Group(func(r chi.Router) {
				r.Use(s.requireAdmin)
				r.Post("/menu_items", s.AddMenuItem)
				r.Put("/menu_items/{itemID}", s.UpdateMenuItem)
				r.Delete("/menu_items/{itemID}", s.DeleteMenuItem)
				r.Get("/settings", s.GetSettings)
				r.Put("/settings", s.UpdateSettings)
			})
		}

		r.Post("/sessions", s.CreateSession)
		r.Route("/sessions/{sid}", func(r chi.Router) {
			r.Delete("/", s.CloseSession)
			r.Get("/bill", s.GetBill)
			r.Delete("/bill", s.ClearBill)
			r.Post("/bill/items", s.AddItem)
			r.Put("/bill/items/{itemID}", s.SetQuantity)
			r.Post("/bill/items/{itemID}/adjust", s.AdjustQuantity)
			r.Delete("/bill/items/{itemID}", s.RemoveItem)
			r.Post("/bill/submit", s.SubmitBill)
			r.Post("/settings/reload", s.ReloadSettings)
			r.Get("/language", s.GetLanguage)
			r.Put("/language", s.SetLanguage)
		})
	})

	c := cors.New(cors.Options{
		AllowedOrigins:   s.cfg.HTTP.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Content-Length", "Accept-Encoding", adminKeyHeader},
		AllowCredentials: true,
	})
	return c.Handler(r)
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.HTTP.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http api listening", zap.String("addr", s.cfg.HTTP.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("took", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

// newSession opens a register for terminal. Idle sessions are swept first;
// errTooManySessions is returned when the table is still full.
func (s *Server) newSession(ctx context.Context, terminal string) (uuid.UUID, *session, error) {
	id := uuid.New()
	if terminal == "" {
		terminal = "http:" + id.String()
	}
	sess := &session{
		reg: services.NewRegister(services.RegisterOptions{
			Terminal: terminal,
			Catalog:  s.deps.Catalog,
			Backend:  s.deps.Backend,
			Policy:   s.deps.Policy,
			Events:   s.deps.Events,
			Log:      s.deps.Log,
		}),
		lang: s.cfg.Display.DefaultLocale,
	}
	if code, ok, err := s.deps.Prefs.Language(ctx, terminal); err != nil {
		s.log.Warn("load language", zap.String("terminal", terminal), zap.Error(err))
	} else if ok {
		sess.lang = code
	}

	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked(now)
	if max := s.cfg.HTTP.MaxSessions; max > 0 && len(s.sessions) >= max {
		return uuid.Nil, nil, errTooManySessions
	}
	sess.lastSeen = now
	s.sessions[id] = sess
	return id, sess, nil
}

// session finds the live session named in the URL and marks it used.
func (s *Server) session(r *http.Request) (*session, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "sid"))
	if err != nil {
		return nil, false
	}
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	if s.idle(sess, now) {
		delete(s.sessions, id)
		return nil, false
	}
	sess.lastSeen = now
	return sess, true
}

func (s *Server) closeSession(r *http.Request) bool {
	id, err := uuid.Parse(chi.URLParam(r, "sid"))
	if err != nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return false
	}
	delete(s.sessions, id)
	return true
}

// ApplySettings pushes new backend settings to every open session.
func (s *Server) ApplySettings(st models.Settings) {
	s.mu.Lock()
	regs := make([]*services.Register, 0, len(s.sessions))
	for _, sess := range s.sessions {
		regs = append(regs, sess.reg)
	}
	s.mu.Unlock()
	for _, reg := range regs {
		reg.ApplySettings(st)
	}
}

// sweepLocked drops idle sessions. Callers hold s.mu.
func (s *Server) sweepLocked(now time.Time) {
	for id, sess := range s.sessions {
		if s.idle(sess, now) {
			delete(s.sessions, id)
		}
	}
}

func (s *Server) idle(sess *session, now time.Time) bool {
	ttl := s.cfg.HTTP.SessionIdleTTL
	return ttl > 0 && now.Sub(sess.lastSeen) > ttl
}
