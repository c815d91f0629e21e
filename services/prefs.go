package services

import (
	"context"
	"errors"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// LanguageStore persists the locale chosen on a terminal.
type LanguageStore interface {
	// Language returns the stored locale; ok is false when none was chosen yet.
	Language(ctx context.Context, terminalID string) (language string, ok bool, err error)
	SetLanguage(ctx context.Context, terminalID, language string) error
}

// PgLanguageStore keeps preferences in the terminal_prefs table.
type PgLanguageStore struct {
	pool *pgxpool.Pool
}

func NewPgLanguageStore(pool *pgxpool.Pool) *PgLanguageStore {
	return &PgLanguageStore{pool: pool}
}

func (s *PgLanguageStore) Language(ctx context.Context, terminalID string) (string, bool, error) {
	var language string
	err := s.pool.QueryRow(ctx, `
		SELECT language FROM terminal_prefs
		WHERE terminal_id = $1 AND language IS NOT NULL`,
		terminalID,
	).Scan(&language)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return language, true, nil
}

func (s *PgLanguageStore) SetLanguage(ctx context.Context, terminalID, language string) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO terminal_prefs (terminal_id, language, language_selected_at, updated_at)
		VALUES ($1, $2, now(), now())
		ON CONFLICT (terminal_id) DO UPDATE SET
			language = EXCLUDED.language,
			language_selected_at = now(),
			updated_at = now()`,
		terminalID, language,
	)
	return err
}

// MemoryLanguageStore is used when no database is configured.
type MemoryLanguageStore struct {
	mu    sync.RWMutex
	langs map[string]string
}

func NewMemoryLanguageStore() *MemoryLanguageStore {
	return &MemoryLanguageStore{langs: make(map[string]string)}
}

func (s *MemoryLanguageStore) Language(_ context.Context, terminalID string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.langs[terminalID]
	return l, ok, nil
}

func (s *MemoryLanguageStore) SetLanguage(_ context.Context, terminalID, language string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.langs[terminalID] = language
	return nil
}
