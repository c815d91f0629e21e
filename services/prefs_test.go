package services

import (
	"context"
	"testing"

	"github.com/navaneethdubbaka/Food-Engine/db"
)

func TestMemoryLanguageStore(t *testing.T) {
	s := NewMemoryLanguageStore()
	ctx := context.Background()

	if _, ok, err := s.Language(ctx, "t-1"); ok || err != nil {
		t.Fatalf("Language on empty store = ok %v, err %v", ok, err)
	}
	if err := s.SetLanguage(ctx, "t-1", "te"); err != nil {
		t.Fatal(err)
	}
	got, ok, err := s.Language(ctx, "t-1")
	if err != nil || !ok || got != "te" {
		t.Fatalf("Language = %q, %v, %v", got, ok, err)
	}
	if _, ok, _ := s.Language(ctx, "t-2"); ok {
		t.Error("preference leaked to another terminal")
	}
}

// Runs only when a test database was initialised by the caller (db.Pool set).
func TestPgLanguageStore(t *testing.T) {
	if testing.Short() || db.Pool == nil {
		t.Skip("no database configured")
	}
	s := NewPgLanguageStore(db.Pool)
	ctx := context.Background()
	terminal := "test-terminal-prefs"
	t.Cleanup(func() {
		_, _ = db.Pool.Exec(context.Background(), `DELETE FROM terminal_prefs WHERE terminal_id = $1`, terminal)
	})

	if err := s.SetLanguage(ctx, terminal, "en"); err != nil {
		t.Fatal(err)
	}
	if err := s.SetLanguage(ctx, terminal, "te"); err != nil {
		t.Fatal(err)
	}
	got, ok, err := s.Language(ctx, terminal)
	if err != nil || !ok || got != "te" {
		t.Errorf("Language = %q, %v, %v", got, ok, err)
	}
}
