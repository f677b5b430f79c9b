package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"treecrest/internal/catalog"
	"treecrest/internal/handlers"
	"treecrest/internal/hierarchy"
	"treecrest/internal/store"
)

type noopLister struct{}

func (noopLister) CountInScope(context.Context, []uuid.UUID) (int, error) { return 0, nil }
func (noopLister) ListInScope(context.Context, []uuid.UUID, int, int) ([]catalog.Item, error) {
	return nil, nil
}

func newTestRouter(t *testing.T, tokenHash string) http.Handler {
	t.Helper()
	svc := hierarchy.NewService(store.NewMemory(), nil)
	if err := svc.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return New(handlers.NewCategories(svc, noopLister{}, nil), tokenHash)
}

func TestHealthIsOpen(t *testing.T) {
	r := newTestRouter(t, "some-hash")

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("health status = %d, want 200", rec.Code)
	}
}

func TestAPIRequiresToken(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("letmein"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	r := newTestRouter(t, string(hash))

	t.Run("no token", func(t *testing.T) {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/categories/tree", nil))
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("wrong token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/categories/tree", nil)
		req.Header.Set("Authorization", "Bearer wrong")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("valid token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/categories/tree", nil)
		req.Header.Set("Authorization", "Bearer letmein")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rec.Code)
		}
	})
}
