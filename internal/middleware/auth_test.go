// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestRequireToken(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("sesame"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("valid token passes", func(t *testing.T) {
		handler := RequireToken(string(hash))(inner)
		req := httptest.NewRequest(http.MethodGet, "/api/categories/tree", nil)
		req.Header.Set("Authorization", "Bearer sesame")
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Errorf("status: got %d, want 200", rr.Code)
		}
	})

	t.Run("wrong token rejected", func(t *testing.T) {
		handler := RequireToken(string(hash))(inner)
		req := httptest.NewRequest(http.MethodGet, "/api/categories/tree", nil)
		req.Header.Set("Authorization", "Bearer open")
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		if rr.Code != http.StatusUnauthorized {
			t.Errorf("status: got %d, want 401", rr.Code)
		}
	})

	t.Run("missing header rejected", func(t *testing.T) {
		handler := RequireToken(string(hash))(inner)
		req := httptest.NewRequest(http.MethodGet, "/api/categories/tree", nil)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		if rr.Code != http.StatusUnauthorized {
			t.Errorf("status: got %d, want 401", rr.Code)
		}
	})

	t.Run("empty hash disables the check", func(t *testing.T) {
		handler := RequireToken("")(inner)
		req := httptest.NewRequest(http.MethodGet, "/api/categories/tree", nil)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Errorf("status: got %d, want 200", rr.Code)
		}
	})
}
