// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers exposes the category tree engine as a JSON API. It is a
// thin facade: requests arrive already authorized, the actor identity comes
// from a header, and every tree rule lives in the hierarchy package.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"treecrest/internal/cache"
	"treecrest/internal/catalog"
	"treecrest/internal/hierarchy"
)

// ItemLister is the catalog store slice the facade queries for item
// listings and counts, always through a resolved scope.
type ItemLister interface {
	CountInScope(ctx context.Context, ids []uuid.UUID) (int, error)
	ListInScope(ctx context.Context, ids []uuid.UUID, limit, offset int) ([]catalog.Item, error)
}

// Categories bundles the category API handlers and their dependencies.
// The scope cache may be nil when no Valkey is configured.
type Categories struct {
	svc    *hierarchy.Service
	items  ItemLister
	scopes *cache.ScopeCache
}

// NewCategories creates the category handler group.
func NewCategories(svc *hierarchy.Service, items ItemLister, scopes *cache.ScopeCache) *Categories {
	return &Categories{svc: svc, items: items, scopes: scopes}
}

type createRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	ParentID    *string `json:"parent_id"`
}

type renameRequest struct {
	Name string `json:"name"`
}

type moveRequest struct {
	NewParentID *string `json:"new_parent_id"`
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

// Create handles POST /api/categories.
func (h *Categories) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}
	if msg := validateCategory(req.Name, req.Description); msg != "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
		return
	}
	parentID, ok := parseOptionalID(w, req.ParentID)
	if !ok {
		return
	}

	cat, err := h.svc.Create(r.Context(), hierarchy.CreateInput{
		Name:        req.Name,
		Description: req.Description,
		ParentID:    parentID,
		ActorID:     actorID(r),
	})
	if err != nil {
		writeEngineError(w, err)
		return
	}
	h.invalidateScopes(r)
	writeJSON(w, http.StatusCreated, cat)
}

// Tree handles GET /api/categories/tree.
func (h *Categories) Tree(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Tree())
}

// Get handles GET /api/categories/{id}.
func (h *Categories) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	cat, err := h.svc.Get(id)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cat)
}

// Rename handles PATCH /api/categories/{id}.
func (h *Categories) Rename(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req renameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}
	if msg := validateCategory(req.Name, ""); msg != "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
		return
	}

	cat, err := h.svc.Rename(r.Context(), id, req.Name, actorID(r))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cat)
}

// Move handles POST /api/categories/{id}/move.
func (h *Categories) Move(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req moveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}
	newParentID, ok := parseOptionalID(w, req.NewParentID)
	if !ok {
		return
	}

	cat, err := h.svc.Move(r.Context(), id, newParentID, actorID(r))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	h.invalidateScopes(r)
	writeJSON(w, http.StatusOK, cat)
}

// Archive handles POST /api/categories/{id}/archive.
func (h *Categories) Archive(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.svc.Archive(r.Context(), id, actorID(r)); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Status: "archived"})
}

// Approve handles POST /api/categories/{id}/approve.
func (h *Categories) Approve(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.svc.Approve(r.Context(), id, actorID(r)); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Status: "approved"})
}

// Reject handles POST /api/categories/{id}/reject.
func (h *Categories) Reject(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req rejectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}
	if err := h.svc.Reject(r.Context(), id, actorID(r), req.Reason); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Status: "rejected"})
}

// Delete handles DELETE /api/categories/{id} - the guarded hard delete.
func (h *Categories) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.svc.Delete(r.Context(), id, actorID(r)); err != nil {
		writeEngineError(w, err)
		return
	}
	h.invalidateScopes(r)
	writeJSON(w, http.StatusOK, statusResponse{Status: "deleted"})
}

// Scope handles GET /api/categories/{id}/scope: the id set catalog queries
// are bounded by.
func (h *Categories) Scope(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	ids, err := h.resolveScope(r, id)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, scopeResponse{CategoryID: id, Scope: ids})
}

// ItemCount handles GET /api/categories/{id}/items/count.
func (h *Categories) ItemCount(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	ids, err := h.resolveScope(r, id)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	count, err := h.items.CountInScope(r.Context(), ids)
	if err != nil {
		slog.Error("catalog count failed", "category_id", id, "error", err)
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: "catalog store unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, countResponse{CategoryID: id, Count: count})
}

// Items handles GET /api/categories/{id}/items.
func (h *Categories) Items(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	ids, err := h.resolveScope(r, id)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	items, err := h.items.ListInScope(r.Context(), ids, limit, offset)
	if err != nil {
		slog.Error("catalog list failed", "category_id", id, "error", err)
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: "catalog store unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// Rebuild handles POST /api/maintenance/rebuild: the out-of-band
// consistency repair pass.
func (h *Categories) Rebuild(w http.ResponseWriter, r *http.Request) {
	repaired, err := h.svc.Rebuild(r.Context(), actorID(r))
	if err != nil {
		if errors.Is(err, hierarchy.ErrCycleDetected) {
			// The stored tree itself is corrupt; this needs manual
			// intervention, not a retry.
			writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
			return
		}
		slog.Error("rebuild failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "rebuild failed"})
		return
	}
	h.invalidateScopes(r)
	writeJSON(w, http.StatusOK, rebuildResponse{Repaired: repaired})
}

// resolveScope consults the cache before falling back to the resolver.
func (h *Categories) resolveScope(r *http.Request, id uuid.UUID) ([]uuid.UUID, error) {
	if h.scopes != nil {
		if ids, ok := h.scopes.Get(r.Context(), id); ok {
			return ids, nil
		}
	}
	ids, err := h.svc.Scope(id)
	if err != nil {
		return nil, err
	}
	if h.scopes != nil {
		h.scopes.Set(r.Context(), id, ids)
	}
	return ids, nil
}

// invalidateScopes clears cached scope resolutions after a structural
// mutation. Best-effort, like every cache interaction.
func (h *Categories) invalidateScopes(r *http.Request) {
	if h.scopes != nil {
		h.scopes.InvalidateAll(r.Context())
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

type statusResponse struct {
	Status string `json:"status"`
}

type scopeResponse struct {
	CategoryID uuid.UUID   `json:"category_id"`
	Scope      []uuid.UUID `json:"scope"`
}

type countResponse struct {
	CategoryID uuid.UUID `json:"category_id"`
	Count      int       `json:"count"`
}

type rebuildResponse struct {
	Repaired int `json:"repaired"`
}

// actorID reads the already-authorized actor identity from the request.
func actorID(r *http.Request) string {
	return r.Header.Get("X-Actor-ID")
}

// pathID parses the {id} URL parameter, writing a 400 on failure.
func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid category id"})
		return uuid.Nil, false
	}
	return id, true
}

// parseOptionalID parses an optional uuid string, writing a 400 on failure.
func parseOptionalID(w http.ResponseWriter, raw *string) (*uuid.UUID, bool) {
	if raw == nil || *raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(*raw)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid parent id"})
		return nil, false
	}
	return &id, true
}

// writeEngineError maps the engine's error taxonomy onto HTTP status codes:
// not-found 404, invariant violations 409, failed preconditions 422.
func writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case hierarchy.IsNotFound(err):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case hierarchy.IsInvariantViolation(err):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	case hierarchy.IsPreconditionFailed(err):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
	default:
		slog.Error("category operation failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
