// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"treecrest/internal/models"
)

func TestMemory_SaveAndLoadCopies(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	cat := &models.Category{
		ID: uuid.New(), Name: "Electronics", Slug: "electronics",
		Status:   models.CategoryStatusActive,
		Children: []uuid.UUID{uuid.New()},
	}
	if err := m.SaveCategories(ctx, []*models.Category{cat}, nil); err != nil {
		t.Fatalf("SaveCategories: %v", err)
	}

	// Mutating the caller's record after save must not leak into the store.
	cat.Name = "Mutated"
	cat.Children[0] = uuid.Nil

	loaded, err := m.LoadCategories(ctx)
	if err != nil {
		t.Fatalf("LoadCategories: %v", err)
	}
	if len(loaded) != 1 {
		t.Fatalf("loaded %d categories, want 1", len(loaded))
	}
	if loaded[0].Name != "Electronics" {
		t.Errorf("name = %q, want the value at save time", loaded[0].Name)
	}
	if loaded[0].Children[0] == uuid.Nil {
		t.Error("children slice shared with caller")
	}
}

func TestMemory_ModerationHistory(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	catID, otherID := uuid.New(), uuid.New()

	entries := []*models.ModerationEntry{
		{ID: uuid.New(), CategoryID: catID, Action: models.ModerationActionApproved, ActorID: "mod-1"},
		{ID: uuid.New(), CategoryID: otherID, Action: models.ModerationActionRejected, ActorID: "mod-2"},
		{ID: uuid.New(), CategoryID: catID, Action: models.ModerationActionRejected, ActorID: "mod-3"},
	}
	if err := m.SaveCategories(ctx, nil, entries); err != nil {
		t.Fatalf("SaveCategories: %v", err)
	}

	history, err := m.ModerationHistory(ctx, catID)
	if err != nil {
		t.Fatalf("ModerationHistory: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("history length = %d, want 2", len(history))
	}
	if history[0].ActorID != "mod-1" || history[1].ActorID != "mod-3" {
		t.Errorf("history order wrong: %+v", history)
	}
}
