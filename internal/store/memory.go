// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"treecrest/internal/models"
)

// Memory is an in-memory persister with the same transactional contract as
// CategoryStore. It backs unit tests and embedded use without PostgreSQL.
type Memory struct {
	mu      sync.Mutex
	cats    map[uuid.UUID]models.Category
	entries []models.ModerationEntry
}

// NewMemory returns an empty in-memory persister.
func NewMemory() *Memory {
	return &Memory{cats: make(map[uuid.UUID]models.Category)}
}

// LoadCategories returns copies of every stored record.
func (m *Memory) LoadCategories(_ context.Context) ([]models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]models.Category, 0, len(m.cats))
	for _, c := range m.cats {
		out = append(out, *c.Clone())
	}
	return out, nil
}

// SaveCategories stores copies of the given records and entries. The whole
// batch is applied under one lock acquisition, mirroring the SQL store's
// single transaction.
func (m *Memory) SaveCategories(_ context.Context, cats []*models.Category, entries []*models.ModerationEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, c := range cats {
		m.cats[c.ID] = *c.Clone()
	}
	for _, e := range entries {
		m.entries = append(m.entries, *e)
	}
	return nil
}

// ModerationHistory returns entries for a category, oldest first.
func (m *Memory) ModerationHistory(_ context.Context, categoryID uuid.UUID) ([]models.ModerationEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.ModerationEntry
	for _, e := range m.entries {
		if e.CategoryID == categoryID {
			out = append(out, e)
		}
	}
	return out, nil
}
