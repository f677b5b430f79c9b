// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package hierarchy

import (
	"github.com/google/uuid"
)

// Scope returns the category itself plus all of its transitive descendants.
// This is the id set every category-scoped catalog query is bounded by:
// "this category and everything beneath it".
//
// The traversal follows the cached children lists: ids pointing at deleted
// or nonexistent categories are skipped, and the visited set in the
// underlying walk guarantees termination even if the stored graph is
// corrupted into a cycle.
func (s *Service) Scope(id uuid.UUID) ([]uuid.UUID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.forest.visible(id); !ok {
		return nil, ErrCategoryNotFound
	}
	return append([]uuid.UUID{id}, s.forest.descendants(id)...), nil
}
