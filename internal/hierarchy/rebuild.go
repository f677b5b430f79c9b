// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package hierarchy

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"treecrest/internal/models"
)

// Rebuild recomputes ancestors, levels, and children lists for every
// non-deleted category purely from parent pointers. It repairs index drift
// after bulk imports or detected inconsistency. The pass is idempotent: on
// an already-consistent forest nothing is written.
//
// Rebuild holds the write lock for its whole run, so it always sees a
// globally consistent snapshot of parent pointers.
//
// A cycle in the stored parent pointers makes a topological order
// impossible; Rebuild then fails with ErrCycleDetected and writes nothing.
func (s *Service) Rebuild(ctx context.Context, actorID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	live := make(map[uuid.UUID]*models.Category)
	for id, c := range s.forest.nodes {
		if !c.IsDeleted {
			live[id] = c
		}
	}

	// Derive the authoritative child index from parent pointers alone.
	// A parent pointer at a deleted or missing category is drift; the node
	// is repaired into a root.
	childIndex := make(map[uuid.UUID][]uuid.UUID)
	var queue []uuid.UUID
	for id, c := range live {
		if c.ParentID != nil {
			if _, ok := live[*c.ParentID]; ok {
				childIndex[*c.ParentID] = append(childIndex[*c.ParentID], id)
				continue
			}
		}
		queue = append(queue, id)
	}
	for pid := range childIndex {
		ids := childIndex[pid]
		sort.Slice(ids, func(i, j int) bool {
			a, b := live[ids[i]], live[ids[j]]
			if a.Position != b.Position {
				return a.Position < b.Position
			}
			return a.Name < b.Name
		})
	}
	sort.Slice(queue, func(i, j int) bool { return live[queue[i]].Name < live[queue[j]].Name })

	// Process parent-before-child: a category is only finalized once its
	// parent has been. This is a topological sort over the parent relation.
	rebuilt := make(map[uuid.UUID]*models.Category, len(live))
	var order []uuid.UUID
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]

		c := live[id].Clone()
		if c.ParentID != nil {
			if parent, ok := rebuilt[*c.ParentID]; ok {
				c.Level = parent.Level + 1
				c.Ancestors = append(append([]models.AncestorRef(nil), parent.Ancestors...), parent.Ref())
			} else {
				// Dangling parent pointer: repaired into a root.
				c.ParentID = nil
				c.Level = 0
				c.Ancestors = nil
			}
		} else {
			c.Level = 0
			c.Ancestors = nil
		}
		c.Children = childIndex[id]

		rebuilt[id] = c
		order = append(order, id)
		queue = append(queue, childIndex[id]...)
	}

	if len(rebuilt) != len(live) {
		return 0, fmt.Errorf("%w: %d of %d categories unreachable from any root",
			ErrCycleDetected, len(live)-len(rebuilt), len(live))
	}

	var changed []*models.Category
	for _, id := range order {
		if !consistent(live[id], rebuilt[id]) {
			rebuilt[id].UpdatedAt = s.now()
			changed = append(changed, rebuilt[id])
		}
	}
	if len(changed) == 0 {
		return 0, nil
	}

	if err := s.persist.SaveCategories(ctx, changed, nil); err != nil {
		return 0, fmt.Errorf("rebuild hierarchy: %w", err)
	}
	s.forest.install(changed...)
	s.emit(ctx, "rebuild", uuid.Nil, actorID, fmt.Sprintf("repaired %d categories", len(changed)))
	return len(changed), nil
}

// consistent reports whether the stored node already matches its rebuilt
// version in parent, level, ancestors, and children.
func consistent(stored, rebuilt *models.Category) bool {
	if !sameParent(stored.ParentID, rebuilt.ParentID) {
		return false
	}
	if stored.Level != rebuilt.Level {
		return false
	}
	if len(stored.Ancestors) != len(rebuilt.Ancestors) {
		return false
	}
	for i := range stored.Ancestors {
		if stored.Ancestors[i] != rebuilt.Ancestors[i] {
			return false
		}
	}
	if len(stored.Children) != len(rebuilt.Children) {
		return false
	}
	seen := make(map[uuid.UUID]bool, len(stored.Children))
	for _, id := range stored.Children {
		seen[id] = true
	}
	for _, id := range rebuilt.Children {
		if !seen[id] {
			return false
		}
	}
	return true
}
