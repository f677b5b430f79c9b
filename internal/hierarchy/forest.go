// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package hierarchy implements the category tree engine: an in-memory
// forest of category records with invariant-preserving mutations, a batch
// consistency rebuilder, and a subtree scope resolver.
package hierarchy

import (
	"sort"

	"github.com/google/uuid"

	"treecrest/internal/models"
)

// forest is an arena of category nodes addressed by id. Nodes reference
// each other only by id, never by pointer, so the parent/children links
// cannot form ownership cycles. Soft-deleted tombstones stay in the arena
// (slugs are never recycled) but are excluded from every traversal.
//
// The forest itself is not goroutine-safe; Service guards it with a RWMutex.
type forest struct {
	nodes map[uuid.UUID]*models.Category
}

func newForest() *forest {
	return &forest{nodes: make(map[uuid.UUID]*models.Category)}
}

// load replaces the arena contents with clones of the given records.
func (f *forest) load(cats []models.Category) {
	f.nodes = make(map[uuid.UUID]*models.Category, len(cats))
	for i := range cats {
		c := cats[i].Clone()
		f.nodes[c.ID] = c
	}
}

// get returns the live node for id, including tombstones.
func (f *forest) get(id uuid.UUID) (*models.Category, bool) {
	c, ok := f.nodes[id]
	return c, ok
}

// visible returns the node for id unless it is missing or soft-deleted.
func (f *forest) visible(id uuid.UUID) (*models.Category, bool) {
	c, ok := f.nodes[id]
	if !ok || c.IsDeleted {
		return nil, false
	}
	return c, true
}

// install replaces arena entries with the given nodes. Called only after a
// successful persist, so memory never diverges from storage.
func (f *forest) install(cats ...*models.Category) {
	for _, c := range cats {
		f.nodes[c.ID] = c
	}
}

// roots returns all non-deleted root categories ordered by position.
func (f *forest) roots() []*models.Category {
	var out []*models.Category
	for _, c := range f.nodes {
		if c.IsRoot() && !c.IsDeleted {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// childrenOf resolves a node's cached children list, skipping ids that
// point at deleted or nonexistent categories. Index drift is repaired by
// the rebuilder, not followed here.
func (f *forest) childrenOf(c *models.Category) []*models.Category {
	out := make([]*models.Category, 0, len(c.Children))
	for _, id := range c.Children {
		if child, ok := f.visible(id); ok {
			out = append(out, child)
		}
	}
	return out
}

// ancestorIDs walks parent pointers upward from the given id, returning the
// chain leaf-first. The visited set bounds the walk so a corrupted cyclic
// graph terminates instead of looping.
func (f *forest) ancestorIDs(start uuid.UUID) []uuid.UUID {
	var chain []uuid.UUID
	visited := map[uuid.UUID]bool{}
	cur, ok := f.get(start)
	for ok {
		if visited[cur.ID] {
			break
		}
		visited[cur.ID] = true
		chain = append(chain, cur.ID)
		if cur.ParentID == nil {
			break
		}
		cur, ok = f.get(*cur.ParentID)
	}
	return chain
}

// descendants returns all non-deleted transitive descendants of id in
// breadth-first order. Dangling child ids are skipped and the visited set
// guarantees termination even on a corrupted cyclic graph.
func (f *forest) descendants(id uuid.UUID) []uuid.UUID {
	root, ok := f.visible(id)
	if !ok {
		return nil
	}
	var out []uuid.UUID
	visited := map[uuid.UUID]bool{id: true}
	queue := append([]uuid.UUID(nil), root.Children...)
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if visited[next] {
			continue
		}
		visited[next] = true
		child, ok := f.visible(next)
		if !ok {
			continue
		}
		out = append(out, next)
		queue = append(queue, child.Children...)
	}
	return out
}

// subtreeHeight returns the number of levels below id: 0 for a leaf,
// 1 when id has children but no grandchildren, and so on.
func (f *forest) subtreeHeight(id uuid.UUID) int {
	height := 0
	visited := map[uuid.UUID]bool{id: true}
	frontier := []uuid.UUID{id}
	for {
		var next []uuid.UUID
		for _, cur := range frontier {
			node, ok := f.visible(cur)
			if !ok {
				continue
			}
			for _, childID := range node.Children {
				if visited[childID] {
					continue
				}
				visited[childID] = true
				if _, ok := f.visible(childID); ok {
					next = append(next, childID)
				}
			}
		}
		if len(next) == 0 {
			return height
		}
		height++
		frontier = next
	}
}

// siblingNameTaken reports whether a non-deleted category other than
// exclude exists under parentID with a case-insensitive matching name.
func (f *forest) siblingNameTaken(parentID *uuid.UUID, name string, exclude uuid.UUID) bool {
	for _, c := range f.nodes {
		if c.IsDeleted || c.ID == exclude {
			continue
		}
		if !sameParent(c.ParentID, parentID) {
			continue
		}
		if c.NameEquals(name) {
			return true
		}
	}
	return false
}

// slugTaken reports whether any category, deleted or not, holds slug.
func (f *forest) slugTaken(slug string) bool {
	for _, c := range f.nodes {
		if c.Slug == slug {
			return true
		}
	}
	return false
}

// nextPosition returns the next sibling position under parentID.
func (f *forest) nextPosition(parentID *uuid.UUID) int {
	next := 0
	for _, c := range f.nodes {
		if c.IsDeleted || !sameParent(c.ParentID, parentID) {
			continue
		}
		if c.Position >= next {
			next = c.Position + 1
		}
	}
	return next
}

// snapshot returns clones of all non-deleted nodes ordered parent-before-child
// (level ascending, then position).
func (f *forest) snapshot() []models.Category {
	var out []models.Category
	for _, c := range f.nodes {
		if c.IsDeleted {
			continue
		}
		out = append(out, *c.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Level != out[j].Level {
			return out[i].Level < out[j].Level
		}
		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// sameParent compares two optional parent references.
func sameParent(a, b *uuid.UUID) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return *a == *b
}
