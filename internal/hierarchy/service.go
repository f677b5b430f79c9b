// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package hierarchy

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"treecrest/internal/events"
	"treecrest/internal/models"
	"treecrest/internal/slug"
)

// DefaultMaxDepth is the deepest allowed level plus one: levels 0 through 4.
const DefaultMaxDepth = 5

// Persister stores category records. Save must apply all records and
// moderation entries in a single transaction or fail without applying any.
type Persister interface {
	LoadCategories(ctx context.Context) ([]models.Category, error)
	SaveCategories(ctx context.Context, cats []*models.Category, entries []*models.ModerationEntry) error
}

// ItemCounter is the slice of the catalog store the engine needs: how many
// catalog items are linked to any category in the given scope.
type ItemCounter interface {
	CountInScope(ctx context.Context, ids []uuid.UUID) (int, error)
}

// Service is the tree mutator. All operations are logically atomic: a
// mutation validates against the in-memory forest, builds updated copies of
// the affected nodes, persists them in one transaction, and only then
// installs the copies into the forest. A failed persist leaves both memory
// and storage untouched.
//
// Reads take the read lock and return clones, so a reader never observes a
// half-applied cascade.
type Service struct {
	mu      sync.RWMutex
	forest  *forest
	persist Persister
	sink    events.Sink
	items   ItemCounter

	maxDepth int
	now      func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithMaxDepth overrides the depth bound. Values below 1 are ignored.
func WithMaxDepth(d int) Option {
	return func(s *Service) {
		if d >= 1 {
			s.maxDepth = d
		}
	}
}

// WithItemCounter wires the catalog store collaborator used by the
// hard-delete guard. Without it, delete skips the linked-items check.
func WithItemCounter(c ItemCounter) Option {
	return func(s *Service) { s.items = c }
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService returns a tree mutator over the given persister. Call Load
// before serving requests. A nil sink disables event emission.
func NewService(persist Persister, sink events.Sink, opts ...Option) *Service {
	s := &Service{
		forest:   newForest(),
		persist:  persist,
		sink:     sink,
		maxDepth: DefaultMaxDepth,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load populates the in-memory forest from the persister.
func (s *Service) Load(ctx context.Context) error {
	cats, err := s.persist.LoadCategories(ctx)
	if err != nil {
		return fmt.Errorf("load categories: %w", err)
	}
	s.mu.Lock()
	s.forest.load(cats)
	s.mu.Unlock()
	return nil
}

// MaxDepth returns the configured depth bound.
func (s *Service) MaxDepth() int {
	return s.maxDepth
}

// CreateInput carries the fields for a new category.
type CreateInput struct {
	Name        string
	Description string
	ParentID    *uuid.UUID
	ActorID     string
}

// Create adds a new category under the given parent (or as a root).
// New categories start in pending status awaiting moderation.
func (s *Service) Create(ctx context.Context, in CreateInput) (*models.Category, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("category name is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var parent *models.Category
	if in.ParentID != nil {
		p, ok := s.forest.visible(*in.ParentID)
		if !ok {
			return nil, ErrParentNotFound
		}
		if p.Level >= s.maxDepth-1 {
			return nil, fmt.Errorf("%w: parent is at level %d", ErrMaxDepthExceeded, p.Level)
		}
		parent = p
	}

	if s.forest.siblingNameTaken(in.ParentID, name, uuid.Nil) {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateSiblingName, name)
	}

	newSlug, ok := slug.Unique(slug.Generate(name), s.forest.slugTaken)
	if !ok {
		return nil, fmt.Errorf("%w: from %q", ErrSlugCollision, name)
	}

	now := s.now()
	cat := &models.Category{
		ID:          uuid.New(),
		Name:        name,
		Slug:        newSlug,
		Description: strings.TrimSpace(in.Description),
		ParentID:    in.ParentID,
		Position:    s.forest.nextPosition(in.ParentID),
		Status:      models.CategoryStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	changed := []*models.Category{cat}
	if parent != nil {
		cat.Level = parent.Level + 1
		cat.Ancestors = append(append([]models.AncestorRef(nil), parent.Ancestors...), parent.Ref())

		pc := parent.Clone()
		pc.Children = append(pc.Children, cat.ID)
		pc.UpdatedAt = now
		changed = append(changed, pc)
	}

	if err := s.persist.SaveCategories(ctx, changed, nil); err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	s.forest.install(changed...)
	s.emit(ctx, "create", cat.ID, in.ActorID, fmt.Sprintf("created %q at level %d", cat.Name, cat.Level))
	return cat.Clone(), nil
}

// Rename changes a category's display name. The slug is regenerated only
// when it was never set. Because descendants carry ancestor snapshots, a
// rename runs the same cascade as a move, rewriting this category's
// snapshot in every descendant. Stale breadcrumbs are a correctness bug.
func (s *Service) Rename(ctx context.Context, id uuid.UUID, newName, actorID string) (*models.Category, error) {
	name := strings.TrimSpace(newName)
	if name == "" {
		return nil, fmt.Errorf("category name is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cat, ok := s.forest.visible(id)
	if !ok {
		return nil, ErrCategoryNotFound
	}
	if s.forest.siblingNameTaken(cat.ParentID, name, id) {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateSiblingName, name)
	}

	now := s.now()
	updated := cat.Clone()
	updated.Name = name
	updated.UpdatedAt = now
	if updated.Slug == "" {
		newSlug, ok := slug.Unique(slug.Generate(name), s.forest.slugTaken)
		if !ok {
			return nil, fmt.Errorf("%w: from %q", ErrSlugCollision, name)
		}
		updated.Slug = newSlug
	}

	changed := []*models.Category{updated}
	for _, descID := range s.forest.descendants(id) {
		desc, ok := s.forest.visible(descID)
		if !ok {
			continue
		}
		dc := desc.Clone()
		for i := range dc.Ancestors {
			if dc.Ancestors[i].ID == id {
				dc.Ancestors[i].Name = updated.Name
				dc.Ancestors[i].Slug = updated.Slug
			}
		}
		dc.UpdatedAt = now
		changed = append(changed, dc)
	}

	if err := s.persist.SaveCategories(ctx, changed, nil); err != nil {
		return nil, fmt.Errorf("rename category: %w", err)
	}
	s.forest.install(changed...)
	s.emit(ctx, "rename", id, actorID, fmt.Sprintf("renamed to %q", name))
	return updated.Clone(), nil
}

// Move relocates a category (and its whole subtree) under a new parent, or
// to root when newParentID is nil. The cycle check walks upward from the
// new parent: the subtree below the moved category has not moved yet, so
// walking downward would miss the cycle.
func (s *Service) Move(ctx context.Context, id uuid.UUID, newParentID *uuid.UUID, actorID string) (*models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cat, ok := s.forest.visible(id)
	if !ok {
		return nil, ErrCategoryNotFound
	}

	// A move to the current parent changes nothing; report success without
	// touching the tree.
	if sameParent(cat.ParentID, newParentID) {
		return cat.Clone(), nil
	}

	var newParent *models.Category
	if newParentID != nil {
		if *newParentID == id {
			return nil, ErrSelfMove
		}
		p, ok := s.forest.visible(*newParentID)
		if !ok {
			return nil, ErrParentNotFound
		}
		for _, ancID := range s.forest.ancestorIDs(p.ID) {
			if ancID == id {
				return nil, fmt.Errorf("%w: %q is a descendant of %q", ErrCircularMove, p.Name, cat.Name)
			}
		}
		newParent = p
	}

	newLevel := 0
	if newParent != nil {
		newLevel = newParent.Level + 1
	}
	if newLevel+s.forest.subtreeHeight(id) > s.maxDepth-1 {
		return nil, fmt.Errorf("%w: subtree would reach below level %d", ErrMaxDepthExceeded, s.maxDepth-1)
	}
	if s.forest.siblingNameTaken(newParentID, cat.Name, id) {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateSiblingName, cat.Name)
	}

	now := s.now()
	moved := cat.Clone()
	moved.ParentID = nil
	if newParentID != nil {
		pid := *newParentID
		moved.ParentID = &pid
	}
	moved.Level = newLevel
	moved.Position = s.forest.nextPosition(newParentID)
	moved.Ancestors = nil
	if newParent != nil {
		moved.Ancestors = append(append([]models.AncestorRef(nil), newParent.Ancestors...), newParent.Ref())
	}
	moved.UpdatedAt = now

	changed := []*models.Category{moved}
	// updated tracks the new version of every node touched so far, so each
	// descendant rebuilds its chain from its already-updated parent instead
	// of a fresh root walk.
	updated := map[uuid.UUID]*models.Category{id: moved}

	if cat.ParentID != nil {
		if oldParent, ok := s.forest.visible(*cat.ParentID); ok {
			op := oldParent.Clone()
			op.Children = removeID(op.Children, id)
			op.UpdatedAt = now
			changed = append(changed, op)
			updated[op.ID] = op
		}
	}
	if newParent != nil {
		np := newParent.Clone()
		np.Children = append(np.Children, id)
		np.UpdatedAt = now
		changed = append(changed, np)
		updated[np.ID] = np
	}

	// Cascade breadth-first: parents are always updated before children.
	queue := []uuid.UUID{id}
	for len(queue) > 0 {
		curID := queue[0]
		queue = queue[1:]
		cur := updated[curID]
		for _, childID := range cur.Children {
			child, ok := s.forest.visible(childID)
			if !ok || updated[childID] != nil {
				continue
			}
			cc := child.Clone()
			cc.Level = cur.Level + 1
			cc.Ancestors = append(append([]models.AncestorRef(nil), cur.Ancestors...), cur.Ref())
			cc.UpdatedAt = now
			changed = append(changed, cc)
			updated[childID] = cc
			queue = append(queue, childID)
		}
	}

	if err := s.persist.SaveCategories(ctx, changed, nil); err != nil {
		return nil, fmt.Errorf("move category: %w", err)
	}
	s.forest.install(changed...)

	target := "root"
	if newParent != nil {
		target = newParent.Name
	}
	s.emit(ctx, "move", id, actorID, fmt.Sprintf("moved %q under %s", cat.Name, target))
	return moved.Clone(), nil
}

// Archive sets the category and every descendant to archived status. The
// cascade is unconditional: a parent cannot be archived while a visible
// descendant remains.
func (s *Service) Archive(ctx context.Context, id uuid.UUID, actorID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cat, ok := s.forest.visible(id)
	if !ok {
		return ErrCategoryNotFound
	}
	if cat.IsArchived() {
		return ErrAlreadyArchived
	}

	now := s.now()
	archived := cat.Clone()
	archived.Status = models.CategoryStatusArchived
	archived.UpdatedAt = now

	changed := []*models.Category{archived}
	for _, descID := range s.forest.descendants(id) {
		desc, ok := s.forest.visible(descID)
		if !ok {
			continue
		}
		dc := desc.Clone()
		dc.Status = models.CategoryStatusArchived
		dc.UpdatedAt = now
		changed = append(changed, dc)
	}

	if err := s.persist.SaveCategories(ctx, changed, nil); err != nil {
		return fmt.Errorf("archive category: %w", err)
	}
	s.forest.install(changed...)
	s.emit(ctx, "archive", id, actorID, fmt.Sprintf("archived %q and %d descendants", cat.Name, len(changed)-1))
	return nil
}

// Approve transitions a pending category to active and records the decision
// in the append-only moderation history.
func (s *Service) Approve(ctx context.Context, id uuid.UUID, actorID string) error {
	return s.moderate(ctx, id, actorID, "", models.ModerationActionApproved)
}

// Reject transitions a pending category to inactive, recording the reason.
func (s *Service) Reject(ctx context.Context, id uuid.UUID, actorID, reason string) error {
	return s.moderate(ctx, id, actorID, reason, models.ModerationActionRejected)
}

func (s *Service) moderate(ctx context.Context, id uuid.UUID, actorID, detail string, action models.ModerationAction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cat, ok := s.forest.visible(id)
	if !ok {
		return ErrCategoryNotFound
	}
	if cat.Status != models.CategoryStatusPending {
		return fmt.Errorf("%w: status is %s", ErrNotPending, cat.Status)
	}

	now := s.now()
	updated := cat.Clone()
	updated.UpdatedAt = now
	if action == models.ModerationActionApproved {
		updated.Status = models.CategoryStatusActive
	} else {
		updated.Status = models.CategoryStatusInactive
	}

	entry := &models.ModerationEntry{
		ID:         uuid.New(),
		CategoryID: id,
		Action:     action,
		ActorID:    actorID,
		Detail:     detail,
		CreatedAt:  now,
	}

	if err := s.persist.SaveCategories(ctx, []*models.Category{updated}, []*models.ModerationEntry{entry}); err != nil {
		return fmt.Errorf("moderate category: %w", err)
	}
	s.forest.install(updated)
	s.emit(ctx, string(action), id, actorID, detail)
	return nil
}

// Delete hard-deletes an archived leaf category with no linked catalog
// items. The record becomes a tombstone rather than disappearing, so its
// slug is never recycled.
func (s *Service) Delete(ctx context.Context, id uuid.UUID, actorID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cat, ok := s.forest.visible(id)
	if !ok {
		return ErrCategoryNotFound
	}
	if !cat.IsArchived() {
		return ErrNotArchived
	}
	if len(s.forest.descendants(id)) > 0 {
		return ErrHasDescendants
	}
	if s.items != nil {
		count, err := s.items.CountInScope(ctx, []uuid.UUID{id})
		if err != nil {
			return fmt.Errorf("count linked items: %w", err)
		}
		if count > 0 {
			return fmt.Errorf("%w: %d items", ErrHasItems, count)
		}
	}

	now := s.now()
	tomb := cat.Clone()
	tomb.IsDeleted = true
	tomb.UpdatedAt = now

	changed := []*models.Category{tomb}
	if cat.ParentID != nil {
		if parent, ok := s.forest.visible(*cat.ParentID); ok {
			pc := parent.Clone()
			pc.Children = removeID(pc.Children, id)
			pc.UpdatedAt = now
			changed = append(changed, pc)
		}
	}

	if err := s.persist.SaveCategories(ctx, changed, nil); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	s.forest.install(changed...)
	s.emit(ctx, "delete", id, actorID, fmt.Sprintf("deleted %q", cat.Name))
	return nil
}

// Get returns a copy of the category, or ErrCategoryNotFound.
func (s *Service) Get(id uuid.UUID) (*models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cat, ok := s.forest.visible(id)
	if !ok {
		return nil, ErrCategoryNotFound
	}
	return cat.Clone(), nil
}

// Snapshot returns copies of all non-deleted categories, parents before
// children. The slice is consistent: it is assembled under the read lock.
func (s *Service) Snapshot() []models.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.forest.snapshot()
}

// Node is a category with its children nested, for tree rendering.
type Node struct {
	models.Category
	Children []*Node `json:"children"`
}

// Tree returns the forest as nested nodes, roots first.
func (s *Service) Tree() []*Node {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Node
	for _, root := range s.forest.roots() {
		out = append(out, s.buildNode(root, map[uuid.UUID]bool{}))
	}
	return out
}

// buildNode nests a category's visible children. The visited set keeps a
// corrupted cyclic children index from recursing forever.
func (s *Service) buildNode(c *models.Category, visited map[uuid.UUID]bool) *Node {
	visited[c.ID] = true
	n := &Node{Category: *c.Clone()}
	n.Category.Children = nil
	for _, child := range s.forest.childrenOf(c) {
		if visited[child.ID] {
			continue
		}
		n.Children = append(n.Children, s.buildNode(child, visited))
	}
	return n
}

// emit publishes a mutation event; the sink is best-effort and must never
// fail the mutation.
func (s *Service) emit(ctx context.Context, action string, id uuid.UUID, actorID, details string) {
	if s.sink == nil {
		return
	}
	s.sink.Publish(ctx, events.Event{
		Action:     action,
		CategoryID: id,
		ActorID:    actorID,
		Details:    details,
		Timestamp:  s.now(),
	})
}

// removeID returns ids without the first occurrence of id.
func removeID(ids []uuid.UUID, id uuid.UUID) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
