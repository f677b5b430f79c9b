// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// CategoryStatus represents the lifecycle state of a category.
type CategoryStatus string

const (
	CategoryStatusPending  CategoryStatus = "pending"
	CategoryStatusActive   CategoryStatus = "active"
	CategoryStatusInactive CategoryStatus = "inactive"
	CategoryStatusHidden   CategoryStatus = "hidden"
	CategoryStatusArchived CategoryStatus = "archived"
)

// Valid reports whether s is one of the known lifecycle states.
func (s CategoryStatus) Valid() bool {
	switch s {
	case CategoryStatusPending, CategoryStatusActive, CategoryStatusInactive,
		CategoryStatusHidden, CategoryStatusArchived:
		return true
	}
	return false
}

// AncestorRef is a lightweight snapshot of an ancestor category, stored
// root-first on every descendant so breadcrumbs render without extra lookups.
// Snapshots are rewritten by the move and rename cascades; they must never
// drift from the live ancestor.
type AncestorRef struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Slug  string    `json:"slug"`
	Level int       `json:"level"`
}

// Category is a node in the category forest. ParentID is the authoritative
// edge; Children caches the reverse direction, and Ancestors/Level are
// denormalized from the parent chain.
type Category struct {
	ID          uuid.UUID      `json:"id"`
	Name        string         `json:"name"`
	Slug        string         `json:"slug"`
	Description string         `json:"description"`
	ParentID    *uuid.UUID     `json:"parent_id"`
	Children    []uuid.UUID    `json:"children"`
	Ancestors   []AncestorRef  `json:"ancestors"`
	Level       int            `json:"level"`
	Position    int            `json:"position"`
	Status      CategoryStatus `json:"status"`
	IsDeleted   bool           `json:"is_deleted"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// IsRoot returns true if the category has no parent.
func (c *Category) IsRoot() bool {
	return c.ParentID == nil
}

// IsArchived returns true if the category is in archived status.
func (c *Category) IsArchived() bool {
	return c.Status == CategoryStatusArchived
}

// NameEquals compares names the way sibling uniqueness does:
// case-insensitive, ignoring surrounding whitespace.
func (c *Category) NameEquals(name string) bool {
	return strings.EqualFold(strings.TrimSpace(c.Name), strings.TrimSpace(name))
}

// Ref returns the snapshot descendant categories store for this one.
func (c *Category) Ref() AncestorRef {
	return AncestorRef{ID: c.ID, Name: c.Name, Slug: c.Slug, Level: c.Level}
}

// Clone returns a deep copy. The engine hands clones to callers and mutates
// clones before committing, so shared slices must not alias.
func (c *Category) Clone() *Category {
	out := *c
	if c.ParentID != nil {
		pid := *c.ParentID
		out.ParentID = &pid
	}
	out.Children = append([]uuid.UUID(nil), c.Children...)
	out.Ancestors = append([]AncestorRef(nil), c.Ancestors...)
	return &out
}
