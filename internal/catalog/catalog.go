// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package catalog is the catalog store collaborator. The hierarchy engine
// never queries items directly: every call here takes a category-id set
// already resolved by the subtree scope resolver.
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Item is a catalog item linked to exactly one category.
type Item struct {
	ID         uuid.UUID `json:"id"`
	CategoryID uuid.UUID `json:"category_id"`
	Name       string    `json:"name"`
	SKU        string    `json:"sku"`
	PriceCents int64     `json:"price_cents"`
	CreatedAt  time.Time `json:"created_at"`
}

// Store answers item queries scoped to a resolved category-id set.
type Store struct {
	db *sql.DB
}

// NewStore returns a new catalog Store.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// CountInScope returns how many items are linked to any category in ids.
func (s *Store) CountInScope(ctx context.Context, ids []uuid.UUID) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	query, args := scopedQuery(`SELECT COUNT(*) FROM catalog_items WHERE category_id IN`, ids)
	var count int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count items in scope: %w", err)
	}
	return count, nil
}

// ListInScope returns items linked to any category in ids, newest first.
func (s *Store) ListInScope(ctx context.Context, ids []uuid.UUID, limit, offset int) ([]Item, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	query, args := scopedQuery(`
		SELECT id, category_id, name, sku, price_cents, created_at
		FROM catalog_items WHERE category_id IN`, ids)
	query += fmt.Sprintf(" ORDER BY created_at DESC, id LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list items in scope: %w", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.CategoryID, &it.Name, &it.SKU, &it.PriceCents, &it.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// scopedQuery expands the id set into positional placeholders.
func scopedQuery(prefix string, ids []uuid.UUID) (string, []any) {
	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}
	return prefix + " (" + strings.Join(placeholders, ", ") + ")", args
}
