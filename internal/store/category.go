// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package store persists the category forest and its moderation history in
// PostgreSQL. The hierarchy engine owns all invariants; the store's job is
// to apply each batch of changed records in a single transaction.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"treecrest/internal/models"
)

// CategoryStore manages category records in the database.
type CategoryStore struct {
	db *sql.DB
}

// NewCategoryStore returns a new CategoryStore.
func NewCategoryStore(db *sql.DB) *CategoryStore {
	return &CategoryStore{db: db}
}

const categoryColumns = `id, name, slug, description, parent_id, children, ancestors,
	level, position, status, is_deleted, created_at, updated_at`

// LoadCategories returns every category record, tombstones included.
// The engine needs tombstones in memory so slugs are never recycled.
func (s *CategoryStore) LoadCategories(ctx context.Context) ([]models.Category, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+categoryColumns+`
		FROM categories
		ORDER BY level, position, name
	`)
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}
	defer rows.Close()

	var items []models.Category
	for rows.Next() {
		var c models.Category
		var childrenJSON, ancestorsJSON []byte
		err := rows.Scan(
			&c.ID, &c.Name, &c.Slug, &c.Description, &c.ParentID,
			&childrenJSON, &ancestorsJSON,
			&c.Level, &c.Position, &c.Status, &c.IsDeleted,
			&c.CreatedAt, &c.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		if err := json.Unmarshal(childrenJSON, &c.Children); err != nil {
			return nil, fmt.Errorf("decode children for %s: %w", c.ID, err)
		}
		if err := json.Unmarshal(ancestorsJSON, &c.Ancestors); err != nil {
			return nil, fmt.Errorf("decode ancestors for %s: %w", c.ID, err)
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

// SaveCategories upserts a batch of category records and appends moderation
// entries in one transaction. Either everything lands or nothing does; the
// engine relies on that to keep memory and storage in lockstep.
func (s *CategoryStore) SaveCategories(ctx context.Context, cats []*models.Category, entries []*models.ModerationEntry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO categories (`+categoryColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			slug = EXCLUDED.slug,
			description = EXCLUDED.description,
			parent_id = EXCLUDED.parent_id,
			children = EXCLUDED.children,
			ancestors = EXCLUDED.ancestors,
			level = EXCLUDED.level,
			position = EXCLUDED.position,
			status = EXCLUDED.status,
			is_deleted = EXCLUDED.is_deleted,
			updated_at = EXCLUDED.updated_at`)
	if err != nil {
		return fmt.Errorf("prepare category upsert: %w", err)
	}
	defer stmt.Close()

	for _, c := range cats {
		childrenJSON, err := json.Marshal(sliceOrEmpty(c.Children))
		if err != nil {
			return fmt.Errorf("encode children for %s: %w", c.ID, err)
		}
		ancestorsJSON, err := json.Marshal(ancestorsOrEmpty(c.Ancestors))
		if err != nil {
			return fmt.Errorf("encode ancestors for %s: %w", c.ID, err)
		}
		_, err = stmt.ExecContext(ctx,
			c.ID, c.Name, c.Slug, c.Description, c.ParentID,
			childrenJSON, ancestorsJSON,
			c.Level, c.Position, c.Status, c.IsDeleted,
			c.CreatedAt, c.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("save category %s: %w", c.ID, err)
		}
	}

	for _, e := range entries {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO moderation_log (id, category_id, action, actor_id, detail, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			e.ID, e.CategoryID, e.Action, e.ActorID, e.Detail, e.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("append moderation entry for %s: %w", e.CategoryID, err)
		}
	}

	return tx.Commit()
}

// ModerationHistory returns a category's moderation entries, oldest first.
// The log is append-only; there is no update or delete path.
func (s *CategoryStore) ModerationHistory(ctx context.Context, categoryID uuid.UUID) ([]models.ModerationEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, category_id, action, actor_id, detail, created_at
		FROM moderation_log
		WHERE category_id = $1
		ORDER BY created_at, id
	`, categoryID)
	if err != nil {
		return nil, fmt.Errorf("list moderation history: %w", err)
	}
	defer rows.Close()

	var items []models.ModerationEntry
	for rows.Next() {
		var e models.ModerationEntry
		err := rows.Scan(&e.ID, &e.CategoryID, &e.Action, &e.ActorID, &e.Detail, &e.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan moderation entry: %w", err)
		}
		items = append(items, e)
	}
	return items, rows.Err()
}

// sliceOrEmpty keeps nil children out of the JSONB column.
func sliceOrEmpty(ids []uuid.UUID) []uuid.UUID {
	if ids == nil {
		return []uuid.UUID{}
	}
	return ids
}

// ancestorsOrEmpty keeps nil ancestor lists out of the JSONB column.
func ancestorsOrEmpty(refs []models.AncestorRef) []models.AncestorRef {
	if refs == nil {
		return []models.AncestorRef{}
	}
	return refs
}
