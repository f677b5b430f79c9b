package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"treecrest/internal/models"
)

// Seed populates the database with a small development forest:
// Electronics → Phones → Cases, plus an Accessories root, and a few catalog
// items. It is a no-op when any category already exists.
func Seed(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM categories").Scan(&count); err != nil {
		return fmt.Errorf("seed check categories: %w", err)
	}
	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	electronics := demoCategory("Electronics", "electronics", nil, nil)
	phones := demoCategory("Phones", "phones", electronics, nil)
	cases := demoCategory("Cases", "cases", phones, electronics)
	accessories := demoCategory("Accessories", "accessories", nil, nil)
	electronics.Children = []uuid.UUID{phones.ID}
	phones.Children = []uuid.UUID{cases.ID}

	for _, c := range []*models.Category{electronics, phones, cases, accessories} {
		childrenJSON, err := json.Marshal(c.Children)
		if err != nil {
			return fmt.Errorf("seed encode children: %w", err)
		}
		ancestorsJSON, err := json.Marshal(c.Ancestors)
		if err != nil {
			return fmt.Errorf("seed encode ancestors: %w", err)
		}
		_, err = db.Exec(`
			INSERT INTO categories (id, name, slug, description, parent_id, children,
				ancestors, level, position, status, is_deleted)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, FALSE)
		`, c.ID, c.Name, c.Slug, c.Description, c.ParentID, childrenJSON,
			ancestorsJSON, c.Level, c.Position, c.Status)
		if err != nil {
			return fmt.Errorf("seed insert category %q: %w", c.Name, err)
		}
	}

	items := []struct {
		category *models.Category
		name     string
		sku      string
		cents    int64
	}{
		{phones, "Anura P1", "ANURA-P1", 49900},
		{cases, "Anura P1 Clear Case", "ANURA-P1-CASE", 1900},
		{accessories, "USB-C Cable 2m", "CBL-USBC-2M", 990},
	}
	for _, it := range items {
		_, err := db.Exec(`
			INSERT INTO catalog_items (category_id, name, sku, price_cents)
			VALUES ($1, $2, $3, $4)
		`, it.category.ID, it.name, it.sku, it.cents)
		if err != nil {
			return fmt.Errorf("seed insert item %q: %w", it.sku, err)
		}
	}

	slog.Info("database seeded with demo category forest",
		"categories", 4,
		"items", len(items),
	)
	return nil
}

// demoCategory builds an active seed category with its ancestor chain.
// grandparent may be nil for roots and level-1 nodes.
func demoCategory(name, slugVal string, parent, grandparent *models.Category) *models.Category {
	c := &models.Category{
		ID:        uuid.New(),
		Name:      name,
		Slug:      slugVal,
		Children:  []uuid.UUID{},
		Ancestors: []models.AncestorRef{},
		Status:    models.CategoryStatusActive,
	}
	if parent != nil {
		pid := parent.ID
		c.ParentID = &pid
		c.Level = parent.Level + 1
		if grandparent != nil {
			c.Ancestors = append(c.Ancestors, grandparent.Ref())
		}
		c.Ancestors = append(c.Ancestors, parent.Ref())
	}
	return c
}
