package models

import (
	"testing"

	"github.com/google/uuid"
)

// TestCategoryStatusValid verifies that Valid accepts only the known
// lifecycle states.
func TestCategoryStatusValid(t *testing.T) {
	tests := []struct {
		name   string
		status CategoryStatus
		want   bool
	}{
		{name: "pending", status: CategoryStatusPending, want: true},
		{name: "active", status: CategoryStatusActive, want: true},
		{name: "inactive", status: CategoryStatusInactive, want: true},
		{name: "hidden", status: CategoryStatusHidden, want: true},
		{name: "archived", status: CategoryStatusArchived, want: true},
		{name: "empty status", status: CategoryStatus(""), want: false},
		{name: "unknown status", status: CategoryStatus("deleted"), want: false},
		{name: "uppercase ACTIVE", status: CategoryStatus("ACTIVE"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.status.Valid(); got != tt.want {
				t.Errorf("CategoryStatus(%q).Valid() = %v, want %v", tt.status, got, tt.want)
			}
		})
	}
}

func TestNameEquals(t *testing.T) {
	c := &Category{Name: "Mobile Phones"}
	tests := []struct {
		name  string
		other string
		want  bool
	}{
		{name: "exact", other: "Mobile Phones", want: true},
		{name: "different case", other: "MOBILE phones", want: true},
		{name: "surrounding whitespace", other: "  Mobile Phones  ", want: true},
		{name: "different name", other: "Mobile Phone", want: false},
		{name: "empty", other: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.NameEquals(tt.other); got != tt.want {
				t.Errorf("NameEquals(%q) = %v, want %v", tt.other, got, tt.want)
			}
		})
	}
}

// TestClone verifies that clones share no slice or pointer state with the
// original.
func TestClone(t *testing.T) {
	pid := uuid.New()
	orig := &Category{
		ID:        uuid.New(),
		Name:      "Phones",
		ParentID:  &pid,
		Children:  []uuid.UUID{uuid.New()},
		Ancestors: []AncestorRef{{ID: pid, Name: "Electronics", Slug: "electronics"}},
	}

	clone := orig.Clone()
	clone.Children[0] = uuid.Nil
	clone.Ancestors[0].Name = "Mutated"
	*clone.ParentID = uuid.Nil

	if orig.Children[0] == uuid.Nil {
		t.Error("clone shares the children slice")
	}
	if orig.Ancestors[0].Name != "Electronics" {
		t.Error("clone shares the ancestors slice")
	}
	if *orig.ParentID == uuid.Nil {
		t.Error("clone shares the parent pointer")
	}
}
