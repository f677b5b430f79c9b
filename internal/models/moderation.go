// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// ModerationAction identifies what a moderation log entry records.
type ModerationAction string

const (
	ModerationActionApproved ModerationAction = "approved"
	ModerationActionRejected ModerationAction = "rejected"
)

// ModerationEntry is one record in a category's append-only moderation
// history. Entries are written once and never updated or deleted.
type ModerationEntry struct {
	ID         uuid.UUID        `json:"id"`
	CategoryID uuid.UUID        `json:"category_id"`
	Action     ModerationAction `json:"action"`
	ActorID    string           `json:"actor_id"`
	Detail     string           `json:"detail"`
	CreatedAt  time.Time        `json:"created_at"`
}
