// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package hierarchy

import "errors"

// Sentinel errors returned by tree operations. Callers discriminate with
// errors.Is; the helper predicates below group them into the three classes
// the HTTP facade maps to status codes.
var (
	// Not-found class.
	ErrCategoryNotFound = errors.New("category not found")
	ErrParentNotFound   = errors.New("parent category not found")

	// Invariant-violation class.
	ErrCircularMove         = errors.New("move would make a category its own ancestor")
	ErrMaxDepthExceeded     = errors.New("maximum tree depth exceeded")
	ErrDuplicateSiblingName = errors.New("a sibling with that name already exists")
	ErrSlugCollision        = errors.New("could not derive a unique slug")

	// Precondition-failed class.
	ErrSelfMove        = errors.New("cannot move a category under itself")
	ErrAlreadyArchived = errors.New("category is already archived")
	ErrNotPending      = errors.New("category is not pending moderation")
	ErrNotArchived     = errors.New("category is not archived")
	ErrHasDescendants  = errors.New("category still has descendants")
	ErrHasItems        = errors.New("category still has linked catalog items")

	// ErrCycleDetected means the persisted parent pointers themselves form a
	// cycle. It is fatal for a rebuild run: the stored tree is corrupt and
	// needs manual intervention, not a retry.
	ErrCycleDetected = errors.New("cycle detected in stored parent pointers")
)

// IsNotFound reports whether err is a missing category or parent.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrCategoryNotFound) || errors.Is(err, ErrParentNotFound)
}

// IsInvariantViolation reports whether err is a structural invariant failure.
func IsInvariantViolation(err error) bool {
	return errors.Is(err, ErrCircularMove) ||
		errors.Is(err, ErrMaxDepthExceeded) ||
		errors.Is(err, ErrDuplicateSiblingName) ||
		errors.Is(err, ErrSlugCollision)
}

// IsPreconditionFailed reports whether err is a lifecycle precondition failure.
func IsPreconditionFailed(err error) bool {
	return errors.Is(err, ErrSelfMove) ||
		errors.Is(err, ErrAlreadyArchived) ||
		errors.Is(err, ErrNotPending) ||
		errors.Is(err, ErrNotArchived) ||
		errors.Is(err, ErrHasDescendants) ||
		errors.Is(err, ErrHasItems)
}
