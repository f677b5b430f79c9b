// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug provides URL-friendly slug generation from arbitrary strings.
package slug

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	// nonAlphanumeric matches anything that isn't a letter, digit, or space.
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9\s-]`)
	// multipleHyphens collapses consecutive hyphens into one.
	multipleHyphens = regexp.MustCompile(`-{2,}`)
)

// MaxUniqueAttempts bounds the suffix search in Unique. Slugs are never
// recycled, so in practice the first or second candidate wins; the bound
// only guards against a pathological taken-set.
const MaxUniqueAttempts = 50

// Generate creates a URL-friendly slug from the given string.
// Example: "Hello, World! 2026" → "hello-world-2026"
func Generate(s string) string {
	result := strings.ToLower(strings.TrimSpace(s))
	result = nonAlphanumeric.ReplaceAllString(result, "")
	result = strings.ReplaceAll(result, " ", "-")
	result = multipleHyphens.ReplaceAllString(result, "-")
	result = strings.Trim(result, "-")
	return result
}

// Unique returns the first candidate derived from base that the taken
// predicate reports as free: base itself, then base-2, base-3, and so on.
// The second return is false when no free candidate was found within
// MaxUniqueAttempts.
func Unique(base string, taken func(string) bool) (string, bool) {
	if base == "" {
		base = "category"
	}
	if !taken(base) {
		return base, true
	}
	for i := 2; i <= MaxUniqueAttempts; i++ {
		candidate := fmt.Sprintf("%s-%d", base, i)
		if !taken(candidate) {
			return candidate, true
		}
	}
	return "", false
}
