package utils

import (
	"strings"

	"github.com/google/uuid"
)

// GenerateSaveID creates a human-readable, unique save ID.
// Format: {slugified name}-{8charHexUUID}
//
// Example:
//   - Input: name="Before the 1996 glut"
//   - Output: "before-the-1996-glut-a3f8e2b1"
func GenerateSaveID(name string) string {
	slug := slugify(name)
	if slug == "" {
		return generateShortUUID()
	}
	return slug + "-" + generateShortUUID()
}

// slugify lowercases name and collapses every run of characters outside [a-z0-9] into a
// single hyphen. Slugs are capped at 40 characters.
func slugify(name string) string {
	var b strings.Builder
	hyphen := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if hyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			hyphen = false
			b.WriteRune(r)
		default:
			hyphen = true
		}
	}
	slug := b.String()
	if len(slug) > 40 {
		slug = slug[:40]
	}
	return strings.TrimRight(slug, "-")
}

// generateShortUUID creates an 8-character hex string from a UUID
func generateShortUUID() string {
	id := uuid.New()
	return strings.ReplaceAll(id.String(), "-", "")[:8]
}
