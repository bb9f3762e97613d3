package utils

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateSaveID(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		prefix string
	}{
		{"autosave", "auto-199004", "auto-199004-"},
		{"spaces and punctuation", "Before the 1996 glut!", "before-the-1996-glut-"},
		{"leading junk", "  --Checkpoint", "checkpoint-"},
		{"no usable characters", "???", ""},
	}

	suffix := regexp.MustCompile(`^[0-9a-f]{8}$`)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := GenerateSaveID(tt.input)

			assert.True(t, len(id) == len(tt.prefix)+8, "unexpected id %q", id)
			assert.Equal(t, tt.prefix, id[:len(tt.prefix)])
			assert.Regexp(t, suffix, id[len(tt.prefix):])
		})
	}
}

func TestGenerateSaveID_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := GenerateSaveID("checkpoint")
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestSlugify_Capped(t *testing.T) {
	long := "a very long save name that goes on and on well past any reasonable length"

	assert.LessOrEqual(t, len(slugify(long)), 40)
	assert.NotContains(t, slugify(long)[len(slugify(long))-1:], "-")
}
