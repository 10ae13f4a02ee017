package util

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Green H2 Pilot", "green-h2-pilot"},
		{"  Coastal  Electrolysis  ", "coastal-electrolysis"},
		{"North/West #3", "north-west-3"},
		{"ALLCAPS", "allcaps"},
		{"---", ""},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Slugify(tt.in), tt.in)
	}
}

func TestRandSuffix(t *testing.T) {
	hexRe := regexp.MustCompile(`^[0-9a-f]+$`)

	for _, n := range []int{1, 4, 6, 8} {
		s := RandSuffix(n)
		assert.Len(t, s, n)
		assert.Regexp(t, hexRe, s)
	}

	// collisions at this length should be rare enough to never retry twice
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		seen[RandSuffix(6)] = true
	}
	assert.Greater(t, len(seen), 45)
}
