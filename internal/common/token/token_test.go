package token

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIsOpaqueAndUnique(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		tok := New()
		require.NotEmpty(t, tok)
		assert.NotContains(t, tok, "-")
		assert.NotContains(t, tok, "/")
		_, dup := seen[tok]
		require.False(t, dup, "token collision: %s", tok)
		seen[tok] = struct{}{}
	}
}

func TestNewHasNoPathSeparators(t *testing.T) {
	// Tokens double as store path segments.
	tok := New()
	assert.False(t, strings.ContainsAny(tok, "/ \t\n"))
}
