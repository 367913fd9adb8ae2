// Package token generates the opaque identifiers used for sessions,
// verification links and incident IDs. Callers must not assume any structure
// beyond uniqueness.
package token

import (
	"strings"

	"github.com/google/uuid"
)

// New returns a fresh high-entropy opaque token.
func New() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
