package model

import "strings"

const (
	RoleAdmin    = "admin"
	RoleStandard = "standard"
)

// VerificationMarker prefixes the token of an account that has registered but
// not yet completed email verification. A marked token is never a valid
// session token; it doubles as the key of the pending verification entry.
const VerificationMarker = "validation="

// User is the document stored at users/<username>. The username is the key
// and is not repeated inside the document. Passwords are stored as submitted;
// the clients depend on the stored value round-tripping verbatim.
type User struct {
	Password string `json:"password"`
	Email    string `json:"email"`
	Token    string `json:"token"`
	Role     string `json:"role,omitempty"`

	// Opaque client-state blobs, initialized to "[]" at registration and
	// round-tripped untouched.
	Favourites string `json:"favourites"`
	Continues  string `json:"continues"`
}

// PendingVerification reports whether a stored token still carries the
// verification marker.
func PendingVerification(token string) bool {
	return strings.HasPrefix(token, VerificationMarker)
}
