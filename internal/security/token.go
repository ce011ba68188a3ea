package security

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// verificationTokenBytes is the entropy of a verification token. 32 bytes
// (256 bits) makes guessing or enumerating a live token computationally
// infeasible; collisions are treated as negligible rather than prevented.
const verificationTokenBytes = 32

// NewVerificationToken mints a single-use email verification token: 32 random
// bytes from the OS CSPRNG, encoded as 64 lowercase hex digits. The caller is
// responsible for persisting it; generation itself has no side effects.
func NewVerificationToken() (string, error) {
	b := make([]byte, verificationTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("read entropy source: %w", err)
	}
	return hex.EncodeToString(b), nil
}
