package service

import (
	"regexp"
	"strings"
)

// emailPattern is a best-effort shape check (local part, domain, 2-3+ char
// TLD), not full RFC validation. It intentionally matches what the frontend
// accepts.
var emailPattern = regexp.MustCompile(`^\w+([.-]?\w+)*@\w+([.-]?\w+)*(\.\w{2,3})+$`)

// NormalizeEmail lowercases and trims an identity. All lookups and uniqueness
// checks run on the normalized form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validEmail(email string) bool {
	return emailPattern.MatchString(email)
}
