package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"strings"
)

// SignUnsubscribe produces the signature embedded in newsletter unsubscribe
// links, so only the recipient of a broadcast can remove the address.
func SignUnsubscribe(email, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(strings.ToLower(strings.TrimSpace(email))))
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil))
}

// VerifyUnsubscribe checks an unsubscribe signature in constant time.
func VerifyUnsubscribe(email, sig, secret string) bool {
	expected := SignUnsubscribe(email, secret)
	return hmac.Equal([]byte(expected), []byte(sig))
}
