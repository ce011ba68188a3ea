package security

import "golang.org/x/crypto/bcrypt"

// passwordHashCost is the bcrypt work factor. Cost 10 keeps a single hash in
// the tens of milliseconds, slow enough to resist offline brute force.
const passwordHashCost = 10

// HashPassword hashes a plaintext password with bcrypt.
func HashPassword(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), passwordHashCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword compares a stored bcrypt hash against a submitted plaintext.
// Returns a non-nil error on mismatch.
func CheckPassword(hash, plaintext string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
}
