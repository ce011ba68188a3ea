package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidSessionToken = errors.New("invalid session token")

// Claims is the payload of a session credential: the subject is the account's
// ObjectID hex. Sessions are stateless; signature and expiry are the only
// checks.
type Claims struct {
	jwt.RegisteredClaims
}

// JWTManager signs and parses session credentials (HS256).
type JWTManager struct {
	issuer string
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewJWTManager(issuer, secret string, ttl time.Duration) *JWTManager {
	return &JWTManager{issuer: issuer, secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Sign issues a session credential for the given account ID, expiring ttl
// from now (7 days by default configuration, not refreshable in-band).
func (m *JWTManager) Sign(accountID string) (string, error) {
	now := m.now().UTC()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   accountID,
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// Parse validates signature, algorithm, issuer and expiry. Any failure is
// reported as ErrInvalidSessionToken; callers don't get to distinguish why.
func (m *JWTManager) Parse(raw string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims,
		func(t *jwt.Token) (interface{}, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return m.now() }),
	)
	if err != nil {
		return nil, ErrInvalidSessionToken
	}
	if claims.Subject == "" {
		return nil, ErrInvalidSessionToken
	}
	return claims, nil
}
