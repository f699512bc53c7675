package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL is how long issued tokens stay valid. There is no refresh
// or revocation; an expired token requires a fresh login.
const DefaultTokenTTL = 7 * 24 * time.Hour

// Claims defines the structure of the JWT claims carried by a bearer token.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies signed, time-limited bearer tokens. The
// signing key and algorithm are fixed at construction and immutable for the
// process lifetime.
type TokenService struct {
	secret []byte
	method jwt.SigningMethod
	ttl    time.Duration
}

// NewTokenService builds a token service for the given HMAC algorithm name
// (HS256, HS384 or HS512).
func NewTokenService(secret []byte, algorithm string, ttl time.Duration) (*TokenService, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("signing secret must not be empty")
	}
	method := jwt.GetSigningMethod(algorithm)
	if method == nil {
		return nil, fmt.Errorf("unknown signing algorithm %q", algorithm)
	}
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unsupported signing algorithm %q, only HMAC variants are allowed", algorithm)
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenService{secret: secret, method: method, ttl: ttl}, nil
}

// Issue creates a signed token embedding the username and an absolute expiry.
func (s *TokenService) Issue(username string) (string, error) {
	now := time.Now()
	claims := &Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(s.method, claims)
	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// Verify parses and validates a token string. It fails when the signature
// does not validate, the structure is malformed, the signing method differs
// from the configured one, or the token has expired.
func (s *TokenService) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != s.method.Alg() {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenUnverifiable
	}
	return claims, nil
}
