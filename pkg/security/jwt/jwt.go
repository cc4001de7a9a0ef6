// Package jwt implements the access-token service and the Bearer auth
// middleware for protected routes.
package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Validation failures, classified for diagnostics. The HTTP boundary
// collapses all of them into one generic 401.
var (
	ErrExpired          = errors.New("token expired")
	ErrSignatureInvalid = errors.New("token signature invalid")
	ErrMalformed        = errors.New("token malformed")
)

// Issuer creates and validates HMAC-signed access tokens. It is built once
// at startup and shared read-only across requests.
type Issuer struct {
	secret []byte
	method *jwt.SigningMethodHMAC
	ttl    time.Duration
}

// NewIssuer returns an Issuer for the given HMAC algorithm name
// (HS256, HS384 or HS512). Other algorithms are rejected.
func NewIssuer(secret, algorithm string, ttl time.Duration) (*Issuer, error) {
	method, ok := jwt.GetSigningMethod(algorithm).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("unsupported JWT algorithm %q", algorithm)
	}
	return &Issuer{secret: []byte(secret), method: method, ttl: ttl}, nil
}

// Issue signs an access token asserting identity for subject, valid for
// the configured default TTL.
func (i *Issuer) Issue(subject string) (string, error) {
	return i.IssueWithTTL(subject, i.ttl)
}

// IssueWithTTL signs an access token for subject with an explicit TTL.
func (i *Issuer) IssueWithTTL(subject string, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(i.method, claims).SignedString(i.secret)
}

// Validate parses tokenStr, verifies its signature and expiry, and returns
// the registered claims. Failures are classified into ErrExpired,
// ErrSignatureInvalid and ErrMalformed; there is no nil-claims success.
func (i *Issuer) Validate(tokenStr string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrSignatureInvalid
		}
		return i.secret, nil
	}, jwt.WithValidMethods([]string{i.method.Alg()}))
	switch {
	case err == nil && token.Valid:
		return claims, nil
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return nil, ErrSignatureInvalid
	default:
		return nil, ErrMalformed
	}
}
