// Package auth issues and verifies the signed bearer tokens that prove a
// caller's identity for a bounded time window.
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Verification failures map to distinct HTTP responses, so the verifier
// reports them as distinct sentinel errors.
var (
	// ErrTokenExpired means the token was well-formed and correctly signed
	// but its validity window has passed.
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenInvalid means the token failed signature or format checks.
	ErrTokenInvalid = errors.New("invalid token")
)

// Claims defines the information stored in the token. The user id travels
// in the registered Subject claim as a decimal string.
type Claims struct {
	jwt.RegisteredClaims
}

// Issuer signs and verifies bearer tokens with a shared HMAC secret.
type Issuer struct {
	secret []byte
	ttl    time.Duration
}

// NewIssuer creates an Issuer. ttl is the validity window of issued tokens.
func NewIssuer(secret []byte, ttl time.Duration) *Issuer {
	return &Issuer{secret: secret, ttl: ttl}
}

// Issue creates a signed token identifying userID, valid from now until
// now+ttl. The returned string is opaque to callers.
func (i *Issuer) Issue(userID int) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(userID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.secret)
}

// Verify parses and validates a token string and returns the user id it
// identifies. Failures are reported as ErrTokenExpired or ErrTokenInvalid;
// ErrTokenInvalid wraps the parser's reason for the response body.
func (i *Issuer) Verify(tokenString string) (int, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return i.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, ErrTokenExpired
		}
		return 0, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if !token.Valid {
		return 0, ErrTokenInvalid
	}

	userID, err := strconv.Atoi(claims.Subject)
	if err != nil {
		return 0, fmt.Errorf("%w: malformed subject", ErrTokenInvalid)
	}
	return userID, nil
}
