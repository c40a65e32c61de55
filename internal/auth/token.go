package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token verification errors.
var (
	// ErrMissingSecret indicates the signing secret was not configured.
	// Fatal at startup, never surfaced per-request.
	ErrMissingSecret = errors.New("token signing secret is not configured")
	// ErrTokenExpired indicates the token's expiry is in the past.
	ErrTokenExpired = errors.New("token has expired")
	// ErrTokenMalformed indicates the token is structurally invalid or
	// carries a bad signature.
	ErrTokenMalformed = errors.New("token is malformed or has an invalid signature")
)

// Claims is the JWT payload issued to authenticated users.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// TokenCodec issues and verifies signed bearer tokens.
// It is a pure encode/decode keyed by a server-wide secret; no state
// is kept between calls and no revocation list exists.
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenCodec creates a TokenCodec with the given signing secret and
// token lifetime. An empty secret is a configuration error.
func NewTokenCodec(secret string, ttl time.Duration) (*TokenCodec, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}
	return &TokenCodec{
		secret: []byte(secret),
		ttl:    ttl,
	}, nil
}

// Issue produces a signed token embedding the user's id and username
// with an expiry ttl from now.
func (c *TokenCodec) Issue(userID int64, username string) (string, error) {
	now := time.Now()
	claims := Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return token, nil
}

// Verify validates a token's signature and expiry and returns the
// embedded identity. Expired tokens yield ErrTokenExpired; everything
// else that fails yields ErrTokenMalformed.
func (c *TokenCodec) Verify(tokenString string) (*Identity, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		return c.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenMalformed
	}
	if !token.Valid {
		return nil, ErrTokenMalformed
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return nil, ErrTokenMalformed
	}

	return &Identity{
		UserID:   userID,
		Username: claims.Username,
	}, nil
}
