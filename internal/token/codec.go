// Package token binds search result provenance into signed, expiring tokens.
//
// A token carries everything a later feedback submission must prove about the
// result it refers to: the query text, the matched image, the model that
// produced the embedding, and the similarity score. The server keeps no state
// between search and feedback; the signature is what stops a client from
// fabricating or altering any of those facts.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultValidity is how long a result token stays verifiable.
const DefaultValidity = 24 * time.Hour

// ErrInvalidToken is the single rejection returned for every verification
// failure: bad signature, malformed token, or expired. Callers must not
// distinguish these to the client.
var ErrInvalidToken = errors.New("invalid token")

// ResultClaim is the set of facts bound into a token.
type ResultClaim struct {
	Text      string
	ImageName string
	Model     string
	Score     float64
}

// Codec encodes result claims into opaque tokens and verifies them back.
// The interface is narrow so the signing algorithm or secret sourcing can
// change without touching callers.
type Codec interface {
	Encode(claim ResultClaim) (string, error)
	Decode(token string) (ResultClaim, error)
}

type resultClaims struct {
	Text      string  `json:"text"`
	ImageName string  `json:"image_name"`
	Model     string  `json:"model"`
	Score     float64 `json:"score"`
	jwt.RegisteredClaims
}

// JWTCodec signs claims as HS256 JWTs with a symmetric secret.
type JWTCodec struct {
	secret   []byte
	validity time.Duration
	now      func() time.Time
}

// JWTCodecOption configures a JWTCodec.
type JWTCodecOption func(*JWTCodec)

// WithValidity overrides the default 24h validity window.
func WithValidity(d time.Duration) JWTCodecOption {
	return func(c *JWTCodec) { c.validity = d }
}

// WithClock overrides the time source. Used in tests to mint expired tokens.
func WithClock(now func() time.Time) JWTCodecOption {
	return func(c *JWTCodec) { c.now = now }
}

// NewJWTCodec creates a codec signing with the given secret. The secret must
// not be empty.
func NewJWTCodec(secret string, opts ...JWTCodecOption) (*JWTCodec, error) {
	if secret == "" {
		return nil, fmt.Errorf("token signing secret must not be empty")
	}
	c := &JWTCodec{
		secret:   []byte(secret),
		validity: DefaultValidity,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Encode signs the claim with issued-at now and expiry now + validity window.
func (c *JWTCodec) Encode(claim ResultClaim) (string, error) {
	now := c.now()
	claims := resultClaims{
		Text:      claim.Text,
		ImageName: claim.ImageName,
		Model:     claim.Model,
		Score:     claim.Score,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.validity)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign claim: %w", err)
	}
	return signed, nil
}

// Decode verifies the signature and expiry and returns the bound claim.
// Every failure mode collapses to ErrInvalidToken.
func (c *JWTCodec) Decode(token string) (ResultClaim, error) {
	var claims resultClaims
	parsed, err := jwt.ParseWithClaims(token, &claims,
		func(t *jwt.Token) (interface{}, error) { return c.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil || !parsed.Valid {
		return ResultClaim{}, ErrInvalidToken
	}
	return ResultClaim{
		Text:      claims.Text,
		ImageName: claims.ImageName,
		Model:     claims.Model,
		Score:     claims.Score,
	}, nil
}
