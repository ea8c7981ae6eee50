package tokenizer

import (
	"crypto/ecdsa"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/layer-3/webauth/core"
)

var errNoSigningKey = errors.New("tokenizer has no signing key")

// JWTTokenizer implements the Tokenizer interface using JWT
type JWTTokenizer struct {
	signKey *ecdsa.PrivateKey
	parser  *jwt.Parser
}

// NewJWTTokenizer creates a tokenizer that only decodes tokens.
// Clients never hold the server key, so claims are read without verification.
func NewJWTTokenizer() *JWTTokenizer {
	return &JWTTokenizer{parser: jwt.NewParser()}
}

// NewSigningJWTTokenizer creates a tokenizer able to issue and verify ES256 tokens
func NewSigningJWTTokenizer(signKey *ecdsa.PrivateKey) *JWTTokenizer {
	return &JWTTokenizer{
		signKey: signKey,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodES256.Alg()}),
			jwt.WithExpirationRequired(),
		),
	}
}

// Decode reads the claims of a token without checking its signature
func (j *JWTTokenizer) Decode(raw string) (*core.AuthToken, error) {
	claims := &WebAuthClaims{}
	if _, _, err := j.parser.ParseUnverified(raw, claims); err != nil {
		return nil, core.Malformed(core.ErrMalformedToken, err)
	}

	if claims.ExpiresAt == nil {
		return nil, core.Malformed(core.ErrMalformedToken, errors.New("token has no exp claim"))
	}

	return claimsToToken(raw, claims), nil
}

// Issue signs a token for the given claims. Raw is ignored and the returned
// token carries the encoded JWT.
func (j *JWTTokenizer) Issue(token core.AuthToken) (*core.AuthToken, error) {
	if j.signKey == nil {
		return nil, errNoSigningKey
	}

	claims := &WebAuthClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    token.Issuer,
			Subject:   token.Account,
			ID:        token.ID,
			IssuedAt:  jwt.NewNumericDate(token.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(token.ExpiresAt),
		},
		ClientDomain: token.ClientDomain,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodES256, claims).SignedString(j.signKey)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return claimsToToken(signed, claims), nil
}

// Verify checks the signature and time claims of a token issued by this tokenizer
func (j *JWTTokenizer) Verify(raw string) (*core.AuthToken, error) {
	if j.signKey == nil {
		return nil, errNoSigningKey
	}

	token, err := j.parser.ParseWithClaims(raw, &WebAuthClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodECDSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return &j.signKey.PublicKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, core.ErrTokenExpired
		}
		return nil, core.Malformed(core.ErrMalformedToken, err)
	}

	claims, ok := token.Claims.(*WebAuthClaims)
	if !ok || !token.Valid {
		return nil, core.ErrMalformedToken
	}

	return claimsToToken(raw, claims), nil
}

func claimsToToken(raw string, claims *WebAuthClaims) *core.AuthToken {
	t := &core.AuthToken{
		Raw:          raw,
		Issuer:       claims.Issuer,
		Account:      claims.Subject,
		ClientDomain: claims.ClientDomain,
		ID:           claims.ID,
	}
	if claims.IssuedAt != nil {
		t.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		t.ExpiresAt = claims.ExpiresAt.Time
	}
	return t
}
