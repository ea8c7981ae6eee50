package tokenizer

import "github.com/golang-jwt/jwt/v5"

// WebAuthClaims are the claims carried by a web auth token
type WebAuthClaims struct {
	jwt.RegisteredClaims
	ClientDomain string `json:"client_domain,omitempty"`
}
