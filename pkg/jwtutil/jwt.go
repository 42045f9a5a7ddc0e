package jwtutil

import (
	"github.com/golang-jwt/jwt/v5"
)

// Claims carried by identity-system access tokens. The subject claim is
// the external user id every profile lookup is keyed on.
type Claims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

type JWTConfig struct {
	PubPath  string
	Issuer   string
	Audience string
}
