package jwtutil

import (
	"log"
)

func LoadAndBuild(cfg JWTConfig) *Verifier {
	pub, err := LoadRSAPublicKeyFromPEM(cfg.PubPath)
	if err != nil || pub == nil {
		log.Fatalf("failed to load public key from %s: %v", cfg.PubPath, err)
	}

	return NewVerifier(pub, cfg.Issuer, cfg.Audience)
}
