package utils

import (
	"os"
)

// JWTSecret returns the token signing key. The fallback keeps local
// development working; set JWT_SECRET in any real deployment.
func JWTSecret() []byte {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "dev_secret_key"
	}
	return []byte(secret)
}
