package tokenizer

import "github.com/golang-jwt/jwt/v5"

// challengeClaims combine standard claims with the proof-of-work nonce.
type challengeClaims struct {
	jwt.RegisteredClaims
	Nonce string `json:"nonce"`
}

// sessionClaims combine standard claims with the user identity.
// The same shape serves session and refresh tokens; the refresh token
// simply leaves ExpiresAt unset.
type sessionClaims struct {
	jwt.RegisteredClaims
	UserID int64 `json:"uid"`
}
