package tokenizer

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/hex"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/samoylenkodmitry/shrtlin/core"
	"github.com/samoylenkodmitry/shrtlin/ports"
)

// Random nonce length bounds, in bytes.
const (
	minNonceBytes = 8
	maxNonceBytes = 32
)

// sessionJitter widens the session expiry by up to a second so that a
// burst of registrations does not produce a burst of simultaneous
// expirations later.
const sessionJitter = time.Second

// Config carries everything the codec needs to mint and verify tokens.
type Config struct {
	SignKey      *rsa.PrivateKey
	Issuer       string
	Audience     string
	ChallengeTTL time.Duration
	SessionTTL   time.Duration
}

// JWTTokenizer implements ports.Tokenizer with RS512-signed JWTs.
type JWTTokenizer struct {
	cfg Config
}

// NewJWTTokenizer creates the RS512 token codec.
func NewJWTTokenizer(cfg Config) ports.Tokenizer {
	return &JWTTokenizer{cfg: cfg}
}

// IssueChallenge mints a signed challenge token. The nonce is 8 to 32
// random bytes hex-encoded, joined with the issue time in millis, so two
// challenges minted in the same millisecond still differ.
func (j *JWTTokenizer) IssueChallenge() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(maxNonceBytes-minNonceBytes+1))
	if err != nil {
		return "", fmt.Errorf("failed to pick nonce size: %w", err)
	}
	buf := make([]byte, minNonceBytes+n.Int64())
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read nonce: %w", err)
	}

	now := time.Now()
	claims := challengeClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    j.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.cfg.ChallengeTTL)),
		},
		Nonce: hex.EncodeToString(buf) + "." + strconv.FormatInt(now.UnixMilli(), 10),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS512, claims)

	signedToken, err := token.SignedString(j.cfg.SignKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign challenge: %w", err)
	}

	return signedToken, nil
}

// VerifyChallenge checks signature, issuer and expiry of a challenge
// token. It fails closed to a plain bool; the caller treats any failure
// as an invalid proof of work.
func (j *JWTTokenizer) VerifyChallenge(tokenStr string) bool {
	token, err := jwt.ParseWithClaims(tokenStr, &challengeClaims{}, j.keyFunc,
		jwt.WithIssuer(j.cfg.Issuer),
		jwt.WithLeeway(time.Second),
	)
	if err != nil {
		return false
	}

	claims, ok := token.Claims.(*challengeClaims)
	if !ok || !token.Valid {
		return false
	}

	// A challenge without an expiry never made it past IssueChallenge,
	// so an unexpiring one is a forgery regardless of its signature.
	return claims.ExpiresAt != nil && claims.Nonce != ""
}

// IssueSession mints the short-lived session token.
func (j *JWTTokenizer) IssueSession(userID int64) (string, error) {
	jitter, err := rand.Int(rand.Reader, big.NewInt(int64(sessionJitter)))
	if err != nil {
		return "", fmt.Errorf("failed to pick expiry jitter: %w", err)
	}

	now := time.Now()
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    j.cfg.Issuer,
			Audience:  jwt.ClaimStrings{j.cfg.Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.cfg.SessionTTL + time.Duration(jitter.Int64()))),
		},
		UserID: userID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS512, claims)

	signedToken, err := token.SignedString(j.cfg.SignKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}

	return signedToken, nil
}

// IssueRefresh mints the durable refresh token. It carries no expiry
// claim and is never rotated.
func (j *JWTTokenizer) IssueRefresh(userID int64) (string, error) {
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       uuid.NewString(),
			Issuer:   j.cfg.Issuer,
			Audience: jwt.ClaimStrings{j.cfg.Audience},
			IssuedAt: jwt.NewNumericDate(time.Now()),
		},
		UserID: userID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS512, claims)

	signedToken, err := token.SignedString(j.cfg.SignKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign refresh token: %w", err)
	}

	return signedToken, nil
}

// VerifyToken checks a session or refresh token and returns its uid
// claim. All failures map to core.ErrInvalidToken so handlers never leak
// which check broke.
func (j *JWTTokenizer) VerifyToken(tokenStr string) (int64, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &sessionClaims{}, j.keyFunc,
		jwt.WithIssuer(j.cfg.Issuer),
		jwt.WithAudience(j.cfg.Audience),
		jwt.WithLeeway(time.Second),
	)
	if err != nil {
		return 0, core.ErrInvalidToken
	}

	claims, ok := token.Claims.(*sessionClaims)
	if !ok || !token.Valid || claims.UserID <= 0 {
		return 0, core.ErrInvalidToken
	}

	return claims.UserID, nil
}

func (j *JWTTokenizer) keyFunc(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
	return &j.cfg.SignKey.PublicKey, nil
}
