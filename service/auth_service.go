// Package service holds the business logic between the HTTP transport
// and the adapters.
package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/samoylenkodmitry/shrtlin/core"
	"github.com/samoylenkodmitry/shrtlin/internal/observability"
	"github.com/samoylenkodmitry/shrtlin/pow"
	"github.com/samoylenkodmitry/shrtlin/ports"
)

// AuthService handles challenge issuance, proof-of-work registration and
// token refresh.
type AuthService struct {
	tokenizer ports.Tokenizer
	users     ports.UserRepository
	guard     ports.ReplayGuard
	eventPub  ports.EventPublisher
	logger    *observability.Logger

	difficultyPrefix string
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	tokenizer ports.Tokenizer,
	users ports.UserRepository,
	guard ports.ReplayGuard,
	eventPub ports.EventPublisher,
	logger *observability.Logger,
	difficultyPrefix string,
) *AuthService {
	return &AuthService{
		tokenizer:        tokenizer,
		users:            users,
		guard:            guard,
		eventPub:         eventPub,
		logger:           logger,
		difficultyPrefix: difficultyPrefix,
	}
}

// Challenge mints a fresh proof-of-work challenge.
func (s *AuthService) Challenge() (core.Challenge, error) {
	token, err := s.tokenizer.IssueChallenge()
	if err != nil {
		return core.Challenge{}, fmt.Errorf("failed to issue challenge: %w", err)
	}
	return core.Challenge{Challenge: token, Prefix: s.difficultyPrefix}, nil
}

// Register creates an anonymous identity from a solved challenge.
//
// The order matters: the cheap hash checks run first, the signature
// check second, and only then is the challenge consumed, so garbage
// submissions never burn a replay-guard slot.
func (s *AuthService) Register(ctx context.Context, p core.ProofOfWork) (core.AuthResult, error) {
	if !pow.CheckSolution(p, s.difficultyPrefix) {
		return core.AuthResult{}, core.ErrInvalidProofOfWork
	}
	if !s.tokenizer.VerifyChallenge(p.Challenge) {
		return core.AuthResult{}, core.ErrInvalidProofOfWork
	}

	ok, err := s.guard.TryConsume(ctx, p.Challenge)
	if err != nil {
		return core.AuthResult{}, fmt.Errorf("failed to consume challenge: %w", err)
	}
	if !ok {
		return core.AuthResult{}, core.ErrUserExists
	}

	// Empty nick lets the repository assign its id-derived default.
	user, err := s.users.CreateFromChallenge(ctx, "", p.Challenge)
	if err != nil {
		return core.AuthResult{}, err
	}

	result, err := s.issueTokens(user)
	if err != nil {
		return core.AuthResult{}, err
	}

	// Best effort: a broker outage must not fail the registration.
	if err := s.eventPub.PublishUserRegistered(ctx, user.ID, user.Nick); err != nil {
		s.logger.Warn("failed to publish registration event", map[string]any{
			"user_id": user.ID,
			"error":   err.Error(),
		})
	}

	return result, nil
}

// Refresh exchanges a valid refresh token for a fresh session token.
// The refresh token itself is returned unchanged; it is never rotated.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (core.AuthResult, error) {
	userID, err := s.tokenizer.VerifyToken(refreshToken)
	if err != nil {
		return core.AuthResult{}, core.ErrInvalidToken
	}

	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return core.AuthResult{}, err
	}

	sessionToken, err := s.tokenizer.IssueSession(user.ID)
	if err != nil {
		return core.AuthResult{}, fmt.Errorf("failed to issue session token: %w", err)
	}

	return core.AuthResult{
		RefreshToken: refreshToken,
		SessionToken: sessionToken,
		User:         user,
	}, nil
}

// Authenticate resolves a session token to a user id.
func (s *AuthService) Authenticate(token string) (int64, error) {
	return s.tokenizer.VerifyToken(token)
}

// UpdateNick renames the user, reporting whether a row changed.
func (s *AuthService) UpdateNick(ctx context.Context, userID int64, nick string) (bool, error) {
	nick = strings.TrimSpace(nick)
	if nick == "" {
		return false, fmt.Errorf("empty nick")
	}
	return s.users.UpdateNick(ctx, userID, nick)
}

func (s *AuthService) issueTokens(user core.User) (core.AuthResult, error) {
	sessionToken, err := s.tokenizer.IssueSession(user.ID)
	if err != nil {
		return core.AuthResult{}, fmt.Errorf("failed to issue session token: %w", err)
	}
	refreshToken, err := s.tokenizer.IssueRefresh(user.ID)
	if err != nil {
		return core.AuthResult{}, fmt.Errorf("failed to issue refresh token: %w", err)
	}
	return core.AuthResult{
		RefreshToken: refreshToken,
		SessionToken: sessionToken,
		User:         user,
	}, nil
}
