package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samoylenkodmitry/shrtlin/adapters/events"
	"github.com/samoylenkodmitry/shrtlin/adapters/store"
	"github.com/samoylenkodmitry/shrtlin/adapters/tokenizer"
	"github.com/samoylenkodmitry/shrtlin/core"
	"github.com/samoylenkodmitry/shrtlin/internal/observability"
	"github.com/samoylenkodmitry/shrtlin/pow"
)

const testPrefix = "0"

func newAuthService(t *testing.T) *AuthService {
	t.Helper()
	key, err := tokenizer.GenerateKey()
	require.NoError(t, err)
	tk := tokenizer.NewJWTTokenizer(tokenizer.Config{
		SignKey:      key,
		Issuer:       "shrtl.in",
		Audience:     "in.shrtl.app",
		ChallengeTTL: time.Minute,
		SessionTTL:   24 * time.Hour,
	})
	return NewAuthService(
		tk,
		store.NewMemoryUserRepository(),
		store.NewMemoryGuard(),
		events.NopPublisher{},
		observability.NewLogger(),
		testPrefix,
	)
}

func solve(t *testing.T, s *AuthService) core.ProofOfWork {
	t.Helper()
	challenge, err := s.Challenge()
	require.NoError(t, err)
	require.Equal(t, testPrefix, challenge.Prefix)

	p, err := pow.Solve(context.Background(), challenge.Challenge, challenge.Prefix)
	require.NoError(t, err)
	return p
}

func TestRegisterHappyPath(t *testing.T) {
	s := newAuthService(t)

	result, err := s.Register(context.Background(), solve(t, s))
	require.NoError(t, err)

	assert.NotEmpty(t, result.SessionToken)
	assert.NotEmpty(t, result.RefreshToken)
	assert.NotEqual(t, result.SessionToken, result.RefreshToken)
	assert.Positive(t, result.User.ID)
	assert.NotEmpty(t, result.User.Nick)

	uid, err := s.Authenticate(result.SessionToken)
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, uid)
}

func TestRegisterRejectsBadSolution(t *testing.T) {
	s := newAuthService(t)
	ctx := context.Background()

	p := solve(t, s)

	bad := p
	bad.Solution = p.Challenge + ":999999999999"
	if pow.CheckSolution(bad, testPrefix) {
		t.Skip("accidental collision")
	}
	_, err := s.Register(ctx, bad)
	assert.ErrorIs(t, err, core.ErrInvalidProofOfWork)

	bad = p
	bad.Prefix = "1"
	_, err = s.Register(ctx, bad)
	assert.ErrorIs(t, err, core.ErrInvalidProofOfWork)
}

func TestRegisterRejectsForgedChallenge(t *testing.T) {
	s := newAuthService(t)

	// A correct hash over a string that was never signed by the server.
	p, err := pow.Solve(context.Background(), "self-made-challenge", testPrefix)
	require.NoError(t, err)

	_, err = s.Register(context.Background(), p)
	assert.ErrorIs(t, err, core.ErrInvalidProofOfWork)
}

func TestRegisterRejectsReplay(t *testing.T) {
	s := newAuthService(t)
	ctx := context.Background()

	p := solve(t, s)

	_, err := s.Register(ctx, p)
	require.NoError(t, err)

	_, err = s.Register(ctx, p)
	assert.ErrorIs(t, err, core.ErrUserExists)

	// A different nonce over the same challenge is still a replay.
	p2 := p
	p2.Solution = p.Solution + "0"
	if pow.CheckSolution(p2, testPrefix) {
		_, err = s.Register(ctx, p2)
		assert.ErrorIs(t, err, core.ErrUserExists)
	}
}

func TestRegisterConcurrentReplay(t *testing.T) {
	s := newAuthService(t)
	p := solve(t, s)

	const workers = 16
	results := make(chan error, workers)
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			_, err := s.Register(context.Background(), p)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	created := 0
	for err := range results {
		if err == nil {
			created++
		} else {
			assert.ErrorIs(t, err, core.ErrUserExists)
		}
	}
	assert.Equal(t, 1, created, "exactly one registration per challenge")
}

func TestRefreshReturnsSameRefreshToken(t *testing.T) {
	s := newAuthService(t)
	ctx := context.Background()

	registered, err := s.Register(ctx, solve(t, s))
	require.NoError(t, err)

	refreshed, err := s.Refresh(ctx, registered.RefreshToken)
	require.NoError(t, err)

	// The refresh token is never rotated.
	assert.Equal(t, registered.RefreshToken, refreshed.RefreshToken)
	assert.Equal(t, registered.User, refreshed.User)
	assert.NotEmpty(t, refreshed.SessionToken)

	// And refreshing is idempotent.
	again, err := s.Refresh(ctx, registered.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, registered.RefreshToken, again.RefreshToken)
}

func TestRefreshRejectsGarbage(t *testing.T) {
	s := newAuthService(t)

	_, err := s.Refresh(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, core.ErrInvalidToken)
}

func TestRefreshUnknownUser(t *testing.T) {
	s := newAuthService(t)

	// Token signed by us but for a user that was never created.
	token, err := s.tokenizer.IssueRefresh(777)
	require.NoError(t, err)

	_, err = s.Refresh(context.Background(), token)
	assert.ErrorIs(t, err, core.ErrUserNotFound)
}

func TestUpdateNick(t *testing.T) {
	s := newAuthService(t)
	ctx := context.Background()

	registered, err := s.Register(ctx, solve(t, s))
	require.NoError(t, err)

	ok, err := s.UpdateNick(ctx, registered.User.ID, "fancy")
	require.NoError(t, err)
	assert.True(t, ok)

	refreshed, err := s.Refresh(ctx, registered.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "fancy", refreshed.User.Nick)

	_, err = s.UpdateNick(ctx, registered.User.ID, "  ")
	assert.Error(t, err)
}
