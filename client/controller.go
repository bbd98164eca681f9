package client

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/samoylenkodmitry/shrtlin/core"
	"github.com/samoylenkodmitry/shrtlin/pow"
)

// AuthController drives the client session state machine:
//
//	Unauthenticated -> Authenticating -> Authenticated
//	                                  \-> Error
//
// Bootstrap solves a proof-of-work challenge to mint a brand-new
// anonymous identity; concurrent CheckAuth calls share one bootstrap.
type AuthController struct {
	api   *API
	store TokenStore

	mu      sync.Mutex
	state   AuthState
	pending chan struct{}
}

// NewAuthController creates a controller in the Unauthenticated state.
func NewAuthController(api *API, store TokenStore) *AuthController {
	return &AuthController{
		api:   api,
		store: store,
		state: AuthState{Status: StatusUnauthenticated},
	}
}

// State returns the current session state.
func (c *AuthController) State() AuthState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// CheckAuth ensures the controller holds a usable identity, running the
// bootstrap at most once no matter how many callers arrive while it is
// in flight. It returns the resulting state.
func (c *AuthController) CheckAuth(ctx context.Context) (AuthState, error) {
	c.mu.Lock()
	if c.state.Status == StatusAuthenticated {
		state := c.state
		c.mu.Unlock()
		return state, nil
	}

	if c.pending != nil {
		// Another caller is already bootstrapping; wait for it.
		done := c.pending
		c.mu.Unlock()
		select {
		case <-done:
		case <-ctx.Done():
			return AuthState{}, ctx.Err()
		}
		return c.State(), nil
	}

	done := make(chan struct{})
	c.pending = done
	c.state = AuthState{Status: StatusAuthenticating}
	c.mu.Unlock()

	state := c.bootstrap(ctx)

	c.mu.Lock()
	c.state = state
	c.pending = nil
	close(done)
	c.mu.Unlock()

	if state.Status == StatusError {
		return state, state.Err
	}
	return state, nil
}

// bootstrap loads persisted tokens or mints a new identity through the
// proof-of-work flow.
func (c *AuthController) bootstrap(ctx context.Context) AuthState {
	persisted, err := c.store.Load()
	if err != nil {
		return AuthState{Status: StatusError, Err: err}
	}
	if persisted != nil {
		return AuthState{Status: StatusAuthenticated, Result: persisted}
	}

	challenge, err := c.api.GetChallenge(ctx)
	if err != nil {
		return AuthState{Status: StatusError, Err: fmt.Errorf("fetch challenge: %w", err)}
	}

	proof, err := pow.Solve(ctx, challenge.Challenge, challenge.Prefix)
	if err != nil {
		return AuthState{Status: StatusError, Err: err}
	}

	result, err := c.api.SubmitProof(ctx, proof)
	if err != nil {
		return AuthState{Status: StatusError, Err: fmt.Errorf("submit proof: %w", err)}
	}

	if err := c.store.Save(&result); err != nil {
		return AuthState{Status: StatusError, Err: err}
	}
	return AuthState{Status: StatusAuthenticated, Result: &result}
}

// LoginByRefreshToken re-hydrates a session from a refresh token carried
// over from another device, skipping proof of work.
func (c *AuthController) LoginByRefreshToken(ctx context.Context, refreshToken string) (AuthState, error) {
	result, err := c.api.RefreshToken(ctx, refreshToken)
	if err != nil {
		return c.State(), err
	}
	if err := c.store.Save(&result); err != nil {
		return c.State(), err
	}

	c.mu.Lock()
	c.state = AuthState{Status: StatusAuthenticated, Result: &result}
	state := c.state
	c.mu.Unlock()
	return state, nil
}

// Logout discards the identity and immediately bootstraps a new one.
// There is no server-side sign-out: dropping the refresh token is an
// irreversible identity reset.
func (c *AuthController) Logout(ctx context.Context) (AuthState, error) {
	if err := c.store.Clear(); err != nil {
		return c.State(), err
	}

	c.mu.Lock()
	c.state = AuthState{Status: StatusUnauthenticated}
	c.mu.Unlock()

	return c.CheckAuth(ctx)
}

// Do runs an authenticated API call, refreshing the session token and
// retrying exactly once on a 401. If the refresh itself fails the
// controller drops to the Error state; a dead refresh token is also
// discarded from storage, so the next CheckAuth bootstraps a fresh
// identity rather than resurrecting it.
func (c *AuthController) Do(ctx context.Context, call func(sessionToken string) error) error {
	state, err := c.CheckAuth(ctx)
	if err != nil {
		return err
	}

	err = call(state.Result.SessionToken)
	if err == nil || !errors.Is(err, ErrUnauthorized) {
		return err
	}

	refreshed, err := c.refresh(ctx, state.Result.RefreshToken)
	if err != nil {
		return err
	}
	return call(refreshed.SessionToken)
}

func (c *AuthController) refresh(ctx context.Context, refreshToken string) (*core.AuthResult, error) {
	result, err := c.api.RefreshToken(ctx, refreshToken)
	if err != nil {
		// A dead credential is permanent identity loss: discard the
		// persisted tokens so the next bootstrap mints a brand-new
		// identity instead of reloading the same dead blob. Transient
		// transport failures keep the tokens; they may still work.
		if errors.Is(err, core.ErrUserNotFound) || errors.Is(err, core.ErrInvalidToken) {
			if clearErr := c.store.Clear(); clearErr != nil {
				err = fmt.Errorf("%w (clearing tokens: %v)", err, clearErr)
			}
		}
		c.mu.Lock()
		c.state = AuthState{Status: StatusError, Err: err}
		c.mu.Unlock()
		return nil, err
	}

	if err := c.store.Save(&result); err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.state = AuthState{Status: StatusAuthenticated, Result: &result}
	c.mu.Unlock()
	return &result, nil
}
