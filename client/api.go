package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/samoylenkodmitry/shrtlin/core"
)

// ErrUnauthorized signals a 401 from an authenticated endpoint. The
// session controller reacts by refreshing once and retrying.
var ErrUnauthorized = errors.New("unauthorized")

// API is a thin typed wrapper around the server's HTTP contract.
type API struct {
	baseURL string
	http    *http.Client
}

// NewAPI creates an API client against baseURL.
func NewAPI(baseURL string) *API {
	return &API{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// GetChallenge fetches a fresh proof-of-work challenge.
func (a *API) GetChallenge(ctx context.Context) (core.Challenge, error) {
	var challenge core.Challenge
	err := a.do(ctx, http.MethodGet, "/pow/get", "", nil, &challenge)
	return challenge, err
}

// SubmitProof exchanges a solved challenge for tokens.
func (a *API) SubmitProof(ctx context.Context, proof core.ProofOfWork) (core.AuthResult, error) {
	var result core.AuthResult
	err := a.do(ctx, http.MethodPost, "/pow/post", "", proof, &result)
	return result, err
}

// RefreshToken exchanges a refresh token for a fresh session token.
func (a *API) RefreshToken(ctx context.Context, refreshToken string) (core.AuthResult, error) {
	var result core.AuthResult
	err := a.do(ctx, http.MethodPost, "/token/refresh", "",
		core.RefreshTokenRequest{RefreshToken: refreshToken}, &result)
	return result, err
}

// Shorten stores a new URL.
func (a *API) Shorten(ctx context.Context, sessionToken, url string) (core.UrlInfo, error) {
	var info core.UrlInfo
	err := a.do(ctx, http.MethodPost, "/shorten", sessionToken,
		core.ShortenRequest{URL: url}, &info)
	return info, err
}

// Urls lists one page of the user's links.
func (a *API) Urls(ctx context.Context, sessionToken string, page, pageSize int) (core.UrlsResponse, error) {
	var resp core.UrlsResponse
	err := a.do(ctx, http.MethodPost, "/urls", sessionToken,
		core.GetUrlsRequest{Page: page, PageSize: pageSize}, &resp)
	return resp, err
}

// RemoveURL deletes one of the user's links.
func (a *API) RemoveURL(ctx context.Context, sessionToken string, id int64) (bool, error) {
	var ok bool
	err := a.do(ctx, http.MethodPost, "/url/remove", sessionToken,
		core.RemoveUrlRequest{ID: id}, &ok)
	return ok, err
}

// UpdateNick renames the user.
func (a *API) UpdateNick(ctx context.Context, sessionToken, nick string) (bool, error) {
	var ok bool
	err := a.do(ctx, http.MethodPost, "/user/nick", sessionToken,
		core.UpdateNickRequest{Nick: nick}, &ok)
	return ok, err
}

// Clicks fetches bucketed click stats for a link.
func (a *API) Clicks(ctx context.Context, sessionToken string, urlID int64, period core.Period) (core.UrlStats, error) {
	var stats core.UrlStats
	err := a.do(ctx, http.MethodPost, "/url/clicks", sessionToken,
		core.GetClicksRequest{UrlID: urlID, Period: period}, &stats)
	return stats, err
}

func (a *API) do(ctx context.Context, method, path, sessionToken string, body, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, &buf)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if sessionToken != "" {
		req.Header.Set("Authorization", "Bearer "+sessionToken)
	}

	resp, err := a.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return a.mapError(path, resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func (a *API) mapError(path string, resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusConflict:
		return core.ErrUserExists
	case http.StatusNotFound:
		if path == "/token/refresh" {
			return core.ErrUserNotFound
		}
		return core.ErrURLNotFound
	case http.StatusBadRequest:
		if path == "/pow/post" {
			return core.ErrInvalidProofOfWork
		}
	}
	return fmt.Errorf("%s: status %d: %s", path, resp.StatusCode, strings.TrimSpace(string(raw)))
}
