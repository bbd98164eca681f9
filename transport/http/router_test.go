package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samoylenkodmitry/shrtlin/adapters/clicks"
	"github.com/samoylenkodmitry/shrtlin/adapters/events"
	"github.com/samoylenkodmitry/shrtlin/adapters/store"
	"github.com/samoylenkodmitry/shrtlin/adapters/tokenizer"
	"github.com/samoylenkodmitry/shrtlin/core"
	"github.com/samoylenkodmitry/shrtlin/internal/observability"
	"github.com/samoylenkodmitry/shrtlin/pow"
	"github.com/samoylenkodmitry/shrtlin/service"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	key, err := tokenizer.GenerateKey()
	require.NoError(t, err)
	tk := tokenizer.NewJWTTokenizer(tokenizer.Config{
		SignKey:      key,
		Issuer:       "shrtl.in",
		Audience:     "in.shrtl.app",
		ChallengeTTL: time.Minute,
		SessionTTL:   24 * time.Hour,
	})

	logger := observability.NewLogger()
	authService := service.NewAuthService(
		tk,
		store.NewMemoryUserRepository(),
		store.NewMemoryGuard(),
		events.NopPublisher{},
		logger,
		"0",
	)
	urlService := service.NewURLService(
		store.NewMemoryURLRepository(),
		clicks.NewMemoryClickStore(),
		logger,
		"https://shrtl.in",
	)

	return SetupRouter(authService, urlService, nil)
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func register(t *testing.T, router *gin.Engine) core.AuthResult {
	t.Helper()

	w := doJSON(t, router, http.MethodGet, "/pow/get", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var challenge core.Challenge
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &challenge))
	require.NotEmpty(t, challenge.Challenge)
	require.Equal(t, "0", challenge.Prefix)

	proof, err := pow.Solve(context.Background(), challenge.Challenge, challenge.Prefix)
	require.NoError(t, err)

	w = doJSON(t, router, http.MethodPost, "/pow/post", "", proof)
	require.Equal(t, http.StatusCreated, w.Code)

	var result core.AuthResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	require.NotEmpty(t, result.SessionToken)
	require.NotEmpty(t, result.RefreshToken)
	return result
}

func TestRegistrationFlow(t *testing.T) {
	router := newTestRouter(t)
	result := register(t, router)
	assert.Positive(t, result.User.ID)
	assert.NotEmpty(t, result.User.Nick)
}

func TestRegisterRejectsBadProof(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/pow/post", "", core.ProofOfWork{
		Challenge: "bogus",
		Solution:  "bogus:1",
		Prefix:    "0",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid Proof of Work Solution")
}

func TestRegisterRejectsReplay(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/pow/get", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var challenge core.Challenge
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &challenge))

	proof, err := pow.Solve(context.Background(), challenge.Challenge, challenge.Prefix)
	require.NoError(t, err)

	w = doJSON(t, router, http.MethodPost, "/pow/post", "", proof)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, router, http.MethodPost, "/pow/post", "", proof)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "User already exists")
}

func TestRefreshFlow(t *testing.T) {
	router := newTestRouter(t)
	result := register(t, router)

	w := doJSON(t, router, http.MethodPost, "/token/refresh", "",
		core.RefreshTokenRequest{RefreshToken: result.RefreshToken})
	require.Equal(t, http.StatusCreated, w.Code)

	var refreshed core.AuthResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &refreshed))
	assert.Equal(t, result.RefreshToken, refreshed.RefreshToken)
	assert.Equal(t, result.User, refreshed.User)

	// Invalid token and unknown user are indistinguishable to callers.
	w = doJSON(t, router, http.MethodPost, "/token/refresh", "",
		core.RefreshTokenRequest{RefreshToken: "garbage"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "User Not Found")
}

func TestAuthRequired(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/shorten", "", core.ShortenRequest{URL: "example.com"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Token is not valid or expired")

	w = doJSON(t, router, http.MethodPost, "/shorten", "definitely-not-a-jwt", core.ShortenRequest{URL: "example.com"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestShortenListRemove(t *testing.T) {
	router := newTestRouter(t)
	result := register(t, router)
	token := result.SessionToken

	w := doJSON(t, router, http.MethodPost, "/shorten", token, core.ShortenRequest{URL: "https://example.com/page"})
	require.Equal(t, http.StatusCreated, w.Code)

	var info core.UrlInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))
	assert.Equal(t, "example.com/page", info.OriginalURL)
	assert.Contains(t, info.ShortURL, "https://shrtl.in/")

	w = doJSON(t, router, http.MethodPost, "/urls", token, core.GetUrlsRequest{Page: 1, PageSize: 10})
	require.Equal(t, http.StatusOK, w.Code)

	var list core.UrlsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Urls, 1)
	assert.Equal(t, 1, list.TotalPages)

	w = doJSON(t, router, http.MethodPost, "/url/remove", token, core.RemoveUrlRequest{ID: info.ID})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "true", w.Body.String())

	w = doJSON(t, router, http.MethodPost, "/urls", token, core.GetUrlsRequest{Page: 1, PageSize: 10})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Empty(t, list.Urls)
}

func TestRedirectCountsClicks(t *testing.T) {
	router := newTestRouter(t)
	result := register(t, router)
	token := result.SessionToken

	w := doJSON(t, router, http.MethodPost, "/shorten", token, core.ShortenRequest{URL: "example.com"})
	require.Equal(t, http.StatusCreated, w.Code)
	var info core.UrlInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))

	code := core.EncodeID(info.ID)

	w = doJSON(t, router, http.MethodGet, "/"+code, "", nil)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "http://example.com", w.Header().Get("Location"))

	w = doJSON(t, router, http.MethodGet, "/"+code+"/qr", "", nil)
	require.Equal(t, http.StatusFound, w.Code)

	w = doJSON(t, router, http.MethodGet, "/nonexistent", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, router, http.MethodPost, "/url/clicks", token, core.GetClicksRequest{UrlID: info.ID, Period: core.PeriodDay})
	require.Equal(t, http.StatusOK, w.Code)

	var stats core.UrlStats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	total := 0
	for _, n := range stats.Clicks {
		total += n
	}
	assert.Equal(t, 2, total)
}

func TestUpdateNick(t *testing.T) {
	router := newTestRouter(t)
	result := register(t, router)

	w := doJSON(t, router, http.MethodPost, "/user/nick", result.SessionToken, core.UpdateNickRequest{Nick: "fancy"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "true", w.Body.String())

	w = doJSON(t, router, http.MethodPost, "/token/refresh", "",
		core.RefreshTokenRequest{RefreshToken: result.RefreshToken})
	require.Equal(t, http.StatusCreated, w.Code)

	var refreshed core.AuthResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &refreshed))
	assert.Equal(t, "fancy", refreshed.User.Nick)
}

func TestHealthz(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
