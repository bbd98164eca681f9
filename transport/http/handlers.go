package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"

	"github.com/samoylenkodmitry/shrtlin/core"
	"github.com/samoylenkodmitry/shrtlin/service"
)

// Handlers contains the HTTP handlers for all endpoints.
type Handlers struct {
	authService *service.AuthService
	urlService  *service.URLService
	ping        func(ctx context.Context) error
}

// NewHandlers creates the handler set. ping probes the backing store
// for the health endpoint and may be nil.
func NewHandlers(authService *service.AuthService, urlService *service.URLService, ping func(ctx context.Context) error) *Handlers {
	return &Handlers{
		authService: authService,
		urlService:  urlService,
		ping:        ping,
	}
}

// Challenge hands out a fresh proof-of-work challenge.
func (h *Handlers) Challenge(c *gin.Context) {
	challenge, err := h.authService.Challenge()
	if err != nil {
		h.serverError(c, err)
		return
	}

	c.JSON(http.StatusOK, challenge)
}

// Register exchanges a solved challenge for an identity and tokens.
func (h *Handlers) Register(c *gin.Context) {
	var req core.ProofOfWork
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	result, err := h.authService.Register(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrInvalidProofOfWork):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid Proof of Work Solution"})
		case errors.Is(err, core.ErrUserExists):
			c.JSON(http.StatusConflict, gin.H{"error": "User already exists"})
		default:
			h.serverError(c, err)
		}
		return
	}

	c.JSON(http.StatusCreated, result)
}

// Refresh exchanges a refresh token for a fresh session token.
func (h *Handlers) Refresh(c *gin.Context) {
	var req core.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	result, err := h.authService.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		switch {
		// A bad token and a vanished user collapse to one answer; the
		// caller learns nothing beyond "this credential is dead".
		case errors.Is(err, core.ErrInvalidToken), errors.Is(err, core.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "User Not Found"})
		default:
			h.serverError(c, err)
		}
		return
	}

	c.JSON(http.StatusCreated, result)
}

// Shorten stores a new URL for the authenticated user.
func (h *Handlers) Shorten(c *gin.Context) {
	var req core.ShortenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	info, err := h.urlService.Shorten(c.Request.Context(), currentUserID(c), req.URL)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	c.JSON(http.StatusCreated, info)
}

// Urls returns one page of the user's links.
func (h *Handlers) Urls(c *gin.Context) {
	var req core.GetUrlsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	resp, err := h.urlService.List(c.Request.Context(), currentUserID(c), req.Page, req.PageSize)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid pagination parameters"})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// RemoveUrl deletes one of the user's links.
func (h *Handlers) RemoveUrl(c *gin.Context) {
	var req core.RemoveUrlRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	ok, err := h.urlService.Remove(c.Request.Context(), currentUserID(c), req.ID)
	if err != nil {
		h.serverError(c, err)
		return
	}

	c.JSON(http.StatusOK, ok)
}

// UpdateNick renames the authenticated user.
func (h *Handlers) UpdateNick(c *gin.Context) {
	var req core.UpdateNickRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	ok, err := h.authService.UpdateNick(c.Request.Context(), currentUserID(c), req.Nick)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	c.JSON(http.StatusOK, ok)
}

// Clicks returns bucketed click stats for a link.
func (h *Handlers) Clicks(c *gin.Context) {
	var req core.GetClicksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	stats, err := h.urlService.Stats(c.Request.Context(), req.UrlID, req.Period)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// Redirect resolves a short code and sends the visitor on.
func (h *Handlers) Redirect(c *gin.Context) {
	h.redirect(c, false)
}

// RedirectQr is the QR variant of Redirect, counted separately.
func (h *Handlers) RedirectQr(c *gin.Context) {
	h.redirect(c, true)
}

func (h *Handlers) redirect(c *gin.Context, qr bool) {
	target, err := h.urlService.Resolve(c.Request.Context(), c.Param("code"), qr)
	if err != nil {
		if errors.Is(err, core.ErrURLNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "URL Not Found"})
			return
		}
		h.serverError(c, err)
		return
	}

	c.Redirect(http.StatusFound, target)
}

// Health reports liveness, degraded when the backing store is down.
func (h *Handlers) Health(c *gin.Context) {
	if h.ping != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handlers) serverError(c *gin.Context, err error) {
	sentry.CaptureException(err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}
