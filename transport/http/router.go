// Package http exposes the service over a gin router.
package http

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/samoylenkodmitry/shrtlin/service"
)

// SetupRouter sets up the Gin router. ping feeds the health endpoint
// and may be nil.
func SetupRouter(authService *service.AuthService, urlService *service.URLService, ping func(ctx context.Context) error) *gin.Engine {
	router := gin.Default()

	handlers := NewHandlers(authService, urlService, ping)

	router.GET("/healthz", handlers.Health)

	// Proof-of-work registration and token refresh are open routes.
	pow := router.Group("/pow")
	{
		pow.GET("/get", handlers.Challenge)
		pow.POST("/post", handlers.Register)
	}
	router.POST("/token/refresh", handlers.Refresh)

	// Everything operating on a user's data requires a session token.
	api := router.Group("/")
	api.Use(AuthMiddleware(authService))
	{
		api.POST("/shorten", handlers.Shorten)
		api.POST("/urls", handlers.Urls)
		api.POST("/url/remove", handlers.RemoveUrl)
		api.POST("/url/clicks", handlers.Clicks)
		api.POST("/user/nick", handlers.UpdateNick)
	}

	// Public redirects sit at the root so short links stay short.
	router.GET("/:code", handlers.Redirect)
	router.GET("/:code/qr", handlers.RedirectQr)

	return router
}
