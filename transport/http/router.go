package http

import (
	"github.com/gin-gonic/gin"
	"github.com/layer-3/webauth/adapters/toml"
)

// SetupRouter sets up the Gin router
func SetupRouter(server *Server) *gin.Engine {
	router := gin.Default()

	handlers := NewAuthHandlers(server)

	router.GET(toml.WellKnownPath, handlers.StellarTOML)

	auth := router.Group("/auth")
	{
		auth.GET("", handlers.Challenge)
		auth.POST("", handlers.Token)
	}

	if server.cfg.DomainSigningKey != nil {
		router.POST("/sign", handlers.SignClientDomain)
	}

	// Protected API routes
	api := router.Group("/api")
	api.Use(AuthMiddleware(server.cfg.Tokenizer))
	{
		api.GET("/me", handlers.Me)
	}

	return router
}
