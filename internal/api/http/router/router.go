package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/avrorin/identity-server/internal/api/http/handler"
	"github.com/avrorin/identity-server/internal/api/http/middleware"
	"github.com/avrorin/identity-server/internal/logger"
)

// Router wires authentication handlers and middleware into a gin engine.
type Router struct {
	authHandler *handler.Auth
	logger      *logger.Logger
}

// New creates a new Router instance.
func New(authHandler *handler.Auth, logger *logger.Logger) *Router {
	return &Router{
		authHandler: authHandler,
		logger:      logger,
	}
}

// Register builds the gin engine with all routes and middleware attached.
func (r *Router) Register() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	engine.Use(middleware.Logging(r.logger), gin.Recovery())

	api := engine.Group("/api")
	{
		api.POST("/register", r.authHandler.Register)
		api.POST("/login", r.authHandler.Login)

		authenticated := api.Group("", middleware.RequireBearer())
		{
			authenticated.GET("/profile", r.authHandler.Profile)
			authenticated.POST("/refresh", r.authHandler.RefreshToken)
			authenticated.POST("/logout", r.authHandler.Logout)
			authenticated.POST("/logout-all", r.authHandler.LogoutAll)
		}
	}

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return engine
}
