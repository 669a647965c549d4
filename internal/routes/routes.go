package routes

import (
	"todo-tracker-api/internal/config"
	"todo-tracker-api/internal/discord"
	"todo-tracker-api/internal/handlers"
	"todo-tracker-api/internal/middleware"
	"todo-tracker-api/internal/notify"
	"todo-tracker-api/internal/realtime"
	"todo-tracker-api/internal/resolver"

	"github.com/gin-gonic/gin"
)

// Deps carries everything the route tree needs. The composition root builds
// it once; nothing here reaches for globals besides the database handle.
type Deps struct {
	Cfg      config.Config
	Resolver *resolver.Resolver
	Discord  *discord.Client
	Notifier notify.Dispatcher
	Hub      *realtime.Hub
}

func SetupRoutes(deps Deps) *gin.Engine {
	// Create a new GIN Router
	ginRouter := gin.Default()

	// CORS middleware (for frontend integration)
	ginRouter.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204) // This depends on the implementation of the frontend
			return
		}

		c.Next()
	})

	ginRouter.Use(middleware.RateLimiter(deps.Cfg.GlobalRateLimit, deps.Cfg.GlobalRateWindow))

	// Health check endpoint
	ginRouter.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	authHandler := &handlers.AuthHandler{Cfg: deps.Cfg, Discord: deps.Discord}
	taskHandler := &handlers.TaskHandler{Resolver: deps.Resolver, Notifier: deps.Notifier}
	groupHandler := &handlers.GroupHandler{Discord: deps.Discord}
	userHandler := &handlers.UserHandler{Discord: deps.Discord}
	exportHandler := &handlers.ExportHandler{Resolver: deps.Resolver}
	wsHandler := &handlers.WSHandler{Hub: deps.Hub}

	api := ginRouter.Group("/api")

	// Public auth routes, behind the stricter auth rate limit
	authRoutes := api.Group("/auth")
	authRoutes.Use(middleware.RateLimiter(deps.Cfg.AuthRateLimit, deps.Cfg.AuthRateWindow))
	{
		authRoutes.GET("/config", authHandler.Config)
		authRoutes.POST("/login/password", authHandler.PasswordLogin)
		authRoutes.GET("/discord", authHandler.DiscordAuthURL)
		authRoutes.POST("/discord/callback", authHandler.DiscordCallback)
	}

	// Protected routes (valid session required)
	protectedRoutes := api.Group("")
	protectedRoutes.Use(middleware.SessionAuth(deps.Discord))
	{
		protectedRoutes.GET("/auth/session", authHandler.Session)
		protectedRoutes.POST("/auth/logout", authHandler.Logout)

		// Task endpoints
		protectedRoutes.GET("/tasks", taskHandler.List)
		protectedRoutes.GET("/tasks/my", taskHandler.Mine)
		protectedRoutes.GET("/tasks/stats", taskHandler.Stats)
		protectedRoutes.GET("/tasks/:id", taskHandler.Get)
		protectedRoutes.POST("/tasks", taskHandler.Create)
		protectedRoutes.PUT("/tasks/:id", taskHandler.Update)
		protectedRoutes.DELETE("/tasks/:id", taskHandler.Delete)
		protectedRoutes.POST("/tasks/:id/comments", taskHandler.AddComment)

		// Group endpoints
		protectedRoutes.GET("/groups", groupHandler.List)
		protectedRoutes.GET("/groups/:id", groupHandler.Get)
		protectedRoutes.POST("/groups", groupHandler.Create)
		protectedRoutes.PUT("/groups/:id", groupHandler.Update)
		protectedRoutes.DELETE("/groups/:id", groupHandler.Delete)
		protectedRoutes.POST("/groups/:id/members", groupHandler.AddMember)
		protectedRoutes.DELETE("/groups/:id/members/:userId", groupHandler.RemoveMember)

		// User endpoints
		protectedRoutes.GET("/users", userHandler.List)
		protectedRoutes.GET("/users/:id", userHandler.Get)
		protectedRoutes.GET("/users/discord/:discordId", userHandler.GetByDiscordID)

		// Export endpoints
		protectedRoutes.GET("/export/txt", exportHandler.Text)
		protectedRoutes.GET("/export/csv", exportHandler.CSV)
		protectedRoutes.GET("/export/json", exportHandler.JSON)
		protectedRoutes.POST("/export/import", exportHandler.Import)

		// Realtime events
		protectedRoutes.GET("/ws", wsHandler.Serve)
	}

	return ginRouter
}
