package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mentorhub-notify/internal/gateway"
	"mentorhub-notify/internal/handler/api"
	"mentorhub-notify/internal/handler/middleware"
	"mentorhub-notify/internal/pkg/config"
)

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
}

func NewRouter(engine *gin.Engine, cfg config.Config, notificationHandler *api.NotificationHandler, gw *gateway.Gateway) {
	setupMiddleware(engine, cfg)
	setupRoutes(engine, notificationHandler, gw)
}

func setupMiddleware(engine *gin.Engine, cfg config.Config) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery())
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS))
	engine.Use(middleware.LoggingMiddleware(cfg.Log))
	engine.Use(middleware.ErrorHandler())
}

func setupRoutes(engine *gin.Engine, notificationHandler *api.NotificationHandler, gw *gateway.Gateway) {
	engine.GET("/health", healthCheck)
	engine.GET("/ws/notifications", gw.Handle)

	apiGroup := engine.Group("/api")
	{
		notifications := apiGroup.Group("/notifications")
		{
			addRoutes(notifications, []route{
				{Method: http.MethodPost, Path: "", Handler: notificationHandler.Enqueue},
				{Method: http.MethodPost, Path: "/bulk", Handler: notificationHandler.EnqueueBulk},
				{Method: http.MethodPost, Path: "/schedule", Handler: notificationHandler.Schedule},
			})
		}

		scheduling := apiGroup.Group("/scheduling")
		{
			addRoutes(scheduling, []route{
				{Method: http.MethodPost, Path: "", Handler: notificationHandler.EnqueueScheduledAction},
			})
		}
	}
}

func addRoutes(group *gin.RouterGroup, routes []route) {
	for _, r := range routes {
		group.Handle(r.Method, r.Path, r.Handler)
	}
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Service is healthy",
	})
}
