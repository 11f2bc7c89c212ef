package api

import (
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/imoview/realty-crm/internal/api/handler"
	"github.com/imoview/realty-crm/internal/api/middleware"
	"github.com/imoview/realty-crm/internal/core/store"
)

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(st *store.Store, db *mongo.Database, rdb *redis.Client, jwtSecret string, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())

	// --- Dependencies ---
	authHandler := handler.NewAuthHandler(st, jwtSecret)
	userHandler := handler.NewUserHandler(st)
	propertyHandler := handler.NewPropertyHandler(st)
	clientHandler := handler.NewClientHandler(st)
	pipelineHandler := handler.NewPipelineHandler(st)
	logHandler := handler.NewLogHandler(st)
	settingsHandler := handler.NewSettingsHandler(st)
	noticeHandler := handler.NewNotificationHandler(st)

	auth := middleware.Auth(jwtSecret)
	staff := echo.MiddlewareFunc(middleware.RequireStaff)
	admin := echo.MiddlewareFunc(middleware.RequireAdmin)

	// --- Auth routes ---
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/logout", authHandler.Logout, auth)

	api := e.Group("/api", auth)

	// --- Users (admin only) ---
	users := api.Group("/users")
	users.GET("", userHandler.List)
	users.GET("/performance", userHandler.Performance, staff)
	users.POST("", userHandler.Create, admin)
	users.PUT("/:id", userHandler.Update, admin)
	users.PUT("/:id/blocked", userHandler.SetBlocked, admin)
	users.DELETE("/:id", userHandler.Delete, admin)

	// --- Properties ---
	properties := api.Group("/properties")
	properties.GET("", propertyHandler.List)
	properties.GET("/:id", propertyHandler.Get)
	properties.POST("", propertyHandler.Create)
	properties.PUT("/:id", propertyHandler.Update)
	properties.DELETE("/:id", propertyHandler.Delete)
	properties.POST("/:id/submit", propertyHandler.Submit)
	properties.POST("/:id/approve", propertyHandler.Approve, staff)
	properties.POST("/:id/reject", propertyHandler.Reject, staff)
	properties.POST("/:id/status", propertyHandler.ChangeStatus, staff)
	properties.POST("/:id/describe", propertyHandler.Describe)

	// --- Clients / leads ---
	clients := api.Group("/clients")
	clients.GET("", clientHandler.List)
	clients.GET("/aging", clientHandler.Aging)
	clients.GET("/:id", clientHandler.Get)
	clients.GET("/:id/match", clientHandler.MatchScore)
	clients.POST("", clientHandler.Create)
	clients.PUT("/:id", clientHandler.Update)
	clients.DELETE("/:id", clientHandler.Delete)
	clients.POST("/:id/family", clientHandler.AddFamilyMember)
	clients.POST("/:id/lost", clientHandler.MarkLost)
	clients.POST("/:id/stage", clientHandler.MoveStage)
	clients.POST("/:id/touch", clientHandler.Touch)
	clients.POST("/:id/visits", clientHandler.ScheduleVisit)
	clients.PUT("/:id/visits/:visitId", clientHandler.UpdateVisit)
	clients.DELETE("/:id/visits/:visitId", clientHandler.CancelVisit)

	// --- Pipelines ---
	pipelines := api.Group("/pipelines")
	pipelines.GET("", pipelineHandler.List)
	pipelines.GET("/:id", pipelineHandler.Get)
	pipelines.GET("/:id/leads", pipelineHandler.Leads)
	pipelines.POST("", pipelineHandler.Create, staff)
	pipelines.PUT("/:id", pipelineHandler.Update, staff)
	pipelines.PUT("/:id/default", pipelineHandler.SetDefault, staff)
	pipelines.DELETE("/:id", pipelineHandler.Delete, staff)

	// --- Audit log ---
	logs := api.Group("/logs")
	logs.GET("", logHandler.List)
	logs.GET("/:id", logHandler.Get)
	logs.POST("/:id/restore", logHandler.Restore, staff)

	// --- Settings singleton (admin only) ---
	api.GET("/settings", settingsHandler.Get)
	api.PUT("/settings", settingsHandler.Update, admin)

	// --- Notifications ---
	api.GET("/notifications", noticeHandler.List)
	api.DELETE("/notifications/:id", noticeHandler.Dismiss)

	// --- Observability ---
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	return e
}
