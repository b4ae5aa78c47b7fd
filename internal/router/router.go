package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "reportingest/docs"
	"reportingest/internal/handler"
	"reportingest/internal/middleware"
)

// Handlers groups every HTTP handler mounted by Setup.
type Handlers struct {
	Health *handler.HealthHandler
	Proxy  *handler.ProxyHandler
	Event  *handler.EventHandler
	Report *handler.ReportHandler
	Upload *handler.UploadHandler
}

// Setup configures the Gin engine with all routes and middleware.
func Setup(h Handlers, tokens *middleware.TokenValidator, allowedOrigins []string, log *zap.Logger) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(log))
	r.Use(middleware.CORS(allowedOrigins))

	// Health checks
	r.GET("/healthz", h.Health.Liveness)
	r.GET("/readyz", h.Health.Readiness)

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// The proxy always answers with a wildcard origin and stays public so <img> tags work.
	r.GET("/imageProxy", h.Proxy.Image)

	events := r.Group("/events")
	events.Use(middleware.BearerAuth(tokens))
	events.POST("/storage", h.Event.Storage)

	v1 := r.Group("/api/v1")
	v1.Use(middleware.BearerAuth(tokens))

	reports := v1.Group("/reports")
	reports.GET("", h.Report.List)
	reports.GET("/export", h.Report.Export)
	reports.GET("/:id", h.Report.GetByID)

	v1.GET("/scans", h.Report.ListScans)
	v1.POST("/uploads", h.Upload.Upload)

	return r
}
