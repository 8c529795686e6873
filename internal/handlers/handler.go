package handlers

import (
	"github.com/khanbasharat3a1/motor-monitor/internal/logger"
	"github.com/khanbasharat3a1/motor-monitor/internal/service"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	hub      *Hub
	log      *logger.Logger
}

// NewHandler constructs a new HTTP handler with dependencies. hub may be nil
// when WebSocket broadcasting is disabled.
func NewHandler(services *service.Service, hub *Hub, log *logger.Logger) *Handler {
	return &Handler{services: services, hub: hub, log: log}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Liveness endpoint
	router.GET("/health", h.health)

	// Versioned API endpoints
	h.registerAPIRoutes(router)

	// WebSocket connection (HTTP upgrade) on the same port
	router.GET("/ws", h.wsConnect)

	return router
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")
	{
		h.registerReadingRoutes(api)
		h.registerHealthRoutes(api)
		h.registerAlertRoutes(api)
		h.registerLogRoutes(api)
	}
}

func (h *Handler) registerReadingRoutes(api *gin.RouterGroup) {
	readings := api.Group("/readings")
	{
		// Body example: {"current":6.2,"voltage":24.1,"rpm":2740}
		readings.POST("/:source", h.postReading)
	}
	api.GET("/sources", h.getSources)
}

func (h *Handler) registerHealthRoutes(api *gin.RouterGroup) {
	health := api.Group("/motor-health")
	{
		health.GET("/latest", h.getLatestHealth)
		health.POST("/evaluate", h.evaluateNow)
	}
}

func (h *Handler) registerAlertRoutes(api *gin.RouterGroup) {
	alerts := api.Group("/alerts")
	{
		alerts.GET("/", h.getAlerts)
		alerts.POST("/:id/acknowledge", h.acknowledgeAlert)
	}
}

func (h *Handler) registerLogRoutes(api *gin.RouterGroup) {
	logs := api.Group("/logs")
	{
		logs.GET("/", h.getLogs)
	}
}
