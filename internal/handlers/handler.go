package handlers

import (
	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"freeze_dryer/internal/logger"
	"freeze_dryer/internal/service"
)

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	log      *logger.Logger
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, log *logger.Logger) *Handler {
	return &Handler{services: services, log: log}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/health", h.health)

	h.registerAuthRoutes(router)
	h.registerAPIRoutes(router)

	// WebSocket streams share the HTTP port
	router.GET("/ws", h.wsConnect)
	router.GET("/ws/terminal", h.wsTerminal)

	return router
}

func (h *Handler) registerAuthRoutes(r *gin.Engine) {
	auth := r.Group("/auth")
	{
		auth.POST("/sign-up", h.signUp)
		auth.POST("/sign-in", h.signIn)
	}
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1", h.userIdMiddleware)
	{
		h.registerDryerRoutes(api)
		h.registerRecipeRoutes(api)
		h.registerBatchRoutes(api)
		h.registerLogRoutes(api)
		api.GET("/terminal", h.getTerminal)
	}
}

func (h *Handler) registerDryerRoutes(api *gin.RouterGroup) {
	dryer := api.Group("/dryer")
	{
		// Body example: {"type":"mock"}
		dryer.POST("/connect", h.connectDevice)
		dryer.POST("/disconnect", h.disconnectDevice)
		// Body example: {"recipe_id":"rec_default_1","quantity":1.5,"tray_type":"Perforated"}
		dryer.POST("/start", h.startProcess)
		dryer.POST("/pause", h.pauseProcess)
		dryer.POST("/resume", h.resumeProcess)
		dryer.POST("/stop", h.stopProcess)
		dryer.POST("/send", h.sendData)
		dryer.GET("/state", h.getState)
	}
}

func (h *Handler) registerRecipeRoutes(api *gin.RouterGroup) {
	recipes := api.Group("/recipes")
	{
		recipes.GET("", h.listRecipes)
		recipes.POST("", h.createRecipe)
		recipes.GET("/:id", h.getRecipe)
		recipes.DELETE("/:id", h.deleteRecipe)
	}
}

func (h *Handler) registerBatchRoutes(api *gin.RouterGroup) {
	batches := api.Group("/batches")
	{
		batches.GET("", h.listBatches)
		batches.GET("/:id", h.getBatch)
		batches.PATCH("/:id", h.setBatchResultNotes)
	}
}

func (h *Handler) registerLogRoutes(api *gin.RouterGroup) {
	logs := api.Group("/logs")
	{
		logs.GET("", h.getLogs)
	}
}
