package http

import (
	"github.com/gin-gonic/gin"

	"netauto/internal/bootstrap"
	"netauto/internal/model"
	"netauto/internal/transport/http/handler"
	"netauto/internal/transport/http/middleware"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(middleware.RequestLogger(app.Logger), gin.Recovery())
	router.MaxMultipartMemory = app.Config.Upload.MaxFileSize

	svc := app.Services
	healthHandler := handler.NewHealthHandler(app)
	authHandler := handler.NewAuthHandler(svc.Auth)
	chatHandler := handler.NewChatHandler(svc.Chat)
	ragHandler := handler.NewRAGHandler(svc.RAG)
	documentHandler := handler.NewDocumentHandler(svc.Documents, app.VectorStore)
	deviceHandler := handler.NewDeviceHandler(svc.Devices)
	networkHandler := handler.NewNetworkHandler(svc.Network)
	aiHandler := handler.NewAIHandler(svc.Assistant)
	statsHandler := handler.NewStatsHandler(svc.Stats)
	pluginHandler := handler.NewPluginHandler(app.Plugins)

	router.GET("/healthz", healthHandler.Check)

	authRequired := middleware.Passthrough()
	if app.Config.Auth.Enabled {
		authRequired = middleware.AuthJWT(app.Config.Auth.JWTSecret)
	}
	adminOnly := middleware.RequireRole(model.RoleAdmin)
	writers := middleware.RequireRole(model.RoleAdmin, model.RoleOperator)

	v1 := router.Group("/api/v1")
	v1.GET("/health", healthHandler.Basic)

	authGroup := v1.Group("/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)
	authGroup.GET("/me", middleware.AuthJWT(app.Config.Auth.JWTSecret), authHandler.Me)

	api := v1.Group("")
	api.Use(authRequired)
	api.GET("/stats", statsHandler.Dashboard)

	devices := api.Group("/devices")
	devices.GET("", deviceHandler.List)
	devices.POST("", writers, deviceHandler.Create)
	devices.GET("/:id", deviceHandler.Get)
	devices.PUT("/:id", writers, deviceHandler.Update)
	devices.DELETE("/:id", writers, deviceHandler.Delete)

	chat := api.Group("/chat")
	chat.POST("/message", chatHandler.SendMessage)
	chat.GET("/history/:session_id", chatHandler.GetHistory)
	chat.GET("/sessions", chatHandler.ListSessions)

	network := api.Group("/network")
	network.POST("/discover", writers, networkHandler.Discover)
	network.POST("/audit", writers, networkHandler.Audit)
	network.GET("/audits", networkHandler.ListAudits)
	network.GET("/topology", networkHandler.Topology)
	network.POST("/validate", networkHandler.Validate)
	network.GET("/device-types", networkHandler.DeviceTypes)

	ollama := api.Group("/ollama")
	ollama.GET("/health", aiHandler.OllamaHealth)
	ollama.GET("/models", aiHandler.OllamaModels)

	assistant := api.Group("/ai")
	assistant.POST("/analyze-config", aiHandler.AnalyzeConfig)
	assistant.POST("/generate-commands", aiHandler.GenerateCommands)
	assistant.POST("/troubleshoot", aiHandler.Troubleshoot)

	vectors := api.Group("/vectorstore")
	vectors.GET("/health", documentHandler.VectorHealth)
	vectors.GET("/stats", documentHandler.VectorStats)
	vectors.POST("/reset", adminOnly, documentHandler.VectorReset)

	documents := api.Group("/documents")
	documents.GET("", documentHandler.List)
	documents.POST("/add", writers, documentHandler.Add)
	documents.POST("/search", documentHandler.Search)
	documents.POST("/upload", writers, documentHandler.Upload)
	documents.POST("/scrape", writers, documentHandler.Scrape)
	documents.GET("/vectors/:id", documentHandler.GetVector)
	documents.PUT("/vectors/:id", writers, documentHandler.UpdateVector)
	documents.DELETE("/:id", writers, documentHandler.Delete)

	api.POST("/rag/query", ragHandler.Query)

	api.GET("/plugins", pluginHandler.List)
	app.Plugins.Mount(api)

	return router
}
