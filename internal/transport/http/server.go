package http

import (
	"github.com/gin-gonic/gin"

	"multimodal-knowledge-assistant/internal/bootstrap"
	"multimodal-knowledge-assistant/internal/transport/http/handler"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	healthHandler := handler.NewHealthHandler(app)
	router.GET("/healthz", healthHandler.Check)

	documentHandler := handler.NewDocumentHandler(app.Ingest)
	queryHandler := handler.NewQueryHandler(app.Query)

	v1 := router.Group("/api/v1")
	v1.POST("/documents", documentHandler.Upload)
	v1.POST("/documents/text", documentHandler.IngestText)
	v1.GET("/documents", documentHandler.List)
	v1.DELETE("/documents/:doc_id", documentHandler.Delete)
	v1.POST("/query", queryHandler.Ask)

	return router
}
