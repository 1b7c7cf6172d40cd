package routes

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"esfilter/docs"
	"esfilter/internal/config"
	"esfilter/internal/middleware"
	"esfilter/internal/service/documents"
	"esfilter/internal/service/healthcheck"
)

// InitiateRoutes is a function that initializes the routes for the application
func InitiateRoutes(engine *gin.Engine, cfg *config.App) {

	docs.SwaggerInfo.Version = cfg.Settings.ServiceVersion
	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	healthGroup := engine.Group("/healthcheck")
	{
		healthGroup.GET("/", healthcheck.Health(cfg))
	}

	if cfg.Metrics != nil {
		engine.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	indicesGroup := engine.Group("/indices/:index")
	{
		indicesGroup.POST("/_search", documents.Search(cfg))
		indicesGroup.GET("/_search", documents.SearchQuery(cfg))

		// writes require a bearer token
		indicesGroup.PUT("/_doc/:id", middleware.Auth(cfg.Settings.JWTSecret), documents.IndexDocument(cfg))
	}
}
