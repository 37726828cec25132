package main

import (
	"context"
	"net/http"
	"time"

	"bookquote-backend/internal/shared/middleware"
	"bookquote-backend/pkg/container"

	"github.com/gin-gonic/gin"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.CORS(),
	)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheckHandler(c))

		setupImportRoutes(v1, c)
		setupBookRoutes(v1, c)
	}

	return router
}

// ========================================
// IMPORT ROUTES
// ========================================
func setupImportRoutes(v1 *gin.RouterGroup, c *container.Container) {
	imports := v1.Group("/imports")
	imports.Use(middleware.AuthMiddleware(c.Config.JWT.Secret))
	{
		imports.POST("", c.ImportHandler.RunImport)
		imports.POST("/validate", c.ImportHandler.ValidateUpload)
		imports.GET("/artifacts/*key", c.ImportHandler.DownloadArtifact)
	}

	templates := v1.Group("/import-templates")
	templates.Use(middleware.AuthMiddleware(c.Config.JWT.Secret))
	{
		templates.POST("", c.TemplateHandler.CreateTemplate)
		templates.GET("", c.TemplateHandler.ListTemplates)
		templates.GET("/:id", c.TemplateHandler.GetTemplate)
		templates.DELETE("/:id", c.TemplateHandler.DeleteTemplate)
	}
}

// ========================================
// BOOK ROUTES
// ========================================
func setupBookRoutes(v1 *gin.RouterGroup, c *container.Container) {
	books := v1.Group("/books")
	books.Use(middleware.AuthMiddleware(c.Config.JWT.Secret))
	{
		books.GET("/lookup", c.BookHandler.LookupByISBN)
		books.GET("/:id", c.BookHandler.GetBook)
		books.GET("/:id/pricing", c.BookHandler.ListPricing)
	}
}

func healthCheckHandler(c *container.Container) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		checkCtx, cancel := context.WithTimeout(ctx.Request.Context(), 5*time.Second)
		defer cancel()

		status := http.StatusOK
		checks := gin.H{"database": "ok", "cache": "ok"}

		if err := c.DB.HealthCheck(checkCtx); err != nil {
			checks["database"] = err.Error()
			status = http.StatusServiceUnavailable
		}
		if err := c.Cache.Ping(checkCtx); err != nil {
			checks["cache"] = err.Error()
			status = http.StatusServiceUnavailable
		}

		ctx.JSON(status, gin.H{
			"status":  statusLabel(status),
			"version": c.Config.App.Version,
			"checks":  checks,
		})
	}
}

func statusLabel(status int) string {
	if status == http.StatusOK {
		return "healthy"
	}
	return "degraded"
}
