package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/question-import-service/internal/services"
	"github.com/SAP-F-2025/question-import-service/internal/utils"
	"github.com/SAP-F-2025/question-import-service/internal/validator"
	"github.com/gin-gonic/gin"
)

type HandlerManager struct {
	importHandler *ImportHandler
}

func NewHandlerManager(
	importService services.ImportService,
	validator *validator.Validator,
	logger utils.Logger,
	maxUploadBytes int64,
) *HandlerManager {
	return &HandlerManager{
		importHandler: NewImportHandler(importService, validator, logger, maxUploadBytes),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Question import routes
		imports := v1.Group("/questions/import")
		{
			imports.POST("", hm.importHandler.ImportQuestions)
			imports.POST("/inspect", hm.importHandler.InspectFile)
			imports.GET("/template", hm.importHandler.DownloadTemplate)
		}

		// Import job routes
		jobs := v1.Group("/imports")
		{
			jobs.GET("", hm.importHandler.ListImportJobs)
			jobs.GET("/:id", hm.importHandler.GetImportJob)
			jobs.GET("/:id/progress", hm.importHandler.GetImportProgress)
		}
	}
}

// NewRouter builds the gin engine with the request middleware chain.
func NewRouter(hm *HandlerManager, logger utils.Logger) *gin.Engine {
	router := gin.New()
	router.Use(
		gin.Recovery(),
		utils.RequestID(),
		utils.UserContext(),
		utils.ContextLogger(logger),
		utils.LoggerMiddleware(logger),
	)
	hm.SetupRoutes(router)
	return router
}

func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "question-import-service",
	})
}
