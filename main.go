package main

import (
	"log"

	"github.com/gin-gonic/gin"

	"github.com/Aashish23092/case-intake/client"
	"github.com/Aashish23092/case-intake/config"
	"github.com/Aashish23092/case-intake/handler"
	"github.com/Aashish23092/case-intake/service"
)

func main() {
	// Initialize configuration
	cfg := config.LoadConfig()

	// Remote collaborators
	caseRepo := client.NewCaseRepositoryClient(cfg.CaseRepositoryURL, cfg.RequestTimeout)
	emailCheck := client.NewEmailCheckClient(cfg.EmailCheckURL, cfg.RequestTimeout)
	notifier := client.NewLogNotifier()

	// Core services
	previews := service.NewPreviewRegistry()
	pipeline := service.NewDocumentIngestionPipeline(
		cfg.MaxFileSize,
		cfg.CompressThreshold,
		cfg.MaxImageDimension,
		previews,
		notifier,
	)
	workflowService := service.NewWorkflowService(caseRepo, emailCheck, notifier, pipeline)

	// Handler layer
	workflowHandler := handler.NewWorkflowHandler(workflowService)
	documentHandler := handler.NewDocumentHandler(workflowService, previews)

	// Setup Gin router
	router := gin.Default()

	// Configure max multipart memory (32 MB)
	router.MaxMultipartMemory = 32 << 20

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "Case Intake",
		})
	})

	// API routes
	api := router.Group("/api/v1")
	{
		applications := api.Group("/applications")
		{
			applications.POST("", workflowHandler.StartSession)
			applications.GET("/:id", workflowHandler.GetState)
			applications.DELETE("/:id", workflowHandler.Discard)
			applications.POST("/:id/retry", workflowHandler.RetryHydration)
			applications.PUT("/:id/fields", workflowHandler.UpdateField)
			applications.POST("/:id/advance", workflowHandler.Advance)
			applications.POST("/:id/retreat", workflowHandler.Retreat)
			applications.POST("/:id/save", workflowHandler.Save)
			applications.POST("/:id/payment", workflowHandler.SubmitPayment)
			applications.POST("/:id/exhibits/:exhibit/documents", documentHandler.Upload)
			applications.DELETE("/:id/exhibits/:exhibit/documents/:docId", documentHandler.Remove)
		}
		api.GET("/previews/:token", documentHandler.Preview)
	}

	// Start server
	log.Printf("Starting Case Intake Service on port %s", cfg.ServerPort)
	if err := router.Run(":" + cfg.ServerPort); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
