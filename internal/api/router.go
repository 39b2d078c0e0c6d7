package api

import (
	"github.com/gin-gonic/gin"
	"github.com/rs-quantt/checklist-api/internal/api/handler"
	"github.com/rs-quantt/checklist-api/internal/api/middleware"
	"github.com/rs-quantt/checklist-api/internal/config"
	"github.com/rs-quantt/checklist-api/internal/logger"
	"github.com/rs-quantt/checklist-api/internal/repository"
	"github.com/rs-quantt/checklist-api/internal/service"
)

// RouterDeps bundles everything the router wires into handlers.
type RouterDeps struct {
	Templates      *repository.TemplateRepository
	Categories     *repository.CategoryRepository
	SubmitService  *service.SubmitService
	SummaryService *service.SummaryService
	ExportService  *service.ExportService
}

// SetupRouter configures the Gin router with all routes
func SetupRouter(deps *RouterDeps, cfg *config.Config, log *logger.Logger) *gin.Engine {
	// Set Gin mode
	switch cfg.Server.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()

	// Add middleware
	r.Use(gin.Recovery())
	r.Use(middleware.LoggerMiddleware(log))
	r.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins:  cfg.Server.CORS.AllowedOrigins,
		AllowAllOrigins: cfg.Server.CORS.AllowAllOrigins,
	}))

	// Create handlers
	healthHandler := handler.NewHealthHandler()
	checklistHandler := handler.NewChecklistHandler(deps.Templates, deps.Categories)
	submissionHandler := handler.NewSubmissionHandler(deps.SubmitService)
	summaryHandler := handler.NewSummaryHandler(deps.SummaryService)
	adminHandler := handler.NewAdminHandler(deps.SummaryService, deps.SubmitService, deps.ExportService)

	// Health check
	r.GET("/health", healthHandler.Health)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		// Submissions
		v1.POST("/submissions", submissionHandler.Submit)

		// Checklist templates and categories (read-only content)
		v1.GET("/checklists", checklistHandler.ListChecklists)
		v1.GET("/checklists/:id", checklistHandler.GetChecklist)
		v1.GET("/categories", checklistHandler.ListCategories)
		v1.GET("/categories/:id", checklistHandler.GetCategory)

		// Summaries
		v1.GET("/summaries/checklists", summaryHandler.ListChecklistSummaries)
		v1.GET("/summaries/checklists/:id", summaryHandler.GetChecklistSummary)
		v1.GET("/summaries/categories", summaryHandler.ListCategorySummaries)
		v1.GET("/summaries/categories/:id", summaryHandler.GetCategorySummary)

		// Admin
		admin := v1.Group("/admin")
		{
			admin.GET("/overview", adminHandler.GetOverview)
			admin.GET("/submissions", adminHandler.ListSubmissions)
			admin.POST("/recompute", adminHandler.Recompute)
			admin.POST("/export", adminHandler.Export)
		}
	}

	return r
}
