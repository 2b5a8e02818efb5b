package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// NewRouter wires every endpoint on a gin engine with logging and recovery
func NewRouter(analyze *AnalyzeHandler, analyses *AnalysisHandler, files *FileHandler) *gin.Engine {
	r := gin.New()
	r.Use(RequestLogger(), gin.Recovery())

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		// Stateless analysis
		api.POST("/analyze", analyze.Analyze)

		// Persisted analyses
		api.POST("/analyses", analyses.CreateAnalysis)
		api.GET("/analyses", analyses.ListAnalyses)
		api.GET("/analyses/:id", analyses.GetAnalysis)
		api.DELETE("/analyses/:id", analyses.DeleteAnalysis)
		api.POST("/analyses/:id/ask", analyses.AskQuestion)
		api.POST("/analyses/:id/negotiate", analyses.Negotiate)
		api.POST("/analyses/:id/legal", analyses.LegalExpertise)

		// Job endpoints
		api.GET("/jobs/:id", analyses.GetJobStatus)

		// File endpoints
		api.POST("/files/upload", files.UploadFile)
		api.GET("/files/:id", files.GetFile)
	}

	return r
}
