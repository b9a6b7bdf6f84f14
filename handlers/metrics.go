package handlers

import (
	"call-analysis-api/utils"
	"net/http"

	"github.com/gin-gonic/gin"
)

// HandleMetrics returns a snapshot of the analyze and archive counters
func HandleMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"analyze_requests_total":          utils.AnalyzeRequestsTotal.Value(),
			"analyze_success_total":           utils.AnalyzeSuccessTotal.Value(),
			"analyze_rejected_total":          utils.AnalyzeRejectedTotal.Value(),
			"analyze_model_failures_total":    utils.AnalyzeModelFailures.Value(),
			"analyze_malformed_json_total":    utils.AnalyzeMalformedJSON.Value(),
			"analyze_schema_violations_total": utils.AnalyzeSchemaViolations.Value(),
			"archive_failures_total":          utils.ArchiveFailures.Value(),
		})
	}
}
