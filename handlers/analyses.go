package handlers

import (
	"call-analysis-api/analyzer"
	"call-analysis-api/utils"
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// AnalysisStore reads archived analyses.
type AnalysisStore interface {
	ListAnalyses(ctx context.Context, limit, offset int) ([]utils.AnalysisRecord, error)
	CountAnalyses(ctx context.Context) (int, error)
	GetAnalysis(ctx context.Context, id string) (*utils.AnalysisRecord, error)
}

// AudioFetcher downloads a stored object.
type AudioFetcher func(ctx context.Context, bucket, key string) ([]byte, error)

type AnalysesResponse struct {
	Items  []utils.AnalysisRecord `json:"items"`
	Total  int                    `json:"total"`
	Limit  int                    `json:"limit"`
	Offset int                    `json:"offset"`
}

// HandleListAnalyses returns archived analyses newest first
func HandleListAnalyses(logger *zap.Logger, store AnalysisStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := getQueryInt(logger, c, "limit", defaultListLimit)
		if limit <= 0 || limit > maxListLimit {
			limit = defaultListLimit
		}
		offset := getQueryInt(logger, c, "offset", 0)
		if offset < 0 {
			offset = 0
		}

		items, err := store.ListAnalyses(c.Request.Context(), limit, offset)
		if err != nil {
			logger.Error("Database query failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve analyses"})
			return
		}

		total, err := store.CountAnalyses(c.Request.Context())
		if err != nil {
			logger.Error("Database query failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve analyses"})
			return
		}

		if items == nil {
			items = []utils.AnalysisRecord{}
		}
		c.JSON(http.StatusOK, AnalysesResponse{Items: items, Total: total, Limit: limit, Offset: offset})
	}
}

// HandleGetAnalysis returns one archived analysis including its full result
func HandleGetAnalysis(logger *zap.Logger, store AnalysisStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		rec, err := store.GetAnalysis(c.Request.Context(), id)
		if err != nil {
			logger.Error("Analysis retrieval failed", zap.String("id", id), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve analysis"})
			return
		}
		if rec == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Analysis not found"})
			return
		}
		c.JSON(http.StatusOK, rec)
	}
}

// HandleGetAnalysisAudio streams the archived recording of an analysis
func HandleGetAnalysisAudio(logger *zap.Logger, store AnalysisStore, fetch AudioFetcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		rec, err := store.GetAnalysis(c.Request.Context(), id)
		if err != nil {
			logger.Error("Analysis retrieval failed", zap.String("id", id), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve analysis"})
			return
		}
		if rec == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Analysis not found"})
			return
		}

		bucket, key, err := utils.ParseS3URI(rec.AudioURI)
		if err != nil {
			logger.Error("Stored audio location is invalid", zap.String("id", id), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve audio"})
			return
		}

		data, err := fetch(c.Request.Context(), bucket, key)
		if err != nil {
			logger.Error("File download failed", zap.String("id", id), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve audio"})
			return
		}
		c.Data(http.StatusOK, analyzer.MP3MimeType, data)
	}
}

func getQueryInt(logger *zap.Logger, c *gin.Context, name string, defaultValue int) int {
	raw := c.Query(name)
	if raw == "" {
		return defaultValue
	}

	parsed, err := strconv.Atoi(raw)
	if err != nil {
		logger.Warn("invalid query parameter, using default",
			zap.String("param", name),
			zap.String("value", raw),
			zap.Error(err))
		return defaultValue
	}
	return parsed
}
