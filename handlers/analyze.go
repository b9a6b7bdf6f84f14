package handlers

import (
	"call-analysis-api/analyzer"
	"call-analysis-api/utils"
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Archiver keeps a copy of a successful analysis. It runs after the response is
// decided and cannot change it.
type Archiver interface {
	Archive(ctx context.Context, fileName string, audio []byte, result *analyzer.AnalysisResult) (string, error)
}

// HandleAnalyze accepts one MP3 upload (form key: file), sends it to the model and
// returns the validated analysis. A fresh model client is built from cfg on every
// request. archiver may be nil.
func HandleAnalyze(logger *zap.Logger, newModel analyzer.NewModelFunc, cfg analyzer.ModelConfig, archiver Archiver) gin.HandlerFunc {
	return func(c *gin.Context) {
		utils.AnalyzeRequestsTotal.Add(1)

		if c.Request.Method != http.MethodPost {
			respondError(c, analyzer.KindMethodNotAllowed, nil)
			return
		}

		fileHeader, err := c.FormFile("file")
		if err != nil {
			respondError(c, analyzer.KindMissingFile, nil)
			return
		}

		if fileHeader.Header.Get("Content-Type") != analyzer.MP3MimeType {
			respondError(c, analyzer.KindInvalidFileType, nil)
			return
		}

		src, err := fileHeader.Open()
		if err != nil {
			logger.Error("File processing failed", zap.Error(err))
			respondError(c, analyzer.KindUnknownFailure, nil)
			return
		}
		defer src.Close()

		audio, err := io.ReadAll(src)
		if err != nil {
			logger.Error("File processing failed", zap.Error(err))
			respondError(c, analyzer.KindUnknownFailure, nil)
			return
		}

		// the model call runs to completion even if the client goes away
		ctx := context.WithoutCancel(c.Request.Context())
		verdict, err := analyzer.AnalyzeCall(ctx, logger, newModel, cfg, audio, analyzer.MP3MimeType)
		if err != nil {
			logger.Error("Call analysis failed", zap.String("file_name", fileHeader.Filename), zap.Error(err))
			respondError(c, analyzer.KindModelInvocationFailure, nil)
			return
		}

		switch verdict.Kind {
		case analyzer.KindMalformedJSON:
			respondError(c, verdict.Kind, gin.H{"rawResponse": verdict.RawText})
			return
		case analyzer.KindSchemaViolation:
			respondError(c, verdict.Kind, gin.H{"issues": verdict.Issues, "raw": verdict.Raw})
			return
		}

		utils.AnalyzeSuccessTotal.Add(1)
		c.JSON(http.StatusOK, verdict.Value)

		if archiver != nil {
			go archive(ctx, logger, archiver, fileHeader.Filename, audio, verdict.Value)
		}
	}
}

func archive(ctx context.Context, logger *zap.Logger, archiver Archiver, fileName string, audio []byte, result *analyzer.AnalysisResult) {
	id, err := archiver.Archive(ctx, fileName, audio, result)
	if err != nil {
		utils.ArchiveFailures.Add(1)
		logger.Error("Archiving failed", zap.String("file_name", fileName), zap.Error(err))
		return
	}
	logger.Info("Analysis queued for archive", zap.String("id", id), zap.String("file_name", fileName))
}

func respondError(c *gin.Context, kind analyzer.ErrorKind, extra gin.H) {
	switch kind {
	case analyzer.KindMethodNotAllowed, analyzer.KindMissingFile, analyzer.KindInvalidFileType:
		utils.AnalyzeRejectedTotal.Add(1)
	case analyzer.KindModelInvocationFailure:
		utils.AnalyzeModelFailures.Add(1)
	case analyzer.KindMalformedJSON:
		utils.AnalyzeMalformedJSON.Add(1)
	case analyzer.KindSchemaViolation:
		utils.AnalyzeSchemaViolations.Add(1)
	}

	body := gin.H{
		"error":     kind.Message(),
		"errorKind": kind,
	}
	for k, v := range extra {
		body[k] = v
	}
	c.JSON(kind.Status(), body)
}

// HandleRecovery turns a panic in any handler into a structured UnknownFailure body.
// The panic itself is logged by the recovery middleware.
func HandleRecovery(c *gin.Context, _ any) {
	respondError(c, analyzer.KindUnknownFailure, nil)
	c.Abort()
}
