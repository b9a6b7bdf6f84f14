package main

import (
	"call-analysis-api/analyzer"
	"call-analysis-api/handlers"
	"call-analysis-api/subscriber"
	"call-analysis-api/testui"
	"call-analysis-api/utils"
	_ "embed"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	valkeystore "call-analysis-api/valkey"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

//go:embed web/index.html
var indexHTML string

func main() {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = ""
	cfg.EncoderConfig.EncodeDuration = zapcore.MillisDurationEncoder
	logger, err := cfg.Build()
	if err != nil {
		log.Fatalf("cannot initialize logger: %v", err)
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	modelCfg := analyzer.ModelConfig{
		APIKey:           os.Getenv("GEMINI_API_KEY"),
		Model:            utils.GetEnvOrDefault("GEMINI_MODEL", analyzer.DefaultModelName),
		BaseURL:          os.Getenv("GEMINI_BASE_URL"),
		ResponseMIMEType: utils.GetEnvOrDefault("GEMINI_RESPONSE_MIME_TYPE", analyzer.ResponseMIMEText),
	}
	if modelCfg.APIKey == "" {
		sugar.Warn("GEMINI_API_KEY is not set; analysis requests will fail")
	}

	r := gin.New()
	sugar.Info("Creating router")

	r.Use(ginzap.Ginzap(logger, time.RFC3339, true))
	r.Use(ginzap.CustomRecoveryWithZap(logger, true, handlers.HandleRecovery))

	allowedOrigins := []string{"http://localhost:3000"}
	if frontendURL := os.Getenv("FRONTEND_URL"); frontendURL != "" {
		allowedOrigins = append(allowedOrigins, frontendURL)
	}
	sugar.Infow("CORS allowed origins", "origins", allowedOrigins)
	r.Use(cors.New(cors.Config{
		AllowOrigins: allowedOrigins,
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type"},
	}))

	defer utils.CloseDB(logger)
	defer valkeystore.Close()

	var archiver handlers.Archiver
	if utils.GetEnvBool("ARCHIVE_ENABLED") {
		archiver = initArchive(logger, r, modelCfg)
	} else {
		sugar.Info("Call archive disabled; analyses are not persisted")
	}

	// Routes
	// Analyze answers every method itself so non-POST requests get a structured 405
	r.Any("/api/analyze", handlers.HandleAnalyze(logger, analyzer.NewGeminiModel, modelCfg, archiver))
	r.GET("/metrics", handlers.HandleMetrics())

	// Health check
	r.GET("/healthcheck", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"message": "ok"})
	})

	testui.RegisterRoutes(r, "/", indexHTML)

	port := utils.GetEnvOrDefault("APP_PORT", "8080")
	sugar.Infow("Running on port",
		"port", port)
	if err := r.Run(fmt.Sprintf(":%s", port)); err != nil {
		sugar.Fatalw("server stopped",
			"error", err)
	}
}

// initArchive connects the archive backends, starts the subscriber and registers
// the read routes. Any backend failure is fatal since the operator asked for it.
func initArchive(logger *zap.Logger, r *gin.Engine, modelCfg analyzer.ModelConfig) handlers.Archiver {
	sugar := logger.Sugar()

	valkeystore.InitValkey(logger)

	if err := utils.InitDB(logger); err != nil {
		sugar.Fatalw("failed to init database",
			"error", err)
	}

	if err := utils.CreateSchema(logger); err != nil {
		sugar.Fatalw("failed to create database schema",
			"error", err)
	}

	if err := utils.InitS3(logger); err != nil {
		sugar.Fatalw("failed to init s3",
			"error", err)
	}

	store := utils.PostgresAnalysisStore{}
	subscriber.StartSubscribers(logger, store)

	cached := &valkeystore.CachedAnalysisStore{AnalysisBacking: store, Logger: logger}
	r.GET("/analyses", handlers.HandleListAnalyses(logger, cached))
	r.GET("/analyses/:id", handlers.HandleGetAnalysis(logger, cached))
	r.GET("/analyses/:id/audio", handlers.HandleGetAnalysisAudio(logger, cached, utils.DownloadS3Object))
	r.GET("/db-status", handlers.HandleDBStatus())

	sugar.Info("Call archive enabled")
	return subscriber.NewPublisher(modelCfg.ModelName())
}
