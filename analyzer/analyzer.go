package analyzer

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// AnalyzeCall builds a model client from cfg, sends the analysis prompt with the
// audio and validates whatever text comes back. A client or transport failure is
// reported as KindModelInvocationFailure together with the underlying error; every
// other outcome is carried by the returned Verdict alone.
func AnalyzeCall(ctx context.Context, logger *zap.Logger, newModel NewModelFunc, cfg ModelConfig, audio []byte, mimeType string) (Verdict, error) {
	start := time.Now()
	logger.Info("Starting call analysis",
		zap.String("model", cfg.ModelName()),
		zap.Int("audio_bytes", len(audio)))

	model, err := newModel(ctx, cfg)
	if err != nil {
		logger.Error("Model client creation failed", zap.Error(err))
		return Verdict{Kind: KindModelInvocationFailure}, fmt.Errorf("failed to create model client: %w", err)
	}

	text, err := model.Generate(ctx, AnalysisPrompt, audio, mimeType)
	if err != nil {
		logger.Error("Model invocation failed", zap.Error(err), zap.Duration("elapsed", time.Since(start)))
		return Verdict{Kind: KindModelInvocationFailure}, fmt.Errorf("failed to invoke model: %w", err)
	}
	logger.Debug("Model replied", zap.Int("reply_bytes", len(text)), zap.Duration("elapsed", time.Since(start)))

	verdict := Validate(text)
	switch verdict.Kind {
	case KindMalformedJSON:
		logger.Warn("Model reply is not valid JSON", zap.String("raw_response", verdict.RawText))
	case KindSchemaViolation:
		logger.Warn("Model reply violates the analysis schema", zap.Int("issue_count", len(verdict.Issues)))
	default:
		logger.Info("Call analysis completed successfully",
			zap.String("overall_sentiment", string(verdict.Value.SentimentAnalysis.OverallSentiment)),
			zap.Bool("solved", verdict.Value.PuntosDoterSolved),
			zap.Duration("elapsed", time.Since(start)))
	}
	return verdict, nil
}
