package subscriber

import (
	"call-analysis-api/analyzer"
	"call-analysis-api/utils"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	valkeystore "call-analysis-api/valkey"

	"go.uber.org/zap"
)

const CallAnalyzedChannel = "call_analyzed"

// DefaultArchiveWorkers caps how many archive messages are processed at once
const DefaultArchiveWorkers = 4

// CallAnalyzedPayload is published once a call has a validated analysis
type CallAnalyzedPayload struct {
	ID         string                   `json:"id"`
	FileName   string                   `json:"fileName"`
	AudioURI   string                   `json:"audioUri"`
	Model      string                   `json:"model"`
	AnalyzedAt time.Time                `json:"analyzedAt"`
	Result     *analyzer.AnalysisResult `json:"result"`
}

// AnalysisSaver persists archived analyses.
type AnalysisSaver interface {
	SaveAnalysis(ctx context.Context, rec *utils.AnalysisRecord) error
}

// StartSubscribers starts the archive subscriber. ARCHIVE_WORKERS bounds the
// number of messages handled concurrently.
func StartSubscribers(logger *zap.Logger, saver AnalysisSaver) {
	workers := archiveWorkers()
	logger.Info("Archive workers configured", zap.Int("workers", workers))
	process := boundedProcessor(workers, func(logger *zap.Logger, message string) {
		processCallAnalyzed(logger, saver, message)
	})
	go startSubscriber(logger, CallAnalyzedChannel, process)
}

func archiveWorkers() int {
	workers, err := strconv.Atoi(utils.GetEnvOrDefault("ARCHIVE_WORKERS", strconv.Itoa(DefaultArchiveWorkers)))
	if err != nil || workers < 1 {
		return DefaultArchiveWorkers
	}
	return workers
}

// boundedProcessor runs processor in the background with at most limit calls in
// flight. The returned func blocks while all slots are taken, which holds back
// the receive loop instead of piling up goroutines.
func boundedProcessor(limit int, processor func(*zap.Logger, string)) func(*zap.Logger, string) {
	slots := make(chan struct{}, limit)
	return func(logger *zap.Logger, message string) {
		slots <- struct{}{}
		go func() {
			defer func() { <-slots }()
			processor(logger, message)
		}()
	}
}

func startSubscriber(logger *zap.Logger, channel string, processor func(*zap.Logger, string)) {
	sugar := logger.Sugar()
	sugar.Infow("Message subscriber started",
		"channel", channel)

	ctx := context.Background()
	pubSub := valkeystore.RawClient.PubSub()
	defer pubSub.Close()

	if err := pubSub.Subscribe(ctx, channel).Err(); err != nil {
		sugar.Errorw("Failed to subscribe to channel",
			"channel", channel,
			"error", err)
		return
	}

	for {
		msg, err := pubSub.ReceiveMessage(ctx)
		if err != nil {
			sugar.Errorw("Failed to receive message",
				"channel", channel,
				"error", err)
			time.Sleep(5 * time.Second) // Wait before retrying
			continue
		}

		if strings.TrimSpace(msg.Message) == "" {
			sugar.Warn("Received empty message from pub/sub")
			continue
		}

		processor(logger, msg.Message)
	}
}

func processCallAnalyzed(logger *zap.Logger, saver AnalysisSaver, message string) {
	ctx := context.Background()
	sugar := logger.Sugar()

	var payload CallAnalyzedPayload
	if err := json.Unmarshal([]byte(message), &payload); err != nil {
		sugar.Errorw("Archive message could not be decoded",
			"error", err)
		utils.ArchiveFailures.Add(1)
		return
	}

	rec, err := BuildRecord(payload)
	if err != nil {
		sugar.Errorw("Archive message rejected",
			"id", payload.ID,
			"error", err)
		utils.ArchiveFailures.Add(1)
		return
	}

	if err := saver.SaveAnalysis(ctx, rec); err != nil {
		sugar.Errorw("Database storage failed",
			"id", rec.ID,
			"error", err)
		utils.ArchiveFailures.Add(1)
		return
	}

	if err := valkeystore.CacheAnalysis(ctx, rec); err != nil {
		sugar.Errorw("Cache storage failed",
			"id", rec.ID,
			"error", err)
		return
	}

	sugar.Infow("Call analysis archived successfully",
		"id", rec.ID)
}

// BuildRecord flattens an archive payload into the stored row
func BuildRecord(payload CallAnalyzedPayload) (*utils.AnalysisRecord, error) {
	if strings.TrimSpace(payload.ID) == "" {
		return nil, errors.New("archive payload has no id")
	}
	if payload.Result == nil {
		return nil, errors.New("archive payload has no result")
	}

	result, err := json.Marshal(payload.Result)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	stats := analyzer.ComputeTurnStats(payload.Result.Transcription)
	createdAt := payload.AnalyzedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	return &utils.AnalysisRecord{
		ID:               payload.ID,
		FileName:         payload.FileName,
		AudioURI:         payload.AudioURI,
		Model:            payload.Model,
		OverallSentiment: string(payload.Result.SentimentAnalysis.OverallSentiment),
		Solved:           payload.Result.PuntosDoterSolved,
		ReasonForCall:    payload.Result.ReasonForCall,
		AgentTurns:       stats.AgentTurns,
		CustomerTurns:    stats.CustomerTurns,
		Result:           result,
		CreatedAt:        createdAt,
	}, nil
}
