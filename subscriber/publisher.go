package subscriber

import (
	"bytes"
	"call-analysis-api/analyzer"
	"call-analysis-api/utils"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	valkeystore "call-analysis-api/valkey"

	"github.com/google/uuid"
)

// Publisher stores the uploaded audio and announces a finished analysis so the
// subscriber can archive it.
type Publisher struct {
	Model string
}

func NewPublisher(model string) *Publisher {
	return &Publisher{Model: model}
}

func (p *Publisher) Archive(ctx context.Context, fileName string, audio []byte, result *analyzer.AnalysisResult) (string, error) {
	if valkeystore.Client == nil {
		return "", errors.New("valkey client is nil; call InitValkey first")
	}

	id := uuid.NewString()
	key := fmt.Sprintf("calls/%s/%s.mp3", id, id)
	audioURI, err := utils.UploadFile(ctx, bytes.NewReader(audio), key, analyzer.MP3MimeType)
	if err != nil {
		return "", fmt.Errorf("failed to upload call audio: %w", err)
	}

	message, err := json.Marshal(CallAnalyzedPayload{
		ID:         id,
		FileName:   fileName,
		AudioURI:   audioURI,
		Model:      p.Model,
		AnalyzedAt: time.Now().UTC(),
		Result:     result,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal archive payload: %w", err)
	}

	if err := valkeystore.Client.Publish(ctx, CallAnalyzedChannel, string(message)).Err(); err != nil {
		return "", fmt.Errorf("failed to publish archive payload: %w", err)
	}
	return id, nil
}
