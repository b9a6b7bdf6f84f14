package analyzer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"
	"google.golang.org/genai"
)

const (
	MP3MimeType = "audio/mpeg"

	ResponseMIMEText = "text/plain"
	ResponseMIMEJSON = "application/json"

	DefaultModelName = "gemini-2.5-pro"
)

// ModelConfig carries everything needed to reach the model. It is loaded once at
// startup and passed explicitly to whoever builds a client.
type ModelConfig struct {
	APIKey           string
	Model            string
	BaseURL          string
	ResponseMIMEType string
}

func (c ModelConfig) ModelName() string {
	if name := strings.TrimSpace(c.Model); name != "" {
		return name
	}
	return DefaultModelName
}

func (c ModelConfig) ResponseMIME() string {
	if strings.EqualFold(strings.TrimSpace(c.ResponseMIMEType), ResponseMIMEJSON) {
		return ResponseMIMEJSON
	}
	return ResponseMIMEText
}

// Model sends one instruction and one audio clip, in that order, and returns the
// reply text untouched.
type Model interface {
	Generate(ctx context.Context, prompt string, audio []byte, mimeType string) (string, error)
}

// NewModelFunc builds a Model for a single request.
type NewModelFunc func(ctx context.Context, cfg ModelConfig) (Model, error)

type geminiModel struct {
	client *genai.Client
	cfg    ModelConfig
}

// NewGeminiModel creates a Gemini client from cfg. It fails when no API key is set.
func NewGeminiModel(ctx context.Context, cfg ModelConfig) (Model, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is not configured")
	}

	clientCfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL := strings.TrimSpace(cfg.BaseURL); baseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &geminiModel{client: client, cfg: cfg}, nil
}

func (m *geminiModel) Generate(ctx context.Context, prompt string, audio []byte, mimeType string) (string, error) {
	config, err := buildGenerateContentConfig(m.cfg)
	if err != nil {
		return "", err
	}

	// inline audio is base64-encoded by the SDK on the wire
	contents := []*genai.Content{
		genai.NewContentFromParts(
			[]*genai.Part{
				genai.NewPartFromText(prompt),
				genai.NewPartFromBytes(audio, mimeType),
			},
			genai.RoleUser,
		),
	}

	response, err := m.client.Models.GenerateContent(ctx, m.cfg.ModelName(), contents, config)
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}
	return strings.TrimSpace(response.Text()), nil
}

func buildGenerateContentConfig(cfg ModelConfig) (*genai.GenerateContentConfig, error) {
	config := &genai.GenerateContentConfig{
		ResponseMIMEType: cfg.ResponseMIME(),
	}
	if config.ResponseMIMEType == ResponseMIMEJSON {
		schema, err := ResponseSchema()
		if err != nil {
			return nil, err
		}
		config.ResponseJsonSchema = schema
	}
	return config, nil
}

// ResponseSchema reflects the JSON schema of AnalysisResult for structured output mode.
func ResponseSchema() (map[string]any, error) {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	schema := reflector.Reflect(&AnalysisResult{})

	schemaJSON, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response schema: %w", err)
	}

	var schemaMap map[string]any
	if err := json.Unmarshal(schemaJSON, &schemaMap); err != nil {
		return nil, fmt.Errorf("failed to decode response schema: %w", err)
	}
	return schemaMap, nil
}
