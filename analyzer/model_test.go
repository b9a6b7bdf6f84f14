package analyzer

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModelConfigDefaults(t *testing.T) {
	var cfg ModelConfig
	assert.Equal(t, DefaultModelName, cfg.ModelName())
	assert.Equal(t, ResponseMIMEText, cfg.ResponseMIME())

	cfg = ModelConfig{Model: " gemini-2.5-flash ", ResponseMIMEType: "Application/JSON"}
	assert.Equal(t, "gemini-2.5-flash", cfg.ModelName())
	assert.Equal(t, ResponseMIMEJSON, cfg.ResponseMIME())

	cfg.ResponseMIMEType = "text/markdown"
	assert.Equal(t, ResponseMIMEText, cfg.ResponseMIME())
}

func TestNewGeminiModelRequiresAPIKey(t *testing.T) {
	model, err := NewGeminiModel(context.Background(), ModelConfig{APIKey: "  "})
	require.Error(t, err)
	assert.Nil(t, model)
}

func TestBuildGenerateContentConfig(t *testing.T) {
	config, err := buildGenerateContentConfig(ModelConfig{})
	require.NoError(t, err)
	assert.Equal(t, ResponseMIMEText, config.ResponseMIMEType)
	assert.Nil(t, config.ResponseJsonSchema)

	config, err = buildGenerateContentConfig(ModelConfig{ResponseMIMEType: ResponseMIMEJSON})
	require.NoError(t, err)
	assert.Equal(t, ResponseMIMEJSON, config.ResponseMIMEType)
	assert.NotNil(t, config.ResponseJsonSchema)
}

func TestResponseSchema(t *testing.T) {
	schema, err := ResponseSchema()
	require.NoError(t, err)

	props, ok := schema["properties"].(map[string]any)
	require.True(t, ok)
	for _, name := range []string{"transcription", "sentimentAnalysis", "puntosDoterSolved", "reasonForCall", "keyInteractions"} {
		assert.Contains(t, props, name)
	}

	required, ok := schema["required"].([]any)
	require.True(t, ok)
	assert.ElementsMatch(t, []any{"transcription", "sentimentAnalysis", "puntosDoterSolved", "reasonForCall"}, required)

	sentiment, ok := props["sentimentAnalysis"].(map[string]any)
	require.True(t, ok)
	inner, ok := sentiment["properties"].(map[string]any)
	require.True(t, ok)
	overall, ok := inner["overallSentiment"].(map[string]any)
	require.True(t, ok)
	assert.ElementsMatch(t, []any{"Positive", "Negative", "Neutral"}, overall["enum"])
}

type capturedRequest struct {
	path string
	body map[string]any
}

func newFakeGeminiServer(t *testing.T, reply string, captured chan<- capturedRequest) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var body map[string]any
		require.NoError(t, json.Unmarshal(data, &body))
		captured <- capturedRequest{path: r.URL.Path, body: body}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []any{
				map[string]any{
					"content": map[string]any{
						"role":  "model",
						"parts": []any{map[string]any{"text": reply}},
					},
				},
			},
		})
	}))
	t.Cleanup(server.Close)
	return server
}

func TestGeminiModelSendsPromptThenInlineAudio(t *testing.T) {
	captured := make(chan capturedRequest, 1)
	server := newFakeGeminiServer(t, "  {\"ok\":true}  ", captured)

	cfg := ModelConfig{APIKey: "test-key", Model: "test-model", BaseURL: server.URL + "/"}
	model, err := NewGeminiModel(context.Background(), cfg)
	require.NoError(t, err)

	audio := []byte{0xFF, 0xFB, 0x90, 0x00, 0x01}
	text, err := model.Generate(context.Background(), AnalysisPrompt, audio, MP3MimeType)
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, text)

	req := <-captured
	assert.True(t, strings.HasSuffix(req.path, "models/test-model:generateContent"), req.path)

	contents, ok := req.body["contents"].([]any)
	require.True(t, ok)
	require.Len(t, contents, 1)
	content := contents[0].(map[string]any)
	assert.Equal(t, "user", content["role"])

	parts, ok := content["parts"].([]any)
	require.True(t, ok)
	require.Len(t, parts, 2)
	assert.Equal(t, AnalysisPrompt, parts[0].(map[string]any)["text"])

	inline, ok := parts[1].(map[string]any)["inlineData"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, MP3MimeType, inline["mimeType"])
	assert.Equal(t, base64.StdEncoding.EncodeToString(audio), inline["data"])

	generation, ok := req.body["generationConfig"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, ResponseMIMEText, generation["responseMimeType"])
}

func TestGeminiModelStructuredOutput(t *testing.T) {
	captured := make(chan capturedRequest, 1)
	server := newFakeGeminiServer(t, "{}", captured)

	cfg := ModelConfig{APIKey: "test-key", Model: "test-model", BaseURL: server.URL + "/", ResponseMIMEType: ResponseMIMEJSON}
	model, err := NewGeminiModel(context.Background(), cfg)
	require.NoError(t, err)

	_, err = model.Generate(context.Background(), AnalysisPrompt, []byte{0xFF}, MP3MimeType)
	require.NoError(t, err)

	req := <-captured
	generation, ok := req.body["generationConfig"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, ResponseMIMEJSON, generation["responseMimeType"])
	assert.NotNil(t, generation["responseJsonSchema"])
}
