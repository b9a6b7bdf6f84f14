package utils

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"go.uber.org/zap"
)

func testLogger(t *testing.T) *zap.Logger {
	cfg := zap.NewProductionConfig()
	l, err := cfg.Build()
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return l
}

func ensureDB(t *testing.T) {
	l := testLogger(t)
	if os.Getenv("POSTGRES_HOST") == "" {
		_ = os.Setenv("POSTGRES_HOST", "localhost")
	}
	if os.Getenv("POSTGRES_PORT") == "" {
		_ = os.Setenv("POSTGRES_PORT", "5432")
	}
	if os.Getenv("POSTGRES_USER") == "" {
		_ = os.Setenv("POSTGRES_USER", "postgres")
	}
	if os.Getenv("POSTGRES_PASSWORD") == "" {
		_ = os.Setenv("POSTGRES_PASSWORD", "postgres")
	}
	if os.Getenv("POSTGRES_DB") == "" {
		_ = os.Setenv("POSTGRES_DB", "call_analysis")
	}
	if err := InitDB(l); err != nil {
		t.Skip("db not available")
	}
	if err := CreateSchema(l); err != nil {
		t.Fatalf("schema: %v", err)
	}
}

func sampleRecord(id string, createdAt time.Time) *AnalysisRecord {
	return &AnalysisRecord{
		ID:               id,
		FileName:         "llamada.mp3",
		AudioURI:         "s3://calls/" + id + ".mp3",
		Model:            "gemini-2.5-pro",
		OverallSentiment: "Positive",
		Solved:           true,
		ReasonForCall:    "Consulta de saldo de puntos",
		AgentTurns:       2,
		CustomerTurns:    1,
		Result:           json.RawMessage(`{"puntosDoterSolved":true}`),
		CreatedAt:        createdAt,
	}
}

func TestSaveAndGetAnalysis(t *testing.T) {
	ensureDB(t)
	ctx := context.Background()
	if _, err := DB.ExecContext(ctx, `DELETE FROM call_analyses`); err != nil {
		t.Fatalf("cleanup: %v", err)
	}

	store := PostgresAnalysisStore{}
	rec := sampleRecord("rec-1", time.Now().UTC())
	if err := store.SaveAnalysis(ctx, rec); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := store.GetAnalysis(ctx, "rec-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil {
		t.Fatalf("expected record")
	}
	if got.ReasonForCall != rec.ReasonForCall || !got.Solved || got.AgentTurns != 2 {
		t.Fatalf("unexpected record: %+v", got)
	}

	var result map[string]any
	if err := json.Unmarshal(got.Result, &result); err != nil {
		t.Fatalf("result: %v", err)
	}
	if result["puntosDoterSolved"] != true {
		t.Fatalf("unexpected result: %s", got.Result)
	}

	missing, err := store.GetAnalysis(ctx, "does-not-exist")
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for missing id")
	}
}

func TestSaveAnalysisUpsert(t *testing.T) {
	ensureDB(t)
	ctx := context.Background()
	if _, err := DB.ExecContext(ctx, `DELETE FROM call_analyses`); err != nil {
		t.Fatalf("cleanup: %v", err)
	}

	store := PostgresAnalysisStore{}
	rec := sampleRecord("rec-up", time.Now().UTC())
	if err := store.SaveAnalysis(ctx, rec); err != nil {
		t.Fatalf("save: %v", err)
	}
	rec.Solved = false
	rec.OverallSentiment = "Negative"
	if err := store.SaveAnalysis(ctx, rec); err != nil {
		t.Fatalf("second save: %v", err)
	}

	total, err := store.CountAnalyses(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if total != 1 {
		t.Fatalf("expected 1 row, got %d", total)
	}
	got, err := store.GetAnalysis(ctx, "rec-up")
	if err != nil || got == nil {
		t.Fatalf("get: %v", err)
	}
	if got.Solved || got.OverallSentiment != "Negative" {
		t.Fatalf("upsert not applied: %+v", got)
	}
}

func TestListAnalysesNewestFirst(t *testing.T) {
	ensureDB(t)
	ctx := context.Background()
	if _, err := DB.ExecContext(ctx, `DELETE FROM call_analyses`); err != nil {
		t.Fatalf("cleanup: %v", err)
	}

	store := PostgresAnalysisStore{}
	base := time.Now().UTC().Add(-time.Hour)
	for i, id := range []string{"old", "mid", "new"} {
		if err := store.SaveAnalysis(ctx, sampleRecord(id, base.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatalf("save %s: %v", id, err)
		}
	}

	items, err := store.ListAnalyses(ctx, 2, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 2 || items[0].ID != "new" || items[1].ID != "mid" {
		t.Fatalf("unexpected order: %+v", items)
	}
	if items[0].Result != nil {
		t.Fatalf("list should not include result bodies")
	}

	rest, err := store.ListAnalyses(ctx, 2, 2)
	if err != nil {
		t.Fatalf("list offset: %v", err)
	}
	if len(rest) != 1 || rest[0].ID != "old" {
		t.Fatalf("unexpected page: %+v", rest)
	}
}
