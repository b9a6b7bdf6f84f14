package utils

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

var DB *sql.DB

// AnalysisRecord is an archived call analysis as stored in call_analyses.
type AnalysisRecord struct {
	ID               string          `json:"id"`
	FileName         string          `json:"file_name"`
	AudioURI         string          `json:"audio_uri"`
	Model            string          `json:"model"`
	OverallSentiment string          `json:"overall_sentiment"`
	Solved           bool            `json:"solved"`
	ReasonForCall    string          `json:"reason_for_call"`
	AgentTurns       int             `json:"agent_turns"`
	CustomerTurns    int             `json:"customer_turns"`
	Result           json.RawMessage `json:"result,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
}

// InitDB initializes the PostgreSQL database connection
func InitDB(logger *zap.Logger) error {
	host := MustGetEnv("POSTGRES_HOST")
	port := GetEnvOrDefault("POSTGRES_PORT", "5432")
	user := MustGetEnv("POSTGRES_USER")
	password := MustGetEnv("POSTGRES_PASSWORD")
	dbname := MustGetEnv("POSTGRES_DB")
	sslmode := GetEnvOrDefault("POSTGRES_SSLMODE", "disable")

	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, password, dbname, sslmode)

	var err error
	DB, err = sql.Open("postgres", connStr)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}

	DB.SetMaxOpenConns(25)
	DB.SetMaxIdleConns(25)
	DB.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := DB.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("Database connection established successfully")

	return nil
}

// CreateSchema creates the necessary database tables if they don't exist
func CreateSchema(logger *zap.Logger) error {
	if DB == nil {
		return fmt.Errorf("database connection is nil; call InitDB first")
	}

	ctx := context.Background()

	_, err := DB.ExecContext(ctx, `
        CREATE TABLE IF NOT EXISTS call_analyses (
            id TEXT PRIMARY KEY,
            file_name TEXT NOT NULL,
            audio_uri TEXT NOT NULL,
            model TEXT NOT NULL,
            overall_sentiment TEXT NOT NULL,
            solved BOOLEAN NOT NULL,
            reason_for_call TEXT NOT NULL,
            agent_turns INT NOT NULL DEFAULT 0,
            customer_turns INT NOT NULL DEFAULT 0,
            result JSONB NOT NULL,
            created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
        )
    `)
	if err != nil {
		return fmt.Errorf("failed to create call_analyses table: %w", err)
	}

	_, err = DB.ExecContext(ctx, `
        CREATE INDEX IF NOT EXISTS idx_call_analyses_created_at ON call_analyses(created_at);
        CREATE INDEX IF NOT EXISTS idx_call_analyses_sentiment ON call_analyses(overall_sentiment);
    `)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	logger.Info("Database schema created successfully")
	return nil
}

// CloseDB closes the database connection
func CloseDB(logger *zap.Logger) error {
	if DB != nil {
		logger.Info("Closing database connection")
		return DB.Close()
	}
	return nil
}

// PostgresAnalysisStore reads and writes archived analyses through DB.
type PostgresAnalysisStore struct{}

func (PostgresAnalysisStore) SaveAnalysis(ctx context.Context, rec *AnalysisRecord) error {
	if DB == nil {
		return errors.New("database connection is nil; call InitDB first")
	}
	_, err := DB.ExecContext(ctx, `
		INSERT INTO call_analyses (id, file_name, audio_uri, model, overall_sentiment, solved,
			reason_for_call, agent_turns, customer_turns, result, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			overall_sentiment = EXCLUDED.overall_sentiment,
			solved = EXCLUDED.solved,
			reason_for_call = EXCLUDED.reason_for_call,
			agent_turns = EXCLUDED.agent_turns,
			customer_turns = EXCLUDED.customer_turns,
			result = EXCLUDED.result
	`, rec.ID, rec.FileName, rec.AudioURI, rec.Model, rec.OverallSentiment, rec.Solved,
		rec.ReasonForCall, rec.AgentTurns, rec.CustomerTurns, []byte(rec.Result), rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save analysis %s: %w", rec.ID, err)
	}
	return nil
}

// ListAnalyses returns archived analyses newest first, without the full result body.
func (PostgresAnalysisStore) ListAnalyses(ctx context.Context, limit, offset int) ([]AnalysisRecord, error) {
	if DB == nil {
		return nil, errors.New("database connection is nil; call InitDB first")
	}
	rows, err := DB.QueryContext(ctx, `
		SELECT id, file_name, audio_uri, model, overall_sentiment, solved,
			reason_for_call, agent_turns, customer_turns, created_at
		FROM call_analyses
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query analyses: %w", err)
	}
	defer rows.Close()

	records := []AnalysisRecord{}
	for rows.Next() {
		var rec AnalysisRecord
		if err := rows.Scan(&rec.ID, &rec.FileName, &rec.AudioURI, &rec.Model, &rec.OverallSentiment,
			&rec.Solved, &rec.ReasonForCall, &rec.AgentTurns, &rec.CustomerTurns, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan analysis row: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (PostgresAnalysisStore) CountAnalyses(ctx context.Context) (int, error) {
	if DB == nil {
		return 0, errors.New("database connection is nil; call InitDB first")
	}
	var total int
	if err := DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM call_analyses`).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count analyses: %w", err)
	}
	return total, nil
}

// GetAnalysis returns nil without error when no analysis has the given id.
func (PostgresAnalysisStore) GetAnalysis(ctx context.Context, id string) (*AnalysisRecord, error) {
	if DB == nil {
		return nil, errors.New("database connection is nil; call InitDB first")
	}
	var rec AnalysisRecord
	var result []byte
	err := DB.QueryRowContext(ctx, `
		SELECT id, file_name, audio_uri, model, overall_sentiment, solved,
			reason_for_call, agent_turns, customer_turns, result, created_at
		FROM call_analyses
		WHERE id = $1
	`, id).Scan(&rec.ID, &rec.FileName, &rec.AudioURI, &rec.Model, &rec.OverallSentiment,
		&rec.Solved, &rec.ReasonForCall, &rec.AgentTurns, &rec.CustomerTurns, &result, &rec.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get analysis %s: %w", id, err)
	}
	rec.Result = json.RawMessage(result)
	return &rec, nil
}
