package valkeystore

import (
	"call-analysis-api/utils"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"
	"go.uber.org/zap"
)

const AnalysisCacheTTL = 24 * time.Hour

func analysisKey(id string) string {
	return fmt.Sprintf("analysis:%s", id)
}

// CacheAnalysis stores a full analysis record for fast reads
func CacheAnalysis(ctx context.Context, rec *utils.AnalysisRecord) error {
	if Client == nil {
		return errors.New("valkey client is nil; call InitValkey first")
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal analysis %s: %w", rec.ID, err)
	}
	return Client.Set(ctx, analysisKey(rec.ID), string(data), AnalysisCacheTTL).Err()
}

// GetCachedAnalysis returns nil without error on a cache miss
func GetCachedAnalysis(ctx context.Context, id string) (*utils.AnalysisRecord, error) {
	if Client == nil {
		return nil, errors.New("valkey client is nil; call InitValkey first")
	}
	data, err := Client.Get(ctx, analysisKey(id)).Result()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return nil, nil
		}
		return nil, err
	}
	var rec utils.AnalysisRecord
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, fmt.Errorf("failed to decode cached analysis %s: %w", id, err)
	}
	return &rec, nil
}

// AnalysisBacking is the durable store behind the cache.
type AnalysisBacking interface {
	ListAnalyses(ctx context.Context, limit, offset int) ([]utils.AnalysisRecord, error)
	CountAnalyses(ctx context.Context) (int, error)
	GetAnalysis(ctx context.Context, id string) (*utils.AnalysisRecord, error)
}

// CachedAnalysisStore serves single analyses from valkey and falls back to the
// backing store, refilling the cache on a miss. Cache errors are logged, not returned.
type CachedAnalysisStore struct {
	AnalysisBacking
	Logger *zap.Logger
}

func (s *CachedAnalysisStore) GetAnalysis(ctx context.Context, id string) (*utils.AnalysisRecord, error) {
	rec, err := GetCachedAnalysis(ctx, id)
	if err != nil {
		s.Logger.Warn("Cache read failed", zap.String("id", id), zap.Error(err))
	}
	if rec != nil {
		return rec, nil
	}

	rec, err = s.AnalysisBacking.GetAnalysis(ctx, id)
	if err != nil || rec == nil {
		return rec, err
	}
	if err := CacheAnalysis(ctx, rec); err != nil {
		s.Logger.Warn("Cache refill failed", zap.String("id", id), zap.Error(err))
	}
	return rec, nil
}
