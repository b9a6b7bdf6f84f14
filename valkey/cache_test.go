package valkeystore

import (
	"call-analysis-api/utils"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type backingStub struct {
	rec  *utils.AnalysisRecord
	err  error
	gets int
}

func (b *backingStub) ListAnalyses(context.Context, int, int) ([]utils.AnalysisRecord, error) {
	return nil, nil
}

func (b *backingStub) CountAnalyses(context.Context) (int, error) {
	return 0, nil
}

func (b *backingStub) GetAnalysis(context.Context, string) (*utils.AnalysisRecord, error) {
	b.gets++
	return b.rec, b.err
}

func TestAnalysisKey(t *testing.T) {
	assert.Equal(t, "analysis:abc", analysisKey("abc"))
}

func TestCachedStoreFallsBackWithoutValkey(t *testing.T) {
	prev := Client
	Client = nil
	defer func() { Client = prev }()

	backing := &backingStub{rec: &utils.AnalysisRecord{ID: "abc", ReasonForCall: "Queja"}}
	store := &CachedAnalysisStore{AnalysisBacking: backing, Logger: zap.NewNop()}

	rec, err := store.GetAnalysis(context.Background(), "abc")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "Queja", rec.ReasonForCall)
	assert.Equal(t, 1, backing.gets)
}

func TestCachedStorePropagatesBackingErrors(t *testing.T) {
	prev := Client
	Client = nil
	defer func() { Client = prev }()

	store := &CachedAnalysisStore{AnalysisBacking: &backingStub{err: errors.New("db down")}, Logger: zap.NewNop()}
	rec, err := store.GetAnalysis(context.Background(), "abc")
	assert.Error(t, err)
	assert.Nil(t, rec)

	store = &CachedAnalysisStore{AnalysisBacking: &backingStub{}, Logger: zap.NewNop()}
	rec, err = store.GetAnalysis(context.Background(), "missing")
	assert.NoError(t, err)
	assert.Nil(t, rec)
}

func TestSplitAddresses(t *testing.T) {
	assert.Equal(t, []string{"a:26379", "b:26379"}, splitAddresses(" a:26379, ,b:26379 "))
	assert.Empty(t, splitAddresses(""))
}
