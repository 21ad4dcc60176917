package dataloader

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rx3lixir/event-discovery/internal/db"
	"github.com/rx3lixir/event-discovery/pkg/logger"
)

type fakeSearcher struct {
	total int64
	err   error
}

func (f *fakeSearcher) SearchEvents(context.Context, *db.EventFilter) (*db.SearchResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &db.SearchResult{Events: []*db.Event{}, Total: f.total}, nil
}

type fakeIndex struct {
	fakeSearcher
	reindexed int
	batchSize int
	err       error
}

func (f *fakeIndex) Reindex(_ context.Context, source db.EventSearcher, batchSize int) (int, error) {
	f.batchSize = batchSize
	if f.err != nil {
		return 0, f.err
	}
	res, err := source.SearchEvents(context.Background(), db.NewEventFilter())
	if err != nil {
		return 0, err
	}
	f.reindexed = int(res.Total)
	return f.reindexed, nil
}

func Test_Loader_InitializesEmptyIndex(t *testing.T) {
	index := &fakeIndex{}
	l := NewLoader(&fakeSearcher{total: 7}, index, nil, logger.NewNop())

	result, err := l.InitializeOpenSearchData(context.Background())
	require.NoError(t, err)

	assert.False(t, result.Skipped)
	assert.Equal(t, 7, result.EventsProcessed)
	assert.Equal(t, 100, index.batchSize)
}

func Test_Loader_SkipsPopulatedIndex(t *testing.T) {
	index := &fakeIndex{fakeSearcher: fakeSearcher{total: 3}}
	l := NewLoader(&fakeSearcher{total: 7}, index, nil, logger.NewNop())

	result, err := l.InitializeOpenSearchData(context.Background())
	require.NoError(t, err)

	assert.True(t, result.Skipped)
	assert.Zero(t, index.reindexed)
}

func Test_Loader_ForceSync(t *testing.T) {
	index := &fakeIndex{fakeSearcher: fakeSearcher{total: 3}}
	l := NewLoader(&fakeSearcher{total: 7}, index, &SyncConfig{BatchSize: 50, ForceSync: true}, logger.NewNop())

	result, err := l.InitializeOpenSearchData(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 7, result.EventsProcessed)
	assert.Equal(t, 50, index.batchSize)
}

func Test_Loader_ReindexError(t *testing.T) {
	index := &fakeIndex{err: errors.New("bulk failed")}
	l := NewLoader(&fakeSearcher{total: 7}, index, nil, logger.NewNop())

	_, err := l.InitializeOpenSearchData(context.Background())
	assert.ErrorContains(t, err, "bulk failed")
}

func Test_Loader_CheckSyncStatus(t *testing.T) {
	l := NewLoader(&fakeSearcher{total: 10}, &fakeIndex{fakeSearcher: fakeSearcher{total: 8}}, nil, logger.NewNop())

	status, err := l.CheckSyncStatus(context.Background())
	require.NoError(t, err)

	assert.False(t, status.InSync)
	assert.Equal(t, int64(2), status.Difference)

	l = NewLoader(&fakeSearcher{err: errors.New("db down")}, &fakeIndex{}, nil, logger.NewNop())
	_, err = l.CheckSyncStatus(context.Background())
	assert.ErrorContains(t, err, "db down")
}
