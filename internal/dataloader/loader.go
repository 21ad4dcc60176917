package dataloader

import (
	"context"
	"fmt"
	"time"

	"github.com/rx3lixir/event-discovery/internal/db"
	"github.com/rx3lixir/event-discovery/pkg/logger"
)

type Loader struct {
	source db.EventSearcher
	index  Index
	config *SyncConfig
	logger logger.Logger
}

func NewLoader(source db.EventSearcher, index Index, cfg *SyncConfig, logger logger.Logger) *Loader {
	if cfg == nil {
		cfg = DefaultSyncConfig()
	}
	return &Loader{
		source: source,
		index:  index,
		config: cfg,
		logger: logger,
	}
}

// InitializeOpenSearchData заполняет индекс из PostgreSQL.
// Непустой индекс не трогается, если не включен ForceSync.
func (l *Loader) InitializeOpenSearchData(ctx context.Context) (*SyncResult, error) {
	result := &SyncResult{StartedAt: time.Now()}

	if !l.config.ForceSync {
		existing, err := count(ctx, l.index)
		if err != nil {
			l.logger.Warn("Failed to check existing OpenSearch data, proceeding with initialization", "error", err)
		} else if existing > 0 {
			l.logger.Info("OpenSearch already contains data, skipping bulk initialization",
				"existing_count", existing)
			result.Skipped = true
			result.CompletedAt = time.Now()
			return result, nil
		}
	}

	l.logger.Info("Initializing OpenSearch data from PostgreSQL...", "batch_size", l.config.BatchSize)

	indexed, err := l.index.Reindex(ctx, l.source, l.config.BatchSize)
	result.EventsProcessed = indexed
	result.CompletedAt = time.Now()
	result.Duration = result.CompletedAt.Sub(result.StartedAt)
	if err != nil {
		return result, fmt.Errorf("failed to initialize opensearch data: %w", err)
	}

	l.logger.Info("OpenSearch initialization completed successfully",
		"events_indexed", indexed,
		"duration", result.Duration,
	)

	return result, nil
}

// CheckSyncStatus сравнивает количество событий в источнике и индексе
func (l *Loader) CheckSyncStatus(ctx context.Context) (*SyncStatus, error) {
	pgCount, err := count(ctx, l.source)
	if err != nil {
		return nil, fmt.Errorf("failed to get PostgreSQL events count: %w", err)
	}

	osCount, err := count(ctx, l.index)
	if err != nil {
		return nil, fmt.Errorf("failed to get OpenSearch events count: %w", err)
	}

	return &SyncStatus{
		PostgreSQLCount: pgCount,
		OpenSearchCount: osCount,
		InSync:          pgCount == osCount,
		Difference:      pgCount - osCount,
		LastChecked:     time.Now(),
	}, nil
}

// count - общее число событий; достаточно одной записи на странице
func count(ctx context.Context, s db.EventSearcher) (int64, error) {
	res, err := s.SearchEvents(ctx, db.NewEventFilter(db.WithLimit(1)))
	if err != nil {
		return 0, err
	}
	return res.Total, nil
}
