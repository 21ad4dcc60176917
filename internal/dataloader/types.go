package dataloader

import (
	"context"
	"time"

	"github.com/rx3lixir/event-discovery/internal/db"
)

// Index - индекс поиска, который можно заполнить из источника
type Index interface {
	db.EventSearcher
	Reindex(ctx context.Context, source db.EventSearcher, batchSize int) (int, error)
}

// SyncStatus представляет состояние синхронизации между PostgreSQL и OpenSearch
type SyncStatus struct {
	PostgreSQLCount int64     `json:"postgresql_count"`
	OpenSearchCount int64     `json:"opensearch_count"`
	InSync          bool      `json:"in_sync"`
	Difference      int64     `json:"difference"`
	LastChecked     time.Time `json:"last_checked"`
}

// SyncConfig содержит настройки для синхронизации
type SyncConfig struct {
	BatchSize int  `mapstructure:"batch_size" validate:"min=0,max=1000"`
	ForceSync bool `mapstructure:"force_sync"`
}

// DefaultSyncConfig возвращает конфигурацию по умолчанию
func DefaultSyncConfig() *SyncConfig {
	return &SyncConfig{
		BatchSize: 100,
		ForceSync: false,
	}
}

// SyncResult содержит результаты операции синхронизации
type SyncResult struct {
	Skipped         bool          `json:"skipped"`
	EventsProcessed int           `json:"events_processed"`
	Duration        time.Duration `json:"duration"`
	StartedAt       time.Time     `json:"started_at"`
	CompletedAt     time.Time     `json:"completed_at"`
}
