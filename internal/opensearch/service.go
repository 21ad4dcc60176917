// Package opensearch собирает клиент, маппинг, поиск и индексацию в один сервис.
package opensearch

import (
	"context"
	"fmt"

	"github.com/rx3lixir/event-discovery/internal/db"
	"github.com/rx3lixir/event-discovery/internal/opensearch/client"
	"github.com/rx3lixir/event-discovery/internal/opensearch/indexing"
	"github.com/rx3lixir/event-discovery/internal/opensearch/mapping"
	"github.com/rx3lixir/event-discovery/internal/opensearch/search"
	"github.com/rx3lixir/event-discovery/pkg/logger"
)

// Service представляет сервис для работы с событиями в OpenSearch
type Service struct {
	client   *client.Client
	mapping  *mapping.Manager
	searcher *search.Searcher
	indexer  *indexing.Manager
	health   *client.HealthChecker
	log      logger.Logger
}

// NewService создает новый сервис OpenSearch
func NewService(cfg *client.Config, log logger.Logger) (*Service, error) {
	c, err := client.New(cfg, log)
	if err != nil {
		return nil, err
	}

	return &Service{
		client:   c,
		mapping:  mapping.NewManager(c, log),
		searcher: search.NewSearcher(c, log),
		indexer:  indexing.NewManager(c, nil, log),
		health:   client.NewHealthChecker(c),
		log:      log,
	}, nil
}

// Init дожидается кластера и создает индекс, если его нет
func (s *Service) Init(ctx context.Context, maxRetries int) error {
	if err := s.health.WaitForHealthy(ctx, maxRetries, s.client.Timeout()); err != nil {
		return err
	}
	if err := s.mapping.EnsureIndex(ctx); err != nil {
		return fmt.Errorf("failed to ensure index: %w", err)
	}
	return nil
}

// SearchEvents реализует db.EventSearcher
func (s *Service) SearchEvents(ctx context.Context, filter *db.EventFilter) (*db.SearchResult, error) {
	return s.searcher.SearchEvents(ctx, filter)
}

// Reindex переносит события из источника (обычно PostgreSQL) в индекс
func (s *Service) Reindex(ctx context.Context, source db.EventSearcher, batchSize int) (int, error) {
	return s.indexer.Reindex(ctx, source, batchSize)
}

// Check используется проверкой /health
func (s *Service) Check(ctx context.Context) error {
	return s.health.Check(ctx)
}

func (s *Service) IndexName() string {
	return s.client.IndexName()
}
