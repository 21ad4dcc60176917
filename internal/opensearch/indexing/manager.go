package indexing

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"github.com/rx3lixir/event-discovery/internal/db"
	"github.com/rx3lixir/event-discovery/internal/opensearch/client"
	"github.com/rx3lixir/event-discovery/internal/opensearch/models"
	"github.com/rx3lixir/event-discovery/pkg/logger"
	"github.com/rx3lixir/event-discovery/pkg/metrics"
)

type Manager struct {
	client     *client.Client
	bulk       *bulkWriter
	retryLogic *RetryLogic
	logger     logger.Logger
}

func NewManager(client *client.Client, retryLogic *RetryLogic, logger logger.Logger) *Manager {
	if retryLogic == nil {
		retryLogic = NewRetryLogic(logger)
	}

	return &Manager{
		client:     client,
		bulk:       newBulkWriter(client, retryLogic, logger),
		retryLogic: retryLogic,
		logger:     logger,
	}
}

func (m *Manager) IndexEvent(ctx context.Context, event *db.Event) error {
	doc := models.FromDBEvent(event)
	if doc == nil {
		return fmt.Errorf("event is nil")
	}
	if err := doc.ValidateForIndexing(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	return m.retryLogic.ExecuteWithRetry(ctx, func(ctx context.Context) error {
		return m.indexSingleEvent(ctx, doc)
	})
}

func (m *Manager) DeleteEvent(ctx context.Context, eventID string) error {
	return m.retryLogic.ExecuteWithRetry(ctx, func(ctx context.Context) error {
		return m.deleteSingleEvent(ctx, eventID)
	})
}

// BulkIndexEvents индексирует события; невалидные пропускаются с предупреждением.
// Возвращает число документов, принятых кластером.
func (m *Manager) BulkIndexEvents(ctx context.Context, events []*db.Event) (int, error) {
	if len(events) == 0 {
		return 0, nil
	}

	docs := make([]*models.EventDocument, 0, len(events))
	for _, doc := range models.FromDBEvents(events) {
		if err := doc.ValidateForIndexing(); err != nil {
			m.logger.Warn("Skipping invalid event", "event_id", doc.ID, "error", err)
			continue
		}
		docs = append(docs, doc)
	}

	return m.bulk.write(ctx, docs)
}

// Reindex переносит все события из источника в индекс постранично
func (m *Manager) Reindex(ctx context.Context, source db.EventSearcher, batchSize int) (int, error) {
	if batchSize <= 0 || batchSize > db.MaxLimit {
		batchSize = maxBatchSize
	}

	indexed := 0
	for offset := 0; ; offset += batchSize {
		if err := ctx.Err(); err != nil {
			return indexed, err
		}

		page, err := source.SearchEvents(ctx, db.NewEventFilter(db.WithPagination(batchSize, offset)))
		if err != nil {
			return indexed, fmt.Errorf("failed to read events at offset %d: %w", offset, err)
		}

		n, err := m.BulkIndexEvents(ctx, page.Events)
		if err != nil {
			return indexed, fmt.Errorf("failed to index events at offset %d: %w", offset, err)
		}
		indexed += n

		m.logger.Info("Reindex progress",
			"offset", offset,
			"indexed", indexed,
			"total", page.Total,
		)

		if len(page.Events) < batchSize {
			break
		}
	}

	if err := m.refresh(ctx); err != nil {
		return indexed, err
	}

	m.logger.Info("Reindex completed", "indexed", indexed, "index", m.client.IndexName())

	return indexed, nil
}

func (m *Manager) indexSingleEvent(ctx context.Context, doc *models.EventDocument) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	native := m.client.Native()
	index := m.client.IndexName()

	return metrics.ObserveOpenSearch("index", index, func() error {
		res, err := native.Index(
			index,
			bytes.NewReader(body),
			native.Index.WithDocumentID(doc.ID),
			native.Index.WithContext(ctx),
			native.Index.WithRefresh("true"),
		)
		if err != nil {
			return fmt.Errorf("failed to index document: %w", err)
		}
		defer res.Body.Close()

		if res.IsError() {
			return fmt.Errorf("indexing failed with status: %s", res.Status())
		}

		m.logger.Debug("Document indexed successfully",
			"event_id", doc.ID,
			"index", index,
		)
		return nil
	})
}

func (m *Manager) deleteSingleEvent(ctx context.Context, eventID string) error {
	native := m.client.Native()
	index := m.client.IndexName()

	return metrics.ObserveOpenSearch("delete", index, func() error {
		res, err := native.Delete(
			index,
			eventID,
			native.Delete.WithContext(ctx),
			native.Delete.WithRefresh("true"),
		)
		if err != nil {
			return fmt.Errorf("failed to delete document: %w", err)
		}
		defer res.Body.Close()

		// 404 не считается ошибкой при удалении
		if res.IsError() && res.StatusCode != http.StatusNotFound {
			return fmt.Errorf("deletion failed with status: %s", res.Status())
		}

		m.logger.Debug("Document deleted from opensearch",
			"event_id", eventID,
			"status", res.Status(),
		)
		return nil
	})
}

func (m *Manager) refresh(ctx context.Context) error {
	native := m.client.Native()

	res, err := native.Indices.Refresh(
		native.Indices.Refresh.WithContext(ctx),
		native.Indices.Refresh.WithIndex(m.client.IndexName()),
	)
	if err != nil {
		return fmt.Errorf("failed to refresh index: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("index refresh failed with status: %s", res.Status())
	}
	return nil
}
