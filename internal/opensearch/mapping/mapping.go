package mapping

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"net/http"

	"github.com/rx3lixir/event-discovery/internal/opensearch/client"
	"github.com/rx3lixir/event-discovery/pkg/logger"
)

//go:embed events.json
var mappingFiles embed.FS

type Manager struct {
	client *client.Client
	logger logger.Logger
}

func NewManager(client *client.Client, log logger.Logger) *Manager {
	return &Manager{
		client: client,
		logger: log,
	}
}

// EnsureIndex создает индекс событий, если его еще нет. Существующий индекс не меняется.
func (m *Manager) EnsureIndex(ctx context.Context) error {
	indexName := m.client.IndexName()

	exists, err := m.indexExists(ctx, indexName)
	if err != nil {
		return fmt.Errorf("failed to check index existence: %w", err)
	}
	if exists {
		m.logger.Info("OpenSearch index already exists", "index", indexName)
		return nil
	}

	return m.createIndex(ctx, indexName)
}

func (m *Manager) indexExists(ctx context.Context, indexName string) (bool, error) {
	native := m.client.Native()

	res, err := native.Indices.Exists(
		[]string{indexName},
		native.Indices.Exists.WithContext(ctx),
	)
	if err != nil {
		return false, err
	}
	defer res.Body.Close()

	switch res.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("unexpected status: %s", res.Status())
	}
}

func (m *Manager) createIndex(ctx context.Context, indexName string) error {
	mapping, err := EventsMapping()
	if err != nil {
		return fmt.Errorf("failed to load mapping: %w", err)
	}

	native := m.client.Native()
	res, err := native.Indices.Create(
		indexName,
		native.Indices.Create.WithContext(ctx),
		native.Indices.Create.WithBody(bytes.NewReader(mapping)),
	)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("failed to create index, status: %s", res.Status())
	}

	m.logger.Info("OpenSearch index created successfully", "index", indexName)

	return nil
}

// EventsMapping возвращает настройки и маппинг индекса событий
func EventsMapping() ([]byte, error) {
	data, err := mappingFiles.ReadFile("events.json")
	if err != nil {
		return nil, fmt.Errorf("failed to read events mapping: %w", err)
	}
	return data, nil
}
