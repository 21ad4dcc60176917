package indexing

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	jsoniter "github.com/json-iterator/go"

	"github.com/rx3lixir/event-discovery/internal/opensearch/client"
	"github.com/rx3lixir/event-discovery/internal/opensearch/models"
	"github.com/rx3lixir/event-discovery/pkg/logger"
	"github.com/rx3lixir/event-discovery/pkg/metrics"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const maxBatchSize = 100

// bulkAction - строка действия NDJSON перед каждым документом
type bulkAction struct {
	Index bulkTarget `json:"index"`
}

type bulkTarget struct {
	Index string `json:"_index"`
	ID    string `json:"_id"`
}

// BulkItemFailure - документ, отклоненный кластером
type BulkItemFailure struct {
	ID     string
	Type   string
	Reason string
}

type bulkResponse struct {
	Errors bool `json:"errors"`
	Items  []struct {
		Index struct {
			ID     string `json:"_id"`
			Status int    `json:"status"`
			Error  *struct {
				Type   string `json:"type"`
				Reason string `json:"reason"`
			} `json:"error,omitempty"`
		} `json:"index"`
	} `json:"items"`
}

// bulkWriter отправляет документы в _bulk батчами по maxBatchSize
type bulkWriter struct {
	client *client.Client
	retry  *RetryLogic
	logger logger.Logger
}

func newBulkWriter(client *client.Client, retry *RetryLogic, logger logger.Logger) *bulkWriter {
	return &bulkWriter{
		client: client,
		retry:  retry,
		logger: logger,
	}
}

// write возвращает число принятых документов.
// Частично отклоненный батч не считается ошибкой; полностью отклоненный - считается.
func (b *bulkWriter) write(ctx context.Context, docs []*models.EventDocument) (int, error) {
	accepted := 0

	for start := 0; start < len(docs); start += maxBatchSize {
		batch := docs[start:min(start+maxBatchSize, len(docs))]

		body, err := b.encodeBatch(batch)
		if err != nil {
			return accepted, err
		}

		var failures []BulkItemFailure
		err = b.retry.ExecuteWithRetry(ctx, func(ctx context.Context) error {
			return metrics.ObserveOpenSearch("bulk", b.client.IndexName(), func() error {
				failures, err = b.send(ctx, body)
				return err
			})
		})
		if err != nil {
			return accepted, fmt.Errorf("failed to write batch at %d: %w", start, err)
		}

		if len(failures) == len(batch) {
			return accepted, fmt.Errorf("all %d documents rejected, first: %s (%s)",
				len(batch), failures[0].Reason, failures[0].Type)
		}
		if len(failures) > 0 {
			b.logger.Warn("Bulk batch partially rejected",
				"batch_start", start,
				"rejected", len(failures),
				"first_id", failures[0].ID,
				"first_reason", failures[0].Reason,
			)
		}

		accepted += len(batch) - len(failures)
	}

	return accepted, nil
}

// encodeBatch собирает NDJSON: строка действия, затем строка документа
func (b *bulkWriter) encodeBatch(docs []*models.EventDocument) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	index := b.client.IndexName()

	for _, doc := range docs {
		if err := enc.Encode(bulkAction{Index: bulkTarget{Index: index, ID: doc.ID}}); err != nil {
			return nil, fmt.Errorf("failed to encode action for %s: %w", doc.ID, err)
		}
		if err := enc.Encode(doc); err != nil {
			return nil, fmt.Errorf("failed to encode document %s: %w", doc.ID, err)
		}
	}

	return buf.Bytes(), nil
}

func (b *bulkWriter) send(ctx context.Context, body []byte) ([]BulkItemFailure, error) {
	native := b.client.Native()

	res, err := native.Bulk(
		bytes.NewReader(body),
		native.Bulk.WithContext(ctx),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to execute bulk request: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		err := fmt.Errorf("bulk request failed with status: %s", res.Status())
		// 4xx кроме 429 не лечится повтором
		if res.StatusCode < http.StatusInternalServerError && res.StatusCode != http.StatusTooManyRequests {
			return nil, Permanent(err)
		}
		return nil, err
	}

	return decodeBulkResponse(res.Body)
}

func decodeBulkResponse(body io.Reader) ([]BulkItemFailure, error) {
	var response bulkResponse
	if err := json.NewDecoder(body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode bulk response: %w", err)
	}

	if !response.Errors {
		return nil, nil
	}

	var failures []BulkItemFailure
	for _, item := range response.Items {
		if item.Index.Error == nil {
			continue
		}
		failures = append(failures, BulkItemFailure{
			ID:     item.Index.ID,
			Type:   item.Index.Error.Type,
			Reason: item.Index.Error.Reason,
		})
	}
	return failures, nil
}
