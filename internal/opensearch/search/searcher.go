package search

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/rx3lixir/event-discovery/internal/db"
	"github.com/rx3lixir/event-discovery/internal/opensearch/client"
	"github.com/rx3lixir/event-discovery/internal/opensearch/models"
	"github.com/rx3lixir/event-discovery/pkg/logger"
	"github.com/rx3lixir/event-discovery/pkg/metrics"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type Searcher struct {
	client       *client.Client
	queryBuilder *QueryBuilder
	logger       logger.Logger
}

func NewSearcher(client *client.Client, logger logger.Logger) *Searcher {
	return &Searcher{
		client:       client,
		queryBuilder: NewQueryBuilder(),
		logger:       logger,
	}
}

// SearchEvents реализует db.EventSearcher поверх индекса OpenSearch
func (s *Searcher) SearchEvents(ctx context.Context, filter *db.EventFilter) (*db.SearchResult, error) {
	if filter != nil {
		if err := filter.Validate(); err != nil {
			return nil, fmt.Errorf("invalid filter: %w", err)
		}
	}

	result, err := s.Search(ctx, FromEventFilter(filter))
	if err != nil {
		return nil, err
	}
	return result.ToDBResult(), nil
}

// Search выполняет поиск документов по фильтру
func (s *Searcher) Search(ctx context.Context, filter *Filter) (*models.SearchResult, error) {
	if filter == nil {
		filter = NewFilter()
	}

	query, err := s.queryBuilder.BuildSearchQuery(filter)
	if err != nil {
		return nil, fmt.Errorf("failed to build search query: %w", err)
	}

	queryBody, err := json.Marshal(query)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search query: %w", err)
	}

	index := s.client.IndexName()
	native := s.client.Native()

	s.logger.Debug("Executing OpenSearch query",
		"index", index,
		"from", filter.From,
		"size", filter.Size,
	)

	ctx, cancel := context.WithTimeout(ctx, s.client.Timeout())
	defer cancel()

	var searchResult *models.SearchResult
	start := time.Now()

	err = metrics.ObserveOpenSearch("search", index, func() error {
		res, err := native.Search(
			native.Search.WithContext(ctx),
			native.Search.WithIndex(index),
			native.Search.WithBody(bytes.NewReader(queryBody)),
			native.Search.WithTrackTotalHits(true), // Важно для точного подсчета
		)
		if err != nil {
			return fmt.Errorf("failed to execute search: %w", err)
		}
		defer res.Body.Close()

		if res.IsError() {
			body, _ := io.ReadAll(res.Body)
			s.logger.Error("OpenSearch query failed",
				"status", res.Status(),
				"error_body", string(body),
				"query", string(queryBody),
			)
			return fmt.Errorf("search failed with status: %s", res.Status())
		}

		searchResult, err = s.parseSearchResponse(res.Body)
		if err != nil {
			return fmt.Errorf("failed to parse search response: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	searchTime := time.Since(start)
	searchResult.SearchTime = searchTime.String()

	s.logger.Info("Search completed",
		"total_found", searchResult.Total,
		"returned", len(searchResult.Events),
		"search_time", searchTime,
	)

	return searchResult, nil
}

func (s *Searcher) parseSearchResponse(body io.Reader) (*models.SearchResult, error) {
	var response struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source models.EventDocument `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}

	// Сохраняем тело ответа для возможной диагностики
	bodyBytes, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if err := json.Unmarshal(bodyBytes, &response); err != nil {
		s.logger.Error("Failed to parse OpenSearch response",
			"error", err,
			"response_body", string(bodyBytes),
		)
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	events := make([]*models.EventDocument, 0, len(response.Hits.Hits))
	for _, hit := range response.Hits.Hits {
		event := hit.Source
		events = append(events, &event)
	}

	return &models.SearchResult{
		Events: events,
		Total:  response.Hits.Total.Value,
	}, nil
}

// CountEvents возвращает только количество найденных документов
func (s *Searcher) CountEvents(ctx context.Context, filter *Filter) (int64, error) {
	if filter == nil {
		filter = NewFilter()
	}

	query, err := s.queryBuilder.BuildCountQuery(filter)
	if err != nil {
		return 0, fmt.Errorf("failed to build count query: %w", err)
	}

	queryBody, err := json.Marshal(query)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal count query: %w", err)
	}

	index := s.client.IndexName()
	native := s.client.Native()

	ctx, cancel := context.WithTimeout(ctx, s.client.Timeout())
	defer cancel()

	var count int64
	err = metrics.ObserveOpenSearch("count", index, func() error {
		res, err := native.Count(
			native.Count.WithContext(ctx),
			native.Count.WithIndex(index),
			native.Count.WithBody(bytes.NewReader(queryBody)),
		)
		if err != nil {
			return fmt.Errorf("failed to execute count: %w", err)
		}
		defer res.Body.Close()

		if res.IsError() {
			return fmt.Errorf("count failed with status: %s", res.Status())
		}

		var countResponse struct {
			Count int64 `json:"count"`
		}
		if err := json.NewDecoder(res.Body).Decode(&countResponse); err != nil {
			return fmt.Errorf("failed to decode count response: %w", err)
		}
		count = countResponse.Count
		return nil
	})
	if err != nil {
		return 0, err
	}

	return count, nil
}
