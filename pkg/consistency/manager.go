// Package consistency сравнивает результаты двух исполнителей запросов
// (PostgreSQL и OpenSearch) для одного и того же дерева условий.
package consistency

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rx3lixir/event-discovery/internal/db"
	"github.com/rx3lixir/event-discovery/internal/predicate"
	"github.com/rx3lixir/event-discovery/pkg/logger"
)

// Manager отвечает за проверку консистентности данных
// между PostgreSQL и OpenSearch
type Manager struct {
	source        db.EventSearcher
	index         db.EventSearcher
	log           logger.Logger
	maxEvents     int
	mu            sync.RWMutex
	lastCheck     *CheckResult
	lastCheckTime time.Time
	checkCacheTTL time.Duration
}

// CheckResult результат проверки консистентности
type CheckResult struct {
	IsConsistent     bool            `json:"isConsistent"`
	Truncated        bool            `json:"truncated"`
	TotalEventsDB    int64           `json:"totalEventsDb"`
	TotalEventsIndex int64           `json:"totalEventsIndex"`
	MissingInIndex   []string        `json:"missingInIndex,omitempty"`
	MissingInDB      []string        `json:"missingInDb,omitempty"`
	Mismatches       []EventMismatch `json:"mismatches,omitempty"`
	CheckDuration    time.Duration   `json:"checkDuration"`
	Timestamp        time.Time       `json:"timestamp"`
}

// EventMismatch описывает несоответствия между данными
type EventMismatch struct {
	EventID    string `json:"eventId"`
	Field      string `json:"field"`
	DBValue    string `json:"dbValue"`
	IndexValue string `json:"indexValue"`
}

// New создает новый менеджер консистентности
func New(source, index db.EventSearcher, log logger.Logger) *Manager {
	return &Manager{
		source:        source,
		index:         index,
		log:           log,
		maxEvents:     10 * db.MaxLimit,
		checkCacheTTL: 1 * time.Minute,
	}
}

// CheckConsistency сравнивает выдачу обоих исполнителей для дерева условий.
// Результат для where == nil кэшируется на checkCacheTTL.
func (m *Manager) CheckConsistency(ctx context.Context, where predicate.Node) (*CheckResult, error) {
	if where == nil {
		if result := m.getCachedResult(); result != nil {
			m.log.Debug("returning cached consistency check result")
			return result, nil
		}
	}

	m.log.Info("starting consistency check")
	start := time.Now()

	result := &CheckResult{
		Timestamp:    start,
		IsConsistent: true,
	}

	dbEvents, dbTotal, dbTruncated, err := m.collect(ctx, m.source, where)
	if err != nil {
		return nil, fmt.Errorf("failed to get events from database: %w", err)
	}
	indexEvents, indexTotal, indexTruncated, err := m.collect(ctx, m.index, where)
	if err != nil {
		return nil, fmt.Errorf("failed to get events from index: %w", err)
	}

	result.TotalEventsDB = dbTotal
	result.TotalEventsIndex = indexTotal
	result.Truncated = dbTruncated || indexTruncated

	if dbTotal != indexTotal {
		result.IsConsistent = false
	}

	// Проверяем события, которые есть в БД, но нет в индексе
	for id, dbEvent := range dbEvents {
		indexEvent, exists := indexEvents[id]
		if !exists {
			result.MissingInIndex = append(result.MissingInIndex, id)
			result.IsConsistent = false
			continue
		}
		if mismatches := compareEvent(dbEvent, indexEvent); len(mismatches) > 0 {
			result.Mismatches = append(result.Mismatches, mismatches...)
			result.IsConsistent = false
		}
	}

	// Проверяем события, которые есть в индексе, но нет в БД
	for id := range indexEvents {
		if _, exists := dbEvents[id]; !exists {
			result.MissingInDB = append(result.MissingInDB, id)
			result.IsConsistent = false
		}
	}

	sort.Strings(result.MissingInIndex)
	sort.Strings(result.MissingInDB)
	sort.Slice(result.Mismatches, func(i, j int) bool {
		if result.Mismatches[i].EventID != result.Mismatches[j].EventID {
			return result.Mismatches[i].EventID < result.Mismatches[j].EventID
		}
		return result.Mismatches[i].Field < result.Mismatches[j].Field
	})

	result.CheckDuration = time.Since(start)

	if where == nil {
		m.setCachedResult(result)
	}

	m.log.Info("consistency check completed",
		"is_consistent", result.IsConsistent,
		"total_db", result.TotalEventsDB,
		"total_index", result.TotalEventsIndex,
		"missing_in_index", len(result.MissingInIndex),
		"missing_in_db", len(result.MissingInDB),
		"mismatches", len(result.Mismatches),
		"duration", result.CheckDuration,
	)

	return result, nil
}

// collect читает выдачу исполнителя постранично, но не больше maxEvents событий
func (m *Manager) collect(ctx context.Context, s db.EventSearcher, where predicate.Node) (map[string]*db.Event, int64, bool, error) {
	events := make(map[string]*db.Event)
	var total int64

	for offset := 0; offset < m.maxEvents; offset += db.MaxLimit {
		page, err := s.SearchEvents(ctx, db.NewEventFilter(
			db.WithWhere(where),
			db.WithPagination(db.MaxLimit, offset),
		))
		if err != nil {
			return nil, 0, false, err
		}
		total = page.Total

		for _, e := range page.Events {
			events[e.ID] = e
		}
		if len(page.Events) < db.MaxLimit {
			return events, total, false, nil
		}
	}

	return events, total, int64(len(events)) < total, nil
}

// compareEvent сравнивает поля, по которым строятся условия
func compareEvent(dbEvent, indexEvent *db.Event) []EventMismatch {
	var mismatches []EventMismatch

	add := func(field, dbValue, indexValue string) {
		if dbValue != indexValue {
			mismatches = append(mismatches, EventMismatch{
				EventID:    dbEvent.ID,
				Field:      field,
				DBValue:    dbValue,
				IndexValue: indexValue,
			})
		}
	}

	add("title", dbEvent.Title, indexEvent.Title)
	add("startTime", formatTime(dbEvent.StartTime), formatTime(indexEvent.StartTime))
	add("canceled", fmt.Sprint(dbEvent.Canceled), fmt.Sprint(indexEvent.Canceled))
	add("free", formatBool(dbEvent.Free), formatBool(indexEvent.Free))
	add("online", fmt.Sprint(dbEvent.IsOnline()), fmt.Sprint(indexEvent.IsOnline()))
	add("tags", fmt.Sprint(sorted(dbEvent.Tags)), fmt.Sprint(sorted(indexEvent.Tags)))
	add("channels", fmt.Sprint(sorted(dbEvent.Channels)), fmt.Sprint(sorted(indexEvent.Channels)))

	return mismatches
}

func formatTime(t time.Time) string {
	return t.UTC().Format(predicate.TimeLayout)
}

func formatBool(b *bool) string {
	if b == nil {
		return "null"
	}
	return fmt.Sprint(*b)
}

func sorted(values []string) []string {
	out := append([]string(nil), values...)
	sort.Strings(out)
	return out
}

// getCachedResult возвращает закэшированный результат, если он еще актуален
func (m *Manager) getCachedResult() *CheckResult {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.lastCheck == nil {
		return nil
	}

	if time.Since(m.lastCheckTime) > m.checkCacheTTL {
		return nil
	}

	return m.lastCheck
}

// setCachedResult сохраняет результат в кэш
func (m *Manager) setCachedResult(result *CheckResult) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lastCheck = result
	m.lastCheckTime = time.Now()
}

// SetCacheTTL устанавливает время жизни кэша результатов
func (m *Manager) SetCacheTTL(ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.checkCacheTTL = ttl
}
