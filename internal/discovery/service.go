// Package discovery связывает разбор параметров, компиляцию фильтра и исполнителя запросов.
package discovery

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rx3lixir/event-discovery/internal/compiler"
	"github.com/rx3lixir/event-discovery/internal/db"
	"github.com/rx3lixir/event-discovery/internal/filterstate"
	"github.com/rx3lixir/event-discovery/internal/lookup"
	"github.com/rx3lixir/event-discovery/internal/predicate"
	"github.com/rx3lixir/event-discovery/internal/urlparams"
	"github.com/rx3lixir/event-discovery/pkg/logger"
	"github.com/rx3lixir/event-discovery/pkg/metrics"
)

// ErrBackend - исполнитель запросов вернул ошибку
var ErrBackend = errors.New("search backend failed")

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Clock - единственный источник текущего времени
type Clock func() time.Time

// RouteContext - откуда пришел запрос
type RouteContext struct {
	ChannelID    string
	OnlineOnly   bool
	InPersonOnly bool
}

// ViewContext - состояние представления, влияющее на запрос
type ViewContext struct {
	ShowMap    bool
	ChannelID  string
	OnlineOnly bool
}

// View строит ViewContext для маршрута
func (r RouteContext) View(showMap bool) ViewContext {
	return ViewContext{
		ShowMap:    showMap,
		ChannelID:  r.ChannelID,
		OnlineOnly: r.OnlineOnly,
	}
}

// Page - запрошенная страница; нулевые значения заменяются настройками сервиса
type Page struct {
	Limit  int
	Offset int
}

// Result - выдача вместе с состоянием фильтра, по которому она получена
type Result struct {
	Events  []*db.Event              `json:"events"`
	Total   int64                    `json:"total"`
	Filters *filterstate.FilterState `json:"filters"`
	Query   string                   `json:"query"`
	Limit   int                      `json:"limit"`
	Offset  int                      `json:"offset"`
}

type Service struct {
	backend               db.EventSearcher
	backendName           string
	clock                 Clock
	location              *time.Location
	structuredTimeFilters bool
	defaultPageSize       int
	maxPageSize           int
	logger                logger.Logger
}

// Option настраивает Service
type Option func(*Service)

func WithClock(clock Clock) Option {
	return func(s *Service) {
		s.clock = clock
	}
}

// WithLocation задает часовой пояс для календарных вычислений
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.location = loc
		}
	}
}

func WithStructuredTimeFilters(enabled bool) Option {
	return func(s *Service) {
		s.structuredTimeFilters = enabled
	}
}

func WithPageSizes(defaultSize, maxSize int) Option {
	return func(s *Service) {
		if defaultSize > 0 {
			s.defaultPageSize = defaultSize
		}
		if maxSize > 0 {
			s.maxPageSize = maxSize
		}
	}
}

func NewService(backend db.EventSearcher, backendName string, log logger.Logger, opts ...Option) *Service {
	s := &Service{
		backend:               backend,
		backendName:           backendName,
		clock:                 time.Now,
		location:              time.UTC,
		structuredTimeFilters: true,
		defaultPageSize:       defaultPageSize,
		maxPageSize:           maxPageSize,
		logger:                log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ParseFilters разбирает параметры запроса в FilterState
func (s *Service) ParseFilters(params urlparams.Params, route RouteContext) (*filterstate.FilterState, error) {
	return urlparams.Deserialize(params, urlparams.Context{
		ChannelID:             route.ChannelID,
		IsOnlineOnlyRoute:     route.OnlineOnly,
		IsInPersonOnlyRoute:   route.InPersonOnly,
		StructuredTimeFilters: s.structuredTimeFilters,
	})
}

// Where компилирует состояние в дерево условий на текущий момент
func (s *Service) Where(state *filterstate.FilterState, view ViewContext) predicate.And {
	now := s.clock().In(s.location)
	return compiler.Compile(state, compiler.Context{
		ShowMap:    view.ShowMap,
		ChannelID:  view.ChannelID,
		OnlineOnly: view.OnlineOnly,
	}, now)
}

// Search - полный цикл: разбор, компиляция, выполнение
func (s *Service) Search(ctx context.Context, params urlparams.Params, route RouteContext, view ViewContext, page Page) (*Result, error) {
	start := time.Now()

	state, err := s.ParseFilters(params, route)
	metrics.RecordFilterParse(err)
	if err != nil {
		return nil, err
	}

	where := s.Where(state, view)
	metrics.RecordCompiledFilter(shortcutLabel(state.TimeShortcut), predicate.CountLeaves(where))

	limit, offset := s.normalizePage(page)
	filter := db.NewEventFilter(
		db.WithWhere(where),
		db.WithPagination(limit, offset),
		db.WithDescending(state.ResultsOrder.Descending()),
	)

	res, err := s.backend.SearchEvents(ctx, filter)
	metrics.RecordSearchRequest(s.backendName, err, time.Since(start))
	if err != nil {
		s.logger.Error("Search failed",
			"backend", s.backendName,
			"channel_id", route.ChannelID,
			"error", err,
		)
		return nil, fmt.Errorf("%w: %w", ErrBackend, err)
	}

	s.logger.Debug("Search completed",
		"backend", s.backendName,
		"conditions", len(where.Children),
		"total", res.Total,
		"returned", len(res.Events),
		"duration", time.Since(start),
	)

	return &Result{
		Events:  res.Events,
		Total:   res.Total,
		Filters: state,
		Query:   urlparams.Encode(state),
		Limit:   limit,
		Offset:  offset,
	}, nil
}

func (s *Service) normalizePage(p Page) (int, int) {
	limit := p.Limit
	if limit <= 0 {
		limit = s.defaultPageSize
	}
	limit = min(limit, s.maxPageSize, db.MaxLimit)

	return limit, max(p.Offset, 0)
}

// shortcutLabel ограничивает значения метки метрики закрытым словарем
func shortcutLabel(s lookup.TimeShortcut) string {
	if !s.IsKnown() {
		return "UNKNOWN"
	}
	return string(s)
}
