// Package httpapi - HTTP интерфейс поиска событий.
package httpapi

import (
	"context"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/cors"

	"github.com/rx3lixir/event-discovery/internal/dataloader"
	"github.com/rx3lixir/event-discovery/internal/discovery"
	"github.com/rx3lixir/event-discovery/internal/predicate"
	"github.com/rx3lixir/event-discovery/pkg/consistency"
	"github.com/rx3lixir/event-discovery/pkg/logger"
)

// ConsistencyChecker сверяет выдачу двух исполнителей
type ConsistencyChecker interface {
	CheckConsistency(ctx context.Context, where predicate.Node) (*consistency.CheckResult, error)
}

// SyncStatusChecker сравнивает количество событий в базе и в индексе
type SyncStatusChecker interface {
	CheckSyncStatus(ctx context.Context) (*dataloader.SyncStatus, error)
}

type API struct {
	service        *discovery.Service
	consistency    ConsistencyChecker
	syncStatus     SyncStatusChecker
	allowedOrigins []string
	log            logger.Logger
}

type Option func(*API)

// WithConsistency включает /api/v1/admin/consistency
func WithConsistency(c ConsistencyChecker) Option {
	return func(a *API) {
		a.consistency = c
	}
}

// WithSyncStatus включает /api/v1/admin/sync
func WithSyncStatus(s SyncStatusChecker) Option {
	return func(a *API) {
		a.syncStatus = s
	}
}

func WithAllowedOrigins(origins []string) Option {
	return func(a *API) {
		if len(origins) > 0 {
			a.allowedOrigins = origins
		}
	}
}

func New(service *discovery.Service, log logger.Logger, opts ...Option) *API {
	a := &API{
		service:        service,
		allowedOrigins: []string{"*"},
		log:            log,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Handler собирает маршруты и middleware: request id → CORS → router
func (a *API) Handler() http.Handler {
	router := httprouter.New()

	a.handle(router, http.MethodGet, "/api/v1/events", a.searchEvents(discovery.RouteContext{}))
	a.handle(router, http.MethodGet, "/api/v1/events/online", a.searchEvents(discovery.RouteContext{OnlineOnly: true}))
	a.handle(router, http.MethodGet, "/api/v1/events/in-person", a.searchEvents(discovery.RouteContext{InPersonOnly: true}))
	a.handle(router, http.MethodGet, "/api/v1/channels/:channelId/events", a.searchChannelEvents)

	a.handle(router, http.MethodGet, "/api/v1/filters/state", a.filterState)
	a.handle(router, http.MethodGet, "/api/v1/filters/where", a.filterWhere)
	a.handle(router, http.MethodGet, "/api/v1/filters/vocabulary", a.vocabulary)

	if a.consistency != nil {
		a.handle(router, http.MethodGet, "/api/v1/admin/consistency", a.checkConsistency)
	}
	if a.syncStatus != nil {
		a.handle(router, http.MethodGet, "/api/v1/admin/sync", a.checkSyncStatus)
	}

	router.NotFound = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondWithError(w, r, http.StatusNotFound, "route not found")
	})

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: a.allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", RequestIDHeader},
		ExposedHeaders: []string{RequestIDHeader},
	}).Handler(router)

	return withRequestID(corsHandler)
}

func (a *API) handle(router *httprouter.Router, method, path string, h httprouter.Handle) {
	router.Handle(method, path, instrument(path, a.log, h))
}
