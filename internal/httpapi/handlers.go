package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"

	"github.com/rx3lixir/event-discovery/internal/discovery"
	"github.com/rx3lixir/event-discovery/internal/predicate"
	"github.com/rx3lixir/event-discovery/internal/urlparams"
)

// Служебные параметры запроса; в FilterState не попадают
const (
	queryMap       = "map"
	queryOnline    = "online"
	queryInPerson  = "inPerson"
	queryChannelID = "channelId"
	queryLimit     = "limit"
	queryOffset    = "offset"
)

var errInvalidPage = errors.New("limit and offset must be non-negative integers")

type stateResponse struct {
	Filters any    `json:"filters"`
	Query   string `json:"query"`
}

type whereResponse struct {
	Where      map[string]any `json:"where"`
	Conditions int            `json:"conditions"`
}

func (a *API) searchEvents(route discovery.RouteContext) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		a.search(w, r, route)
	}
}

func (a *API) searchChannelEvents(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	a.search(w, r, discovery.RouteContext{ChannelID: ps.ByName("channelId")})
}

func (a *API) search(w http.ResponseWriter, r *http.Request, route discovery.RouteContext) {
	query := r.URL.Query()

	page, err := parsePage(query.Get(queryLimit), query.Get(queryOffset))
	if err != nil {
		respondWithError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	view := route.View(flag(query.Get(queryMap)))

	result, err := a.service.Search(r.Context(), urlparams.FromQuery(query), route, view, page)
	if err != nil {
		a.respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

// filterState возвращает разобранное состояние и его каноническую строку запроса
func (a *API) filterState(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query := r.URL.Query()

	state, err := a.service.ParseFilters(urlparams.FromQuery(query), routeFromQuery(query))
	if err != nil {
		a.respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, stateResponse{
		Filters: state,
		Query:   urlparams.Encode(state),
	})
}

// filterWhere возвращает скомпилированное дерево условий в форме GraphQL where
func (a *API) filterWhere(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query := r.URL.Query()
	route := routeFromQuery(query)

	state, err := a.service.ParseFilters(urlparams.FromQuery(query), route)
	if err != nil {
		a.respondWithServiceError(w, r, err)
		return
	}

	where := a.service.Where(state, route.View(flag(query.Get(queryMap))))

	respondWithJSON(w, http.StatusOK, whereResponse{
		Where:      predicate.Wire(where),
		Conditions: predicate.CountLeaves(where),
	})
}

func (a *API) vocabulary(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	respondWithJSON(w, http.StatusOK, a.service.Vocabulary())
}

// checkConsistency сверяет исполнителей; без параметров - по всем событиям
func (a *API) checkConsistency(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var where predicate.Node

	query := r.URL.Query()
	if len(query) > 0 {
		route := routeFromQuery(query)
		state, err := a.service.ParseFilters(urlparams.FromQuery(query), route)
		if err != nil {
			a.respondWithServiceError(w, r, err)
			return
		}
		where = a.service.Where(state, route.View(flag(query.Get(queryMap))))
	}

	result, err := a.consistency.CheckConsistency(r.Context(), where)
	if err != nil {
		a.log.Error("Consistency check failed", "error", err)
		respondWithError(w, r, http.StatusBadGateway, "consistency check failed")
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

func (a *API) checkSyncStatus(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	status, err := a.syncStatus.CheckSyncStatus(r.Context())
	if err != nil {
		a.log.Error("Sync status check failed", "error", err)
		respondWithError(w, r, http.StatusBadGateway, "sync status check failed")
		return
	}

	respondWithJSON(w, http.StatusOK, status)
}

func (a *API) respondWithServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, urlparams.ErrMalformedStructuredField):
		respondWithError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, predicate.ErrUnsupportedPredicate):
		respondWithError(w, r, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, discovery.ErrBackend):
		respondWithError(w, r, http.StatusBadGateway, discovery.ErrBackend.Error())
	default:
		a.log.Error("Request failed",
			"path", r.URL.Path,
			"request_id", RequestIDFromContext(r.Context()),
			"error", err,
		)
		respondWithError(w, r, http.StatusInternalServerError, "internal error")
	}
}

// routeFromQuery - контекст маршрута для эндпоинтов /filters и /admin
func routeFromQuery(query map[string][]string) discovery.RouteContext {
	get := func(key string) string {
		if v := query[key]; len(v) > 0 {
			return v[0]
		}
		return ""
	}
	return discovery.RouteContext{
		ChannelID:    get(queryChannelID),
		OnlineOnly:   flag(get(queryOnline)),
		InPersonOnly: flag(get(queryInPerson)),
	}
}

func parsePage(limit, offset string) (discovery.Page, error) {
	var page discovery.Page

	if limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n < 0 {
			return page, errInvalidPage
		}
		page.Limit = n
	}
	if offset != "" {
		n, err := strconv.Atoi(offset)
		if err != nil || n < 0 {
			return page, errInvalidPage
		}
		page.Offset = n
	}

	return page, nil
}

// flag - неразбираемое значение считается false
func flag(v string) bool {
	b, _ := strconv.ParseBool(v)
	return b
}
