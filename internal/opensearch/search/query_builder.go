package search

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rx3lixir/event-discovery/internal/predicate"
)

type fieldKind int

const (
	kindValue fieldKind = iota
	kindGeo
	kindCount
)

// field - поле индекса, в которое переводится поле дерева условий
type field struct {
	name string
	kind fieldKind
}

// scope - поля, доступные на данном уровне дерева.
// Связи в индексе денормализованы в массивы keyword, поэтому внутри связи
// отрицание не выражается и считается неподдерживаемым.
type scope struct {
	fields     map[string]field
	relations  map[string]scope
	aggregates map[string]scope
	relation   bool
}

var eventScope = scope{
	fields: map[string]field{
		"title":              {name: "title.keyword"},
		"description":        {name: "description.keyword"},
		"startTime":          {name: "start_time"},
		"startTimeDayOfWeek": {name: "start_time_day_of_week"},
		"startTimeHourOfDay": {name: "start_time_hour_of_day"},
		"free":               {name: "free"},
		"canceled":           {name: "canceled"},
		"virtualEventUrl":    {name: "virtual_event_url"},
		"locationName":       {name: "location_name"},
		"location":           {name: "location", kind: kindGeo},
	},
	relations: map[string]scope{
		"Tags": {
			fields:   map[string]field{"text": {name: "tags"}},
			relation: true,
		},
		"EventChannels": {
			fields:   map[string]field{"channelUniqueName": {name: "channels"}},
			relation: true,
		},
	},
	aggregates: map[string]scope{
		"EventChannelsAggregate": {
			fields: map[string]field{"count": {name: "channels", kind: kindCount}},
		},
	},
}

type QueryBuilder struct{}

func NewQueryBuilder() *QueryBuilder {
	return &QueryBuilder{}
}

// BuildSearchQuery строит тело запроса _search с пагинацией и сортировкой
func (qb *QueryBuilder) BuildSearchQuery(filter *Filter) (map[string]any, error) {
	query, err := qb.BuildQuery(filter.Where)
	if err != nil {
		return nil, err
	}

	order := filter.sortOrder()

	return map[string]any{
		"from":  filter.From,
		"size":  filter.Size,
		"query": query,
		"sort": []any{
			map[string]any{"start_time": map[string]any{"order": order}},
			map[string]any{"id": map[string]any{"order": order}},
		},
	}, nil
}

// BuildCountQuery строит тело запроса _count
func (qb *QueryBuilder) BuildCountQuery(filter *Filter) (map[string]any, error) {
	query, err := qb.BuildQuery(filter.Where)
	if err != nil {
		return nil, err
	}
	return map[string]any{"query": query}, nil
}

// BuildQuery переводит дерево условий в query DSL
func (qb *QueryBuilder) BuildQuery(where predicate.Node) (map[string]any, error) {
	if where == nil {
		return matchAll(), nil
	}
	return translate(where, eventScope)
}

func translate(n predicate.Node, sc scope) (map[string]any, error) {
	switch v := n.(type) {
	case predicate.And:
		if len(v.Children) == 0 {
			return matchAll(), nil
		}
		children, err := translateAll(v.Children, sc)
		if err != nil {
			return nil, err
		}
		return boolQuery("filter", children), nil

	case predicate.Or:
		// Пустой OR не выполняется никогда
		if len(v.Children) == 0 {
			return map[string]any{"match_none": map[string]any{}}, nil
		}
		children, err := translateAll(v.Children, sc)
		if err != nil {
			return nil, err
		}
		q := boolQuery("should", children)
		q["bool"].(map[string]any)["minimum_should_match"] = 1
		return q, nil

	case predicate.Not:
		if sc.relation {
			return nil, fmt.Errorf("%w: NOT inside relation", predicate.ErrUnsupportedPredicate)
		}
		child, err := translate(v.Child, sc)
		if err != nil {
			return nil, err
		}
		return boolQuery("must_not", []any{child}), nil

	case predicate.Leaf:
		return translateLeaf(v, sc)

	default:
		return nil, fmt.Errorf("%w: node %T", predicate.ErrUnsupportedPredicate, n)
	}
}

func translateAll(children []predicate.Node, sc scope) ([]any, error) {
	out := make([]any, 0, len(children))
	for _, c := range children {
		q, err := translate(c, sc)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, nil
}

func translateLeaf(l predicate.Leaf, sc scope) (map[string]any, error) {
	if l.Op == predicate.OpSome {
		rel, ok := sc.relations[l.Field]
		if !ok {
			return nil, unsupported(l)
		}
		where, ok := l.Value.(predicate.Node)
		if !ok {
			return nil, unsupported(l)
		}
		return translate(where, rel)
	}

	if where, ok := l.Value.(predicate.Node); ok {
		agg, ok := sc.aggregates[l.Field]
		if !ok || l.Op != predicate.OpEquals {
			return nil, unsupported(l)
		}
		return translate(where, agg)
	}

	f, ok := sc.fields[l.Field]
	if !ok {
		return nil, unsupported(l)
	}

	switch f.kind {
	case kindCount:
		return translateCount(l, f)
	case kindGeo:
		return translateGeo(l, f)
	}

	switch l.Op {
	case predicate.OpEquals:
		if l.Value == nil {
			return boolQuery("must_not", []any{exists(f.name)}), nil
		}
		return map[string]any{"term": map[string]any{f.name: value(l.Value)}}, nil

	case predicate.OpContains:
		s, ok := l.Value.(string)
		if !ok {
			return nil, unsupported(l)
		}
		return map[string]any{
			"wildcard": map[string]any{
				f.name: map[string]any{"value": "*" + escapeWildcard(s) + "*"},
			},
		}, nil

	case predicate.OpMatches:
		s, ok := l.Value.(string)
		if !ok {
			return nil, unsupported(l)
		}
		params := map[string]any{"value": s}
		if pattern, insensitive := strings.CutPrefix(s, "(?i)"); insensitive {
			params["value"] = pattern
			params["case_insensitive"] = true
		}
		return map[string]any{"regexp": map[string]any{f.name: params}}, nil

	case predicate.OpGT:
		return rangeQuery(f.name, "gt", l.Value), nil

	case predicate.OpLT:
		return rangeQuery(f.name, "lt", l.Value), nil

	case predicate.OpLTE:
		return rangeQuery(f.name, "lte", l.Value), nil

	default:
		return nil, unsupported(l)
	}
}

func translateGeo(l predicate.Leaf, f field) (map[string]any, error) {
	switch {
	case l.Op == predicate.OpEquals && l.Value == nil:
		return boolQuery("must_not", []any{exists(f.name)}), nil

	case l.Op == predicate.OpLTE:
		d, ok := l.Value.(predicate.Distance)
		if !ok {
			return nil, unsupported(l)
		}
		return map[string]any{
			"geo_distance": map[string]any{
				"distance": strconv.FormatFloat(d.Meters, 'f', -1, 64) + "m",
				f.name: map[string]any{
					"lat": d.Point.Latitude,
					"lon": d.Point.Longitude,
				},
			},
		}, nil

	default:
		return nil, unsupported(l)
	}
}

// translateCount - количество элементов массива; поддерживается только _GT
func translateCount(l predicate.Leaf, f field) (map[string]any, error) {
	if l.Op != predicate.OpGT {
		return nil, unsupported(l)
	}

	n, ok := toInt(l.Value)
	if !ok {
		return nil, unsupported(l)
	}

	if n == 0 {
		return exists(f.name), nil
	}

	return map[string]any{
		"script": map[string]any{
			"script": map[string]any{
				"source": fmt.Sprintf("doc['%s'].size() > params.n", f.name),
				"params": map[string]any{"n": n},
			},
		},
	}, nil
}

func toInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	default:
		return 0, false
	}
}

func boolQuery(clause string, children []any) map[string]any {
	return map[string]any{
		"bool": map[string]any{clause: children},
	}
}

func rangeQuery(name, op string, v any) map[string]any {
	return map[string]any{
		"range": map[string]any{
			name: map[string]any{op: value(v)},
		},
	}
}

func exists(name string) map[string]any {
	return map[string]any{"exists": map[string]any{"field": name}}
}

func matchAll() map[string]any {
	return map[string]any{"match_all": map[string]any{}}
}

func value(v any) any {
	if t, ok := v.(time.Time); ok {
		return t.Format(predicate.TimeLayout)
	}
	return v
}

// escapeWildcard экранирует метасимволы wildcard; _CONTAINS - поиск подстроки
func escapeWildcard(s string) string {
	return strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`).Replace(s)
}

func unsupported(l predicate.Leaf) error {
	return fmt.Errorf("%w: %s (%T)", predicate.ErrUnsupportedPredicate, l.Key(), l.Value)
}
