package db

import (
	"fmt"
	"strings"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // регистрация диалекта
	"github.com/doug-martin/goqu/v9/exp"

	"github.com/rx3lixir/event-discovery/internal/predicate"
)

const (
	dialectPostgres = "postgres"

	colID                 = "id"
	colTitle              = "title"
	colDescription        = "description"
	colStartTime          = "start_time"
	colEndTime            = "end_time"
	colStartTimeDayOfWeek = "start_time_day_of_week"
	colStartTimeHourOfDay = "start_time_hour_of_day"
	colFree               = "free"
	colCanceled           = "canceled"
	colVirtualEventURL    = "virtual_event_url"
	colLocationName       = "location_name"
	colAddress            = "address"
	colLocation           = "location"
	colTags               = "tags"
	colChannels           = "channels"
	colCreatedAt          = "created_at"
	colUpdatedAt          = "updated_at"

	// location хранится как point(долгота, широта); <@> из earthdistance возвращает мили
	geoWithinSQL = "(? <@> point(?, ?)) * 1609.344 <= ?"
	existsSQL    = "EXISTS (SELECT 1 FROM unnest(%s) AS %s(%s) WHERE ?)"
	notSQL       = "NOT (?)"
)

// column - выражение, с которым можно сравнивать: колонка или вычисляемое значение
type column interface {
	exp.Comparable
	exp.Isable
	exp.Likeable
}

// relation - колонка-массив, по элементам которой проверяется квантор _SOME
type relation struct {
	source string
	alias  string
	elem   string
	scope  scope
}

// scope - поля, доступные на данном уровне дерева
type scope struct {
	columns    map[string]column
	relations  map[string]relation
	aggregates map[string]scope
}

var eventScope = scope{
	columns: map[string]column{
		"title":              goqu.C(colTitle),
		"description":        goqu.C(colDescription),
		"startTime":          goqu.C(colStartTime),
		"startTimeDayOfWeek": goqu.C(colStartTimeDayOfWeek),
		"startTimeHourOfDay": goqu.C(colStartTimeHourOfDay),
		"free":               goqu.C(colFree),
		"canceled":           goqu.C(colCanceled),
		"virtualEventUrl":    goqu.C(colVirtualEventURL),
		"locationName":       goqu.C(colLocationName),
		"location":           goqu.C(colLocation),
	},
	relations: map[string]relation{
		"Tags": {
			source: colTags, alias: "tag", elem: "text",
			scope: scope{columns: map[string]column{"text": goqu.I("tag.text")}},
		},
		"EventChannels": {
			source: colChannels, alias: "channel", elem: "channel_unique_name",
			scope: scope{columns: map[string]column{"channelUniqueName": goqu.I("channel.channel_unique_name")}},
		},
	},
	aggregates: map[string]scope{
		"EventChannelsAggregate": {
			columns: map[string]column{"count": goqu.L("cardinality(" + colChannels + ")")},
		},
	},
}

// ToSQLExpression переводит дерево условий в выражение goqu для WHERE
func ToSQLExpression(n predicate.Node) (exp.Expression, error) {
	return translate(n, eventScope)
}

func translate(n predicate.Node, sc scope) (exp.Expression, error) {
	switch v := n.(type) {
	case predicate.And:
		exps, err := translateAll(v.Children, sc)
		if err != nil {
			return nil, err
		}
		return goqu.And(exps...), nil

	case predicate.Or:
		exps, err := translateAll(v.Children, sc)
		if err != nil {
			return nil, err
		}
		// Пустой OR не выполняется никогда
		if len(exps) == 0 {
			return goqu.L("FALSE"), nil
		}
		return goqu.Or(exps...), nil

	case predicate.Not:
		child, err := translate(v.Child, sc)
		if err != nil {
			return nil, err
		}
		return goqu.L(notSQL, child), nil

	case predicate.Leaf:
		return translateLeaf(v, sc)

	default:
		return nil, fmt.Errorf("%w: node %T", predicate.ErrUnsupportedPredicate, n)
	}
}

func translateAll(children []predicate.Node, sc scope) ([]exp.Expression, error) {
	exps := make([]exp.Expression, 0, len(children))
	for _, c := range children {
		e, err := translate(c, sc)
		if err != nil {
			return nil, err
		}
		exps = append(exps, e)
	}
	return exps, nil
}

func translateLeaf(l predicate.Leaf, sc scope) (exp.Expression, error) {
	if l.Op == predicate.OpSome {
		return translateRelation(l, sc)
	}

	if where, ok := l.Value.(predicate.Node); ok {
		agg, ok := sc.aggregates[l.Field]
		if !ok || l.Op != predicate.OpEquals {
			return nil, unsupported(l)
		}
		return translate(where, agg)
	}

	col, ok := sc.columns[l.Field]
	if !ok {
		return nil, unsupported(l)
	}

	switch l.Op {
	case predicate.OpEquals:
		if l.Value == nil {
			return col.IsNull(), nil
		}
		return col.Eq(l.Value), nil

	case predicate.OpContains:
		s, ok := l.Value.(string)
		if !ok {
			return nil, unsupported(l)
		}
		return col.Like("%" + escapeLike(s) + "%"), nil

	case predicate.OpMatches:
		s, ok := l.Value.(string)
		if !ok {
			return nil, unsupported(l)
		}
		if pattern, insensitive := strings.CutPrefix(s, "(?i)"); insensitive {
			return col.RegexpILike(pattern), nil
		}
		return col.RegexpLike(s), nil

	case predicate.OpGT:
		return col.Gt(l.Value), nil

	case predicate.OpLT:
		return col.Lt(l.Value), nil

	case predicate.OpLTE:
		if d, ok := l.Value.(predicate.Distance); ok {
			return goqu.L(geoWithinSQL, col, d.Point.Longitude, d.Point.Latitude, d.Meters), nil
		}
		return col.Lte(l.Value), nil

	default:
		return nil, unsupported(l)
	}
}

func translateRelation(l predicate.Leaf, sc scope) (exp.Expression, error) {
	rel, ok := sc.relations[l.Field]
	if !ok {
		return nil, unsupported(l)
	}

	where, ok := l.Value.(predicate.Node)
	if !ok {
		return nil, unsupported(l)
	}

	sub, err := translate(where, rel.scope)
	if err != nil {
		return nil, err
	}

	return goqu.L(fmt.Sprintf(existsSQL, rel.source, rel.alias, rel.elem), sub), nil
}

func unsupported(l predicate.Leaf) error {
	return fmt.Errorf("%w: %s (%T)", predicate.ErrUnsupportedPredicate, l.Key(), l.Value)
}

// escapeLike экранирует метасимволы LIKE; _CONTAINS - поиск подстроки, а не шаблона
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// buildSearchQuery строит SELECT с условиями, сортировкой и пагинацией.
func (s *PostgresStore) buildSearchQuery(filter *EventFilter) (string, []any, error) {
	ds := goqu.Dialect(dialectPostgres).
		From(s.table).
		Select(
			colID,
			colTitle,
			colDescription,
			colStartTime,
			colEndTime,
			colStartTimeDayOfWeek,
			colStartTimeHourOfDay,
			colFree,
			colCanceled,
			colVirtualEventURL,
			colLocationName,
			colAddress,
			goqu.L(colLocation+"[1]").As("latitude"),
			goqu.L(colLocation+"[0]").As("longitude"),
			colTags,
			colChannels,
			colCreatedAt,
			colUpdatedAt,
		).
		Prepared(true)

	ds, err := applyWhere(ds, filter)
	if err != nil {
		return "", nil, err
	}

	// Время начала, затем id для стабильной пагинации
	if filter.Descending {
		ds = ds.Order(goqu.C(colStartTime).Desc(), goqu.C(colID).Desc())
	} else {
		ds = ds.Order(goqu.C(colStartTime).Asc(), goqu.C(colID).Asc())
	}

	ds = ds.Limit(uint(filter.GetLimit())).Offset(uint(filter.GetOffset()))

	query, args, err := ds.ToSQL()
	if err != nil {
		return "", nil, fmt.Errorf("failed to build search query: %w", err)
	}
	return query, args, nil
}

// buildCountQuery строит запрос для подсчета общего количества записей с учетом фильтров.
func (s *PostgresStore) buildCountQuery(filter *EventFilter) (string, []any, error) {
	ds := goqu.Dialect(dialectPostgres).
		From(s.table).
		Select(goqu.COUNT(goqu.Star())).
		Prepared(true)

	ds, err := applyWhere(ds, filter)
	if err != nil {
		return "", nil, err
	}

	query, args, err := ds.ToSQL()
	if err != nil {
		return "", nil, fmt.Errorf("failed to build count query: %w", err)
	}
	return query, args, nil
}

func applyWhere(ds *goqu.SelectDataset, filter *EventFilter) (*goqu.SelectDataset, error) {
	if filter.IsEmpty() {
		return ds, nil
	}

	where, err := ToSQLExpression(filter.Where)
	if err != nil {
		return nil, fmt.Errorf("failed to translate filter: %w", err)
	}
	return ds.Where(where), nil
}
