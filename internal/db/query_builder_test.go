package db

import (
	"errors"
	"testing"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rx3lixir/event-discovery/internal/compiler"
	"github.com/rx3lixir/event-discovery/internal/filterstate"
	"github.com/rx3lixir/event-discovery/internal/lookup"
	"github.com/rx3lixir/event-discovery/internal/predicate"
	"github.com/rx3lixir/event-discovery/pkg/logger"
)

func whereSQL(t *testing.T, n predicate.Node) (string, []any) {
	t.Helper()
	where, err := ToSQLExpression(n)
	require.NoError(t, err)

	query, args, err := goqu.Dialect(dialectPostgres).From("events").Where(where).Prepared(true).ToSQL()
	require.NoError(t, err)
	return query, args
}

func Test_ToSQLExpression_Leaves(t *testing.T) {
	tests := []struct {
		name     string
		node     predicate.Node
		contains []string
		args     []any
	}{
		{
			name:     "boolean_equality",
			node:     predicate.Eq("canceled", false),
			contains: []string{`"canceled" IS FALSE`},
		},
		{
			name:     "not_null",
			node:     predicate.NotNull("virtualEventUrl"),
			contains: []string{"NOT (", `"virtual_event_url" IS NULL`},
		},
		{
			name:     "case_insensitive_regex",
			node:     predicate.Matches("title", "(?i).*jazz.*"),
			contains: []string{`"title" ~*`},
			args:     []any{".*jazz.*"},
		},
		{
			name:     "integer_equality",
			node:     predicate.Eq("startTimeDayOfWeek", 1),
			contains: []string{`"start_time_day_of_week" =`},
			args:     []any{int64(1)},
		},
		{
			name:     "relation_some",
			node:     predicate.Some("Tags", predicate.AnyOf(predicate.Contains("text", "a_b"))),
			contains: []string{"EXISTS (SELECT 1 FROM unnest(tags) AS tag(text) WHERE", `"tag"."text" LIKE`},
			args:     []any{`%a\_b%`},
		},
		{
			name:     "channel_relation",
			node:     predicate.Some("EventChannels", predicate.Eq("channelUniqueName", "trivia")),
			contains: []string{"unnest(channels) AS channel(channel_unique_name)", `"channel"."channel_unique_name" =`},
			args:     []any{"trivia"},
		},
		{
			name:     "aggregate",
			node:     predicate.Object("EventChannelsAggregate", predicate.GreaterThan("count", 0)),
			contains: []string{"cardinality(channels) >"},
		},
		{
			name:     "geo_distance",
			node:     predicate.Within("location", predicate.Point{Latitude: 40.1, Longitude: -88.2}, 5000),
			contains: []string{`("location" <@> point(`, "* 1609.344 <="},
			args:     []any{-88.2, 40.1, 5000.0},
		},
		{
			name:     "time_range",
			node:     predicate.After("startTime", time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)),
			contains: []string{`"start_time" >`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args := whereSQL(t, tt.node)
			for _, fragment := range tt.contains {
				assert.Contains(t, query, fragment)
			}
			for _, arg := range tt.args {
				assert.Contains(t, args, arg)
			}
		})
	}
}

func Test_ToSQLExpression_Unsupported(t *testing.T) {
	tests := []predicate.Node{
		predicate.Eq("nope", 1),
		predicate.Some("Nope", predicate.Eq("text", "a")),
		predicate.Some("Tags", predicate.Eq("title", "a")),
		predicate.Object("EventChannelsAggregate", predicate.GreaterThan("sum", 0)),
		predicate.Leaf{Field: "title", Op: predicate.OpContains, Value: 42},
	}

	for _, n := range tests {
		_, err := ToSQLExpression(n)
		assert.ErrorIs(t, err, predicate.ErrUnsupportedPredicate)
	}
}

func Test_ToSQLExpression_CompiledFilter(t *testing.T) {
	s := filterstate.Default()
	s.Free = true
	s.SearchInput = "jazz"
	s.Tags = []string{"music"}
	s.Channels = []string{"trivia"}
	s.LocationFilter = filterstate.LocationFilterWithinRadius
	s.Radius = filterstate.Float(10)
	s.Latitude = filterstate.Float(40.1)
	s.Longitude = filterstate.Float(-88.2)
	s.Weekdays[lookup.Friday] = true
	s.WeeklyHourRanges[lookup.Saturday][lookup.HourRange6pmTo9pm] = true

	tree := compiler.Compile(s, compiler.Context{ShowMap: true, OnlineOnly: true}, time.Now())

	query, _ := whereSQL(t, tree)
	assert.Contains(t, query, `"start_time" <`)
	assert.Contains(t, query, `"start_time_hour_of_day" =`)
}

func Test_BuildSearchQuery(t *testing.T) {
	store := NewPostgresStore(nil, logger.NewNop(), WithTable("public_events"))

	filter := NewEventFilter(
		WithWhere(predicate.AllOf(predicate.Eq("free", true))),
		WithDescending(true),
		WithPagination(20, 40),
	)

	query, args, err := store.buildSearchQuery(filter)
	require.NoError(t, err)

	assert.Contains(t, query, `FROM "public_events"`)
	assert.Contains(t, query, `"free" IS TRUE`)
	assert.Contains(t, query, `ORDER BY "start_time" DESC, "id" DESC`)
	assert.Contains(t, query, "LIMIT")
	assert.Contains(t, query, "OFFSET")
	assert.NotEmpty(t, args)

	countQuery, _, err := store.buildCountQuery(filter)
	require.NoError(t, err)
	assert.Contains(t, countQuery, "COUNT(*)")
	assert.NotContains(t, countQuery, "ORDER BY")
}

func Test_BuildSearchQuery_EmptyFilterHasNoWhere(t *testing.T) {
	store := NewPostgresStore(nil, logger.NewNop())

	query, _, err := store.buildSearchQuery(NewEventFilter())
	require.NoError(t, err)
	assert.NotContains(t, query, "WHERE")
	assert.Contains(t, query, `ORDER BY "start_time" ASC, "id" ASC`)
}

func Test_BuildSearchQuery_PropagatesTranslationError(t *testing.T) {
	store := NewPostgresStore(nil, logger.NewNop())

	_, _, err := store.buildSearchQuery(NewEventFilter(WithWhere(predicate.Eq("unknown", 1))))
	assert.True(t, errors.Is(err, predicate.ErrUnsupportedPredicate))
}
