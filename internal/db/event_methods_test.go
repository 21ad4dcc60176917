package db

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rx3lixir/event-discovery/internal/predicate"
	"github.com/rx3lixir/event-discovery/pkg/logger"
)

// fakeRow присваивает значения по порядку; типы должны совпадать с destination
type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if len(dest) != len(r.values) {
		return errors.New("column count mismatch")
	}
	for i, d := range dest {
		if r.values[i] == nil {
			continue
		}
		reflect.ValueOf(d).Elem().Set(reflect.ValueOf(r.values[i]))
	}
	return nil
}

type fakeRows struct {
	rows []fakeRow
	pos  int
}

func (r *fakeRows) Close()                                       {}
func (r *fakeRows) Err() error                                   { return nil }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) Values() ([]any, error)                       { return nil, nil }
func (r *fakeRows) RawValues() [][]byte                          { return nil }
func (r *fakeRows) Conn() *pgx.Conn                              { return nil }

func (r *fakeRows) Next() bool {
	r.pos++
	return r.pos <= len(r.rows)
}

func (r *fakeRows) Scan(dest ...any) error {
	return r.rows[r.pos-1].Scan(dest...)
}

type fakeDB struct {
	rows     []fakeRow
	count    int64
	queryErr error

	queries []string
}

func (f *fakeDB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (f *fakeDB) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	f.queries = append(f.queries, sql)
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return &fakeRows{rows: f.rows}, nil
}

func (f *fakeDB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	f.queries = append(f.queries, sql)
	return fakeRow{values: []any{f.count}}
}

func eventRow(id string, lat, lng *float64) fakeRow {
	start := time.Date(2024, 1, 5, 19, 0, 0, 0, time.UTC)
	venue := "Blind Pig"
	return fakeRow{values: []any{
		id,
		"Trivia night",
		"Weekly trivia",
		start,
		nil,
		5,
		19,
		nil,
		false,
		nil,
		&venue,
		nil,
		lat,
		lng,
		[]string{"trivia"},
		[]string{"blind-pig"},
		start.Add(-24 * time.Hour),
		nil,
	}}
}

func Test_SearchEvents(t *testing.T) {
	lat, lng := 40.1, -88.2
	fake := &fakeDB{
		rows:  []fakeRow{eventRow("a", &lat, &lng), eventRow("b", nil, nil)},
		count: 12,
	}
	store := NewPostgresStore(fake, logger.NewNop())

	res, err := store.SearchEvents(context.Background(), NewEventFilter(
		WithWhere(predicate.AllOf(predicate.Eq("canceled", false))),
		WithLimit(2),
	))
	require.NoError(t, err)

	assert.EqualValues(t, 12, res.Total)
	require.Len(t, res.Events, 2)
	assert.Equal(t, "a", res.Events[0].ID)
	assert.Equal(t, &GeoPoint{Latitude: 40.1, Longitude: -88.2}, res.Events[0].Location)
	assert.Nil(t, res.Events[1].Location)
	assert.Equal(t, []string{"trivia"}, res.Events[0].Tags)
	assert.Len(t, fake.queries, 2)
}

func Test_SearchEvents_QueryError(t *testing.T) {
	fake := &fakeDB{queryErr: errors.New("connection reset")}
	store := NewPostgresStore(fake, logger.NewNop())

	_, err := store.SearchEvents(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
}

func Test_SearchEvents_InvalidFilter(t *testing.T) {
	store := NewPostgresStore(&fakeDB{}, logger.NewNop())

	_, err := store.SearchEvents(context.Background(), NewEventFilter(WithLimit(0)))
	assert.Error(t, err)

	_, err = store.SearchEvents(context.Background(), NewEventFilter(WithPagination(10, -1)))
	assert.Error(t, err)

	_, err = store.SearchEvents(context.Background(), NewEventFilter(WithLimit(MaxLimit+1)))
	assert.Error(t, err)
}

func Test_EventFilter_Defaults(t *testing.T) {
	f := NewEventFilter()
	assert.True(t, f.IsEmpty())
	assert.False(t, f.HasPagination())
	assert.Equal(t, DefaultLimit, f.GetLimit())
	assert.Equal(t, 0, f.GetOffset())
}
