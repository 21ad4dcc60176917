package predicate_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rx3lixir/event-discovery/internal/predicate"
)

func Test_Wire(t *testing.T) {
	tests := []struct {
		name string
		node predicate.Node
		want string
	}{
		{
			name: "equality_leaf",
			node: predicate.Eq("canceled", false),
			want: `{"canceled":false}`,
		},
		{
			name: "not_null",
			node: predicate.NotNull("virtualEventUrl"),
			want: `{"NOT":{"virtualEventUrl":null}}`,
		},
		{
			name: "relation_with_disjunction",
			node: predicate.Some("Tags", predicate.AnyOf(
				predicate.Contains("text", "music"),
				predicate.Contains("text", "trivia"),
			)),
			want: `{"Tags_SOME":{"OR":[{"text_CONTAINS":"music"},{"text_CONTAINS":"trivia"}]}}`,
		},
		{
			name: "aggregate_object",
			node: predicate.Object("EventChannelsAggregate", predicate.GreaterThan("count", 0)),
			want: `{"EventChannelsAggregate":{"count_GT":0}}`,
		},
		{
			name: "distance",
			node: predicate.Within("location", predicate.Point{Latitude: 40.1, Longitude: -88.2}, 5000),
			want: `{"location_LTE":{"point":{"latitude":40.1,"longitude":-88.2},"distance":5000}}`,
		},
		{
			name: "time_bound",
			node: predicate.After("startTime", time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)),
			want: `{"startTime_GT":"2024-01-05T00:00:00.000Z"}`,
		},
		{
			name: "nested_and",
			node: predicate.AllOf(predicate.Eq("free", true), predicate.AnyOf(predicate.Matches("title", "(?i).*jazz.*"))),
			want: `{"AND":[{"free":true},{"OR":[{"title_MATCHES":"(?i).*jazz.*"}]}]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := predicate.Marshal(tt.node)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(b))
		})
	}
}

func Test_CountLeaves(t *testing.T) {
	tree := predicate.AllOf(
		predicate.Eq("canceled", false),
		predicate.NotNull("virtualEventUrl"),
		predicate.Some("Tags", predicate.AnyOf(
			predicate.Contains("text", "a"),
			predicate.Contains("text", "b"),
		)),
	)

	assert.Equal(t, 4, predicate.CountLeaves(tree))
	assert.Equal(t, 0, predicate.CountLeaves(predicate.AllOf()))
}

func Test_LeafKey(t *testing.T) {
	assert.Equal(t, "startTime_LT", predicate.LessThan("startTime", 1).Key())
	assert.Equal(t, "startTimeDayOfWeek", predicate.Eq("startTimeDayOfWeek", 1).Key())
}
