package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rx3lixir/event-discovery/internal/db"
)

func Test_FromDBEvent_DerivesScheduleFields(t *testing.T) {
	start := time.Date(2024, time.January, 6, 18, 30, 0, 0, time.UTC)
	url := "https://example.com/live"

	doc := FromDBEvent(&db.Event{
		ID:                 "evt-1",
		Title:              "Online trivia",
		StartTime:          start,
		StartTimeDayOfWeek: 1,
		StartTimeHourOfDay: 1,
		VirtualEventURL:    &url,
		Location:           &db.GeoPoint{Latitude: 40.1, Longitude: -88.2},
	})

	require.NotNil(t, doc)
	assert.Equal(t, 6, doc.StartTimeDayOfWeek)
	assert.Equal(t, 18, doc.StartTimeHourOfDay)
	assert.Equal(t, &GeoPoint{Lat: 40.1, Lon: -88.2}, doc.Location)
	assert.Equal(t, []string{}, doc.Tags)
	assert.Equal(t, []string{}, doc.Channels)
}

func Test_EventDocument_RoundTrip(t *testing.T) {
	start := time.Date(2024, time.January, 6, 18, 0, 0, 0, time.UTC)
	event := &db.Event{
		ID:                 "evt-1",
		Title:              "Jazz",
		StartTime:          start,
		StartTimeDayOfWeek: 6,
		StartTimeHourOfDay: 18,
		Tags:               []string{"music"},
		Channels:           []string{"trivia"},
		Location:           &db.GeoPoint{Latitude: 1, Longitude: 2},
		CreatedAt:          start,
	}

	assert.Equal(t, event, FromDBEvent(event).ToDBEvent())
	assert.Nil(t, FromDBEvent(nil))
	assert.Nil(t, (*EventDocument)(nil).ToDBEvent())
}

func Test_EventDocument_Validate(t *testing.T) {
	start := time.Date(2024, time.January, 6, 18, 0, 0, 0, time.UTC)
	before := start.Add(-time.Hour)

	valid := func() *EventDocument {
		return &EventDocument{ID: "evt-1", Title: "Jazz", StartTime: start, CreatedAt: start}
	}

	require.NoError(t, valid().ValidateForIndexing())

	tests := []struct {
		name   string
		mutate func(*EventDocument)
		want   string
	}{
		{"missing_id", func(d *EventDocument) { d.ID = " " }, "id is required"},
		{"missing_title", func(d *EventDocument) { d.Title = "" }, "title is required"},
		{"missing_start", func(d *EventDocument) { d.StartTime = time.Time{} }, "start_time is required"},
		{"end_before_start", func(d *EventDocument) { d.EndTime = &before }, "end_time cannot be before start_time"},
		{"bad_latitude", func(d *EventDocument) { d.Location = &GeoPoint{Lat: 91} }, "latitude out of range"},
		{"bad_longitude", func(d *EventDocument) { d.Location = &GeoPoint{Lon: -181} }, "longitude out of range"},
		{"missing_created_at", func(d *EventDocument) { d.CreatedAt = time.Time{} }, "created_at is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := valid()
			tt.mutate(doc)
			assert.ErrorContains(t, doc.ValidateForIndexing(), tt.want)
		})
	}
}
