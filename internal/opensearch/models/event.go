package models

import (
	"time"

	"github.com/rx3lixir/event-discovery/internal/db"
)

// EventDocument - документ события в индексе (см. mapping/events.json)
type EventDocument struct {
	ID                 string     `json:"id"`
	Title              string     `json:"title"`
	Description        string     `json:"description"`
	StartTime          time.Time  `json:"start_time"`
	EndTime            *time.Time `json:"end_time,omitempty"`
	StartTimeDayOfWeek int        `json:"start_time_day_of_week"`
	StartTimeHourOfDay int        `json:"start_time_hour_of_day"`
	Free               *bool      `json:"free,omitempty"`
	Canceled           bool       `json:"canceled"`
	VirtualEventURL    *string    `json:"virtual_event_url,omitempty"`
	LocationName       *string    `json:"location_name,omitempty"`
	Address            *string    `json:"address,omitempty"`
	Location           *GeoPoint  `json:"location,omitempty"`
	Tags               []string   `json:"tags"`
	Channels           []string   `json:"channels"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          *time.Time `json:"updated_at,omitempty"`
}

// GeoPoint в формате geo_point объекта OpenSearch
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type SearchResult struct {
	Events     []*EventDocument `json:"events"`
	Total      int64            `json:"total"`
	SearchTime string           `json:"search_time"`
}

// Принимает документ OpenSearch - возвращает Event глобальный
func (e *EventDocument) ToDBEvent() *db.Event {
	if e == nil {
		return nil
	}

	event := &db.Event{
		ID:                 e.ID,
		Title:              e.Title,
		Description:        e.Description,
		StartTime:          e.StartTime,
		EndTime:            e.EndTime,
		StartTimeDayOfWeek: e.StartTimeDayOfWeek,
		StartTimeHourOfDay: e.StartTimeHourOfDay,
		Free:               e.Free,
		Canceled:           e.Canceled,
		VirtualEventURL:    e.VirtualEventURL,
		LocationName:       e.LocationName,
		Address:            e.Address,
		Tags:               nonNil(e.Tags),
		Channels:           nonNil(e.Channels),
		CreatedAt:          e.CreatedAt,
		UpdatedAt:          e.UpdatedAt,
	}
	if e.Location != nil {
		event.Location = &db.GeoPoint{Latitude: e.Location.Lat, Longitude: e.Location.Lon}
	}
	return event
}

// ToDBResult конвертирует результат поиска в общий формат
func (r *SearchResult) ToDBResult() *db.SearchResult {
	return &db.SearchResult{
		Events: ToDBEvents(r.Events),
		Total:  r.Total,
	}
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
