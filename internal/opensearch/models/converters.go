package models

import (
	"github.com/rx3lixir/event-discovery/internal/db"
)

// FromDBEvent конвертирует db.Event в EventDocument для OpenSearch.
// День недели и час пересчитываются из StartTime, чтобы индекс не расходился с ним.
func FromDBEvent(event *db.Event) *EventDocument {
	if event == nil {
		return nil
	}

	doc := &EventDocument{
		ID:                 event.ID,
		Title:              event.Title,
		Description:        event.Description,
		StartTime:          event.StartTime,
		EndTime:            event.EndTime,
		StartTimeDayOfWeek: int(event.StartTime.Weekday()),
		StartTimeHourOfDay: event.StartTime.Hour(),
		Free:               event.Free,
		Canceled:           event.Canceled,
		VirtualEventURL:    event.VirtualEventURL,
		LocationName:       event.LocationName,
		Address:            event.Address,
		Tags:               nonNil(event.Tags),
		Channels:           nonNil(event.Channels),
		CreatedAt:          event.CreatedAt,
		UpdatedAt:          event.UpdatedAt,
	}
	if event.Location != nil {
		doc.Location = &GeoPoint{Lat: event.Location.Latitude, Lon: event.Location.Longitude}
	}
	return doc
}

// FromDBEvents конвертирует слайс db.Event в слайс EventDocument
func FromDBEvents(events []*db.Event) []*EventDocument {
	if events == nil {
		return nil
	}

	docs := make([]*EventDocument, 0, len(events))
	for _, event := range events {
		if doc := FromDBEvent(event); doc != nil {
			docs = append(docs, doc)
		}
	}
	return docs
}

// ToDBEvents конвертирует слайс EventDocument в слайс db.Event
func ToDBEvents(docs []*EventDocument) []*db.Event {
	events := make([]*db.Event, 0, len(docs))
	for _, doc := range docs {
		if event := doc.ToDBEvent(); event != nil {
			events = append(events, event)
		}
	}
	return events
}
