package db

import (
	"context"
	"fmt"

	"github.com/rx3lixir/event-discovery/pkg/metrics"
)

// SearchEvents возвращает страницу событий, удовлетворяющих фильтру, и общее число совпадений.
func (s *PostgresStore) SearchEvents(parentCtx context.Context, filter *EventFilter) (*SearchResult, error) {
	if filter == nil {
		filter = NewEventFilter()
	}
	if err := filter.Validate(); err != nil {
		return nil, fmt.Errorf("invalid filter: %w", err)
	}

	query, args, err := s.buildSearchQuery(filter)
	if err != nil {
		return nil, err
	}
	countQuery, countArgs, err := s.buildCountQuery(filter)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(parentCtx, s.timeout)
	defer cancel()

	var events []*Event
	err = metrics.ObserveDatabase("search", s.table, func() error {
		events, err = s.queryEvents(ctx, query, args)
		return err
	})
	if err != nil {
		s.logger.Error("Event search query failed", "error", err, "query", query)
		return nil, err
	}

	var total int64
	err = metrics.ObserveDatabase("count", s.table, func() error {
		return s.db.QueryRow(ctx, countQuery, countArgs...).Scan(&total)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to count events: %w", err)
	}

	s.logger.Debug("Event search completed",
		"returned", len(events),
		"total", total,
		"limit", filter.GetLimit(),
		"offset", filter.GetOffset(),
	)

	return &SearchResult{Events: events, Total: total}, nil
}

func (s *PostgresStore) queryEvents(ctx context.Context, query string, args []any) ([]*Event, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	events := []*Event{}
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, event)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating event rows: %w", err)
	}

	return events, nil
}

// pgxScanner интерфейс для абстракции pgx.Rows и pgx.Row для функции scanEvent.
type pgxScanner interface {
	Scan(dest ...any) error
}

// scanEvent сканирует одну строку в структуру Event.
// Порядок полей совпадает с SELECT в buildSearchQuery.
func scanEvent(scanner pgxScanner) (*Event, error) {
	var (
		event     = new(Event)
		latitude  *float64
		longitude *float64
	)

	err := scanner.Scan(
		&event.ID,
		&event.Title,
		&event.Description,
		&event.StartTime,
		&event.EndTime,
		&event.StartTimeDayOfWeek,
		&event.StartTimeHourOfDay,
		&event.Free,
		&event.Canceled,
		&event.VirtualEventURL,
		&event.LocationName,
		&event.Address,
		&latitude,
		&longitude,
		&event.Tags,
		&event.Channels,
		&event.CreatedAt,
		&event.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if latitude != nil && longitude != nil {
		event.Location = &GeoPoint{Latitude: *latitude, Longitude: *longitude}
	}

	return event, nil
}
