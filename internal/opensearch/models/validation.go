package models

import (
	"fmt"
	"strings"
)

// Validate проверяет корректность EventDocument
func (e *EventDocument) Validate() error {
	var errors []string

	if strings.TrimSpace(e.ID) == "" {
		errors = append(errors, "id is required")
	}

	if strings.TrimSpace(e.Title) == "" {
		errors = append(errors, "title is required")
	}

	if e.StartTime.IsZero() {
		errors = append(errors, "start_time is required")
	}

	if e.EndTime != nil && e.EndTime.Before(e.StartTime) {
		errors = append(errors, "end_time cannot be before start_time")
	}

	if e.Location != nil {
		if e.Location.Lat < -90 || e.Location.Lat > 90 {
			errors = append(errors, "location latitude out of range")
		}
		if e.Location.Lon < -180 || e.Location.Lon > 180 {
			errors = append(errors, "location longitude out of range")
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("validation errors: %s", strings.Join(errors, ", "))
	}

	return nil
}

// ValidateForIndexing проверяет готовность документа к индексации
func (e *EventDocument) ValidateForIndexing() error {
	if err := e.Validate(); err != nil {
		return err
	}

	if e.CreatedAt.IsZero() {
		return fmt.Errorf("created_at is required for indexing")
	}

	return nil
}
