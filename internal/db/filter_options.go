package db

import (
	"fmt"

	"github.com/rx3lixir/event-discovery/internal/predicate"
)

const (
	// DefaultLimit - размер страницы, если пагинация не задана
	DefaultLimit = 100
	// MaxLimit - верхняя граница размера страницы
	MaxLimit = 1000
)

// EventFilter - параметры выборки событий для любого исполнителя.
// Условия задаются деревом predicate; nil означает "все события".
type EventFilter struct {
	Where predicate.Node

	// Сортировка по времени начала
	Descending bool

	// Пагинация
	Limit  *int // Лимит количества записей для пагинации
	Offset *int // Смещение для пагинации
}

// FilterOption функциональная опция для конфигурации фильтра.
type FilterOption func(*EventFilter)

// WithWhere задает дерево условий
func WithWhere(where predicate.Node) FilterOption {
	return func(f *EventFilter) {
		f.Where = where
	}
}

// WithDescending включает обратный хронологический порядок
func WithDescending(descending bool) FilterOption {
	return func(f *EventFilter) {
		f.Descending = descending
	}
}

// WithPagination добавляет параметры пагинации.
// limit - максимальное количество записей в ответе.
// offset - количество записей, которые нужно пропустить.
func WithPagination(limit, offset int) FilterOption {
	return func(f *EventFilter) {
		f.Limit = &limit
		f.Offset = &offset
	}
}

// WithLimit добавляет только лимит без offset.
func WithLimit(limit int) FilterOption {
	return func(f *EventFilter) {
		f.Limit = &limit
	}
}

// NewEventFilter создает новый фильтр с применением переданных опций.
func NewEventFilter(opts ...FilterOption) *EventFilter {
	filter := &EventFilter{}
	for _, opt := range opts {
		opt(filter)
	}
	return filter
}

// IsEmpty проверяет, является ли фильтр пустым (без условий).
func (f *EventFilter) IsEmpty() bool {
	return f.Where == nil
}

// HasPagination проверяет, установлены ли параметры пагинации.
func (f *EventFilter) HasPagination() bool {
	return f.Limit != nil || f.Offset != nil
}

// GetLimit возвращает лимит или значение по умолчанию.
func (f *EventFilter) GetLimit() int {
	if f.Limit == nil {
		return DefaultLimit
	}
	return *f.Limit
}

// GetOffset возвращает offset или 0.
func (f *EventFilter) GetOffset() int {
	if f.Offset == nil {
		return 0
	}
	return *f.Offset
}

// Validate проверяет корректность параметров фильтра.
func (f *EventFilter) Validate() error {
	if f.Limit != nil && *f.Limit <= 0 {
		return fmt.Errorf("limit must be positive, got: %d", *f.Limit)
	}

	if f.Limit != nil && *f.Limit > MaxLimit {
		return fmt.Errorf("limit too large, maximum allowed: %d, got: %d", MaxLimit, *f.Limit)
	}

	if f.Offset != nil && *f.Offset < 0 {
		return fmt.Errorf("offset cannot be negative, got: %d", *f.Offset)
	}

	return nil
}
