package search

import (
	"github.com/rx3lixir/event-discovery/internal/db"
	"github.com/rx3lixir/event-discovery/internal/predicate"
)

const defaultSize = 20

type Filter struct {
	// Дерево условий; nil - все документы
	Where predicate.Node

	// Пагинация
	From int
	Size int

	// Сортировка по времени начала
	Descending bool
}

func NewFilter() *Filter {
	return &Filter{
		From: 0,
		Size: defaultSize,
	}
}

// FromEventFilter переводит общий фильтр исполнителя в фильтр OpenSearch
func FromEventFilter(f *db.EventFilter) *Filter {
	if f == nil {
		return NewFilter()
	}
	return &Filter{
		Where:      f.Where,
		From:       f.GetOffset(),
		Size:       f.GetLimit(),
		Descending: f.Descending,
	}
}

// API для построения фильтров \\

func (f *Filter) WithWhere(where predicate.Node) *Filter {
	f.Where = where
	return f
}

func (f *Filter) WithPagination(from, size int) *Filter {
	f.From = from
	f.Size = size
	return f
}

func (f *Filter) WithDescending(descending bool) *Filter {
	f.Descending = descending
	return f
}

func (f *Filter) IsEmpty() bool {
	return f.Where == nil
}

func (f *Filter) sortOrder() string {
	if f.Descending {
		return "desc"
	}
	return "asc"
}
