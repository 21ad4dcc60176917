// Package filterstate описывает каноническое типизированное состояние поискового фильтра.
package filterstate

import (
	"github.com/rx3lixir/event-discovery/internal/lookup"
)

// LocationFilter - режим фильтрации по месту проведения
type LocationFilter string

const (
	LocationFilterNone            LocationFilter = "NONE"
	LocationFilterWithinRadius    LocationFilter = "WITHIN_RADIUS"
	LocationFilterOnlyVirtual     LocationFilter = "ONLY_VIRTUAL"
	LocationFilterOnlyWithAddress LocationFilter = "ONLY_WITH_ADDRESS"
)

// IsKnown сообщает, входит ли значение в закрытый словарь.
// Десериализатор принимает любые строки, поэтому потребители проверяют это сами.
func (l LocationFilter) IsKnown() bool {
	switch l {
	case LocationFilterNone, LocationFilterWithinRadius, LocationFilterOnlyVirtual, LocationFilterOnlyWithAddress:
		return true
	}
	return false
}

// ResultsOrder - порядок сортировки по времени начала
type ResultsOrder string

const (
	ResultsOrderChronological        ResultsOrder = "chronological"
	ResultsOrderReverseChronological ResultsOrder = "reverse-chronological"
)

func (o ResultsOrder) IsKnown() bool {
	return o == ResultsOrderChronological || o == ResultsOrderReverseChronological
}

// Descending - true для обратного хронологического порядка
func (o ResultsOrder) Descending() bool {
	return o == ResultsOrderReverseChronological
}

// FilterState - намерение пользователя целиком.
// Создается заново при каждом изменении параметров и никогда не мутирует частично.
type FilterState struct {
	TimeShortcut       lookup.TimeShortcut     `json:"timeShortcut"`
	Tags               []string                `json:"tags"`
	Channels           []string                `json:"channels"`
	SearchInput        string                  `json:"searchInput"`
	ShowCanceledEvents bool                    `json:"showCanceledEvents"`
	Free               bool                    `json:"free"`
	ResultsOrder       ResultsOrder            `json:"resultsOrder"`
	LocationFilter     LocationFilter          `json:"locationFilter"`
	Radius             *float64                `json:"radius,omitempty"` // км
	PlaceName          string                  `json:"placeName,omitempty"`
	PlaceAddress       string                  `json:"placeAddress,omitempty"`
	Latitude           *float64                `json:"latitude,omitempty"`
	Longitude          *float64                `json:"longitude,omitempty"`
	HasVirtualEventURL bool                    `json:"hasVirtualEventUrl"`
	ShowArchived       bool                    `json:"showArchived"`
	Weekdays           lookup.Weekdays         `json:"weekdays"`
	HourRanges         lookup.HourRangeSet     `json:"hourRanges"`
	WeeklyHourRanges   lookup.WeeklyHourRanges `json:"weeklyHourRanges"`
}

// Default возвращает состояние со значениями по умолчанию.
// Радиус не задан: его значение зависит от контекста (см. urlparams).
func Default() *FilterState {
	return &FilterState{
		TimeShortcut:     lookup.TimeShortcutNone,
		Tags:             []string{},
		Channels:         []string{},
		ResultsOrder:     ResultsOrderChronological,
		LocationFilter:   LocationFilterNone,
		Weekdays:         lookup.NewWeekdays(),
		HourRanges:       lookup.NewHourRanges(),
		WeeklyHourRanges: lookup.NewWeeklyHourRanges(),
	}
}

// Float возвращает указатель на копию значения
func Float(v float64) *float64 {
	return &v
}
