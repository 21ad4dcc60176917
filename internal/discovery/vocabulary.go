package discovery

import (
	"github.com/rx3lixir/event-discovery/internal/filterstate"
	"github.com/rx3lixir/event-discovery/internal/lookup"
)

// Vocabulary - справочники, из которых клиент строит элементы фильтра
type Vocabulary struct {
	TimeShortcuts   []lookup.TimeShortcutOption  `json:"timeShortcuts"`
	HourRanges      []lookup.HourRange           `json:"hourRanges"`
	Weekdays        []lookup.WeekdayOption       `json:"weekdays"`
	DistancesMiles  []lookup.DistanceOption      `json:"distancesMiles"`
	DistancesKm     []lookup.DistanceOption      `json:"distancesKm"`
	LocationFilters []filterstate.LocationFilter `json:"locationFilters"`
	ResultsOrders   []filterstate.ResultsOrder   `json:"resultsOrders"`
}

// Vocabulary возвращает свежие копии таблиц
func (s *Service) Vocabulary() Vocabulary {
	return Vocabulary{
		TimeShortcuts:  lookup.TimeShortcutOptions(),
		HourRanges:     lookup.HourRanges(),
		Weekdays:       lookup.WeekdayOptions(),
		DistancesMiles: lookup.DistanceOptionsMiles(),
		DistancesKm:    lookup.DistanceOptionsKm(),
		LocationFilters: []filterstate.LocationFilter{
			filterstate.LocationFilterNone,
			filterstate.LocationFilterWithinRadius,
			filterstate.LocationFilterOnlyVirtual,
			filterstate.LocationFilterOnlyWithAddress,
		},
		ResultsOrders: []filterstate.ResultsOrder{
			filterstate.ResultsOrderChronological,
			filterstate.ResultsOrderReverseChronological,
		},
	}
}
