package urlparams

import (
	"math"
	"net/url"
	"strconv"

	"github.com/rx3lixir/event-discovery/internal/filterstate"
	"github.com/rx3lixir/event-discovery/internal/lookup"
)

// Serialize переводит состояние обратно в параметры URL.
// Пишутся только значения, отличные от умолчаний; hasVirtualEventUrl пишется всегда,
// потому что его умолчание зависит от маршрута.
func Serialize(s *filterstate.FilterState) url.Values {
	values := url.Values{}
	if s == nil {
		return values
	}

	if s.TimeShortcut != "" && s.TimeShortcut != lookup.TimeShortcutNone {
		values.Set(KeyTimeShortcut, string(s.TimeShortcut))
	}
	for _, tag := range s.SelectedTags() {
		values.Add(KeyTags, tag)
	}
	for _, channel := range s.SelectedChannels() {
		values.Add(KeyChannels, channel)
	}
	if s.SearchInput != "" {
		values.Set(KeySearchInput, s.SearchInput)
	}
	if s.ShowCanceledEvents {
		values.Set(KeyShowCanceledEvents, "true")
	}
	if s.Free {
		values.Set(KeyFree, "true")
	}
	if s.ShowArchived {
		values.Set(KeyShowArchived, "true")
	}
	values.Set(KeyHasVirtualEventURL, strconv.FormatBool(s.HasVirtualEventURL))

	if s.ResultsOrder != "" && s.ResultsOrder != filterstate.ResultsOrderChronological {
		values.Set(KeyResultsOrder, string(s.ResultsOrder))
	}

	if s.LocationFilter != "" && s.LocationFilter != filterstate.LocationFilterNone {
		values.Set(KeyLocationFilter, string(s.LocationFilter))
	}

	// Наличие radius в URL переключает режим на WITHIN_RADIUS, поэтому пишем его только в этом режиме
	if s.LocationFilter == filterstate.LocationFilterWithinRadius {
		if s.Radius == nil || math.IsNaN(*s.Radius) {
			// Пустой radius сохраняет режим, но обратно читается как незаданный радиус
			values.Set(KeyRadius, "")
		} else {
			setFloat(values, KeyRadius, s.Radius)
		}
		if s.PlaceName != "" {
			values.Set(KeyPlaceName, s.PlaceName)
		}
		if s.PlaceAddress != "" {
			values.Set(KeyPlaceAddress, s.PlaceAddress)
		}
		setFloat(values, KeyLatitude, s.Latitude)
		setFloat(values, KeyLongitude, s.Longitude)
	}

	if encoded, ok := encodeWeekdays(s.Weekdays); ok {
		values.Set(KeyWeekdays, encoded)
	}
	if encoded, ok := encodeHourRanges(s.HourRanges); ok {
		values.Set(KeyHourRanges, encoded)
	}
	if encoded, ok := encodeWeeklyHourRanges(s.WeeklyHourRanges); ok {
		values.Set(KeyWeeklyHourRanges, encoded)
	}

	return values
}

// Encode возвращает каноническую строку запроса
func Encode(s *filterstate.FilterState) string {
	return Serialize(s).Encode()
}

func setFloat(values url.Values, key string, v *float64) {
	if v == nil || math.IsNaN(*v) {
		return
	}
	values.Set(key, strconv.FormatFloat(*v, 'f', -1, 64))
}

func encodeWeekdays(days lookup.Weekdays) (string, bool) {
	selected := days.Selected()
	if len(selected) == 0 {
		return "", false
	}
	out := make(map[string]bool, len(selected))
	for _, d := range selected {
		out[d.Key()] = true
	}
	return marshal(out)
}

func encodeHourRanges(set lookup.HourRangeSet) (string, bool) {
	out := selectedLabels(set)
	if len(out) == 0 {
		return "", false
	}
	return marshal(out)
}

func encodeWeeklyHourRanges(weekly lookup.WeeklyHourRanges) (string, bool) {
	out := make(map[string]map[string]bool)
	for _, d := range lookup.AllWeekdays() {
		if labels := selectedLabels(weekly[d]); len(labels) > 0 {
			out[d.Key()] = labels
		}
	}
	if len(out) == 0 {
		return "", false
	}
	return marshal(out)
}

func selectedLabels(set lookup.HourRangeSet) map[string]bool {
	out := make(map[string]bool)
	for _, h := range set.Selected() {
		out[h.Label] = true
	}
	return out
}

func marshal(v any) (string, bool) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", false
	}
	return string(b), true
}
