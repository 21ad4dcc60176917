package urlparams

import (
	"fmt"
	"math"
	"strconv"

	jsoniter "github.com/json-iterator/go"

	"github.com/rx3lixir/event-discovery/internal/filterstate"
	"github.com/rx3lixir/event-discovery/internal/lookup"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Deserialize строит FilterState из сырых параметров запроса.
//
// Ошибка возвращается только для неразбираемых JSON полей (ErrMalformedStructuredField).
// Любые другие некорректные значения тихо заменяются значениями по умолчанию.
func Deserialize(raw Params, ctx Context) (*filterstate.FilterState, error) {
	state := filterstate.Default()

	// == Скаляры == \\

	if v := stringOr(raw, KeyTimeShortcut, ""); v != "" {
		state.TimeShortcut = lookup.TimeShortcut(v)
	}
	state.SearchInput = stringOr(raw, KeySearchInput, "")

	if v := filterstate.ResultsOrder(stringOr(raw, KeyResultsOrder, "")); v.IsKnown() {
		state.ResultsOrder = v
	}

	state.ShowCanceledEvents = boolOr(raw, KeyShowCanceledEvents, false)
	state.Free = boolOr(raw, KeyFree, false)
	state.ShowArchived = boolOr(raw, KeyShowArchived, false)
	state.HasVirtualEventURL = boolOr(raw, KeyHasVirtualEventURL, ctx.IsOnlineOnlyRoute)

	// == Списки == \\

	state.Tags = filterstate.SanitizeStrings(listParam(raw, KeyTags))
	state.Channels = filterstate.SanitizeStrings(listParam(raw, KeyChannels))

	// == Режим локации и радиус == \\

	state.LocationFilter = resolveLocationFilter(raw, ctx)

	if raw.Has(KeyRadius) {
		// Некорректный радиус остается незаданным: значение по умолчанию не подставляется,
		// условие по радиусу просто не строится.
		state.Radius = floatParam(raw, KeyRadius)
	} else {
		state.Radius = filterstate.Float(defaultRadius(ctx))
	}

	// == Структурированные поля == \\

	if ctx.StructuredTimeFilters {
		if err := parseStructured(raw, state); err != nil {
			return nil, err
		}
	}

	dispatchLocation(raw, state)

	return state, nil
}

// resolveLocationFilter применяет приоритеты: radius > флаг маршрута > параметр locationFilter.
// Значение параметра принимается как есть, без проверки по словарю.
func resolveLocationFilter(raw Params, ctx Context) filterstate.LocationFilter {
	if raw.Has(KeyRadius) {
		return filterstate.LocationFilterWithinRadius
	}
	if ctx.IsOnlineOnlyRoute {
		return filterstate.LocationFilterOnlyVirtual
	}
	if ctx.IsInPersonOnlyRoute {
		return filterstate.LocationFilterOnlyWithAddress
	}
	if v := stringOr(raw, KeyLocationFilter, ""); v != "" {
		return filterstate.LocationFilter(v)
	}
	return filterstate.LocationFilterNone
}

func defaultRadius(ctx Context) float64 {
	if ctx.ChannelScoped() {
		return lookup.AnyDistance
	}
	return lookup.DefaultRadiusKm
}

// dispatchLocation прикрепляет данные о месте только для WITHIN_RADIUS.
// Остальные режимы, включая нераспознанные, данных о месте не несут.
func dispatchLocation(raw Params, state *filterstate.FilterState) {
	if state.LocationFilter != filterstate.LocationFilterWithinRadius {
		return
	}
	state.PlaceName = stringOr(raw, KeyPlaceName, "")
	state.PlaceAddress = stringOr(raw, KeyPlaceAddress, "")
	state.Latitude = floatParam(raw, KeyLatitude)
	state.Longitude = floatParam(raw, KeyLongitude)
}

func parseStructured(raw Params, state *filterstate.FilterState) error {
	if v, ok := stringParam(raw, KeyWeekdays); ok {
		var parsed map[string]bool
		if err := json.Unmarshal([]byte(v), &parsed); err != nil {
			return fmt.Errorf("%w %q: %w", ErrMalformedStructuredField, KeyWeekdays, err)
		}
		mergeWeekdays(state.Weekdays, parsed)
	}

	if v, ok := stringParam(raw, KeyHourRanges); ok {
		var parsed map[string]bool
		if err := json.Unmarshal([]byte(v), &parsed); err != nil {
			return fmt.Errorf("%w %q: %w", ErrMalformedStructuredField, KeyHourRanges, err)
		}
		mergeHourRanges(state.HourRanges, parsed)
	}

	if v, ok := stringParam(raw, KeyWeeklyHourRanges); ok {
		var parsed map[string]map[string]bool
		if err := json.Unmarshal([]byte(v), &parsed); err != nil {
			return fmt.Errorf("%w %q: %w", ErrMalformedStructuredField, KeyWeeklyHourRanges, err)
		}
		for key, ranges := range parsed {
			day, ok := lookup.ParseWeekday(key)
			if !ok {
				continue
			}
			mergeHourRanges(state.WeeklyHourRanges[day], ranges)
		}
	}

	return nil
}

// Неизвестные ключи игнорируются: словарь дней и интервалов закрыт
func mergeWeekdays(dst lookup.Weekdays, parsed map[string]bool) {
	for key, selected := range parsed {
		if day, ok := lookup.ParseWeekday(key); ok {
			dst[day] = selected
		}
	}
}

func mergeHourRanges(dst lookup.HourRangeSet, parsed map[string]bool) {
	for label, selected := range parsed {
		if _, ok := lookup.LookupHourRange(label); ok {
			dst[label] = selected
		}
	}
}

// == Приведение типов == \\

// stringParam принимает значение, только если это ровно string
func stringParam(raw Params, key string) (string, bool) {
	v, ok := raw[key].(string)
	return v, ok
}

// stringOr повторяет семантику `value || default`: пустая строка тоже дает default
func stringOr(raw Params, key, def string) string {
	if v, ok := stringParam(raw, key); ok && v != "" {
		return v
	}
	return def
}

// boolOr принимает только литералы "true" и "false"
func boolOr(raw Params, key string, def bool) bool {
	v, ok := stringParam(raw, key)
	if !ok {
		return def
	}
	switch v {
	case "true":
		return true
	case "false":
		return false
	default:
		return def
	}
}

// floatParam возвращает nil для отсутствующего, не строкового, нечислового или бесконечного значения
func floatParam(raw Params, key string) *float64 {
	v, ok := stringParam(raw, key)
	if !ok {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// listParam: строка - список из одного элемента, []string - как есть, иначе пустой список
func listParam(raw Params, key string) []string {
	switch v := raw[key].(type) {
	case string:
		return []string{v}
	case []string:
		return v
	default:
		return []string{}
	}
}
