package compiler

import (
	"math"

	"github.com/rx3lixir/event-discovery/internal/filterstate"
	"github.com/rx3lixir/event-discovery/internal/lookup"
	"github.com/rx3lixir/event-discovery/internal/predicate"
)

// locationConditions - ветви взаимоисключающие; нераспознанный режим ведет себя как NONE.
func locationConditions(state *filterstate.FilterState, showMap bool) []predicate.Node {
	switch state.LocationFilter {
	case filterstate.LocationFilterOnlyWithAddress:
		return []predicate.Node{predicate.NotNull(FieldLocationName)}

	case filterstate.LocationFilterOnlyVirtual:
		conditions := []predicate.Node{predicate.NotNull(FieldVirtualEventURL)}
		// На карте не показываем метки для чисто онлайн-событий
		if showMap {
			conditions = append(conditions, predicate.IsNull(FieldLocation))
		}
		return conditions

	case filterstate.LocationFilterWithinRadius:
		return radiusConditions(state)

	default:
		if showMap {
			return []predicate.Node{predicate.NotNull(FieldLocation)}
		}
		return nil
	}
}

// radiusConditions: радиус 0 означает "любое расстояние", т.е. просто наличие адреса.
// Незаданный, отрицательный или NaN радиус условий не дает.
func radiusConditions(state *filterstate.FilterState) []predicate.Node {
	// Бесконечный или NaN радиус не сериализуется в JSON: условие опускается
	if state.Radius == nil || math.IsNaN(*state.Radius) || math.IsInf(*state.Radius, 0) {
		return nil
	}
	radius := *state.Radius

	if radius == lookup.AnyDistance {
		return []predicate.Node{predicate.NotNull(FieldLocationName)}
	}

	if radius > 0 && state.Latitude != nil && state.Longitude != nil {
		point := predicate.Point{Latitude: *state.Latitude, Longitude: *state.Longitude}
		return []predicate.Node{predicate.Within(FieldLocation, point, radius*1000)}
	}

	return nil
}
