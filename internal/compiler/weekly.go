package compiler

import (
	"github.com/rx3lixir/event-discovery/internal/filterstate"
	"github.com/rx3lixir/event-discovery/internal/lookup"
	"github.com/rx3lixir/event-discovery/internal/predicate"
)

// weeklyConditions возвращает плоский список альтернатив для одного OR.
//
// Выбранные дни и интервалы складываются, а не пересекаются: понедельник + "6am-9am"
// означает "любое событие в понедельник ИЛИ любое событие с 6 до 9".
// Часы перечисляются точными равенствами, а не диапазоном, чтобы поле оставалось индексируемым.
func weeklyConditions(state *filterstate.FilterState) []predicate.Node {
	var conditions []predicate.Node

	for _, day := range state.Weekdays.Selected() {
		conditions = append(conditions, predicate.Eq(FieldStartTimeDayOfWeek, int(day)))
	}

	for _, h := range state.HourRanges.Selected() {
		conditions = append(conditions, hourConditions(h)...)
	}

	// Интервалы для конкретного дня - отдельная альтернатива "день И один из часов"
	for _, day := range lookup.AllWeekdays() {
		for _, h := range state.WeeklyHourRanges[day].Selected() {
			conditions = append(conditions, predicate.AllOf(
				predicate.Eq(FieldStartTimeDayOfWeek, int(day)),
				predicate.AnyOf(hourConditions(h)...),
			))
		}
	}

	return conditions
}

func hourConditions(h lookup.HourRange) []predicate.Node {
	hours := h.Hours()
	conditions := make([]predicate.Node, 0, len(hours))
	for _, hour := range hours {
		conditions = append(conditions, predicate.Eq(FieldStartTimeHourOfDay, hour))
	}
	return conditions
}
