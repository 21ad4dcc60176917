package compiler

import (
	"time"

	"github.com/rx3lixir/event-discovery/internal/lookup"
)

// Window - полуоткрытый интервал [Start, End)
type Window struct {
	Start time.Time
	End   time.Time
}

// ResolveWindow переводит ярлык времени в конкретный интервал относительно now.
// Неделя начинается в воскресенье, календарная арифметика ведется в now.Location().
// Неизвестный ярлык дает окно NONE: "ближайшие два года", а не "всё время".
func ResolveWindow(shortcut lookup.TimeShortcut, now time.Time) Window {
	today := startOfDay(now)
	weekStart := startOfWeek(now)
	nextWeekStart := weekStart.AddDate(0, 0, 7)

	switch shortcut {
	case lookup.TimeShortcutToday:
		return Window{Start: today, End: today.AddDate(0, 0, 1)}
	case lookup.TimeShortcutTomorrow:
		tomorrow := today.AddDate(0, 0, 1)
		return Window{Start: tomorrow, End: tomorrow.AddDate(0, 0, 1)}
	case lookup.TimeShortcutThisWeekend:
		friday := weekStart.AddDate(0, 0, 5)
		return Window{Start: friday, End: friday.AddDate(0, 0, 2)}
	case lookup.TimeShortcutNextWeek:
		return Window{Start: nextWeekStart, End: nextWeekStart.AddDate(0, 0, 7)}
	case lookup.TimeShortcutNextWeekend:
		return Window{Start: nextWeekStart.AddDate(0, 0, 5), End: nextWeekStart.AddDate(0, 0, 7)}
	case lookup.TimeShortcutThisMonth:
		month := startOfMonth(now)
		return Window{Start: month, End: month.AddDate(0, 1, 0)}
	case lookup.TimeShortcutNextMonth:
		next := startOfMonth(now).AddDate(0, 1, 0)
		return Window{Start: next, End: next.AddDate(0, 1, 0)}
	case lookup.TimeShortcutPastEvents:
		return Window{Start: now.AddDate(-2, 0, 0), End: today}
	default:
		start := startOfHour(now)
		return Window{Start: start, End: start.AddDate(2, 0, 0)}
	}
}

func startOfHour(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location())
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// startOfWeek - полночь ближайшего прошедшего воскресенья (или сегодня, если воскресенье)
func startOfWeek(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day()-int(t.Weekday()), 0, 0, 0, 0, t.Location())
}

func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}
