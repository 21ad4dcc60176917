package compiler_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rx3lixir/event-discovery/internal/compiler"
	"github.com/rx3lixir/event-discovery/internal/lookup"
)

func date(y int, m time.Month, d, h int) time.Time {
	return time.Date(y, m, d, h, 0, 0, 0, time.UTC)
}

func Test_ResolveWindow(t *testing.T) {
	// Среда
	now := time.Date(2024, time.January, 3, 10, 27, 13, 0, time.UTC)

	tests := []struct {
		shortcut lookup.TimeShortcut
		start    time.Time
		end      time.Time
	}{
		{lookup.TimeShortcutToday, date(2024, time.January, 3, 0), date(2024, time.January, 4, 0)},
		{lookup.TimeShortcutTomorrow, date(2024, time.January, 4, 0), date(2024, time.January, 5, 0)},
		{lookup.TimeShortcutThisWeekend, date(2024, time.January, 5, 0), date(2024, time.January, 7, 0)},
		{lookup.TimeShortcutNextWeek, date(2024, time.January, 7, 0), date(2024, time.January, 14, 0)},
		{lookup.TimeShortcutNextWeekend, date(2024, time.January, 12, 0), date(2024, time.January, 14, 0)},
		{lookup.TimeShortcutThisMonth, date(2024, time.January, 1, 0), date(2024, time.February, 1, 0)},
		{lookup.TimeShortcutNextMonth, date(2024, time.February, 1, 0), date(2024, time.March, 1, 0)},
		{lookup.TimeShortcutPastEvents, time.Date(2022, time.January, 3, 10, 27, 13, 0, time.UTC), date(2024, time.January, 3, 0)},
		{lookup.TimeShortcutNone, date(2024, time.January, 3, 10), date(2026, time.January, 3, 10)},
	}

	for _, tt := range tests {
		t.Run(string(tt.shortcut), func(t *testing.T) {
			w := compiler.ResolveWindow(tt.shortcut, now)
			assert.True(t, tt.start.Equal(w.Start), "start: want %s, got %s", tt.start, w.Start)
			assert.True(t, tt.end.Equal(w.End), "end: want %s, got %s", tt.end, w.End)
		})
	}
}

func Test_ResolveWindow_UnknownShortcutFallsBackToNone(t *testing.T) {
	now := time.Date(2024, time.January, 3, 10, 27, 0, 0, time.UTC)

	assert.Equal(t,
		compiler.ResolveWindow(lookup.TimeShortcutNone, now),
		compiler.ResolveWindow(lookup.TimeShortcut("SOMEDAY"), now),
	)
}

func Test_ResolveWindow_Total(t *testing.T) {
	now := time.Date(2024, time.March, 31, 23, 59, 0, 0, time.UTC)

	shortcuts := append(lookup.TimeShortcuts(), lookup.TimeShortcut("garbage"))
	for _, s := range shortcuts {
		w := compiler.ResolveWindow(s, now)
		assert.True(t, w.Start.Before(w.End), "%s: empty window", s)
	}
}

func Test_ResolveWindow_SundayStartsTheWeek(t *testing.T) {
	sunday := time.Date(2024, time.January, 7, 15, 0, 0, 0, time.UTC)

	w := compiler.ResolveWindow(lookup.TimeShortcutThisWeekend, sunday)
	assert.True(t, date(2024, time.January, 12, 0).Equal(w.Start))
	assert.True(t, date(2024, time.January, 14, 0).Equal(w.End))
}

func Test_ResolveWindow_UsesLocationOfNow(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*60*60)
	// 2024-01-04 02:00 UTC - это еще 3 января в UTC-5
	now := time.Date(2024, time.January, 3, 21, 0, 0, 0, loc)

	w := compiler.ResolveWindow(lookup.TimeShortcutToday, now)
	assert.True(t, time.Date(2024, time.January, 3, 0, 0, 0, 0, loc).Equal(w.Start))
	assert.Equal(t, loc, w.Start.Location())
}
