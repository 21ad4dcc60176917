package lookup

// TimeShortcut - именованное относительное временное окно ("в эти выходные" и т.п.)
type TimeShortcut string

const (
	TimeShortcutNone        TimeShortcut = "NONE"
	TimeShortcutToday       TimeShortcut = "TODAY"
	TimeShortcutTomorrow    TimeShortcut = "TOMORROW"
	TimeShortcutThisWeekend TimeShortcut = "THIS_WEEKEND"
	TimeShortcutNextWeek    TimeShortcut = "NEXT_WEEK"
	TimeShortcutNextWeekend TimeShortcut = "NEXT_WEEKEND"
	TimeShortcutThisMonth   TimeShortcut = "THIS_MONTH"
	TimeShortcutNextMonth   TimeShortcut = "NEXT_MONTH"
	TimeShortcutPastEvents  TimeShortcut = "PAST_EVENTS"
)

// TimeShortcutOption - значение и подпись для клиента
type TimeShortcutOption struct {
	Value TimeShortcut `json:"value"`
	Label string       `json:"label"`
}

var timeShortcutLabels = map[TimeShortcut]string{
	TimeShortcutNone:        "Any time",
	TimeShortcutToday:       "Today",
	TimeShortcutTomorrow:    "Tomorrow",
	TimeShortcutThisWeekend: "This weekend",
	TimeShortcutNextWeek:    "Next week",
	TimeShortcutNextWeekend: "Next weekend",
	TimeShortcutThisMonth:   "This month",
	TimeShortcutNextMonth:   "Next month",
	TimeShortcutPastEvents:  "Past events",
}

// TimeShortcuts возвращает все значения в порядке отображения
func TimeShortcuts() []TimeShortcut {
	return []TimeShortcut{
		TimeShortcutNone,
		TimeShortcutToday,
		TimeShortcutTomorrow,
		TimeShortcutThisWeekend,
		TimeShortcutNextWeek,
		TimeShortcutNextWeekend,
		TimeShortcutThisMonth,
		TimeShortcutNextMonth,
		TimeShortcutPastEvents,
	}
}

// TimeShortcutOptions возвращает новый слайс опций при каждом вызове
func TimeShortcutOptions() []TimeShortcutOption {
	shortcuts := TimeShortcuts()
	options := make([]TimeShortcutOption, 0, len(shortcuts))
	for _, s := range shortcuts {
		options = append(options, TimeShortcutOption{Value: s, Label: s.Label()})
	}
	return options
}

// IsKnown сообщает, входит ли значение в закрытый словарь
func (s TimeShortcut) IsKnown() bool {
	_, ok := timeShortcutLabels[s]
	return ok
}

// Label возвращает подпись; для неизвестных значений - подпись NONE
func (s TimeShortcut) Label() string {
	if label, ok := timeShortcutLabels[s]; ok {
		return label
	}
	return timeShortcutLabels[TimeShortcutNone]
}
