package lookup

// HourRange - трехчасовой интервал суток [Min, Max)
type HourRange struct {
	Label string `json:"label"`
	Min   int    `json:"min"`
	Max   int    `json:"max"`
}

// Hours возвращает каждый целый час интервала
func (h HourRange) Hours() []int {
	hours := make([]int, 0, h.Max-h.Min)
	for hour := h.Min; hour < h.Max; hour++ {
		hours = append(hours, hour)
	}
	return hours
}

const (
	HourRange12amTo3am = "12am-3am"
	HourRange3amTo6am  = "3am-6am"
	HourRange6amTo9am  = "6am-9am"
	HourRange9amTo12pm = "9am-12pm"
	HourRange12pmTo3pm = "12pm-3pm"
	HourRange3pmTo6pm  = "3pm-6pm"
	HourRange6pmTo9pm  = "6pm-9pm"
	HourRange9pmTo12am = "9pm-12am"
)

var hourRanges = [...]HourRange{
	{Label: HourRange12amTo3am, Min: 0, Max: 3},
	{Label: HourRange3amTo6am, Min: 3, Max: 6},
	{Label: HourRange6amTo9am, Min: 6, Max: 9},
	{Label: HourRange9amTo12pm, Min: 9, Max: 12},
	{Label: HourRange12pmTo3pm, Min: 12, Max: 15},
	{Label: HourRange3pmTo6pm, Min: 15, Max: 18},
	{Label: HourRange6pmTo9pm, Min: 18, Max: 21},
	{Label: HourRange9pmTo12am, Min: 21, Max: 24},
}

// HourRanges возвращает копию таблицы интервалов в порядке суток
func HourRanges() []HourRange {
	out := make([]HourRange, len(hourRanges))
	copy(out, hourRanges[:])
	return out
}

// LookupHourRange ищет интервал по подписи
func LookupHourRange(label string) (HourRange, bool) {
	for _, h := range hourRanges {
		if h.Label == label {
			return h, true
		}
	}
	return HourRange{}, false
}

// HourRangeSet - выбранные интервалы по подписи
type HourRangeSet map[string]bool

// NewHourRanges возвращает новую карту со всеми интервалами в false
func NewHourRanges() HourRangeSet {
	set := make(HourRangeSet, len(hourRanges))
	for _, h := range hourRanges {
		set[h.Label] = false
	}
	return set
}

// Selected возвращает выбранные интервалы в порядке суток
func (s HourRangeSet) Selected() []HourRange {
	var selected []HourRange
	for _, h := range hourRanges {
		if s[h.Label] {
			selected = append(selected, h)
		}
	}
	return selected
}

// Any сообщает, выбран ли хотя бы один интервал
func (s HourRangeSet) Any() bool {
	for _, h := range hourRanges {
		if s[h.Label] {
			return true
		}
	}
	return false
}
