package lookup

import (
	"strconv"
	"time"
)

// Weekday - день недели, 0 (воскресенье) ... 6 (суббота)
type Weekday int

const (
	Sunday Weekday = iota
	Monday
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
)

var weekdayNames = [...]string{
	"Sunday",
	"Monday",
	"Tuesday",
	"Wednesday",
	"Thursday",
	"Friday",
	"Saturday",
}

// WeekdayOption - номер и название для клиента
type WeekdayOption struct {
	Number Weekday `json:"number"`
	Name   string  `json:"name"`
}

// AllWeekdays возвращает дни недели начиная с воскресенья
func AllWeekdays() []Weekday {
	return []Weekday{Sunday, Monday, Tuesday, Wednesday, Thursday, Friday, Saturday}
}

// WeekdayOptions возвращает новый слайс опций при каждом вызове
func WeekdayOptions() []WeekdayOption {
	options := make([]WeekdayOption, 0, len(weekdayNames))
	for _, d := range AllWeekdays() {
		options = append(options, WeekdayOption{Number: d, Name: d.String()})
	}
	return options
}

func (d Weekday) IsValid() bool {
	return d >= Sunday && d <= Saturday
}

func (d Weekday) String() string {
	if !d.IsValid() {
		return "Weekday(" + strconv.Itoa(int(d)) + ")"
	}
	return weekdayNames[d]
}

// Key - строковый ключ, используемый в JSON параметрах URL
func (d Weekday) Key() string {
	return strconv.Itoa(int(d))
}

// ParseWeekday разбирает ключ "0".."6"
func ParseWeekday(key string) (Weekday, bool) {
	n, err := strconv.Atoi(key)
	if err != nil {
		return 0, false
	}
	d := Weekday(n)
	if !d.IsValid() {
		return 0, false
	}
	return d, true
}

// FromTime переводит time.Weekday; нумерация совпадает
func FromTime(d time.Weekday) Weekday {
	return Weekday(d)
}

// Weekdays - выбранные дни недели
type Weekdays map[Weekday]bool

// NewWeekdays возвращает новую карту со всеми днями в false
func NewWeekdays() Weekdays {
	days := make(Weekdays, len(weekdayNames))
	for _, d := range AllWeekdays() {
		days[d] = false
	}
	return days
}

// Selected возвращает выбранные дни по возрастанию номера
func (w Weekdays) Selected() []Weekday {
	var selected []Weekday
	for _, d := range AllWeekdays() {
		if w[d] {
			selected = append(selected, d)
		}
	}
	return selected
}

// WeeklyHourRanges - интервалы суток отдельно для каждого дня недели
type WeeklyHourRanges map[Weekday]HourRangeSet

// NewWeeklyHourRanges возвращает новую карту 7x8 со всеми значениями false.
// Вложенные карты не разделяются между днями.
func NewWeeklyHourRanges() WeeklyHourRanges {
	weekly := make(WeeklyHourRanges, len(weekdayNames))
	for _, d := range AllWeekdays() {
		weekly[d] = NewHourRanges()
	}
	return weekly
}
