package lookup

import "strconv"

const (
	MilesToKm = 1.60934
	KmToMiles = 0.621371

	// AnyDistance - значение радиуса "любое расстояние"; отличается от отсутствия фильтра
	AnyDistance = 0.0

	// DefaultRadiusKm - 100 миль
	DefaultRadiusKm = 160.934
)

// DistanceUnit - единица отображения радиуса
type DistanceUnit string

const (
	Miles      DistanceUnit = "mi"
	Kilometers DistanceUnit = "km"
)

// DistanceOption - вариант радиуса; Value всегда в километрах
type DistanceOption struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

var (
	mileSteps = [...]float64{1, 5, 10, 25, 50, 100, 250}
	kmSteps   = [...]float64{1, 5, 10, 25, 50, 100, 250, 500}
)

// DistanceOptionsMiles возвращает новый слайс опций в милях
func DistanceOptionsMiles() []DistanceOption {
	options := []DistanceOption{{Label: "Any distance", Value: AnyDistance}}
	for _, mi := range mileSteps {
		options = append(options, DistanceOption{
			Label: formatDistance(mi, Miles),
			Value: mi * MilesToKm,
		})
	}
	return options
}

// DistanceOptionsKm возвращает новый слайс опций в километрах
func DistanceOptionsKm() []DistanceOption {
	options := []DistanceOption{{Label: "Any distance", Value: AnyDistance}}
	for _, km := range kmSteps {
		options = append(options, DistanceOption{
			Label: formatDistance(km, Kilometers),
			Value: km,
		})
	}
	return options
}

// DistanceOptions выбирает таблицу по единице; неизвестная единица - мили
func DistanceOptions(unit DistanceUnit) []DistanceOption {
	if unit == Kilometers {
		return DistanceOptionsKm()
	}
	return DistanceOptionsMiles()
}

func formatDistance(v float64, unit DistanceUnit) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + " " + string(unit)
}
