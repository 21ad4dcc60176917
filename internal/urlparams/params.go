// Package urlparams переводит параметры запроса в FilterState и обратно.
package urlparams

import (
	"errors"
	"net/url"
)

// Ключи параметров URL
const (
	KeyTimeShortcut       = "timeShortcut"
	KeyTags               = "tags"
	KeyChannels           = "channels"
	KeySearchInput        = "searchInput"
	KeyShowCanceledEvents = "showCanceledEvents"
	KeyFree               = "free"
	KeyResultsOrder       = "resultsOrder"
	KeyLocationFilter     = "locationFilter"
	KeyRadius             = "radius"
	KeyPlaceName          = "placeName"
	KeyPlaceAddress       = "placeAddress"
	KeyLatitude           = "latitude"
	KeyLongitude          = "longitude"
	KeyHasVirtualEventURL = "hasVirtualEventUrl"
	KeyShowArchived       = "showArchived"
	KeyWeekdays           = "weekdays"
	KeyHourRanges         = "hourRanges"
	KeyWeeklyHourRanges   = "weeklyHourRanges"
)

// ErrMalformedStructuredField - JSON поле (weekdays, hourRanges, weeklyHourRanges) не разбирается.
// Ошибка всегда возвращается вызывающему, частично разобранное состояние не используется.
var ErrMalformedStructuredField = errors.New("malformed structured filter field")

// Params - сырые параметры запроса.
// Значение - string, []string или что угодно другое (неверная форма, трактуется как отсутствие).
type Params map[string]any

// FromQuery строит Params из url.Values: одиночные значения становятся string,
// повторяющиеся - []string.
func FromQuery(values url.Values) Params {
	params := make(Params, len(values))
	for key, vals := range values {
		switch len(vals) {
		case 0:
			continue
		case 1:
			params[key] = vals[0]
		default:
			params[key] = append([]string(nil), vals...)
		}
	}
	return params
}

// Has сообщает, присутствует ли ключ вообще (значение может быть любой формы)
func (p Params) Has(key string) bool {
	v, ok := p[key]
	return ok && v != nil
}

// Context - контекст маршрута, влияющий на значения по умолчанию
type Context struct {
	// ChannelID - непустой для поиска внутри канала
	ChannelID string

	IsOnlineOnlyRoute   bool
	IsInPersonOnlyRoute bool

	// StructuredTimeFilters включает разбор JSON полей weekdays/hourRanges/weeklyHourRanges
	StructuredTimeFilters bool
}

// ChannelScoped - true, если поиск ограничен одним каналом
func (c Context) ChannelScoped() bool {
	return c.ChannelID != ""
}
