package db

import "time"

// Event представляет событие в системе
type Event struct {
	ID                 string     `json:"id"`
	Title              string     `json:"title"`
	Description        string     `json:"description"`
	StartTime          time.Time  `json:"startTime"`
	EndTime            *time.Time `json:"endTime,omitempty"`
	StartTimeDayOfWeek int        `json:"startTimeDayOfWeek"`
	StartTimeHourOfDay int        `json:"startTimeHourOfDay"`

	// Free - nil, если организатор не указал стоимость
	Free            *bool      `json:"free,omitempty"`
	Canceled        bool       `json:"canceled"`
	VirtualEventURL *string    `json:"virtualEventUrl,omitempty"`
	LocationName    *string    `json:"locationName,omitempty"`
	Address         *string    `json:"address,omitempty"`
	Location        *GeoPoint  `json:"location,omitempty"`
	Tags            []string   `json:"tags"`
	Channels        []string   `json:"channels"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       *time.Time `json:"updatedAt,omitempty"`
}

// GeoPoint - координаты места проведения
type GeoPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// IsOnline - у события есть ссылка на онлайн-трансляцию
func (e *Event) IsOnline() bool {
	return e.VirtualEventURL != nil && *e.VirtualEventURL != ""
}

// SearchResult - одна страница результатов и общее число совпадений
type SearchResult struct {
	Events []*Event `json:"events"`
	Total  int64    `json:"total"`
}
