// Package compiler собирает из FilterState одно дерево условий с корнем AND.
package compiler

import (
	"time"

	"github.com/rx3lixir/event-discovery/internal/filterstate"
	"github.com/rx3lixir/event-discovery/internal/predicate"
)

// Поля и связи нижележащего языка запросов
const (
	FieldEventChannels          = "EventChannels"
	FieldEventChannelsAggregate = "EventChannelsAggregate"
	FieldChannelUniqueName      = "channelUniqueName"
	FieldCount                  = "count"
	FieldFree                   = "free"
	FieldCanceled               = "canceled"
	FieldVirtualEventURL        = "virtualEventUrl"
	FieldTitle                  = "title"
	FieldDescription            = "description"
	FieldLocation               = "location"
	FieldLocationName           = "locationName"
	FieldTags                   = "Tags"
	FieldTagText                = "text"
	FieldStartTime              = "startTime"
	FieldStartTimeDayOfWeek     = "startTimeDayOfWeek"
	FieldStartTimeHourOfDay     = "startTimeHourOfDay"
)

// Context - состояние представления, влияющее на запрос
type Context struct {
	// ShowMap - активна карта: события без координат не нужны
	ShowMap bool
	// ChannelID - непустой для поиска внутри канала
	ChannelID string
	// OnlineOnly добавляет требование ссылки на онлайн-событие независимо от режима локации
	OnlineOnly bool
}

// Compile строит дерево условий. Никогда не завершается ошибкой:
// некорректные значения приводят к пропуску соответствующего условия.
// now передается явно; читать системные часы здесь нельзя.
func Compile(state *filterstate.FilterState, ctx Context, now time.Time) predicate.And {
	if state == nil {
		state = filterstate.Default()
	}

	var conditions []predicate.Node

	// == Канал == \\
	if ctx.ChannelID == "" {
		conditions = append(conditions, predicate.Object(
			FieldEventChannelsAggregate,
			predicate.GreaterThan(FieldCount, 0),
		))
	} else {
		conditions = append(conditions, predicate.Some(
			FieldEventChannels,
			predicate.Eq(FieldChannelUniqueName, ctx.ChannelID),
		))
	}

	// Поле free трехзначное (true/false/не задано), поэтому по false не фильтруем
	if state.Free {
		conditions = append(conditions, predicate.Eq(FieldFree, true))
	}

	if !state.ShowCanceledEvents {
		conditions = append(conditions, predicate.Eq(FieldCanceled, false))
	}

	if state.HasVirtualEventURL {
		conditions = append(conditions, predicate.NotNull(FieldVirtualEventURL))
	}

	// Ввод не экранируется: метасимволы регулярных выражений проходят как есть
	if state.SearchInput != "" {
		pattern := "(?i).*" + state.SearchInput + ".*"
		conditions = append(conditions, predicate.AnyOf(
			predicate.Matches(FieldTitle, pattern),
			predicate.Matches(FieldDescription, pattern),
		))
	}

	conditions = append(conditions, locationConditions(state, ctx.ShowMap)...)

	if ctx.OnlineOnly {
		conditions = append(conditions, predicate.AnyOf(predicate.NotNull(FieldVirtualEventURL)))
	}

	if tags := state.SelectedTags(); len(tags) > 0 {
		matchTags := make([]predicate.Node, 0, len(tags))
		for _, tag := range tags {
			matchTags = append(matchTags, predicate.Contains(FieldTagText, tag))
		}
		conditions = append(conditions, predicate.Some(FieldTags, predicate.AnyOf(matchTags...)))
	}

	// Список каналов учитывается только при поиске по всему сайту
	if ctx.ChannelID == "" {
		if channels := state.SelectedChannels(); len(channels) > 0 {
			matchChannels := make([]predicate.Node, 0, len(channels))
			for _, c := range channels {
				matchChannels = append(matchChannels, predicate.Some(
					FieldEventChannels,
					predicate.Contains(FieldChannelUniqueName, c),
				))
			}
			conditions = append(conditions, predicate.AnyOf(matchChannels...))
		}
	}

	if weekly := weeklyConditions(state); len(weekly) > 0 {
		conditions = append(conditions, predicate.AnyOf(weekly...))
	}

	// == Временное окно (всегда последним) == \\
	window := ResolveWindow(state.TimeShortcut, now)
	conditions = append(conditions,
		predicate.After(FieldStartTime, window.Start),
		predicate.Before(FieldStartTime, window.End),
	)

	return predicate.AllOf(conditions...)
}
