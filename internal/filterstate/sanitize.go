package filterstate

// SanitizeStrings удаляет пустые строки и дубликаты, сохраняя порядок первого вхождения.
// Всегда возвращает новый слайс (не nil).
func SanitizeStrings(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// SelectedTags - теги, готовые к использованию в запросе
func (s *FilterState) SelectedTags() []string {
	return SanitizeStrings(s.Tags)
}

// SelectedChannels - каналы, готовые к использованию в запросе
func (s *FilterState) SelectedChannels() []string {
	return SanitizeStrings(s.Channels)
}
