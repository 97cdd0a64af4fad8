package netease

import (
	"regexp"
	"strings"
)

// Паттерны известных форм ссылок на плейлист:
// https://music.163.com/#/playlist?id=24381616
// https://music.163.com/playlist?id=24381616
// https://music.163.com/playlist/24381616
var playlistIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`[?&]id=(\d+)`),
	regexp.MustCompile(`/playlist/(\d+)`),
}

// ExtractPlaylistID извлекает ID плейлиста из ссылки. Строка без слова
// "playlist" считается готовым ID и возвращается как есть; ссылка на
// плейлист, из которой ID извлечь не удалось, дает пустую строку.
func ExtractPlaylistID(input string) string {
	input = strings.TrimSpace(input)
	if !strings.Contains(input, "playlist") {
		return input
	}

	for _, pattern := range playlistIDPatterns {
		if matches := pattern.FindStringSubmatch(input); len(matches) > 1 {
			return matches[1]
		}
	}
	return ""
}
