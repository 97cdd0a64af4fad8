// Package metadata предоставляет функционал для чтения метаданных скачанных файлов
package metadata

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/dhowden/tag"
	"github.com/gopxl/beep/mp3"
)

// TrackTags встроенные теги аудио файла
type TrackTags struct {
	Artist string
	Title  string
	Album  string
}

// FileInfo содержит информацию о скачанном файле
type FileInfo struct {
	Size     int64
	Duration time.Duration
}

// indexPrefixPattern префикс "NNN. " в именах скачанных файлов
var indexPrefixPattern = regexp.MustCompile(`^\d{3}\. `)

// Extractor читает метаданные из аудио файлов
type Extractor struct{}

// NewExtractor создает новый экстрактор метаданных
func NewExtractor() *Extractor {
	return &Extractor{}
}

// ExtractFromFile читает встроенные теги файла. Если тегов нет, метаданные
// восстанавливаются из имени файла вида "NNN. Название - Исполнитель.тип".
func (e *Extractor) ExtractFromFile(filePath string) TrackTags {
	file, err := os.Open(filePath)
	if err != nil {
		return e.tagsFromFileName(filePath)
	}
	defer file.Close()

	metadata, err := tag.ReadFrom(file)
	if err != nil {
		return e.tagsFromFileName(filePath)
	}

	tags := TrackTags{
		Artist: metadata.Artist(),
		Title:  metadata.Title(),
		Album:  metadata.Album(),
	}
	if tags.Title == "" {
		fallback := e.tagsFromFileName(filePath)
		tags.Title = fallback.Title
		if tags.Artist == "" {
			tags.Artist = fallback.Artist
		}
	}
	return tags
}

// GetDuration получает длительность MP3 файла
func (e *Extractor) GetDuration(filePath string) (time.Duration, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return 0, fmt.Errorf("ошибка открытия файла: %w", err)
	}
	defer file.Close()

	streamer, format, err := mp3.Decode(file)
	if err != nil {
		return 0, fmt.Errorf("ошибка декодирования MP3: %w", err)
	}
	defer streamer.Close()

	return format.SampleRate.D(streamer.Len()), nil
}

// GetFileInfo получает размер файла и, для MP3, его длительность
func (e *Extractor) GetFileInfo(filePath string) (*FileInfo, error) {
	fileInfo, err := os.Stat(filePath)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения информации о файле: %w", err)
	}

	info := &FileInfo{Size: fileInfo.Size()}

	// Длительность читаем только у MP3; остальные форматы отдаем без нее
	if strings.EqualFold(filepath.Ext(filePath), ".mp3") {
		if duration, err := e.GetDuration(filePath); err == nil {
			info.Duration = duration
		}
	}

	return info, nil
}

// tagsFromFileName восстанавливает метаданные из имени файла
func (e *Extractor) tagsFromFileName(filePath string) TrackTags {
	fileName := filepath.Base(filePath)
	nameWithoutExt := strings.TrimSuffix(fileName, filepath.Ext(fileName))
	nameWithoutExt = indexPrefixPattern.ReplaceAllString(nameWithoutExt, "")

	// Имена скачанных файлов имеют вид "Название - Исполнитель"
	parts := strings.Split(nameWithoutExt, " - ")
	if len(parts) >= 2 {
		return TrackTags{
			Title:  strings.TrimSpace(strings.Join(parts[:len(parts)-1], " - ")),
			Artist: strings.TrimSpace(parts[len(parts)-1]),
		}
	}

	return TrackTags{
		Artist: "Unknown Artist",
		Title:  nameWithoutExt,
	}
}
