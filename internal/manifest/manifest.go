// Package manifest реализует текстовый формат list.txt со списком прямых
// ссылок: заголовок, нумерованные блоки записей и итоговая сводка.
// Формат построчный и совместим с эталонным инструментом, поэтому метки
// полей и их порядок менять нельзя.
package manifest

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DefaultPath путь к файлу манифеста в рабочей директории
const DefaultPath = "list.txt"

// timeLayout формат временных меток в заголовке и сводке
const timeLayout = "2006-01-02 15:04:05"

// separator отделяет заголовок и сводку от блоков записей
var separator = strings.Repeat("=", 50)

// TrackRecord одна запись манифеста: метаданные трека и его прямая ссылка.
// Запись неизменяема после добавления; уникальность задается порядковым
// номером в пределах одной генерации файла.
type TrackRecord struct {
	Index   int
	Name    string
	Artist  string
	SongID  int64
	Quality string
	Bitrate int // значение br из API, записывается как есть
	URL     string
	Size    int64
	Type    string
}

// Meta заголовочные данные манифеста
type Meta struct {
	PlaylistName string
	Quality      string
}

// Writer пишет манифест: заголовок при инициализации, по одному блоку на
// каждую успешную запись и сводку при завершении
type Writer struct {
	path string
}

// NewWriter создает writer для указанного пути
func NewWriter(path string) *Writer {
	return &Writer{path: path}
}

// Path возвращает путь к файлу манифеста
func (w *Writer) Path() string {
	return w.path
}

// Init создает файл манифеста и записывает заголовок
func (w *Writer) Init(playlistName, quality string) error {
	var b strings.Builder
	fmt.Fprintf(&b, "# 歌单: %s\n", playlistName)
	fmt.Fprintf(&b, "# 音质: %s\n", quality)
	fmt.Fprintf(&b, "# 生成时间: %s\n", time.Now().Format(timeLayout))
	b.WriteString(separator + "\n\n")

	if err := os.WriteFile(w.path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("ошибка инициализации манифеста: %w", err)
	}
	return nil
}

// Append дописывает один блок записи в конец файла. Запись сбрасывается
// на диск сразу, чтобы уже полученные ссылки переживали аварийное
// завершение.
func (w *Writer) Append(record TrackRecord) error {
	file, err := os.OpenFile(w.path, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("ошибка открытия манифеста: %w", err)
	}
	defer file.Close()

	var b strings.Builder
	fmt.Fprintf(&b, "%d. %s - %s\n", record.Index, record.Name, record.Artist)
	fmt.Fprintf(&b, "   歌曲ID: %d\n", record.SongID)
	fmt.Fprintf(&b, "   音质: %s (%dkbps)\n", record.Quality, record.Bitrate)
	fmt.Fprintf(&b, "   直链: %s\n", record.URL)
	fmt.Fprintf(&b, "   大小: %d bytes\n", record.Size)
	fmt.Fprintf(&b, "   类型: %s\n", record.Type)
	b.WriteString("   下载说明: 此直链需要添加Referer请求头才能正常访问\n")
	b.WriteString("   推荐下载工具: IDM、Aria2、curl等支持自定义请求头的工具\n")
	b.WriteString("   必要请求头: Referer: https://music.163.com/\n")
	b.WriteString("   User-Agent: Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36\n")
	b.WriteString("\n")

	if _, err := file.WriteString(b.String()); err != nil {
		return fmt.Errorf("ошибка записи в манифест: %w", err)
	}
	return nil
}

// Finalize переписывает файл целиком, добавляя сводку после уже
// записанных блоков. Сами блоки при этом не меняются.
func (w *Writer) Finalize(successCount int) error {
	content, err := os.ReadFile(w.path)
	if err != nil {
		return fmt.Errorf("ошибка чтения манифеста: %w", err)
	}

	var b strings.Builder
	b.Write(content)
	b.WriteString("\n" + separator + "\n")
	b.WriteString("# 统计信息\n")
	fmt.Fprintf(&b, "# 成功获取直链的歌曲: %d 首\n", successCount)
	fmt.Fprintf(&b, "# 完成时间: %s\n", time.Now().Format(timeLayout))

	if err := os.WriteFile(w.path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("ошибка записи сводки манифеста: %w", err)
	}
	return nil
}

// recordPattern извлекает шесть помеченных полей блока; справочные строки
// после 类型 парсером игнорируются
var recordPattern = regexp.MustCompile(
	`(\d+)\.\s*(.+?)\s*-\s*(.+?)\s*\n` +
		`\s*歌曲ID:\s*(\d+)\s*\n` +
		`\s*音质:\s*(.+?)\s*\((\d+)kbps\)\s*\n` +
		`\s*直链:\s*(.+?)\s*\n` +
		`\s*大小:\s*(\d+)\s*bytes\s*\n` +
		`\s*类型:\s*(.+?)\s*\n`)

var (
	playlistNamePattern = regexp.MustCompile(`(?m)^# 歌单:\s*(.+)$`)
	qualityPattern      = regexp.MustCompile(`(?m)^# 音质:\s*(.+)$`)
)

// Parse читает манифест и возвращает все записи в порядке следования
func Parse(path string) ([]TrackRecord, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения манифеста: %w", err)
	}

	matches := recordPattern.FindAllStringSubmatch(string(content), -1)
	records := make([]TrackRecord, 0, len(matches))

	for _, m := range matches {
		index, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		songID, err := strconv.ParseInt(m[4], 10, 64)
		if err != nil {
			continue
		}
		bitrate, err := strconv.Atoi(m[6])
		if err != nil {
			continue
		}
		size, err := strconv.ParseInt(m[8], 10, 64)
		if err != nil {
			continue
		}

		records = append(records, TrackRecord{
			Index:   index,
			Name:    strings.TrimSpace(m[2]),
			Artist:  strings.TrimSpace(m[3]),
			SongID:  songID,
			Quality: strings.TrimSpace(m[5]),
			Bitrate: bitrate,
			URL:     strings.TrimSpace(m[7]),
			Size:    size,
			Type:    strings.TrimSpace(m[9]),
		})
	}

	return records, nil
}

// ReadMeta читает название плейлиста и качество из заголовка манифеста
func ReadMeta(path string) (*Meta, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения манифеста: %w", err)
	}

	meta := &Meta{}
	if m := playlistNamePattern.FindStringSubmatch(string(content)); len(m) > 1 {
		meta.PlaylistName = strings.TrimSpace(m[1])
	}
	if m := qualityPattern.FindStringSubmatch(string(content)); len(m) > 1 {
		meta.Quality = strings.TrimSpace(m[1])
	}
	return meta, nil
}
