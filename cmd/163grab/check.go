package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hazadus/go-163grab/internal/download"
	"github.com/hazadus/go-163grab/internal/manifest"
	"github.com/hazadus/go-163grab/internal/metadata"
	"github.com/hazadus/go-163grab/internal/utils"
)

// checkSizeTolerance допустимое расхождение размера файла с манифестом
const checkSizeTolerance = 1024

// createCheckCommand создает команду check с привязкой к экземпляру приложения
func (app *Application) createCheckCommand() *cobra.Command {
	var input string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify downloaded files against the manifest",
		Long:  `Compare downloaded files with the manifest: presence, size and embedded tags.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			return app.checkDownloads(input)
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", manifest.DefaultPath, "путь к файлу манифеста")
	return cmd
}

// checkDownloads сверяет скачанные файлы с манифестом
func (app *Application) checkDownloads(input string) error {
	records, err := manifest.Parse(input)
	if err != nil {
		return fmt.Errorf("ошибка чтения манифеста: %w", err)
	}
	if len(records) == 0 {
		fmt.Println("⚠️  В манифесте нет записей для проверки")
		return nil
	}

	if meta, err := manifest.ReadMeta(input); err == nil {
		fmt.Printf("📋 Плейлист: %s (качество: %s)\n\n", meta.PlaylistName, meta.Quality)
	}

	extractor := metadata.NewExtractor()

	fmt.Printf("%-4s %-35s %-20s %-12s %-10s %s\n",
		"№", "Название", "Исполнитель", "Размер", "Время", "Статус")
	fmt.Println(strings.Repeat("-", 100))

	okCount := 0
	for _, record := range records {
		filePath := filepath.Join(app.Config.DownloadDir, download.FileName(record))

		status := "✅"
		size := "N/A"
		duration := "N/A"

		info, err := extractor.GetFileInfo(filePath)
		switch {
		case err != nil:
			status = "❌ нет файла"
		default:
			size = utils.FormatFileSize(info.Size)
			if info.Duration > 0 {
				duration = utils.FormatDuration(info.Duration)
			}

			diff := info.Size - record.Size
			if diff < 0 {
				diff = -diff
			}
			if diff >= checkSizeTolerance {
				status = fmt.Sprintf("⚠️  размер (ожидалось %s)", utils.FormatFileSize(record.Size))
			} else {
				okCount++
			}
		}

		fmt.Printf("%-4d %-35s %-20s %-12s %-10s %s\n",
			record.Index,
			utils.TruncateString(record.Name, 35),
			utils.TruncateString(record.Artist, 20),
			size, duration, status)
	}

	fmt.Printf("\n✅ В порядке: %d из %d\n", okCount, len(records))
	return nil
}
