package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/hazadus/go-163grab/internal/manifest"
	"github.com/hazadus/go-163grab/internal/netease"
)

// createExtractCommand создает команду extract с привязкой к экземпляру приложения
func (app *Application) createExtractCommand(ctx context.Context) *cobra.Command {
	var quality string
	var output string

	cmd := &cobra.Command{
		Use:   "extract [playlist URL or ID]",
		Short: "Extract direct track links from a playlist into a manifest file",
		Long:  `Extract direct track links from a NetEase Cloud Music playlist and write them to a manifest file for later downloading.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if quality == "" {
				quality = app.Config.Quality
			}
			return app.extractPlaylist(ctx, args[0], quality, output)
		},
	}

	cmd.Flags().StringVarP(&quality, "quality", "q", "", "уровень качества (standard, higher, exhigh, lossless, hires, jyeffect, sky, dolby, jymaster)")
	cmd.Flags().StringVarP(&output, "output", "o", manifest.DefaultPath, "путь к файлу манифеста")
	return cmd
}

// extractPlaylist получает прямые ссылки всех треков плейлиста и пишет манифест
func (app *Application) extractPlaylist(ctx context.Context, input, quality, output string) error {
	if !netease.IsValidQuality(quality) {
		return fmt.Errorf("неизвестный уровень качества: %s", quality)
	}

	playlistID := netease.ExtractPlaylistID(input)
	if playlistID == "" {
		return fmt.Errorf("не удалось извлечь ID плейлиста из ссылки: %s", input)
	}

	client := app.newClient(app.Config.APIBaseURL)

	fmt.Println("🔍 Проверяем доступность API сервера...")
	if err := client.Ping(ctx); err != nil {
		return err
	}

	playlist, err := client.PlaylistDetail(ctx, playlistID)
	if err != nil {
		return fmt.Errorf("ошибка получения плейлиста: %w", err)
	}
	fmt.Printf("📋 Плейлист: %s (%d треков)\n", playlist.Name, len(playlist.TrackIDs))

	songs, err := client.SongDetails(ctx, playlist.TrackIDs)
	if err != nil {
		return fmt.Errorf("ошибка получения сведений о треках: %w", err)
	}

	writer := manifest.NewWriter(output)
	if err := writer.Init(playlist.Name, quality); err != nil {
		return fmt.Errorf("ошибка создания манифеста: %w", err)
	}

	success := 0
	for i, song := range songs {
		if ctx.Err() != nil {
			break
		}

		fmt.Printf("⏳ [%d/%d] %s - %s\n", i+1, len(songs), song.Name, song.ArtistNames())

		trackURL, err := client.SongURL(ctx, song.ID, quality)
		if err != nil {
			fmt.Printf("❌ Прямая ссылка не получена: %v\n", err)
			continue
		}

		success++
		// Нумерация по позиции в плейлисте: после неудачного трека
		// в манифесте остается разрыв в номерах
		record := manifest.TrackRecord{
			Index:   i + 1,
			Name:    song.Name,
			Artist:  song.ArtistNames(),
			SongID:  song.ID,
			Quality: quality,
			Bitrate: trackURL.Bitrate,
			URL:     trackURL.URL,
			Size:    trackURL.Size,
			Type:    strings.ToLower(trackURL.Type),
		}
		if err := writer.Append(record); err != nil {
			return fmt.Errorf("ошибка записи манифеста: %w", err)
		}

		if i < len(songs)-1 {
			select {
			case <-ctx.Done():
			case <-time.After(app.extractDelay):
			}
		}
	}

	if err := writer.Finalize(success); err != nil {
		return fmt.Errorf("ошибка завершения манифеста: %w", err)
	}

	fmt.Printf("\n✅ Получено прямых ссылок: %d из %d\n", success, len(songs))
	if failed := len(songs) - success; failed > 0 {
		fmt.Printf("⚠️  Не удалось получить: %d\n", failed)
	}
	fmt.Printf("📄 Манифест сохранен: %s\n", writer.Path())

	if ctx.Err() != nil {
		return fmt.Errorf("операция прервана: %w", ctx.Err())
	}
	return nil
}
