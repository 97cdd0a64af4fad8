package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/mp3"
	"github.com/gopxl/beep/speaker"
	"github.com/spf13/cobra"

	"github.com/hazadus/go-163grab/internal/download"
	"github.com/hazadus/go-163grab/internal/manifest"
	"github.com/hazadus/go-163grab/internal/metadata"
	"github.com/hazadus/go-163grab/internal/utils"
)

// createPlayCommand создает команду play с привязкой к экземпляру приложения
func (app *Application) createPlayCommand(ctx context.Context) *cobra.Command {
	var input string

	cmd := &cobra.Command{
		Use:   "play [track number]",
		Short: "Play a downloaded track by its manifest number",
		Long:  `Play a downloaded mp3 track by its number in the manifest file.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("неверный номер трека: %s", args[0])
			}
			return app.playTrack(ctx, input, index)
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", manifest.DefaultPath, "путь к файлу манифеста")
	return cmd
}

// playTrack воспроизводит скачанный трек из манифеста
func (app *Application) playTrack(ctx context.Context, input string, index int) error {
	records, err := manifest.Parse(input)
	if err != nil {
		return fmt.Errorf("ошибка чтения манифеста: %w", err)
	}

	var record *manifest.TrackRecord
	for i := range records {
		if records[i].Index == index {
			record = &records[i]
			break
		}
	}
	if record == nil {
		return fmt.Errorf("трек с номером %d не найден в манифесте", index)
	}
	if record.Type != "mp3" {
		return fmt.Errorf("воспроизведение поддерживается только для mp3, трек имеет формат %s", record.Type)
	}

	filePath := filepath.Join(app.Config.DownloadDir, download.FileName(*record))
	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("файл не скачан: %w", err)
	}
	defer file.Close()

	streamer, format, err := mp3.Decode(file)
	if err != nil {
		return fmt.Errorf("ошибка декодирования MP3: %w", err)
	}
	defer streamer.Close()

	if err := speaker.Init(format.SampleRate, format.SampleRate.N(time.Second/10)); err != nil {
		return fmt.Errorf("ошибка инициализации аудио: %w", err)
	}

	tags := metadata.NewExtractor().ExtractFromFile(filePath)
	duration := format.SampleRate.D(streamer.Len())

	fmt.Printf("🎵 Сейчас играет:\n")
	fmt.Printf("   Исполнитель: %s\n", tags.Artist)
	fmt.Printf("   Название: %s\n", tags.Title)
	if tags.Album != "" {
		fmt.Printf("   Альбом: %s\n", tags.Album)
	}
	fmt.Printf("   Продолжительность: %s\n", utils.FormatDuration(duration))
	fmt.Println()

	// Закрытие канала будит и горутину прогресса, и ожидание ниже
	done := make(chan struct{})
	speaker.Play(beep.Seq(streamer, beep.Callback(func() {
		close(done)
	})))

	go progressLoop(done, duration, func() time.Duration {
		speaker.Lock()
		defer speaker.Unlock()
		return format.SampleRate.D(streamer.Position())
	})

	select {
	case <-done:
		fmt.Println("\n✅ Воспроизведение завершено")
	case <-ctx.Done():
		speaker.Clear()
		fmt.Println("\n🚫 Воспроизведение прервано")
	}
	return nil
}

// progressLoop раз в секунду печатает позицию воспроизведения, пока
// канал done не будет закрыт
func progressLoop(done <-chan struct{}, duration time.Duration, position func() time.Duration) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			fmt.Printf("\r⏱️  Прогресс: %s / %s",
				utils.FormatDuration(position()),
				utils.FormatDuration(duration))
		}
	}
}
