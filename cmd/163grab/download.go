package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hazadus/go-163grab/internal/download"
	"github.com/hazadus/go-163grab/internal/manifest"
)

// createDownloadCommand создает команду download с привязкой к экземпляру приложения
func (app *Application) createDownloadCommand(ctx context.Context) *cobra.Command {
	var workers int
	var input string

	cmd := &cobra.Command{
		Use:   "download",
		Short: "Download all tracks listed in the manifest file",
		Long:  `Download all tracks listed in the manifest file concurrently to the configured download directory.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			if workers <= 0 {
				workers = app.Config.Workers
			}
			return app.downloadTracks(ctx, input, workers)
		},
	}

	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "количество одновременных загрузок (1-10)")
	cmd.Flags().StringVarP(&input, "input", "i", manifest.DefaultPath, "путь к файлу манифеста")
	return cmd
}

// downloadTracks скачивает записи манифеста пулом воркеров
func (app *Application) downloadTracks(ctx context.Context, input string, workers int) error {
	records, err := manifest.Parse(input)
	if err != nil {
		return fmt.Errorf("ошибка чтения манифеста: %w", err)
	}
	if len(records) == 0 {
		fmt.Println("⚠️  В манифесте нет записей для загрузки")
		return nil
	}

	if meta, err := manifest.ReadMeta(input); err == nil {
		fmt.Printf("📋 Плейлист: %s (качество: %s)\n", meta.PlaylistName, meta.Quality)
	}

	workers = download.ClampWorkers(workers)
	fmt.Printf("📥 Скачиваем %d треков в %s (%d воркеров)\n\n", len(records), app.Config.DownloadDir, workers)

	manager := download.NewManager(app.Config.DownloadDir, workers)
	result, err := manager.DownloadAll(ctx, records)
	if err != nil {
		return fmt.Errorf("ошибка загрузки: %w", err)
	}

	fmt.Printf("\n✅ Скачано: %d\n", result.Success)
	if result.Failed > 0 {
		fmt.Printf("❌ Ошибок: %d\n", result.Failed)
	}

	if ctx.Err() != nil {
		return fmt.Errorf("операция прервана: %w", ctx.Err())
	}
	return nil
}
