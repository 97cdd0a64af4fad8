package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hazadus/go-163grab/internal/download"
	"github.com/hazadus/go-163grab/internal/manifest"
	"github.com/hazadus/go-163grab/internal/tui"
)

// createTUICommand создает команду tui с привязкой к экземпляру приложения
func (app *Application) createTUICommand(ctx context.Context) *cobra.Command {
	var input string

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Browse the manifest and pick tracks to download",
		Long:  `Launch interactive terminal user interface to browse the manifest and pick tracks to download.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			return app.launchTUI(ctx, input)
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", manifest.DefaultPath, "путь к файлу манифеста")
	return cmd
}

// launchTUI открывает просмотр манифеста и скачивает отмеченные треки
func (app *Application) launchTUI(ctx context.Context, input string) error {
	records, err := manifest.Parse(input)
	if err != nil {
		return fmt.Errorf("ошибка чтения манифеста: %w", err)
	}
	if len(records) == 0 {
		fmt.Println("⚠️  В манифесте нет записей")
		return nil
	}

	playlistName := "Манифест"
	if meta, err := manifest.ReadMeta(input); err == nil && meta.PlaylistName != "" {
		playlistName = meta.PlaylistName
	}

	selected, err := tui.NewApp(playlistName, records).Run()
	if err != nil {
		return fmt.Errorf("ошибка TUI: %w", err)
	}
	if len(selected) == 0 {
		fmt.Println("Ничего не выбрано")
		return nil
	}

	fmt.Printf("📥 Скачиваем %d отмеченных треков\n\n", len(selected))

	manager := download.NewManager(app.Config.DownloadDir, app.Config.Workers)
	result, err := manager.DownloadAll(ctx, selected)
	if err != nil {
		return fmt.Errorf("ошибка загрузки: %w", err)
	}

	fmt.Printf("\n✅ Скачано: %d\n", result.Success)
	if result.Failed > 0 {
		fmt.Printf("❌ Ошибок: %d\n", result.Failed)
	}
	return nil
}
