package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hazadus/go-163grab/internal/manifest"
	"github.com/hazadus/go-163grab/internal/netease"
)

// createInteractiveCommand создает команду interactive с привязкой к экземпляру приложения
func (app *Application) createInteractiveCommand(ctx context.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "interactive",
		Short: "Run interactive extraction session",
		Long:  `Run an interactive session: paste playlist links, pick quality and optionally download the tracks right away.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			return app.runInteractive(ctx)
		},
	}
}

// runInteractive цикл диалога: ссылка на плейлист, выбор качества,
// извлечение ссылок и необязательная загрузка
func (app *Application) runInteractive(ctx context.Context) error {
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("🎵 Извлечение прямых ссылок из плейлистов NetEase Cloud Music")
	fmt.Println("   Введите 'q' для выхода")

	for {
		if ctx.Err() != nil {
			return nil
		}

		fmt.Print("\n🔗 Ссылка на плейлист: ")
		line, err := reader.ReadString('\n')
		if err != nil {
			// EOF: стандартное завершение диалога
			fmt.Println()
			return nil
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}
		if input == "q" || input == "quit" || input == "exit" {
			fmt.Println("👋 До свидания!")
			return nil
		}

		quality := app.chooseQuality(reader)

		if err := app.extractPlaylist(ctx, input, quality, manifest.DefaultPath); err != nil {
			fmt.Printf("❌ Ошибка: %v\n", err)
			continue
		}

		fmt.Print("\n📥 Скачать треки сейчас? (y/n): ")
		answer, err := reader.ReadString('\n')
		if err != nil {
			fmt.Println()
			return nil
		}
		if a := strings.ToLower(strings.TrimSpace(answer)); a != "y" && a != "yes" && a != "д" {
			continue
		}

		workers := app.chooseWorkers(reader)
		if err := app.downloadTracks(ctx, manifest.DefaultPath, workers); err != nil {
			fmt.Printf("❌ Ошибка: %v\n", err)
		}
	}
}

// chooseQuality показывает меню уровней качества и спрашивает до тех пор,
// пока не введен существующий пункт. Пустой ввод принимает значение из
// конфигурации.
func (app *Application) chooseQuality(reader *bufio.Reader) string {
	fmt.Println("\n🎚  Уровни качества:")
	for _, q := range netease.QualityLevels {
		fmt.Printf("   %s. %s (%s)\n", q.Choice, q.Label, q.Level)
	}

	for {
		fmt.Printf("Выберите качество [%s]: ", app.Config.Quality)

		line, err := reader.ReadString('\n')
		if err != nil {
			return app.Config.Quality
		}

		choice := strings.TrimSpace(line)
		if choice == "" {
			return app.Config.Quality
		}
		if level, ok := netease.QualityByChoice(choice); ok {
			return level
		}

		fmt.Println("⚠️  Нет такого пункта меню, попробуйте еще раз")
	}
}

// chooseWorkers запрашивает количество одновременных загрузок
func (app *Application) chooseWorkers(reader *bufio.Reader) int {
	fmt.Printf("Количество одновременных загрузок [%d]: ", app.Config.Workers)

	line, err := reader.ReadString('\n')
	if err != nil {
		return app.Config.Workers
	}

	input := strings.TrimSpace(line)
	if input == "" {
		return app.Config.Workers
	}
	if workers, err := strconv.Atoi(input); err == nil {
		return workers
	}

	fmt.Printf("⚠️  Не число, используем %d\n", app.Config.Workers)
	return app.Config.Workers
}
