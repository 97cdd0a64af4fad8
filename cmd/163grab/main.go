package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hazadus/go-163grab/internal/config"
	"github.com/hazadus/go-163grab/internal/netease"
)

const defaultConfigPath = "~/.163grab"

// Application хранит зависимости команд
type Application struct {
	Config *config.Config

	// extractDelay пауза между запросами прямых ссылок соседних треков
	extractDelay time.Duration
	// newClient фабрика API клиентов, подменяется в тестах
	newClient func(baseURL string) *netease.Client
}

// newApplication создает экземпляр приложения с указанной конфигурацией
func newApplication(cfg *config.Config) *Application {
	return &Application{
		Config:       cfg,
		extractDelay: 500 * time.Millisecond,
		newClient:    netease.NewClient,
	}
}

func main() {
	cfg, err := config.LoadConfig(defaultConfigPath)
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	// Контекст отменяется по Ctrl+C, чтобы загрузки завершались корректно
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := newApplication(cfg)
	rootCmd := app.createRootCommand(ctx)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
