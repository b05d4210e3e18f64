package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hazadus/go-mediaplayer/internal/config"
	"github.com/hazadus/go-mediaplayer/internal/logging"
)

const (
	defaultConfigPath = "~/.mediaplayer.yaml"
	configEnvVar      = "MEDIAPLAYER_CONFIG"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := defaultConfigPath
	if path := os.Getenv(configEnvVar); path != "" {
		configPath = path
	}

	// Загружаем конфигурацию
	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Ошибка загрузки конфигурации: %v\n", err)
		return 1
	}

	logger := logging.New(os.Stderr, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := NewApplication(cfg, logger)
	rootCmd := app.createRootCommand(ctx)
	execErr := rootCmd.Execute()

	// Даже после отмены контекста даем время дописать плейлисты
	closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.Close(closeCtx); err != nil {
		logger.Error("Ошибка сохранения данных", "err", err)
		return 1
	}

	if execErr != nil {
		return 1
	}
	return 0
}
