// Package tui содержит компоненты для текстового пользовательского интерфейса
package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hazadus/go-mediaplayer/internal/metadata"
	"github.com/hazadus/go-mediaplayer/internal/playlist"
	"github.com/hazadus/go-mediaplayer/internal/tui/app"
)

// App представляет основное TUI приложение
type App struct {
	manager   *playlist.Manager
	extractor *metadata.Extractor
}

// NewApp создает новый экземпляр TUI приложения
func NewApp(manager *playlist.Manager, extractor *metadata.Extractor) *App {
	return &App{
		manager:   manager,
		extractor: extractor,
	}
}

// Run запускает TUI приложение и блокируется до выхода пользователя
func (tuiApp *App) Run(ctx context.Context) error {
	model := app.NewMainModel(ctx, tuiApp.manager, tuiApp.extractor)

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()

	// Отписываемся от менеджера после завершения программы
	model.Close()

	return err
}
