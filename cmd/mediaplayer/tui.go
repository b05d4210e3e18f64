package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/hazadus/go-mediaplayer/internal/metadata"
	"github.com/hazadus/go-mediaplayer/internal/tui"
)

// createTUICommand создает команду tui с привязкой к экземпляру приложения
func (app *Application) createTUICommand(ctx context.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Launch TUI (Terminal User Interface)",
		Long:  `Launch interactive terminal user interface for managing playlists and playing media.`,
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			manager, err := app.Manager(ctx)
			if err != nil {
				return err
			}
			return tui.NewApp(manager, metadata.NewExtractor()).Run(ctx)
		},
	}
}
