package main

import (
	"context"

	"github.com/spf13/cobra"
)

// createRootCommand создает корневую команду с настроенными подкомандами
func (app *Application) createRootCommand(ctx context.Context) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "mediaplayer",
		Short:         "A terminal media player with playlists",
		Long:          `A terminal media player: manage playlists of local files and URLs and play them with beep or mpv.`,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	// Добавляем команды, передавая в них экземпляр приложения и контекст
	rootCmd.AddCommand(app.createPlaylistCommand(ctx))
	rootCmd.AddCommand(app.createAddCommand(ctx))
	rootCmd.AddCommand(app.createYouTubeCommand(ctx))
	rootCmd.AddCommand(app.createUploadCommand(ctx))
	rootCmd.AddCommand(app.createRemoveCommand(ctx))
	rootCmd.AddCommand(app.createListCommand(ctx))
	rootCmd.AddCommand(app.createFindCommand(ctx))
	rootCmd.AddCommand(app.createPlayCommand(ctx))
	rootCmd.AddCommand(app.createSyncCommand(ctx))
	rootCmd.AddCommand(app.createTUICommand(ctx))

	return rootCmd
}
