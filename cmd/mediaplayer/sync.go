package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hazadus/go-mediaplayer/internal/store"
)

// createSyncCommand создает команду sync для обмена плейлистами с S3
func (app *Application) createSyncCommand(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Synchronize playlists between local storage and S3",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "push",
		Short: "Upload local playlists to S3, replacing the remote copy",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return app.syncPlaylists(ctx, true)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "pull",
		Short: "Download playlists from S3, replacing the local copy",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return app.syncPlaylists(ctx, false)
		},
	})

	return cmd
}

// syncPlaylists копирует документ плейлистов между хранилищами.
// Перед записью документ проверяется, чтобы не затереть копию поврежденными данными
func (app *Application) syncPlaylists(ctx context.Context, push bool) error {
	if app.manager != nil {
		return errors.New("синхронизация недоступна, пока открыт менеджер плейлистов")
	}

	local, err := app.openLocalKV()
	if err != nil {
		return err
	}
	defer local.Close()

	remote, err := app.remoteKV()
	if err != nil {
		return err
	}
	defer remote.Close()

	from, to := remote, local
	direction := "S3 → локальное хранилище"
	if push {
		from, to = local, remote
		direction = "локальное хранилище → S3"
	}

	data, err := from.Get(ctx, store.PlaylistsKey)
	if errors.Is(err, store.ErrNotFound) {
		fmt.Printf("📭 Нечего синхронизировать: источник пуст (%s)\n", direction)
		return nil
	}
	if err != nil {
		return fmt.Errorf("ошибка чтения плейлистов: %w", err)
	}

	playlists, err := store.Decode(data)
	if err != nil {
		return err
	}
	if err := to.Put(ctx, store.PlaylistsKey, data); err != nil {
		return fmt.Errorf("ошибка записи плейлистов: %w", err)
	}

	fmt.Printf("✅ Синхронизировано плейлистов: %d (%s)\n", len(playlists), direction)
	return nil
}
