package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/hazadus/go-mediaplayer/internal/media"
	"github.com/hazadus/go-mediaplayer/internal/metadata"
	"github.com/hazadus/go-mediaplayer/internal/utils"
	"github.com/hazadus/go-mediaplayer/internal/youtube"
)

// createYouTubeCommand создает команду youtube
func (app *Application) createYouTubeCommand(ctx context.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "youtube [YouTube URL]",
		Short: "Download audio from a YouTube video and add it to the current playlist",
		Long:  `Download the best audio track of a YouTube video to the configured download directory and add it to the current playlist.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			// Создаем контекст с таймаутом для скачивания (10 минут)
			downloadCtx, cancel := context.WithTimeout(ctx, 10*time.Minute)
			defer cancel()
			return app.downloadYouTube(downloadCtx, args[0])
		},
	}
}

func (app *Application) downloadYouTube(ctx context.Context, url string) error {
	manager, err := app.Manager(ctx)
	if err != nil {
		return err
	}
	// Проверяем выбор заранее, чтобы не скачивать впустую
	if _, ok := manager.CurrentPlaylist(); !ok {
		return fmt.Errorf("сначала создайте плейлист командой 'playlist create'")
	}

	videoID, err := youtube.ExtractVideoID(url)
	if err != nil {
		return err
	}
	fmt.Printf("📥 Скачиваем аудио для видео ID: %s\n", videoID)

	startTime := time.Now()
	downloader := youtube.NewDownloader(app.Config.DownloadDir, app.Logger)
	result, err := downloader.Download(ctx, url, func(written, total int64) {
		if total <= 0 {
			fmt.Printf("\r📊 Скачано: %s", utils.FormatFileSize(written))
			return
		}
		percentage := float64(written) / float64(total) * 100
		speed := float64(written) / time.Since(startTime).Seconds()
		fmt.Printf("\r📊 Прогресс: %.1f%% | %s / %s | Скорость: %s/s",
			percentage,
			utils.FormatFileSize(written),
			utils.FormatFileSize(total),
			utils.FormatFileSize(int64(speed)))
	})
	fmt.Println()
	if err != nil {
		return err
	}

	fmt.Printf("✅ Скачано: %s (%s)\n", result.Path, utils.FormatFileSize(result.Size))

	uri, t := result.Path, media.Audio
	if desc, err := metadata.NewExtractor().Describe(result.Path); err == nil {
		uri, t = desc.URI, desc.Type
	}

	var opts []media.ItemOption
	if result.Author != "" {
		opts = append(opts, media.WithArtist(result.Author))
	}
	item, err := manager.AddMedia(uri, result.Title, t, opts...)
	if err != nil {
		return err
	}

	fmt.Println("✅ Добавлено в текущий плейлист:")
	printItem(item)
	return nil
}
