package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/hazadus/go-mediaplayer/internal/media"
	"github.com/hazadus/go-mediaplayer/internal/metadata"
	"github.com/hazadus/go-mediaplayer/internal/utils"
)

// createUploadCommand создает команду upload
func (app *Application) createUploadCommand(ctx context.Context) *cobra.Command {
	var title string

	cmd := &cobra.Command{
		Use:   "upload [file]",
		Short: "Upload a local media file to S3 and add its URL to the current playlist",
		Long: `Upload a local audio or video file to the configured S3 bucket.
The file is added to the current playlist by its S3 URL, so it can be played from any machine.`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			uploadCtx, cancel := context.WithTimeout(ctx, 30*time.Minute)
			defer cancel()
			return app.uploadFile(uploadCtx, args[0], title)
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "Title (defaults to tags or file name)")
	return cmd
}

func (app *Application) uploadFile(ctx context.Context, path, title string) error {
	manager, err := app.Manager(ctx)
	if err != nil {
		return err
	}
	if _, ok := manager.CurrentPlaylist(); !ok {
		return fmt.Errorf("сначала создайте плейлист командой 'playlist create'")
	}

	if media.IsRemote(path) {
		return fmt.Errorf("загружать можно только локальные файлы")
	}
	desc, err := metadata.NewExtractor().Describe(path)
	if err != nil {
		return err
	}

	uploader, err := app.uploader()
	if err != nil {
		return err
	}

	fmt.Printf("📤 Загружаем %s\n", desc.URI)
	startTime := time.Now()
	result, err := uploader.Upload(ctx, desc.URI, func(written, total int64) {
		if total <= 0 {
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
	fmt.Printf("✅ Загружено за %s: %s\n", utils.FormatDuration(time.Since(startTime)), result.URL)

	if title == "" {
		title = desc.Info.Title
	}
	item, err := manager.AddMedia(result.URL, title, desc.Type, desc.Info.Options()...)
	if err != nil {
		return err
	}

	fmt.Println("✅ Добавлено в текущий плейлист:")
	printItem(item)
	return nil
}
