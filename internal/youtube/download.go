// Package youtube скачивает звуковую дорожку видео с YouTube
package youtube

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/kkdai/youtube/v2"

	"github.com/hazadus/go-mediaplayer/internal/streaming"
	"github.com/hazadus/go-mediaplayer/internal/utils"
)

var videoIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:youtube\.com/watch\?(?:.*&)?v=|youtu\.be/)([a-zA-Z0-9_-]{11})`),
	regexp.MustCompile(`(?:youtube\.com/embed/)([a-zA-Z0-9_-]{11})`),
	regexp.MustCompile(`(?:youtube\.com/v/)([a-zA-Z0-9_-]{11})`),
	regexp.MustCompile(`(?:youtube\.com/shorts/)([a-zA-Z0-9_-]{11})`),
}

var (
	bareIDPattern      = regexp.MustCompile(`^[a-zA-Z0-9_-]{11}$`)
	invalidFileNameRun = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)
)

// Result описывает скачанный файл
type Result struct {
	Path   string
	Title  string
	Author string
	Size   int64
}

// Downloader скачивает аудио в указанную директорию
type Downloader struct {
	client *youtube.Client
	dir    string
	logger *log.Logger
}

// NewDownloader создает загрузчик
func NewDownloader(dir string, logger *log.Logger) *Downloader {
	return &Downloader{
		client: &youtube.Client{},
		dir:    dir,
		logger: logger,
	}
}

// Download скачивает лучшую звуковую дорожку. onProgress может быть nil
func (d *Downloader) Download(ctx context.Context, url string, onProgress func(written, total int64)) (Result, error) {
	videoID, err := ExtractVideoID(url)
	if err != nil {
		return Result{}, err
	}

	video, err := d.client.GetVideoContext(ctx, videoID)
	if err != nil {
		return Result{}, fmt.Errorf("ошибка получения информации о видео: %w", err)
	}

	format := findBestAudioFormat(video.Formats)
	if format == nil {
		return Result{}, fmt.Errorf("аудио формат не найден для видео %s", videoID)
	}
	d.logger.Debug("Выбран формат", "itag", format.ItagNo, "mime", format.MimeType, "bitrate", format.Bitrate)

	stream, size, err := d.client.GetStreamContext(ctx, video, format)
	if err != nil {
		return Result{}, fmt.Errorf("ошибка получения потока: %w", err)
	}
	defer stream.Close()

	dir, err := utils.ExpandHome(d.dir)
	if err != nil {
		return Result{}, err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return Result{}, fmt.Errorf("ошибка создания директории: %w", err)
	}

	path := filepath.Join(dir, SanitizeFileName(video.Title)+extensionFor(format.MimeType))
	file, err := os.Create(path)
	if err != nil {
		return Result{}, fmt.Errorf("ошибка создания файла: %w", err)
	}
	defer file.Close()

	var reader io.Reader = stream
	if onProgress != nil {
		reader = &streaming.ProgressReader{Reader: stream, Size: size, OnProgress: onProgress}
	}

	written, err := io.Copy(file, reader)
	if err != nil {
		os.Remove(path)
		return Result{}, fmt.Errorf("ошибка скачивания: %w", err)
	}
	if err := file.Close(); err != nil {
		return Result{}, fmt.Errorf("ошибка записи файла: %w", err)
	}

	d.logger.Info("Аудио скачано", "path", path, "size", utils.FormatFileSize(written))
	return Result{
		Path:   path,
		Title:  video.Title,
		Author: video.Author,
		Size:   written,
	}, nil
}

// ExtractVideoID извлекает ID видео из различных форматов YouTube URL
func ExtractVideoID(url string) (string, error) {
	for _, re := range videoIDPatterns {
		if matches := re.FindStringSubmatch(url); len(matches) > 1 {
			return matches[1], nil
		}
	}

	if bareIDPattern.MatchString(url) {
		return url, nil
	}

	return "", fmt.Errorf("не удалось извлечь ID видео из URL: %s", url)
}

// findBestAudioFormat выбирает дорожку только со звуком с наибольшим битрейтом,
// а если таких нет - первое видео со звуком
func findBestAudioFormat(formats youtube.FormatList) *youtube.Format {
	var best *youtube.Format
	for i := range formats {
		format := &formats[i]
		if format.AudioChannels == 0 || !strings.HasPrefix(format.MimeType, "audio/") {
			continue
		}
		if best == nil || format.Bitrate > best.Bitrate {
			best = format
		}
	}
	if best != nil {
		return best
	}

	for i := range formats {
		if formats[i].AudioChannels > 0 {
			return &formats[i]
		}
	}
	return nil
}

// extensionFor подбирает расширение файла по MIME формата
func extensionFor(mimeType string) string {
	switch {
	case strings.HasPrefix(mimeType, "audio/mp4"):
		return ".m4a"
	case strings.HasPrefix(mimeType, "audio/webm"):
		return ".weba"
	case strings.HasPrefix(mimeType, "audio/mpeg"):
		return ".mp3"
	case strings.HasPrefix(mimeType, "video/mp4"):
		return ".mp4"
	case strings.HasPrefix(mimeType, "video/webm"):
		return ".webm"
	default:
		return ".bin"
	}
}

// SanitizeFileName очищает имя файла от недопустимых символов
func SanitizeFileName(name string) string {
	name = invalidFileNameRun.ReplaceAllString(name, "_")
	name = strings.TrimSpace(name)

	// Ограничиваем длину, не разрезая многобайтовые символы
	if runes := []rune(name); len(runes) > 200 {
		name = string(runes[:200])
	}
	if name == "" {
		name = "audio"
	}
	return name
}
