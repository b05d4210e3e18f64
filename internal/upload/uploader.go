// Package upload загружает локальные медиафайлы в S3, чтобы их можно было
// воспроизводить по URL с любого устройства
package upload

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/charmbracelet/log"

	"github.com/hazadus/go-mediaplayer/internal/store"
	"github.com/hazadus/go-mediaplayer/internal/streaming"
)

// mediaDir - каталог в бакете для загруженных файлов
const mediaDir = "media"

// API - часть s3manager.Uploader, которую использует Uploader
type API interface {
	UploadWithContext(ctx aws.Context, input *s3manager.UploadInput, opts ...func(*s3manager.Uploader)) (*s3manager.UploadOutput, error)
}

// Result содержит результат загрузки
type Result struct {
	URL  string
	Key  string
	Size int64
}

// Uploader загружает файлы в бакет из настроек
type Uploader struct {
	api    API
	config *store.S3Config
	logger *log.Logger
}

// NewUploader создает uploader поверх сессии AWS
func NewUploader(config *store.S3Config, logger *log.Logger) (*Uploader, error) {
	sess, err := store.NewAWSSession(config)
	if err != nil {
		return nil, err
	}
	return NewUploaderWithAPI(s3manager.NewUploader(sess), config, logger), nil
}

// NewUploaderWithAPI создает uploader с заданным клиентом
func NewUploaderWithAPI(api API, config *store.S3Config, logger *log.Logger) *Uploader {
	return &Uploader{api: api, config: config, logger: logger}
}

// Key возвращает ключ объекта для локального файла
func (u *Uploader) Key(filePath string) string {
	return path.Join(u.config.Prefix, mediaDir, filepath.Base(filePath))
}

// Upload загружает файл. onProgress может быть nil
func (u *Uploader) Upload(ctx context.Context, filePath string, onProgress func(written, total int64)) (Result, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return Result{}, fmt.Errorf("ошибка открытия файла: %w", err)
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return Result{}, fmt.Errorf("ошибка получения информации о файле: %w", err)
	}
	if stat.IsDir() {
		return Result{}, fmt.Errorf("%s является каталогом", filePath)
	}

	key := u.Key(filePath)
	u.logger.Debug("Загрузка файла в S3", "path", filePath, "bucket", u.config.BucketName, "key", key)

	out, err := u.api.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket: aws.String(u.config.BucketName),
		Key:    aws.String(key),
		Body: &streaming.ProgressReader{
			Reader:     file,
			Size:       stat.Size(),
			OnProgress: onProgress,
		},
	})
	if err != nil {
		return Result{}, fmt.Errorf("ошибка загрузки: %w", err)
	}

	url := ""
	if out != nil {
		url = out.Location
	}
	if url == "" {
		url = fmt.Sprintf("%s/%s/%s", strings.TrimSuffix(u.config.Endpoint, "/"), u.config.BucketName, key)
	}

	u.logger.Info("Файл загружен", "url", url, "size", stat.Size())
	return Result{URL: url, Key: key, Size: stat.Size()}, nil
}
