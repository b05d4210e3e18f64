package upload

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"

	"github.com/hazadus/go-mediaplayer/internal/logging"
	"github.com/hazadus/go-mediaplayer/internal/store"
)

// mockAPI мок для s3manager.Uploader
type mockAPI struct {
	uploadFunc func(input *s3manager.UploadInput) (*s3manager.UploadOutput, error)
}

func (m *mockAPI) UploadWithContext(ctx aws.Context, input *s3manager.UploadInput, opts ...func(*s3manager.Uploader)) (*s3manager.UploadOutput, error) {
	return m.uploadFunc(input)
}

func testConfig() *store.S3Config {
	return &store.S3Config{
		Region:     "us-east-1",
		Endpoint:   "https://storage.example.com/",
		BucketName: "test-bucket",
		Prefix:     "mediaplayer",
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Не удалось создать файл: %v", err)
	}
	return path
}

func TestUpload(t *testing.T) {
	path := writeFile(t, "song.mp3", "test content")

	api := &mockAPI{
		uploadFunc: func(input *s3manager.UploadInput) (*s3manager.UploadOutput, error) {
			if aws.StringValue(input.Bucket) != "test-bucket" {
				t.Errorf("Ожидался bucket: test-bucket, получено: %s", aws.StringValue(input.Bucket))
			}
			if aws.StringValue(input.Key) != "mediaplayer/media/song.mp3" {
				t.Errorf("Неожиданный ключ: %s", aws.StringValue(input.Key))
			}

			body, err := io.ReadAll(input.Body)
			if err != nil {
				t.Errorf("Ошибка чтения тела запроса: %v", err)
			}
			if string(body) != "test content" {
				t.Errorf("Ожидалось содержимое: test content, получено: %s", string(body))
			}

			return &s3manager.UploadOutput{
				Location: "https://storage.example.com/test-bucket/mediaplayer/media/song.mp3",
			}, nil
		},
	}

	uploader := NewUploaderWithAPI(api, testConfig(), logging.Discard())

	var lastWritten, lastTotal int64
	result, err := uploader.Upload(context.Background(), path, func(written, total int64) {
		lastWritten, lastTotal = written, total
	})
	if err != nil {
		t.Fatalf("Неожиданная ошибка при загрузке: %v", err)
	}

	if result.URL != "https://storage.example.com/test-bucket/mediaplayer/media/song.mp3" {
		t.Errorf("Неожиданный URL: %s", result.URL)
	}
	if result.Key != "mediaplayer/media/song.mp3" {
		t.Errorf("Неожиданный ключ: %s", result.Key)
	}
	if result.Size != int64(len("test content")) {
		t.Errorf("Неожиданный размер: %d", result.Size)
	}
	if lastWritten != result.Size || lastTotal != result.Size {
		t.Errorf("Прогресс не дошел до конца: %d из %d", lastWritten, lastTotal)
	}
}

func TestUploadURLFallback(t *testing.T) {
	path := writeFile(t, "clip.mp4", "video")

	api := &mockAPI{
		uploadFunc: func(input *s3manager.UploadInput) (*s3manager.UploadOutput, error) {
			return &s3manager.UploadOutput{}, nil
		},
	}

	uploader := NewUploaderWithAPI(api, testConfig(), logging.Discard())
	result, err := uploader.Upload(context.Background(), path, nil)
	if err != nil {
		t.Fatalf("Неожиданная ошибка при загрузке: %v", err)
	}

	expected := "https://storage.example.com/test-bucket/mediaplayer/media/clip.mp4"
	if result.URL != expected {
		t.Errorf("Ожидался URL: %s, получено: %s", expected, result.URL)
	}
}

func TestKeyWithoutPrefix(t *testing.T) {
	config := testConfig()
	config.Prefix = ""
	uploader := NewUploaderWithAPI(nil, config, logging.Discard())

	if key := uploader.Key("/home/user/Music/a b.mp3"); key != "media/a b.mp3" {
		t.Errorf("Неожиданный ключ: %s", key)
	}
}

func TestUploadErrors(t *testing.T) {
	t.Run("ошибка S3", func(t *testing.T) {
		path := writeFile(t, "song.mp3", "data")
		api := &mockAPI{
			uploadFunc: func(input *s3manager.UploadInput) (*s3manager.UploadOutput, error) {
				return nil, awserr.New("InvalidAccessKeyId", "The AWS Access Key Id you provided does not exist in our records.", nil)
			},
		}

		uploader := NewUploaderWithAPI(api, testConfig(), logging.Discard())
		_, err := uploader.Upload(context.Background(), path, nil)
		if err == nil {
			t.Fatal("Ожидалась ошибка при неверных учетных данных")
		}
		if !strings.Contains(err.Error(), "ошибка загрузки") {
			t.Errorf("Неожиданное сообщение об ошибке: %v", err)
		}
		var awsErr awserr.Error
		if !errors.As(err, &awsErr) || awsErr.Code() != "InvalidAccessKeyId" {
			t.Errorf("Ошибка AWS должна сохраняться в цепочке: %v", err)
		}
	})

	t.Run("файл не найден", func(t *testing.T) {
		api := &mockAPI{
			uploadFunc: func(input *s3manager.UploadInput) (*s3manager.UploadOutput, error) {
				t.Error("Загрузка не должна начинаться")
				return nil, nil
			},
		}

		uploader := NewUploaderWithAPI(api, testConfig(), logging.Discard())
		_, err := uploader.Upload(context.Background(), filepath.Join(t.TempDir(), "missing.mp3"), nil)
		if !errors.Is(err, os.ErrNotExist) {
			t.Errorf("Ожидалась ошибка os.ErrNotExist, получено: %v", err)
		}
	})

	t.Run("каталог", func(t *testing.T) {
		uploader := NewUploaderWithAPI(&mockAPI{}, testConfig(), logging.Discard())
		if _, err := uploader.Upload(context.Background(), t.TempDir(), nil); err == nil {
			t.Error("Ожидалась ошибка для каталога")
		}
	})
}
