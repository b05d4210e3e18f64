package store

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/hazadus/go-mediaplayer/internal/utils"
)

// FileKV хранит каждый ключ в отдельном файле <dir>/<key>.json
type FileKV struct {
	dir string
}

// NewFileKV создает файловое хранилище, при необходимости создавая директорию
func NewFileKV(dir string) (*FileKV, error) {
	path, err := utils.ExpandHome(dir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("ошибка создания директории данных: %w", err)
	}
	return &FileKV{dir: path}, nil
}

// Path возвращает путь к файлу ключа
func (f *FileKV) Path(key string) string {
	return filepath.Join(f.dir, url.PathEscape(key)+".json")
}

// Get читает файл ключа
func (f *FileKV) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.Path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка чтения файла данных: %w", err)
	}
	return data, nil
}

// Put записывает значение во временный файл и переименовывает его,
// чтобы прерванная запись не портила предыдущее состояние
func (f *FileKV) Put(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(f.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("ошибка создания временного файла: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		return fmt.Errorf("ошибка записи файла данных: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("ошибка записи файла данных: %w", err)
	}
	if err := os.Rename(tmpName, f.Path(key)); err != nil {
		return fmt.Errorf("ошибка сохранения файла данных: %w", err)
	}
	return nil
}

// Close ничего не делает
func (f *FileKV) Close() error {
	return nil
}
