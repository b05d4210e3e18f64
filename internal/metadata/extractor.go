// Package metadata извлекает название и исполнителя из локальных медиафайлов
package metadata

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dhowden/tag"

	"github.com/hazadus/go-mediaplayer/internal/media"
)

// Info - название и исполнитель элемента. Artist может быть пустым
type Info struct {
	Title  string
	Artist string
}

// Options возвращает опции для media.NewItem
func (i Info) Options() []media.ItemOption {
	if i.Artist == "" {
		return nil
	}
	return []media.ItemOption{media.WithArtist(i.Artist)}
}

// Extractor читает теги (ID3, MP4, FLAC, OGG) и при их отсутствии разбирает имя файла
type Extractor struct{}

// NewExtractor создает новый экстрактор метаданных
func NewExtractor() *Extractor {
	return &Extractor{}
}

// ExtractFromReader извлекает метаданные из потока с поддержкой Seek
func (e *Extractor) ExtractFromReader(reader io.ReadSeeker, source string) Info {
	fallback := FromFileName(source)

	if _, err := reader.Seek(0, io.SeekStart); err != nil {
		return fallback
	}

	tags, err := tag.ReadFrom(reader)
	if err != nil {
		return fallback
	}

	info := Info{
		Title:  strings.TrimSpace(tags.Title()),
		Artist: strings.TrimSpace(tags.Artist()),
	}
	// Недостающие поля берем из имени файла
	if info.Title == "" {
		info.Title = fallback.Title
	}
	if info.Artist == "" {
		info.Artist = fallback.Artist
	}
	return info
}

// ExtractFromFile извлекает метаданные из файла
func (e *Extractor) ExtractFromFile(filePath string) Info {
	file, err := os.Open(filePath)
	if err != nil {
		return FromFileName(filePath)
	}
	defer file.Close()

	return e.ExtractFromReader(file, filePath)
}

// FromFileName разбирает имя файла в формате "Artist - Title",
// иначе использует имя без расширения как название
func FromFileName(source string) Info {
	fileName := filepath.Base(source)
	nameWithoutExt := strings.TrimSuffix(fileName, filepath.Ext(fileName))

	parts := strings.Split(nameWithoutExt, " - ")
	if len(parts) >= 2 {
		return Info{
			Artist: strings.TrimSpace(parts[0]),
			Title:  strings.TrimSpace(strings.Join(parts[1:], " - ")),
		}
	}

	return Info{Title: nameWithoutExt}
}
