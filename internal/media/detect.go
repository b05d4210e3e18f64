package media

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// ErrUnknownType возвращается, когда тип медиафайла не удалось определить
var ErrUnknownType = errors.New("неизвестный тип медиафайла")

// urlExtensions - расширения, по которым определяется тип файла по URL
var urlExtensions = map[string]Type{
	".mp3":  Audio,
	".wav":  Audio,
	".ogg":  Audio,
	".mp4":  Video,
	".webm": Video,
	".mkv":  Video,
}

// TypeFromMIME определяет тип по MIME: "audio/*" или "video/*"
func TypeFromMIME(mimeType string) (Type, error) {
	mediaType, _, err := mime.ParseMediaType(mimeType)
	if err != nil {
		mediaType = strings.ToLower(strings.TrimSpace(mimeType))
	}
	switch {
	case strings.HasPrefix(mediaType, "audio/"):
		return Audio, nil
	case strings.HasPrefix(mediaType, "video/"):
		return Video, nil
	default:
		return 0, fmt.Errorf("%w: MIME %q", ErrUnknownType, mimeType)
	}
}

// TypeFromURL определяет тип по расширению в пути URL
func TypeFromURL(rawURL string) (Type, error) {
	ext := strings.ToLower(path.Ext(urlPath(rawURL)))
	if t, ok := urlExtensions[ext]; ok {
		return t, nil
	}
	return 0, fmt.Errorf("%w: %s", ErrUnknownType, rawURL)
}

// TitleFromURL возвращает последний сегмент пути URL в качестве названия
func TitleFromURL(rawURL string) string {
	p := strings.TrimSuffix(urlPath(rawURL), "/")
	if i := strings.LastIndex(p, "/"); i >= 0 {
		p = p[i+1:]
	}
	if p == "" {
		return rawURL
	}
	return p
}

// IsRemote возвращает true для http(s) адресов
func IsRemote(locator string) bool {
	l := strings.ToLower(locator)
	return strings.HasPrefix(l, "http://") || strings.HasPrefix(l, "https://")
}

// DetectFile определяет тип локального файла: сначала по расширению,
// затем по первым байтам содержимого
func DetectFile(filePath string) (Type, error) {
	ext := strings.ToLower(filepath.Ext(filePath))
	if mimeType := mime.TypeByExtension(ext); mimeType != "" {
		if t, err := TypeFromMIME(mimeType); err == nil {
			return t, nil
		}
	}
	// Системная таблица MIME может не знать аудио и видео расширений
	if t, ok := urlExtensions[ext]; ok {
		return t, nil
	}

	file, err := os.Open(filePath)
	if err != nil {
		return 0, fmt.Errorf("ошибка открытия файла: %w", err)
	}
	defer file.Close()

	// http.DetectContentType использует не более 512 байт
	head := make([]byte, 512)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return 0, fmt.Errorf("ошибка чтения файла: %w", err)
	}

	return TypeFromMIME(http.DetectContentType(head[:n]))
}

// urlPath извлекает путь из URL, отбрасывая параметры запроса
func urlPath(rawURL string) string {
	if u, err := url.Parse(rawURL); err == nil && u.Path != "" {
		return u.Path
	}
	if i := strings.IndexAny(rawURL, "?#"); i >= 0 {
		return rawURL[:i]
	}
	return rawURL
}
