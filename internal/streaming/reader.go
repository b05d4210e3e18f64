// Package streaming открывает источники воспроизведения как потоки байт
package streaming

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/hazadus/go-mediaplayer/internal/utils"
)

// DefaultBufferSize - размер буфера для сетевых потоков
const DefaultBufferSize = 256 * 1024

// ErrUnsupportedScheme возвращается для локаторов с неизвестной схемой
var ErrUnsupportedScheme = errors.New("неподдерживаемая схема адреса")

var httpClient = &http.Client{
	// Общего таймаута нет: поток читается все время воспроизведения
	Transport: &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		IdleConnTimeout:       300 * time.Second,
		MaxIdleConns:          10,
		MaxIdleConnsPerHost:   2,
		ExpectContinueTimeout: 1 * time.Second,
	},
}

// Reader представляет буферизованный сетевой поток
type Reader struct {
	reader *bufio.Reader
	resp   *http.Response
}

// NewReader выполняет GET-запрос и возвращает поток тела ответа
func NewReader(ctx context.Context, url string, bufferSize int) (*Reader, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания запроса: %w", err)
	}

	req.Header.Set("Accept-Encoding", "identity") // Сжатие мешает декодерам
	req.Header.Set("Range", "bytes=0-")
	req.Header.Set("User-Agent", "go-mediaplayer/1.0")

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ошибка выполнения запроса: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusPartialContent {
		resp.Body.Close()
		return nil, fmt.Errorf("ошибка HTTP: %s", resp.Status)
	}

	return &Reader{
		reader: bufio.NewReaderSize(resp.Body, bufferSize),
		resp:   resp,
	}, nil
}

// Read реализует интерфейс io.Reader
func (sr *Reader) Read(p []byte) (n int, err error) {
	return sr.reader.Read(p)
}

// Close закрывает соединение
func (sr *Reader) Close() error {
	return sr.resp.Body.Close()
}

// Open открывает источник по локатору: локальный путь, file:// или http(s)://
func Open(ctx context.Context, locator string) (io.ReadCloser, error) {
	u, err := url.Parse(locator)
	if err != nil || u.Scheme == "" || len(u.Scheme) == 1 {
		// Обычный путь (в том числе C:\ на Windows)
		return openFile(locator)
	}

	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return NewReader(ctx, locator, DefaultBufferSize)
	case "file":
		return openFile(u.Path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedScheme, u.Scheme)
	}
}

func openFile(path string) (io.ReadCloser, error) {
	expanded, err := utils.ExpandHome(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(expanded)
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия файла: %w", err)
	}
	return f, nil
}

// StatusText возвращает описание состояния потока по числу тиков без продвижения позиции
func StatusText(stuckCount int) string {
	switch {
	case stuckCount == 0:
		return "Воспроизведение"
	case stuckCount <= 3:
		return "Буферизация..."
	case stuckCount <= 5:
		return "Медленная загрузка"
	default:
		return "Возможная проблема с соединением"
	}
}
