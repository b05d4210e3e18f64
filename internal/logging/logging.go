// Package logging создает структурированный логгер приложения
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

// New создает логгер, пишущий в w (по умолчанию os.Stderr), с указанным уровнем.
// Неизвестный уровень трактуется как info
func New(w io.Writer, level string) *log.Logger {
	if w == nil {
		w = os.Stderr
	}
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          "mediaplayer",
	})
	logger.SetLevel(ParseLevel(level))
	return logger
}

// Discard возвращает логгер, который ничего не выводит. Используется в тестах
func Discard() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

// ParseLevel переводит строковый уровень логирования в log.Level
func ParseLevel(level string) log.Level {
	parsed, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return log.InfoLevel
	}
	return parsed
}
