package metadata

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hazadus/go-mediaplayer/internal/media"
	"github.com/hazadus/go-mediaplayer/internal/utils"
)

// Description - все, что нужно для добавления элемента в плейлист
type Description struct {
	URI  string
	Type media.Type
	Info Info
}

// Describe определяет тип и название источника. Для URL тип берется из
// расширения, для локальных файлов из MIME и содержимого, название из тегов
func (e *Extractor) Describe(locator string) (Description, error) {
	locator = strings.TrimSpace(locator)
	if locator == "" {
		return Description{}, fmt.Errorf("пустой путь или URL")
	}

	if media.IsRemote(locator) {
		t, err := media.TypeFromURL(locator)
		if err != nil {
			return Description{}, err
		}
		return Description{
			URI:  locator,
			Type: t,
			Info: Info{Title: media.TitleFromURL(locator)},
		}, nil
	}

	path, err := utils.ExpandHome(strings.TrimPrefix(locator, "file://"))
	if err != nil {
		return Description{}, err
	}
	if path, err = filepath.Abs(path); err != nil {
		return Description{}, fmt.Errorf("ошибка определения пути: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		return Description{}, fmt.Errorf("файл недоступен: %w", err)
	}

	t, err := media.DetectFile(path)
	if err != nil {
		return Description{}, err
	}
	return Description{
		URI:  path,
		Type: t,
		Info: e.ExtractFromFile(path),
	}, nil
}
