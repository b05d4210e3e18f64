// Package m3u импортирует и экспортирует плейлисты в формате M3U
package m3u

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ushis/m3u"

	"github.com/hazadus/go-mediaplayer/internal/media"
)

// Result - элементы, прочитанные из M3U, и число пропущенных записей
type Result struct {
	Name    string
	Items   []media.Item
	Skipped int
}

// Import читает плейлист. Относительные пути разрешаются от baseDir.
// Записи неизвестного типа пропускаются
func Import(r io.Reader, baseDir string) (Result, error) {
	p, err := m3u.Parse(r)
	if err != nil {
		return Result{}, fmt.Errorf("ошибка разбора M3U: %w", err)
	}

	var result Result
	for _, track := range p {
		item, ok := itemFromTrack(track, baseDir)
		if !ok {
			result.Skipped++
			continue
		}
		result.Items = append(result.Items, item)
	}
	return result, nil
}

// ImportFile читает плейлист из файла. Имя плейлиста - имя файла без расширения
func ImportFile(path string) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("ошибка открытия плейлиста: %w", err)
	}
	defer f.Close()

	result, err := Import(f, filepath.Dir(path))
	if err != nil {
		return Result{}, err
	}
	name := filepath.Base(path)
	result.Name = strings.TrimSuffix(name, filepath.Ext(name))
	return result, nil
}

// Export записывает плейлист в формате extended M3U
func Export(w io.Writer, playlist media.Playlist) error {
	plist := make(m3u.Playlist, len(playlist.Items))
	for i, item := range playlist.Items {
		title := item.Title
		if item.Artist != "" {
			title = item.Artist + " - " + item.Title
		}
		plist[i] = m3u.Track{
			Path:  item.URI,
			Title: title,
			Time:  -1, // Длительность неизвестна
		}
	}

	if _, err := plist.WriteTo(w); err != nil {
		return fmt.Errorf("ошибка записи M3U: %w", err)
	}
	return nil
}

// ExportFile записывает плейлист в файл
func ExportFile(path string, playlist media.Playlist) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("ошибка создания файла плейлиста: %w", err)
	}
	defer f.Close()

	buf := bufio.NewWriter(f)
	if err := Export(buf, playlist); err != nil {
		return err
	}
	if err := buf.Flush(); err != nil {
		return fmt.Errorf("ошибка записи файла плейлиста: %w", err)
	}
	return f.Close()
}

func itemFromTrack(track m3u.Track, baseDir string) (media.Item, bool) {
	locator := strings.TrimSpace(track.Path)
	if locator == "" {
		return media.Item{}, false
	}

	var (
		t     media.Type
		err   error
		title string
	)
	if media.IsRemote(locator) {
		t, err = media.TypeFromURL(locator)
		title = media.TitleFromURL(locator)
	} else {
		locator = strings.TrimPrefix(locator, "file://")
		if !filepath.IsAbs(locator) && baseDir != "" {
			locator = filepath.Join(baseDir, locator)
		}
		t, err = media.DetectFile(locator)
		title = filepath.Base(locator)
	}
	if err != nil {
		return media.Item{}, false
	}

	var opts []media.ItemOption
	if track.Title != "" {
		title = track.Title
		// Заголовок EXTINF в формате "Artist - Title"
		if artist, name, ok := strings.Cut(track.Title, " - "); ok && artist != "" && name != "" {
			title = name
			opts = append(opts, media.WithArtist(artist))
		}
	}
	return media.NewItem(locator, title, t, opts...), true
}
