// Package media содержит модель данных плеера: медиафайлы и плейлисты
package media

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Type определяет тип медиафайла
type Type int

// Константы типов медиафайлов
const (
	// Audio - аудиофайл
	Audio Type = iota
	// Video - видеофайл
	Video
)

// String возвращает строковое представление типа, как оно хранится в JSON
func (t Type) String() string {
	switch t {
	case Audio:
		return "AUDIO"
	case Video:
		return "VIDEO"
	default:
		return fmt.Sprintf("Type(%d)", int(t))
	}
}

// ParseType разбирает строковое представление типа
func ParseType(s string) (Type, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "AUDIO":
		return Audio, nil
	case "VIDEO":
		return Video, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownType, s)
	}
}

// MarshalJSON сериализует тип в строку "AUDIO" или "VIDEO"
func (t Type) MarshalJSON() ([]byte, error) {
	if t != Audio && t != Video {
		return nil, fmt.Errorf("%w: %d", ErrUnknownType, int(t))
	}
	return json.Marshal(t.String())
}

// UnmarshalJSON разбирает тип из строки
func (t *Type) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseType(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Item - один воспроизводимый ресурс. Значение неизменяемо, идентичность определяется ID
type Item struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	URI    string `json:"uriString"`
	Type   Type   `json:"type"`
	Artist string `json:"artist,omitempty"`
}

// ItemOption дополняет создаваемый медиафайл
type ItemOption func(*Item)

// WithArtist задает исполнителя
func WithArtist(artist string) ItemOption {
	return func(i *Item) {
		i.Artist = artist
	}
}

// NewItem создает медиафайл со случайным уникальным идентификатором
func NewItem(uri, title string, t Type, opts ...ItemOption) Item {
	item := Item{
		ID:    NewID(),
		Title: title,
		URI:   uri,
		Type:  t,
	}
	for _, opt := range opts {
		opt(&item)
	}
	return item
}

// Playlist - именованная упорядоченная коллекция медиафайлов.
// Изменение моделируется заменой на копию с обновленным списком
type Playlist struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Items []Item `json:"mediaItems"`
}

// NewPlaylist создает пустой плейлист с новым идентификатором
func NewPlaylist(name string) Playlist {
	return Playlist{
		ID:    NewID(),
		Name:  name,
		Items: []Item{},
	}
}

// IndexOf возвращает позицию медиафайла с указанным ID или -1
func (p Playlist) IndexOf(itemID string) int {
	for i := range p.Items {
		if p.Items[i].ID == itemID {
			return i
		}
	}
	return -1
}

// ItemByID возвращает медиафайл по ID
func (p Playlist) ItemByID(itemID string) (Item, bool) {
	if i := p.IndexOf(itemID); i >= 0 {
		return p.Items[i], true
	}
	return Item{}, false
}

// WithItem возвращает копию плейлиста с добавленным в конец медиафайлом
func (p Playlist) WithItem(item Item) Playlist {
	items := make([]Item, 0, len(p.Items)+1)
	items = append(items, p.Items...)
	p.Items = append(items, item)
	return p
}

// WithoutItem возвращает копию плейлиста без медиафайла с указанным ID
func (p Playlist) WithoutItem(itemID string) Playlist {
	items := make([]Item, 0, len(p.Items))
	for _, item := range p.Items {
		if item.ID != itemID {
			items = append(items, item)
		}
	}
	p.Items = items
	return p
}

// Clone возвращает глубокую копию плейлиста
func (p Playlist) Clone() Playlist {
	items := make([]Item, len(p.Items))
	copy(items, p.Items)
	p.Items = items
	return p
}

// NewID генерирует новый идентификатор (UUID v4)
func NewID() string {
	return uuid.New().String()
}
