package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hazadus/go-mediaplayer/internal/media"
)

// PlaylistsKey - ключ, под которым хранится вся коллекция плейлистов
const PlaylistsKey = "playlists"

// ErrCorrupted возвращается, если сохраненные данные не удалось разобрать
var ErrCorrupted = errors.New("сохраненные данные повреждены")

// Repository сериализует коллекцию плейлистов в JSON и хранит ее под одним ключом
type Repository struct {
	kv KV
}

// NewRepository создает репозиторий поверх хранилища ключ-значение
func NewRepository(kv KV) *Repository {
	return &Repository{kv: kv}
}

// Load загружает коллекцию плейлистов. Отсутствие данных - пустая коллекция
func (r *Repository) Load(ctx context.Context) ([]media.Playlist, error) {
	data, err := r.kv.Get(ctx, PlaylistsKey)
	if errors.Is(err, ErrNotFound) {
		return []media.Playlist{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения плейлистов: %w", err)
	}
	return Decode(data)
}

// Save сохраняет всю коллекцию плейлистов
func (r *Repository) Save(ctx context.Context, playlists []media.Playlist) error {
	data, err := Encode(playlists)
	if err != nil {
		return err
	}
	if err := r.kv.Put(ctx, PlaylistsKey, data); err != nil {
		return fmt.Errorf("ошибка записи плейлистов: %w", err)
	}
	return nil
}

// Encode сериализует коллекцию в JSON-массив
func Encode(playlists []media.Playlist) ([]byte, error) {
	if playlists == nil {
		playlists = []media.Playlist{}
	}
	data, err := json.Marshal(playlists)
	if err != nil {
		return nil, fmt.Errorf("ошибка сериализации плейлистов: %w", err)
	}
	return data, nil
}

// Decode разбирает JSON-массив плейлистов
func Decode(data []byte) ([]media.Playlist, error) {
	if len(data) == 0 {
		return []media.Playlist{}, nil
	}
	var playlists []media.Playlist
	if err := json.Unmarshal(data, &playlists); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupted, err)
	}
	if playlists == nil {
		playlists = []media.Playlist{}
	}
	for i := range playlists {
		if playlists[i].Items == nil {
			playlists[i].Items = []media.Item{}
		}
	}
	return playlists, nil
}
