package store

import (
	"context"
	"errors"
	"testing"

	"github.com/go-test/deep"

	"github.com/hazadus/go-mediaplayer/internal/media"
)

func samplePlaylists() []media.Playlist {
	rock := media.NewPlaylist("Рок")
	rock = rock.WithItem(media.NewItem("https://example.com/song.mp3", "song.mp3", media.Audio, media.WithArtist("Band")))
	rock = rock.WithItem(media.NewItem("/home/user/live.mkv", "live.mkv", media.Video))
	empty := media.NewPlaylist("Пустой")
	return []media.Playlist{rock, empty}
}

func TestRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(NewMemoryKV())
	playlists := samplePlaylists()

	if err := repo.Save(ctx, playlists); err != nil {
		t.Fatalf("Ошибка сохранения: %v", err)
	}

	loaded, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("Ошибка загрузки: %v", err)
	}
	if diff := deep.Equal(loaded, playlists); diff != nil {
		t.Error(diff)
	}
}

func TestRepositoryLoadMissing(t *testing.T) {
	repo := NewRepository(NewMemoryKV())

	loaded, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("Отсутствие данных не должно быть ошибкой: %v", err)
	}
	if loaded == nil || len(loaded) != 0 {
		t.Errorf("Ожидалась пустая коллекция, получено %v", loaded)
	}
}

func TestRepositoryLoadCorrupted(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	if err := kv.Put(ctx, PlaylistsKey, []byte(`[{"id": "1", "name": `)); err != nil {
		t.Fatal(err)
	}

	_, err := NewRepository(kv).Load(ctx)
	if !errors.Is(err, ErrCorrupted) {
		t.Errorf("Ожидалась ошибка ErrCorrupted, получено: %v", err)
	}
}

func TestDecodeNullItems(t *testing.T) {
	playlists, err := Decode([]byte(`[{"id":"p1","name":"A","mediaItems":null}]`))
	if err != nil {
		t.Fatalf("Ошибка разбора: %v", err)
	}
	if playlists[0].Items == nil {
		t.Error("Список элементов должен быть пустым, а не nil")
	}
}

func TestDecodeCompatibleFormat(t *testing.T) {
	// Формат документа: массив плейлистов без поля версии
	data := []byte(`[
		{"id":"p1","name":"Утро","mediaItems":[
			{"id":"i1","title":"a.mp3","uriString":"content://media/a.mp3","type":"AUDIO","artist":null},
			{"id":"i2","title":"b.mp4","uriString":"https://example.com/b.mp4","type":"VIDEO"}
		]}
	]`)

	playlists, err := Decode(data)
	if err != nil {
		t.Fatalf("Ошибка разбора: %v", err)
	}

	want := []media.Playlist{{
		ID:   "p1",
		Name: "Утро",
		Items: []media.Item{
			{ID: "i1", Title: "a.mp3", URI: "content://media/a.mp3", Type: media.Audio},
			{ID: "i2", Title: "b.mp4", URI: "https://example.com/b.mp4", Type: media.Video},
		},
	}}
	if diff := deep.Equal(playlists, want); diff != nil {
		t.Error(diff)
	}
}

func TestEncodeNil(t *testing.T) {
	data, err := Encode(nil)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "[]" {
		t.Errorf("Ожидался пустой массив, получено %s", data)
	}
}
