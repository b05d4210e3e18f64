package playlist

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/go-test/deep"

	"github.com/hazadus/go-mediaplayer/internal/logging"
	"github.com/hazadus/go-mediaplayer/internal/media"
	"github.com/hazadus/go-mediaplayer/internal/player"
	"github.com/hazadus/go-mediaplayer/internal/player/playertest"
	"github.com/hazadus/go-mediaplayer/internal/store"
)

// fakeLoader возвращает заранее заданную коллекцию
type fakeLoader struct {
	playlists []media.Playlist
	err       error
}

func (l fakeLoader) Load(context.Context) ([]media.Playlist, error) {
	if l.err != nil {
		return nil, l.err
	}
	if l.playlists == nil {
		return []media.Playlist{}, nil
	}
	return l.playlists, nil
}

// recordingPersister запоминает все снимки
type recordingPersister struct {
	mu        sync.Mutex
	snapshots [][]media.Playlist
}

func (p *recordingPersister) Enqueue(playlists []media.Playlist) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.snapshots = append(p.snapshots, playlists)
}

func (p *recordingPersister) last() []media.Playlist {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.snapshots) == 0 {
		return nil
	}
	return p.snapshots[len(p.snapshots)-1]
}

type fixture struct {
	manager   *Manager
	engine    *playertest.Engine
	persister *recordingPersister
}

func newFixture(t *testing.T, loader Loader, opts Options) fixture {
	t.Helper()
	engine := playertest.NewEngine()
	persister := &recordingPersister{}
	opts.Logger = logging.Discard()

	m, err := NewManager(context.Background(), loader, persister,
		player.NewPlayer(engine.Factory(), logging.Discard()), opts)
	if err != nil {
		t.Fatalf("Ошибка создания менеджера: %v", err)
	}
	t.Cleanup(func() { m.Close() })
	return fixture{manager: m, engine: engine, persister: persister}
}

// eventually ждет выполнения условия
func eventually(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal(msg)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// withItems создает выбранный плейлист с аудиоэлементами
func withItems(t *testing.T, m *Manager, titles ...string) []media.Item {
	t.Helper()
	if _, err := m.CreatePlaylist("Тест"); err != nil {
		t.Fatal(err)
	}
	items := make([]media.Item, len(titles))
	for i, title := range titles {
		item, err := m.AddMedia("/music/"+title+".mp3", title, media.Audio)
		if err != nil {
			t.Fatal(err)
		}
		items[i] = item
	}
	return items
}

func TestCreatePlaylistOrderAndSelection(t *testing.T) {
	f := newFixture(t, fakeLoader{}, Options{})
	m := f.manager

	names := []string{"Утро", "День", "Вечер", "Ночь"}
	ids := make(map[string]bool)
	for _, name := range names {
		p, err := m.CreatePlaylist(name)
		if err != nil {
			t.Fatalf("Ошибка создания плейлиста: %v", err)
		}
		if ids[p.ID] {
			t.Fatalf("Повторяющийся ID плейлиста: %s", p.ID)
		}
		ids[p.ID] = true
	}

	playlists := m.Playlists()
	for i, name := range names {
		if playlists[i].Name != name {
			t.Errorf("Позиция %d: ожидалось %s, получено %s", i, name, playlists[i].Name)
		}
	}

	current, ok := m.CurrentPlaylist()
	if !ok || current.Name != "Утро" {
		t.Errorf("Текущим должен остаться первый созданный плейлист, получено %q", current.Name)
	}

	if got := len(f.persister.snapshots); got != len(names) {
		t.Errorf("Ожидалось %d сохранений, получено %d", len(names), got)
	}
	if diff := deep.Equal(f.persister.last(), playlists); diff != nil {
		t.Error(diff)
	}
}

func TestCreatePlaylistEmptyName(t *testing.T) {
	f := newFixture(t, fakeLoader{}, Options{})

	for _, name := range []string{"", "   ", "\t\n"} {
		if _, err := f.manager.CreatePlaylist(name); !errors.Is(err, ErrEmptyName) {
			t.Errorf("CreatePlaylist(%q): ожидалась ошибка ErrEmptyName, получено %v", name, err)
		}
	}
	if len(f.persister.snapshots) != 0 {
		t.Error("Ошибочные операции не должны сохраняться")
	}
}

func TestAddMediaRequiresSelection(t *testing.T) {
	f := newFixture(t, fakeLoader{}, Options{})

	if _, err := f.manager.AddMedia("/a.mp3", "a", media.Audio); !errors.Is(err, ErrNoPlaylistSelected) {
		t.Errorf("Ожидалась ошибка ErrNoPlaylistSelected, получено %v", err)
	}
	if err := f.manager.RemoveMedia("x"); !errors.Is(err, ErrNoPlaylistSelected) {
		t.Errorf("Ожидалась ошибка ErrNoPlaylistSelected, получено %v", err)
	}
}

func TestAddThenRemoveRestoresItems(t *testing.T) {
	f := newFixture(t, fakeLoader{}, Options{})
	m := f.manager
	withItems(t, m, "a", "b")

	before, _ := m.CurrentPlaylist()

	item, err := m.AddMedia("https://example.com/c.ogg", "c.ogg", media.Audio, media.WithArtist("C"))
	if err != nil {
		t.Fatal(err)
	}
	if item.Artist != "C" {
		t.Errorf("Ожидался исполнитель C, получено %q", item.Artist)
	}
	if err := m.RemoveMedia(item.ID); err != nil {
		t.Fatal(err)
	}

	after, _ := m.CurrentPlaylist()
	if diff := deep.Equal(after.Items, before.Items); diff != nil {
		t.Error(diff)
	}
	if err := m.RemoveMedia(item.ID); !errors.Is(err, ErrMediaNotFound) {
		t.Errorf("Повторное удаление: ожидалась ошибка ErrMediaNotFound, получено %v", err)
	}
}

func TestNextPreviousWraparound(t *testing.T) {
	f := newFixture(t, fakeLoader{}, Options{})
	m := f.manager
	items := withItems(t, m, "A", "B", "C")
	ctx := context.Background()

	if err := m.PlayMedia(ctx, items[0]); err != nil {
		t.Fatal(err)
	}

	for _, want := range []string{"B", "C", "A"} {
		if err := m.PlayNext(ctx); err != nil {
			t.Fatal(err)
		}
		if item, _ := m.CurrentItem(); item.Title != want {
			t.Errorf("Next: ожидался %s, получен %s", want, item.Title)
		}
	}

	for _, want := range []string{"C", "B", "A"} {
		if err := m.PlayPrevious(ctx); err != nil {
			t.Fatal(err)
		}
		if item, _ := m.CurrentItem(); item.Title != want {
			t.Errorf("Previous: ожидался %s, получен %s", want, item.Title)
		}
	}

	if n := len(f.engine.Loaded()); n != 7 {
		t.Errorf("Движок должен получить 7 элементов, получено %d", n)
	}
}

func TestShuffleUsesRandomIndex(t *testing.T) {
	var bounds []int
	f := newFixture(t, fakeLoader{}, Options{Intn: func(n int) int {
		bounds = append(bounds, n)
		return 2
	}})
	m := f.manager
	items := withItems(t, m, "A", "B", "C", "D")
	ctx := context.Background()

	if !m.ToggleShuffle() || !m.Shuffle() {
		t.Fatal("Перемешивание должно включиться")
	}
	if err := m.PlayMedia(ctx, items[0]); err != nil {
		t.Fatal(err)
	}
	if err := m.PlayPrevious(ctx); err != nil {
		t.Fatal(err)
	}
	if item, _ := m.CurrentItem(); item.ID != items[2].ID {
		t.Errorf("Ожидался элемент с индексом 2, получен %s", item.Title)
	}
	if len(bounds) != 1 || bounds[0] != 4 {
		t.Errorf("Случайный индекс должен выбираться из [0, 4), вызовы: %v", bounds)
	}

	if m.ToggleShuffle() {
		t.Error("Повторное переключение должно выключить перемешивание")
	}
}

func TestNextWithoutCurrentItemIsNoop(t *testing.T) {
	f := newFixture(t, fakeLoader{}, Options{})
	m := f.manager
	withItems(t, m, "A", "B")

	if err := m.PlayNext(context.Background()); err != nil {
		t.Errorf("Ожидался nil, получено %v", err)
	}
	if err := m.PlayPrevious(context.Background()); err != nil {
		t.Errorf("Ожидался nil, получено %v", err)
	}
	if n := len(f.engine.Loaded()); n != 0 {
		t.Errorf("Воспроизведение не должно начинаться, загружено %d", n)
	}
}

func TestRemoveCurrentItemStopsPlayback(t *testing.T) {
	f := newFixture(t, fakeLoader{}, Options{})
	m := f.manager
	items := withItems(t, m, "A", "B")

	if err := m.PlayMedia(context.Background(), items[1]); err != nil {
		t.Fatal(err)
	}
	eventually(t, m.IsPlaying, "Воспроизведение должно начаться")

	if err := m.RemoveMedia(items[1].ID); err != nil {
		t.Fatal(err)
	}
	if _, ok := m.CurrentItem(); ok {
		t.Error("Текущий элемент должен быть сброшен")
	}
	eventually(t, func() bool { return !m.IsPlaying() }, "Воспроизведение должно остановиться")

	calls := f.engine.Calls()
	if calls[len(calls)-1] != "stop" {
		t.Errorf("Последним вызовом движка должен быть stop, вызовы: %v", calls)
	}
}

func TestRemoveOtherItemKeepsPlayback(t *testing.T) {
	f := newFixture(t, fakeLoader{}, Options{})
	m := f.manager
	items := withItems(t, m, "A", "B")

	if err := m.PlayMedia(context.Background(), items[0]); err != nil {
		t.Fatal(err)
	}
	if err := m.RemoveMedia(items[1].ID); err != nil {
		t.Fatal(err)
	}
	if item, ok := m.CurrentItem(); !ok || item.ID != items[0].ID {
		t.Error("Текущий элемент не должен меняться")
	}
}

func TestLoadSelectsFirstPlaylist(t *testing.T) {
	first := media.NewPlaylist("Первый")
	second := media.NewPlaylist("Второй")
	f := newFixture(t, fakeLoader{playlists: []media.Playlist{first, second}}, Options{})

	current, ok := f.manager.CurrentPlaylist()
	if !ok || current.ID != first.ID {
		t.Errorf("Должен быть выбран первый плейлист, получено %q", current.Name)
	}
	if len(f.persister.snapshots) != 0 {
		t.Error("Загрузка не должна вызывать сохранение")
	}
}

func TestLoadCorruptedStartsEmpty(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryKV()
	if err := kv.Put(ctx, store.PlaylistsKey, []byte("{not json")); err != nil {
		t.Fatal(err)
	}

	f := newFixture(t, store.NewRepository(kv), Options{})
	if n := len(f.manager.Playlists()); n != 0 {
		t.Errorf("Ожидалась пустая коллекция, получено %d плейлистов", n)
	}
	if _, ok := f.manager.CurrentPlaylist(); ok {
		t.Error("Плейлист не должен быть выбран")
	}
}

func TestLoadErrorIsReturned(t *testing.T) {
	loadErr := errors.New("сеть недоступна")
	engine := playertest.NewEngine()
	_, err := NewManager(context.Background(), fakeLoader{err: loadErr}, &recordingPersister{},
		player.NewPlayer(engine.Factory(), logging.Discard()), Options{Logger: logging.Discard()})
	if !errors.Is(err, loadErr) {
		t.Errorf("Ожидалась ошибка загрузки, получено %v", err)
	}
}

func TestSelectPlaylist(t *testing.T) {
	f := newFixture(t, fakeLoader{}, Options{})
	m := f.manager

	if _, err := m.CreatePlaylist("A"); err != nil {
		t.Fatal(err)
	}
	b, err := m.CreatePlaylist("B")
	if err != nil {
		t.Fatal(err)
	}

	if err := m.SelectPlaylist(b.ID); err != nil {
		t.Fatal(err)
	}
	if current, _ := m.CurrentPlaylist(); current.ID != b.ID {
		t.Errorf("Ожидался плейлист B, получен %s", current.Name)
	}

	if err := m.SelectPlaylist("unknown"); !errors.Is(err, ErrPlaylistNotFound) {
		t.Errorf("Ожидалась ошибка ErrPlaylistNotFound, получено %v", err)
	}
	if current, _ := m.CurrentPlaylist(); current.ID != b.ID {
		t.Error("Неудачный выбор не должен менять текущий плейлист")
	}
}

func TestDeleteCurrentPlaylist(t *testing.T) {
	f := newFixture(t, fakeLoader{}, Options{})
	m := f.manager
	items := withItems(t, m, "A")
	first, _ := m.CurrentPlaylist()
	second, err := m.CreatePlaylist("Второй")
	if err != nil {
		t.Fatal(err)
	}

	if err := m.PlayMedia(context.Background(), items[0]); err != nil {
		t.Fatal(err)
	}
	if err := m.DeletePlaylist(first.ID); err != nil {
		t.Fatal(err)
	}

	if current, _ := m.CurrentPlaylist(); current.ID != second.ID {
		t.Errorf("Текущим должен стать оставшийся плейлист, получено %q", current.Name)
	}
	if _, ok := m.CurrentItem(); ok {
		t.Error("Элемент удаленного плейлиста не должен оставаться текущим")
	}

	if err := m.DeletePlaylist(second.ID); err != nil {
		t.Fatal(err)
	}
	if _, ok := m.CurrentPlaylist(); ok {
		t.Error("После удаления всех плейлистов выбор должен быть пустым")
	}
	if err := m.DeletePlaylist(second.ID); !errors.Is(err, ErrPlaylistNotFound) {
		t.Errorf("Ожидалась ошибка ErrPlaylistNotFound, получено %v", err)
	}
}

func TestRenamePlaylist(t *testing.T) {
	f := newFixture(t, fakeLoader{}, Options{})
	m := f.manager
	p, err := m.CreatePlaylist("Старое")
	if err != nil {
		t.Fatal(err)
	}

	if err := m.RenamePlaylist(p.ID, "  Новое "); err != nil {
		t.Fatal(err)
	}
	if current, _ := m.CurrentPlaylist(); current.Name != "Новое" {
		t.Errorf("Ожидалось имя 'Новое', получено %q", current.Name)
	}
	if err := m.RenamePlaylist(p.ID, " "); !errors.Is(err, ErrEmptyName) {
		t.Errorf("Ожидалась ошибка ErrEmptyName, получено %v", err)
	}
	if err := m.RenamePlaylist("missing", "x"); !errors.Is(err, ErrPlaylistNotFound) {
		t.Errorf("Ожидалась ошибка ErrPlaylistNotFound, получено %v", err)
	}
}

func TestPlayMediaUnknownItem(t *testing.T) {
	f := newFixture(t, fakeLoader{}, Options{})
	withItems(t, f.manager, "A")

	stray := media.NewItem("/b.mp3", "b", media.Audio)
	if err := f.manager.PlayMedia(context.Background(), stray); !errors.Is(err, ErrMediaNotFound) {
		t.Errorf("Ожидалась ошибка ErrMediaNotFound, получено %v", err)
	}
}

func TestPlayMediaEngineError(t *testing.T) {
	f := newFixture(t, fakeLoader{}, Options{})
	items := withItems(t, f.manager, "A")
	f.engine.LoadErr = player.ErrUnsupported

	if err := f.manager.PlayMedia(context.Background(), items[0]); !errors.Is(err, player.ErrUnsupported) {
		t.Errorf("Ожидалась ошибка движка, получено %v", err)
	}
	// Элемент остается текущим, чтобы можно было перейти к следующему
	if item, _ := f.manager.CurrentItem(); item.ID != items[0].ID {
		t.Error("Элемент должен остаться текущим")
	}
}

func TestTogglePause(t *testing.T) {
	f := newFixture(t, fakeLoader{}, Options{})
	m := f.manager
	items := withItems(t, m, "A")
	ctx := context.Background()

	// Без текущего элемента ничего не происходит
	if err := m.TogglePause(ctx); err != nil {
		t.Fatal(err)
	}

	if err := m.PlayMedia(ctx, items[0]); err != nil {
		t.Fatal(err)
	}
	eventually(t, m.IsPlaying, "Воспроизведение должно начаться")

	if err := m.TogglePause(ctx); err != nil {
		t.Fatal(err)
	}
	eventually(t, func() bool { return !m.IsPlaying() }, "Должна включиться пауза")

	if err := m.TogglePause(ctx); err != nil {
		t.Fatal(err)
	}
	eventually(t, m.IsPlaying, "Воспроизведение должно возобновиться")

	calls := f.engine.Calls()
	if diff := deep.Equal(calls, []string{"load", "pause", "resume"}); diff != nil {
		t.Error(diff)
	}
}

func TestTogglePauseWhilePreparing(t *testing.T) {
	f := newFixture(t, fakeLoader{}, Options{})
	f.engine.Preparing = true
	m := f.manager
	items := withItems(t, m, "A")
	ctx := context.Background()

	if err := m.PlayMedia(ctx, items[0]); err != nil {
		t.Fatal(err)
	}
	eventually(t, func() bool { return m.State() == player.StatePreparing }, "Движок должен перейти в подготовку")

	// Пока поток загружается, пауза не перезапускает загрузку
	if err := m.TogglePause(ctx); err != nil {
		t.Fatal(err)
	}

	if diff := deep.Equal(f.engine.Calls(), []string{"load"}); diff != nil {
		t.Error(diff)
	}
}

func TestAutoAdvance(t *testing.T) {
	f := newFixture(t, fakeLoader{}, Options{AutoAdvance: true})
	m := f.manager
	items := withItems(t, m, "A", "B")

	if err := m.PlayMedia(context.Background(), items[0]); err != nil {
		t.Fatal(err)
	}
	f.engine.Emit(player.Event{Kind: player.EventEnded})

	eventually(t, func() bool {
		item, _ := m.CurrentItem()
		return item.ID == items[1].ID
	}, "После окончания элемента должен начаться следующий")
}

func TestImportPlaylist(t *testing.T) {
	f := newFixture(t, fakeLoader{}, Options{})
	m := f.manager

	a := media.NewItem("/a.mp3", "a", media.Audio)
	p, err := m.ImportPlaylist("Импорт", []media.Item{a, a, media.NewItem("/b.mkv", "b", media.Video)})
	if err != nil {
		t.Fatal(err)
	}

	if len(p.Items) != 3 {
		t.Fatalf("Ожидалось 3 элемента, получено %d", len(p.Items))
	}
	if p.Items[0].ID == p.Items[1].ID {
		t.Error("Повторяющиеся ID должны быть заменены")
	}
	if current, _ := m.CurrentPlaylist(); current.ID != p.ID {
		t.Error("Импортированный плейлист должен стать текущим, если ничего не выбрано")
	}
	if _, err := m.ImportPlaylist("", nil); !errors.Is(err, ErrEmptyName) {
		t.Errorf("Ожидалась ошибка ErrEmptyName, получено %v", err)
	}
}

func TestObserveCurrentItem(t *testing.T) {
	f := newFixture(t, fakeLoader{}, Options{})
	m := f.manager
	items := withItems(t, m, "A", "B", "C")

	ch, cancel := m.ObserveCurrentItem()
	defer cancel()

	ctx := context.Background()
	if err := m.PlayMedia(ctx, items[0]); err != nil {
		t.Fatal(err)
	}
	if err := m.PlayNext(ctx); err != nil {
		t.Fatal(err)
	}
	if err := m.PlayNext(ctx); err != nil {
		t.Fatal(err)
	}

	// Подписчик обязательно увидит последнее значение
	timeout := time.After(2 * time.Second)
	for {
		select {
		case item := <-ch:
			if item.ID == items[2].ID {
				return
			}
		case <-timeout:
			t.Fatal("Подписчик не получил последнее значение")
		}
	}
}

func TestPersistedThroughWriter(t *testing.T) {
	ctx := context.Background()
	repo := store.NewRepository(store.NewMemoryKV())
	writer := store.NewWriter(repo, logging.Discard())
	engine := playertest.NewEngine()

	m, err := NewManager(ctx, repo, writer, player.NewPlayer(engine.Factory(), logging.Discard()),
		Options{Logger: logging.Discard()})
	if err != nil {
		t.Fatal(err)
	}
	defer m.Close()

	withItems(t, m, "A", "B", "C")
	if _, err := m.CreatePlaylist("Еще один"); err != nil {
		t.Fatal(err)
	}
	if err := writer.Close(ctx); err != nil {
		t.Fatal(err)
	}

	loaded, err := repo.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if diff := deep.Equal(loaded, m.Playlists()); diff != nil {
		t.Error(diff)
	}
}
