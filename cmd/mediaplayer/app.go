package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/hazadus/go-mediaplayer/internal/config"
	"github.com/hazadus/go-mediaplayer/internal/player"
	"github.com/hazadus/go-mediaplayer/internal/playlist"
	"github.com/hazadus/go-mediaplayer/internal/store"
	"github.com/hazadus/go-mediaplayer/internal/streaming"
	"github.com/hazadus/go-mediaplayer/internal/upload"
)

// currentKey - ключ, под которым между запусками хранится ID выбранного плейлиста
const currentKey = "current"

const sqliteFileName = "mediaplayer.db"

// Application содержит общие зависимости всех команд
type Application struct {
	Config *config.Config
	Logger *log.Logger

	// engineFactory, remoteKV и uploader подменяются в тестах
	engineFactory player.EngineFactory
	remoteKV      func() (store.KV, error)
	uploader      func() (*upload.Uploader, error)

	kv      store.KV
	writer  *store.Writer
	manager *playlist.Manager
}

// NewApplication создает приложение. Хранилище открывается при первом обращении
func NewApplication(cfg *config.Config, logger *log.Logger) *Application {
	app := &Application{
		Config: cfg,
		Logger: logger,
	}
	app.engineFactory = app.newEngine
	app.remoteKV = func() (store.KV, error) {
		kv, err := app.openS3()
		if err != nil {
			return nil, err
		}
		return kv, nil
	}
	app.uploader = func() (*upload.Uploader, error) {
		cfg, err := app.s3Config()
		if err != nil {
			return nil, err
		}
		return upload.NewUploader(cfg, app.Logger)
	}
	return app
}

// Manager открывает хранилище и загружает плейлисты
func (app *Application) Manager(ctx context.Context) (*playlist.Manager, error) {
	if app.manager != nil {
		return app.manager, nil
	}

	kv, err := app.openKV()
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия хранилища: %w", err)
	}

	repo := store.NewRepository(kv)
	writer := store.NewWriter(repo, app.Logger)
	manager, err := playlist.NewManager(ctx, repo, writer,
		player.NewPlayer(app.engineFactory, app.Logger),
		playlist.Options{
			Logger:      app.Logger,
			AutoAdvance: app.Config.ShouldAutoAdvance(),
		})
	if err != nil {
		_ = writer.Close(ctx)
		_ = kv.Close()
		return nil, err
	}

	app.kv = kv
	app.writer = writer
	app.manager = manager
	app.restoreSelection(ctx)
	return manager, nil
}

// restoreSelection выбирает плейлист, выбранный при прошлом запуске
func (app *Application) restoreSelection(ctx context.Context) {
	data, err := app.kv.Get(ctx, currentKey)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			app.Logger.Warn("Не удалось прочитать выбранный плейлист", "err", err)
		}
		return
	}
	selected, err := decodeSelection(data)
	if err != nil {
		app.Logger.Warn("Не удалось разобрать выбранный плейлист", "err", err)
		return
	}
	if err := app.manager.SelectPlaylist(selected); err != nil {
		app.Logger.Debug("Сохраненный плейлист не найден", "id", selected)
	}
}

// decodeSelection разбирает ID выбранного плейлиста. Значение хранится JSON-строкой,
// как и остальные ключи хранилища
func decodeSelection(data []byte) (string, error) {
	var id string
	if err := json.Unmarshal(data, &id); err != nil {
		return "", fmt.Errorf("%w: %v", store.ErrCorrupted, err)
	}
	return id, nil
}

// Close сохраняет выбор, дожидается записи плейлистов и закрывает хранилище
func (app *Application) Close(ctx context.Context) error {
	if app.manager == nil {
		return nil
	}

	var errs []error
	if current, ok := app.manager.CurrentPlaylist(); ok {
		data, err := json.Marshal(current.ID)
		if err == nil {
			err = app.kv.Put(ctx, currentKey, data)
		}
		errs = append(errs, err)
	}
	errs = append(errs,
		app.manager.Close(),
		app.writer.Close(ctx),
		app.kv.Close(),
	)
	app.manager = nil
	return errors.Join(errs...)
}

// openKV создает хранилище согласно настройкам
func (app *Application) openKV() (store.KV, error) {
	switch app.Config.Storage {
	case config.StorageS3:
		return app.openS3()
	case config.StorageSQLite:
		if err := os.MkdirAll(app.Config.DataDir, 0o755); err != nil {
			return nil, err
		}
		return store.NewSQLiteKV(filepath.Join(app.Config.DataDir, sqliteFileName))
	default:
		return store.NewFileKV(app.Config.DataDir)
	}
}

// openLocalKV открывает локальное хранилище для синхронизации с S3
func (app *Application) openLocalKV() (store.KV, error) {
	if app.Config.Storage == config.StorageS3 {
		return nil, errors.New("основное хранилище уже s3, синхронизировать не с чем")
	}
	return app.openKV()
}

func (app *Application) openS3() (*store.S3KV, error) {
	cfg, err := app.s3Config()
	if err != nil {
		return nil, err
	}
	return store.NewS3KV(cfg)
}

func (app *Application) s3Config() (*store.S3Config, error) {
	if !app.Config.HasS3() {
		return nil, errors.New("S3 не настроен: укажите aws_bucket_name в конфигурации")
	}
	return &store.S3Config{
		Region:     app.Config.AwsRegion,
		AccessKey:  app.Config.AwsAccessKey,
		SecretKey:  app.Config.AwsSecretKey,
		Endpoint:   app.Config.AwsEndpoint,
		BucketName: app.Config.AwsBucketName,
		Prefix:     app.Config.AwsPrefix,
	}, nil
}

// newEngine создает движок воспроизведения согласно настройкам
func (app *Application) newEngine() (player.Engine, error) {
	switch app.Config.Engine {
	case config.EngineMPV:
		return player.NewMPVEngine(app.Config.MPVPath, app.Logger)
	default:
		return player.NewBeepEngine(streaming.Open, app.Logger), nil
	}
}
