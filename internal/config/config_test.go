package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestLoadConfigFromFile(t *testing.T) {
	// Создаем временный файл конфигурации
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.yaml")

	autoAdvance := false
	testConfig := Config{
		DataDir:       filepath.Join(tempDir, "data"),
		DownloadDir:   "~/test-downloads",
		Storage:       "SQLite",
		Engine:        "mpv",
		AutoAdvance:   &autoAdvance,
		LogLevel:      "debug",
		AwsBucketName: "test-bucket",
		AwsRegion:     "eu-central-1",
		AwsEndpoint:   "https://storage.example.com",
	}

	// Сериализуем конфигурацию в YAML
	data, err := yaml.Marshal(testConfig)
	if err != nil {
		t.Fatalf("Ошибка сериализации конфигурации: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		t.Fatalf("Ошибка записи файла конфигурации: %v", err)
	}

	loadedConfig, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	if loadedConfig.DataDir != testConfig.DataDir {
		t.Errorf("Ожидался DataDir: %s, получено: %s", testConfig.DataDir, loadedConfig.DataDir)
	}
	if loadedConfig.Storage != StorageSQLite {
		t.Errorf("Ожидалось хранилище sqlite, получено: %s", loadedConfig.Storage)
	}
	if loadedConfig.Engine != EngineMPV {
		t.Errorf("Ожидался движок mpv, получено: %s", loadedConfig.Engine)
	}
	if loadedConfig.ShouldAutoAdvance() {
		t.Error("auto_advance: false должен отключать автопереход")
	}
	if !loadedConfig.HasS3() {
		t.Error("Ожидались настройки S3")
	}

	// Проверяем, что DownloadDir раскрывается с тильдой
	home, _ := os.UserHomeDir()
	expectedDownloadDir := filepath.Join(home, "test-downloads")
	if loadedConfig.DownloadDir != expectedDownloadDir {
		t.Errorf("Ожидался DownloadDir: %s, получено: %s", expectedDownloadDir, loadedConfig.DownloadDir)
	}
}

func TestLoadConfigTOML(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.toml")

	content := `data_dir = "/var/lib/mediaplayer"
engine = "beep"
log_level = "warn"
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Ошибка записи файла конфигурации: %v", err)
	}

	loadedConfig, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}
	if loadedConfig.DataDir != "/var/lib/mediaplayer" {
		t.Errorf("Ожидался DataDir из TOML, получено: %s", loadedConfig.DataDir)
	}
	if loadedConfig.LogLevel != "warn" {
		t.Errorf("Ожидался log_level warn, получено: %s", loadedConfig.LogLevel)
	}
	if loadedConfig.Storage != StorageFile {
		t.Errorf("Ожидалось хранилище по умолчанию file, получено: %s", loadedConfig.Storage)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := Default()

	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Домашняя директория недоступна")
	}

	if cfg.DataDir != filepath.Join(home, ".mediaplayer") {
		t.Errorf("Неожиданный DataDir по умолчанию: %s", cfg.DataDir)
	}
	if cfg.DownloadDir != filepath.Join(home, "Downloads") {
		t.Errorf("Неожиданный DownloadDir по умолчанию: %s", cfg.DownloadDir)
	}
	if cfg.Storage != StorageFile || cfg.Engine != EngineBeep {
		t.Errorf("Неожиданные значения по умолчанию: storage=%s engine=%s", cfg.Storage, cfg.Engine)
	}
	if !cfg.ShouldAutoAdvance() {
		t.Error("Автопереход должен быть включен по умолчанию")
	}
	if cfg.HasS3() {
		t.Error("S3 не должен быть настроен по умолчанию")
	}
}

func TestLoadOrDefaultMissingFile(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Отсутствующий файл не должен быть ошибкой: %v", err)
	}
	if cfg.Engine != EngineBeep {
		t.Errorf("Ожидалась конфигурация по умолчанию, получено engine=%s", cfg.Engine)
	}
}

func TestLoadConfigNonExistentFile(t *testing.T) {
	_, err := LoadConfig("/non/existent/config.yaml")
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Ожидалась ошибка os.ErrNotExist, получено: %v", err)
	}
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "invalid_config.yaml")

	invalidYAML := `storage: "file"
engine: [unclosed array
`
	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("Ошибка записи файла конфигурации: %v", err)
	}

	_, err := LoadConfig(configPath)
	if err == nil {
		t.Fatal("Ожидалась ошибка при загрузке некорректного YAML")
	}
	if !strings.Contains(err.Error(), "yaml") {
		t.Errorf("Неожиданное сообщение об ошибке: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"неизвестное хранилище", "storage: redis\n", "хранилище"},
		{"неизвестный движок", "engine: vlc\n", "движок"},
		{"s3 без бакета", "storage: s3\n", "aws_bucket_name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configPath := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(configPath, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}
			_, err := LoadConfig(configPath)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Ожидалась ошибка с %q, получено: %v", tt.wantErr, err)
			}
		})
	}
}
