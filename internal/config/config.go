// Package config содержит функции для загрузки конфигурации приложения
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/hazadus/go-mediaplayer/internal/utils"
)

// Поддерживаемые хранилища плейлистов
const (
	StorageFile   = "file"
	StorageSQLite = "sqlite"
	StorageS3     = "s3"
)

// Поддерживаемые движки воспроизведения
const (
	EngineBeep = "beep"
	EngineMPV  = "mpv"
)

// Config структура для хранения конфигурации приложения
type Config struct {
	DataDir     string `yaml:"data_dir" toml:"data_dir"`
	DownloadDir string `yaml:"download_dir" toml:"download_dir"`
	Storage     string `yaml:"storage" toml:"storage"`
	Engine      string `yaml:"engine" toml:"engine"`
	MPVPath     string `yaml:"mpv_path" toml:"mpv_path"`
	AutoAdvance *bool  `yaml:"auto_advance" toml:"auto_advance"`
	LogLevel    string `yaml:"log_level" toml:"log_level"`

	AwsBucketName string `yaml:"aws_bucket_name" toml:"aws_bucket_name"`
	AwsAccessKey  string `yaml:"aws_access_key" toml:"aws_access_key"`
	AwsSecretKey  string `yaml:"aws_secret_key" toml:"aws_secret_key"`
	AwsRegion     string `yaml:"aws_region" toml:"aws_region"`
	AwsEndpoint   string `yaml:"aws_endpoint" toml:"aws_endpoint"`
	AwsPrefix     string `yaml:"aws_prefix" toml:"aws_prefix"`
}

// Default возвращает конфигурацию со значениями по умолчанию
func Default() *Config {
	cfg := &Config{}
	if err := cfg.applyDefaults(); err != nil {
		// Без домашней директории оставляем пути относительными
		cfg.DataDir = ".mediaplayer"
		cfg.DownloadDir = "Downloads"
	}
	return cfg
}

// LoadConfig загружает конфигурацию приложения из указанного файла.
// Файлы с расширением .toml разбираются как TOML, остальные как YAML
func LoadConfig(filePath string) (*Config, error) {
	path, err := utils.ExpandHome(filePath)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	config := &Config{}
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("ошибка разбора toml: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("ошибка разбора yaml: %w", err)
		}
	}

	if err := config.applyDefaults(); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// LoadOrDefault загружает конфигурацию, а если файла нет - возвращает значения по умолчанию
func LoadOrDefault(filePath string) (*Config, error) {
	cfg, err := LoadConfig(filePath)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Validate проверяет значения перечислимых полей
func (c *Config) Validate() error {
	switch c.Storage {
	case StorageFile, StorageSQLite:
	case StorageS3:
		if c.AwsBucketName == "" {
			return errors.New("для хранилища s3 требуется aws_bucket_name")
		}
	default:
		return fmt.Errorf("неизвестное хранилище: %q", c.Storage)
	}

	switch c.Engine {
	case EngineBeep, EngineMPV:
	default:
		return fmt.Errorf("неизвестный движок воспроизведения: %q", c.Engine)
	}

	return nil
}

// ShouldAutoAdvance сообщает, нужно ли переходить к следующему файлу по окончании текущего
func (c *Config) ShouldAutoAdvance() bool {
	return c.AutoAdvance == nil || *c.AutoAdvance
}

// HasS3 сообщает, заданы ли настройки S3
func (c *Config) HasS3() bool {
	return c.AwsBucketName != ""
}

// applyDefaults устанавливает значения по умолчанию и раскрывает тильду в путях
func (c *Config) applyDefaults() error {
	if c.DataDir == "" {
		c.DataDir = "~/.mediaplayer"
	}
	if c.DownloadDir == "" {
		c.DownloadDir = "~/Downloads"
	}
	if c.Storage == "" {
		c.Storage = StorageFile
	}
	if c.Engine == "" {
		c.Engine = EngineBeep
	}
	if c.MPVPath == "" {
		c.MPVPath = "mpv"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.AwsRegion == "" {
		c.AwsRegion = "us-east-1"
	}

	c.Storage = strings.ToLower(c.Storage)
	c.Engine = strings.ToLower(c.Engine)

	var err error
	if c.DataDir, err = utils.ExpandHome(c.DataDir); err != nil {
		return err
	}
	if c.DownloadDir, err = utils.ExpandHome(c.DownloadDir); err != nil {
		return err
	}
	return nil
}
