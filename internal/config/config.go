// Package config содержит функции для загрузки конфигурации приложения
package config

import (
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultAPIBaseURL адрес стороннего API сервера NetEase Cloud Music
	DefaultAPIBaseURL = "https://163api.qijieya.cn"
	// DefaultQuality уровень качества по умолчанию
	DefaultQuality = "standard"
	// DefaultWorkers количество одновременных загрузок по умолчанию
	DefaultWorkers = 3
)

// Config структура для хранения конфигурации приложения
type Config struct {
	APIBaseURL  string `yaml:"api_base_url"`
	DownloadDir string `yaml:"download_dir"`
	Quality     string `yaml:"quality"`
	Workers     int    `yaml:"workers"`

	AwsBucketName string `yaml:"aws_bucket_name"`
	AwsAccessKey  string `yaml:"aws_access_key"`
	AwsSecretKey  string `yaml:"aws_secret_key"`
	AwsRegion     string `yaml:"aws_region"`
	AwsEndpoint   string `yaml:"aws_endpoint"`
}

// DefaultConfig возвращает конфигурацию со значениями по умолчанию
func DefaultConfig() *Config {
	return &Config{
		APIBaseURL:  DefaultAPIBaseURL,
		DownloadDir: "downloads",
		Quality:     DefaultQuality,
		Workers:     DefaultWorkers,
	}
}

// LoadConfig загружает конфигурацию приложения из указанного файла.
// Отсутствующий файл не является ошибкой: все основные сценарии работают
// со значениями по умолчанию.
func LoadConfig(filePath string) (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	path := strings.Replace(filePath, "~", home, 1)

	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, err
	}

	// Подставляем значения по умолчанию, если они не заданы
	if config.APIBaseURL == "" {
		config.APIBaseURL = DefaultAPIBaseURL
	}
	if config.DownloadDir == "" {
		config.DownloadDir = "downloads"
	}
	if config.Quality == "" {
		config.Quality = DefaultQuality
	}
	if config.Workers <= 0 {
		config.Workers = DefaultWorkers
	}

	// Раскрываем тильду в пути загрузки
	config.DownloadDir = strings.Replace(config.DownloadDir, "~", home, 1)

	return config, nil
}
