package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// AppConfig — корневая структура конфигурации.
// Она зеркалит структуру config.yaml.
type AppConfig struct {
	Shopify         ShopifyConfig   `yaml:"shopify"`
	Models          ModelsConfig    `yaml:"models"`
	S3              S3Config        `yaml:"s3"`
	ImageProcessing ImageProcConfig `yaml:"image_processing"`
	Media           MediaConfig     `yaml:"media"`
	Journal         JournalConfig   `yaml:"journal"`
	Sheet           SheetConfig     `yaml:"sheet"`
	App             AppSpecific     `yaml:"app"`
}

// ShopifyConfig — настройки Shopify Admin API.
type ShopifyConfig struct {
	StoreURL      string `yaml:"store_url"`      // Домен магазина (your-store.myshopify.com)
	AccessToken   string `yaml:"access_token"`   // Admin API access token. Поддерживает ${VAR}
	APIVersion    string `yaml:"api_version"`    // Версия Admin API (например, "2024-07")
	RateLimit     int    `yaml:"rate_limit"`     // Запросов в минуту
	BurstLimit    int    `yaml:"burst_limit"`    // Burst для rate limiter
	RetryAttempts int    `yaml:"retry_attempts"` // Количество retry попыток
	Timeout       string `yaml:"timeout"`        // Timeout для HTTP запросов (например, "30s")
}

// GetDefaults возвращает дефолтные значения для незаполненных полей.
func (c *ShopifyConfig) GetDefaults() ShopifyConfig {
	result := *c // Копируем текущие значения

	if result.APIVersion == "" {
		result.APIVersion = "2024-07"
	}
	if result.RateLimit == 0 {
		result.RateLimit = 120 // запросов в минуту
	}
	if result.BurstLimit == 0 {
		result.BurstLimit = 4
	}
	if result.RetryAttempts == 0 {
		result.RetryAttempts = 3
	}
	if result.Timeout == "" {
		result.Timeout = "30s"
	}

	return result
}

// ModelsConfig — настройки AI моделей.
type ModelsConfig struct {
	DefaultVision string              `yaml:"default_vision"` // Алиас vision-модели для анализа
	DefaultImage  string              `yaml:"default_image"`  // Алиас модели для генерации изображений
	Definitions   map[string]ModelDef `yaml:"definitions"`    // Словарь определений моделей
}

// ModelDef — параметры конкретной модели.
type ModelDef struct {
	Provider    string        `yaml:"provider"`   // "openai", "zai" и т.д.
	ModelName   string        `yaml:"model_name"` // Реальное имя в API
	APIKey      string        `yaml:"api_key"`    // Поддерживает ${VAR}
	BaseURL     string        `yaml:"base_url"`   // Для OpenAI-совместимых провайдеров
	MaxTokens   int           `yaml:"max_tokens"`
	Temperature float64       `yaml:"temperature"`
	Timeout     time.Duration `yaml:"timeout"`    // Go умеет парсить строки вида "60s", "1m"
	ImageSize   string        `yaml:"image_size"` // Размер для images/edits (например, "1024x1024")
}

// S3Config — настройки объектного хранилища (источник медиа для uploader).
type S3Config struct {
	Endpoint  string `yaml:"endpoint"`
	Region    string `yaml:"region"`
	Bucket    string `yaml:"bucket"`
	AccessKey string `yaml:"access_key"` // Поддерживает ${VAR}
	SecretKey string `yaml:"secret_key"` // Поддерживает ${VAR}
	UseSSL    bool   `yaml:"use_ssl"`
}

// ImageProcConfig — настройки обработки изображений.
type ImageProcConfig struct {
	MaxWidth int `yaml:"max_width"` // Ширина для ресайза перед отправкой в vision
	Quality  int `yaml:"quality"`   // Качество JPEG (1-100)
}

// GetDefaults возвращает дефолтные значения для незаполненных полей.
//
// 800px хватает vision-модели для описания товара, шире — дороже токенами.
func (c *ImageProcConfig) GetDefaults() ImageProcConfig {
	result := *c

	if result.MaxWidth == 0 {
		result.MaxWidth = 800
	}
	if result.Quality == 0 {
		result.Quality = 85
	}

	return result
}

// MediaConfig — какие расширения считаем изображениями и видео.
type MediaConfig struct {
	ImageExtensions []string `yaml:"image_extensions"`
	VideoExtensions []string `yaml:"video_extensions"`
}

// GetDefaults возвращает списки расширений, дополненные дефолтами.
func (c *MediaConfig) GetDefaults() MediaConfig {
	result := *c

	if len(result.ImageExtensions) == 0 {
		result.ImageExtensions = []string{".jpg", ".jpeg", ".png", ".bmp", ".gif", ".tiff", ".webp"}
	}
	if len(result.VideoExtensions) == 0 {
		result.VideoExtensions = []string{".mp4"}
	}

	return result
}

// IsImage проверяет расширение файла (с точкой, любой регистр).
func (c MediaConfig) IsImage(ext string) bool {
	return containsFold(c.ImageExtensions, ext)
}

// IsVideo проверяет расширение файла (с точкой, любой регистр).
func (c MediaConfig) IsVideo(ext string) bool {
	return containsFold(c.VideoExtensions, ext)
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}

// JournalConfig — настройки журнала загрузок (sqlite).
type JournalConfig struct {
	Path string `yaml:"path"` // Путь к .db файлу. Пустой = журнал выключен
}

// SheetConfig — настройки генератора Shopify CSV.
type SheetConfig struct {
	Vendor  string `yaml:"vendor"`   // Значение колонки Vendor
	TempDir string `yaml:"temp_dir"` // Директория для временных изображений
}

// GetDefaults возвращает дефолтные значения для незаполненных полей.
func (c *SheetConfig) GetDefaults() SheetConfig {
	result := *c

	if result.Vendor == "" {
		result.Vendor = "Your Store"
	}
	if result.TempDir == "" {
		result.TempDir = "temp_images"
	}

	return result
}

// AppSpecific — общие настройки приложения.
type AppSpecific struct {
	Debug       bool   `yaml:"debug"`
	PromptsFile string `yaml:"prompts_file"` // Путь к yaml с remix-промптами (опционально)
}

// Load читает YAML файл, подставляет ENV переменные и возвращает готовую структуру.
func Load(path string) (*AppConfig, error) {
	// 1. Проверяем существование файла
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found at: %s", path)
	}

	// 2. Читаем файл целиком
	rawBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// 3. Подставляем переменные окружения.
	// os.ExpandEnv заменяет ${VAR} или $VAR на значение из системы.
	contentWithEnv := os.ExpandEnv(string(rawBytes))

	// 4. Парсим YAML в структуру
	var cfg AppConfig
	if err := yaml.Unmarshal([]byte(contentWithEnv), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse yaml: %w", err)
	}

	// 5. Валидируем внутреннюю согласованность
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// validate проверяет согласованность секций.
//
// Обязательность shopify/s3 зависит от утилиты, поэтому проверяется
// отдельными методами ValidateShopify/ValidateS3 из cmd.
func (c *AppConfig) validate() error {
	if c.Models.DefaultVision != "" {
		if _, ok := c.Models.Definitions[c.Models.DefaultVision]; !ok {
			return fmt.Errorf("default_vision model '%s' is not defined in definitions", c.Models.DefaultVision)
		}
	}
	if c.Models.DefaultImage != "" {
		if _, ok := c.Models.Definitions[c.Models.DefaultImage]; !ok {
			return fmt.Errorf("default_image model '%s' is not defined in definitions", c.Models.DefaultImage)
		}
	}
	return nil
}

// ValidateShopify проверяет что секция shopify заполнена.
//
// Вызывается утилитами которые ходят в Shopify Admin API.
func (c *AppConfig) ValidateShopify() error {
	if c.Shopify.StoreURL == "" {
		return fmt.Errorf("shopify.store_url is required")
	}
	if c.Shopify.AccessToken == "" {
		return fmt.Errorf("shopify.access_token is required")
	}
	return nil
}

// ValidateS3 проверяет что секция s3 заполнена.
//
// Вызывается только при работе с -s3-prefix.
func (c *AppConfig) ValidateS3() error {
	if c.S3.Bucket == "" {
		return fmt.Errorf("s3.bucket is required")
	}
	if c.S3.Endpoint == "" {
		return fmt.Errorf("s3.endpoint is required")
	}
	return nil
}

// GetVisionModel возвращает конфигурацию vision-модели по умолчанию или по имени.
func (c *AppConfig) GetVisionModel(name string) (ModelDef, bool) {
	if name == "" {
		name = c.Models.DefaultVision
	}
	m, ok := c.Models.Definitions[name]
	return m, ok
}

// GetImageModel возвращает конфигурацию модели генерации изображений.
func (c *AppConfig) GetImageModel(name string) (ModelDef, bool) {
	if name == "" {
		name = c.Models.DefaultImage
	}
	m, ok := c.Models.Definitions[name]
	return m, ok
}
