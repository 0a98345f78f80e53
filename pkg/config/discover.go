// Строгий поиск config.yaml для standalone CLI утилит.
//
// Утилиты распространяются вместе с config.yaml в одной директории,
// поэтому поиск ограничен флагом и директорией бинарника.
package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// FindPath находит путь к config.yaml.
//
// Правила:
// 1. Если указан флаг -config — использует его (может быть относительный путь)
// 2. Ищет config.yaml в той же папке где находится бинарник
// 3. НЕ ищет в текущей директории или родительских
//
// Возвращает пустую строку если файл не найден (ошибка будет в LoadStrict).
func FindPath(configFlag string) string {
	// 1. Флаг имеет приоритет
	if configFlag != "" {
		return resolveAbsPath(configFlag)
	}

	// 2. Директория бинарника
	if execPath, err := os.Executable(); err == nil {
		binDir := filepath.Dir(execPath)
		cfgPath := filepath.Join(binDir, "config.yaml")
		if _, err := os.Stat(cfgPath); err == nil {
			return cfgPath
		}
	}

	return ""
}

// LoadStrict находит и загружает config.yaml со строгими проверками.
//
// Падает (ошибкой) если конфиг не найден — утилита без конфига бесполезна.
// Возвращает конфиг и абсолютный путь к файлу.
func LoadStrict(configFlag string) (*AppConfig, string, error) {
	cfgPath := FindPath(configFlag)

	if cfgPath == "" {
		return nil, "", fmt.Errorf("config.yaml not found\n\n" +
			"Standalone CLI requires config.yaml in the same directory as the binary.\n" +
			"Usage: place config.yaml next to the binary or use -config flag.")
	}

	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		return nil, "", fmt.Errorf("config.yaml not found at: %s", cfgPath)
	}

	cfg, err := Load(cfgPath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load config from %s: %w", cfgPath, err)
	}

	// prompts_file указывается относительно директории конфига
	if cfg.App.PromptsFile != "" && !filepath.IsAbs(cfg.App.PromptsFile) {
		cfg.App.PromptsFile = filepath.Join(filepath.Dir(cfgPath), cfg.App.PromptsFile)
	}

	return cfg, cfgPath, nil
}

// resolveAbsPath преобразует относительный путь в абсолютный.
func resolveAbsPath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}
