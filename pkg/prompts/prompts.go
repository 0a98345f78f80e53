// Package prompts — библиотека remix-промптов по категориям товаров.
//
// Каждая категория знает префикс имён файлов (nk-, rg-) и таблицу
// вариантов: variants[i] — пул промптов для (i+1)-го сгенерированного
// изображения. Библиотека либо встроенная, либо грузится из YAML.
package prompts

import (
	"fmt"
	"math/rand"
	"os"

	"gopkg.in/yaml.v3"
)

// Category — промпты одной категории товара.
type Category struct {
	FilePrefix string     `yaml:"file_prefix"` // Префикс имён входных файлов ("nk-")
	Variants   [][]string `yaml:"variants"`    // Пул промптов на каждый вариант изображения
}

// Library — таблица категорий.
type Library struct {
	Categories map[string]Category `yaml:"categories"`
}

// DefaultLibrary возвращает встроенную библиотеку промптов.
func DefaultLibrary() *Library {
	return &Library{
		Categories: map[string]Category{
			"necklace": {
				FilePrefix: "nk-",
				Variants: [][]string{
					{
						"Place this necklace on a neutral beige silk background with soft studio lighting, keep the jewelry exactly as it is.",
						"Show this necklace laid flat on white marble with gentle morning light and a subtle shadow.",
					},
					{
						"Show this necklace worn on an elegant neck, skin tone warm, background softly blurred boutique interior.",
						"Present this necklace on a dark velvet bust stand with a single warm spotlight.",
					},
					{
						"Close-up macro shot of the pendant of this necklace, shallow depth of field, sparkling highlights.",
						"Artistic top-down composition of this necklace next to a small gift box and dried flowers.",
					},
				},
			},
			"ring": {
				FilePrefix: "rg-",
				Variants: [][]string{
					{
						"Place this ring upright on a polished black stone surface with dramatic side lighting.",
						"Show this ring on a neutral linen background with soft daylight and a faint shadow.",
					},
					{
						"Show this ring worn on a well-groomed hand, fingers relaxed, background softly blurred.",
						"Present this ring inside an open velvet ring box with warm boutique lighting.",
					},
					{
						"Close-up macro shot of the stone of this ring, shallow depth of field, crisp reflections.",
						"Artistic flat lay of this ring next to rose petals on white marble.",
					},
				},
			},
		},
	}
}

// Load читает библиотеку из YAML файла.
//
// Пустой путь — встроенная библиотека.
func Load(path string) (*Library, error) {
	if path == "" {
		return DefaultLibrary(), nil
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("prompts file not found: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read prompts file: %w", err)
	}

	var lib Library
	if err := yaml.Unmarshal(data, &lib); err != nil {
		return nil, fmt.Errorf("yaml parse error: %w", err)
	}

	if len(lib.Categories) == 0 {
		return nil, fmt.Errorf("prompts file has no categories: %s", path)
	}

	return &lib, nil
}

// Category возвращает категорию по имени.
func (l *Library) Category(name string) (Category, error) {
	c, ok := l.Categories[name]
	if !ok {
		names := make([]string, 0, len(l.Categories))
		for n := range l.Categories {
			names = append(names, n)
		}
		return Category{}, fmt.Errorf("unknown category '%s', known: %v", name, names)
	}
	return c, nil
}

// Pick выбирает промпт для варианта variant (нумерация с 1).
//
// Если вариантов в таблице меньше чем запрошено — берется последний слот
// (утилиту можно просить хоть 10 изображений при таблице из 3 слотов).
func (c Category) Pick(variant int, rng *rand.Rand) (string, error) {
	if variant < 1 {
		return "", fmt.Errorf("variant must be >= 1, got %d", variant)
	}
	if len(c.Variants) == 0 {
		return "", fmt.Errorf("category has no prompt variants")
	}

	idx := variant - 1
	if idx >= len(c.Variants) {
		idx = len(c.Variants) - 1
	}

	pool := c.Variants[idx]
	if len(pool) == 0 {
		return "", fmt.Errorf("variant slot %d is empty", variant)
	}

	return pool[rng.Intn(len(pool))], nil
}

// WithSKUOverlay дополняет промпт требованием нанести SKU на изображение.
//
// Текст наносится вертикально в правом нижнем углу — так артикул виден
// на превью, но не мешает товару.
func WithSKUOverlay(prompt string, sku string) string {
	return prompt + " Also add the text " + sku +
		" vertically top to down to the bottom right of the generated image, " +
		"the font size should be 6 and font color should be contrasting with the background."
}
