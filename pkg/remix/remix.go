// Package remix — генерация вариантов товарных изображений через image API.
//
// Для каждого исходного изображения категории генерируется N вариантов:
// промпт берется из библиотеки (слот на номер варианта, случайный выбор
// внутри слота), поверх добавляется артикул из имени файла.
package remix

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ilkoid/gemflow/pkg/imaging"
	"github.com/ilkoid/gemflow/pkg/prompts"
	"github.com/ilkoid/gemflow/pkg/utils"
)

// ImageGenerator — срез vision.Client для генерации изображений.
type ImageGenerator interface {
	RemixImage(ctx context.Context, imageData []byte, mimeType string, prompt string) ([]byte, error)
}

// Options — параметры прогона.
type Options struct {
	InputDir  string
	OutputDir string
	Category  string // Ключ категории в библиотеке промптов
	Count     int    // Вариантов на каждый исходный файл
	Seed      int64  // 0 — от текущего времени
}

// Results — итоги прогона.
type Results struct {
	TotalFiles int
	Generated  int
	Failed     int
	Errors     []string
}

// SKUFromName извлекает артикул из имени файла: стем до последнего дефиса.
//
// nk-00001-0825.png → nk-00001. Имя без дефисов — артикулом считается
// весь стем.
func SKUFromName(filename string) string {
	stem := strings.TrimSuffix(filename, filepath.Ext(filename))
	if idx := strings.LastIndex(stem, "-"); idx > 0 {
		return stem[:idx]
	}
	return stem
}

// OutputName возвращает имя выходного файла для варианта.
//
// Расширение наследуется от входного файла: nk-00001 + 2 → nk-00001-02.png.
func OutputName(sku string, variant int, ext string) string {
	return fmt.Sprintf("%s-0%d%s", sku, variant, ext)
}

// Run обрабатывает все файлы категории из входной папки.
//
// Ошибка одного файла или варианта не прерывает прогон, итоги — в Results.
func Run(ctx context.Context, gen ImageGenerator, lib *prompts.Library, opts Options) (*Results, error) {
	cat, err := lib.Category(opts.Category)
	if err != nil {
		return nil, err
	}
	if opts.Count < 1 {
		return nil, fmt.Errorf("count must be >= 1, got %d", opts.Count)
	}

	files, err := listCategoryFiles(opts.InputDir, cat.FilePrefix)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no '%s*' images in %s", cat.FilePrefix, opts.InputDir)
	}

	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	utils.Info("Remix started",
		"category", opts.Category,
		"files", len(files),
		"variants", opts.Count,
		"seed", seed)

	results := &Results{TotalFiles: len(files)}

	for _, file := range files {
		processFile(ctx, gen, cat, file, opts, rng, results)
	}

	return results, nil
}

// processFile генерирует все варианты для одного исходного файла.
func processFile(ctx context.Context, gen ImageGenerator, cat prompts.Category, path string, opts Options, rng *rand.Rand, results *Results) {
	name := filepath.Base(path)
	sku := SKUFromName(name)

	data, err := os.ReadFile(path)
	if err != nil {
		msg := fmt.Sprintf("Error reading %s: %v", name, err)
		utils.Error("Read failed", "file", name, "error", err)
		results.Errors = append(results.Errors, msg)
		results.Failed += opts.Count
		return
	}

	mimeType, err := imaging.DetectMIME(name)
	if err != nil {
		msg := fmt.Sprintf("Unsupported file %s: %v", name, err)
		utils.Warn("Unsupported file type", "file", name, "error", err)
		results.Errors = append(results.Errors, msg)
		results.Failed += opts.Count
		return
	}

	for i := 1; i <= opts.Count; i++ {
		prompt, err := cat.Pick(i, rng)
		if err != nil {
			msg := fmt.Sprintf("No prompt for %s variant %d: %v", name, i, err)
			results.Errors = append(results.Errors, msg)
			results.Failed++
			continue
		}
		prompt = prompts.WithSKUOverlay(prompt, sku)

		utils.Info("Generating variant", "file", name, "variant", i)

		out, err := gen.RemixImage(ctx, data, mimeType, prompt)
		if err != nil {
			msg := fmt.Sprintf("Error generating %s variant %d: %v", name, i, err)
			utils.Error("Generation failed", "file", name, "variant", i, "error", err)
			results.Errors = append(results.Errors, msg)
			results.Failed++
			continue
		}

		outPath := filepath.Join(opts.OutputDir, OutputName(sku, i, filepath.Ext(name)))
		if err := os.WriteFile(outPath, out, 0o644); err != nil {
			msg := fmt.Sprintf("Error saving %s: %v", outPath, err)
			utils.Error("Save failed", "path", outPath, "error", err)
			results.Errors = append(results.Errors, msg)
			results.Failed++
			continue
		}

		utils.Info("Variant saved", "path", outPath)
		results.Generated++
	}
}

// listCategoryFiles возвращает изображения папки с нужным префиксом имени.
func listCategoryFiles(dir string, prefix string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read input dir %s: %w", dir, err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := strings.ToLower(e.Name())
		if !strings.HasPrefix(name, strings.ToLower(prefix)) {
			continue
		}
		if filepath.Ext(name) == ".png" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	return files, nil
}
