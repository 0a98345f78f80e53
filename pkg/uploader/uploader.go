// Package uploader — пайплайн загрузки медиа к товарам Shopify.
//
// Линейный проход: перечислить файлы → для каждого извлечь идентификатор →
// проверить медиа → загрузить → собрать итоги. Элементы независимы:
// ошибка одного файла не прерывает проход.
package uploader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif" // Регистрируем декодеры для validateMedia
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/ilkoid/gemflow/pkg/config"
	"github.com/ilkoid/gemflow/pkg/ident"
	"github.com/ilkoid/gemflow/pkg/journal"
	"github.com/ilkoid/gemflow/pkg/s3source"
	"github.com/ilkoid/gemflow/pkg/shopify"
	"github.com/ilkoid/gemflow/pkg/utils"
)

// ProductAPI — срез методов shopify.Client, нужных пайплайну.
//
// Интерфейс ради тестов: в тестах подставляется fake без сети.
type ProductAPI interface {
	GetProduct(ctx context.Context, productID string) (*shopify.Product, error)
	ProductIDBySKU(ctx context.Context, sku string) (string, error)
	UploadImage(ctx context.Context, productID string, filename string, data []byte, altText string) (*shopify.Image, error)
}

// Options — режимы запуска.
type Options struct {
	DryRun bool // Всё кроме финального upload
	Force  bool // Игнорировать журнал (перезалить)
}

// Results — итоги прохода.
type Results struct {
	TotalFiles        int
	ValidMedia        int
	SuccessfulUploads int
	FailedUploads     int
	SkippedFiles      int
	Errors            []string
}

// Uploader — пайплайн загрузки.
type Uploader struct {
	api     ProductAPI
	media   config.MediaConfig
	journal *journal.Journal // nil — журнал выключен
}

// New создает Uploader.
//
// j может быть nil — тогда повторные запуски не отслеживаются.
func New(api ProductAPI, media config.MediaConfig, j *journal.Journal) *Uploader {
	return &Uploader{
		api:     api,
		media:   media.GetDefaults(),
		journal: j,
	}
}

// item — один файл из любого источника (папка или S3).
type item struct {
	name string                 // Имя файла
	load func() ([]byte, error) // Ленивое чтение содержимого
}

// ProcessFolder обрабатывает все медиа файлы в локальной папке.
func (u *Uploader) ProcessFolder(ctx context.Context, folder string, opts Options) (*Results, error) {
	info, err := os.Stat(folder)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("folder does not exist or is not a directory: %s", folder)
	}

	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, fmt.Errorf("read folder %s: %w", folder, err)
	}

	var items []item
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if !u.media.IsImage(ext) && !u.media.IsVideo(ext) {
			continue
		}
		path := filepath.Join(folder, e.Name())
		items = append(items, item{
			name: e.Name(),
			load: func() ([]byte, error) { return os.ReadFile(path) },
		})
	}

	utils.Info("Found media files", "folder", folder, "count", len(items))
	return u.process(ctx, items, opts), nil
}

// ProcessS3 обрабатывает медиа файлы из S3 по префиксу.
func (u *Uploader) ProcessS3(ctx context.Context, src s3source.ClientInterface, prefix string, opts Options) (*Results, error) {
	objects, err := src.ListFiles(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("list s3 prefix %s: %w", prefix, err)
	}

	var items []item
	for _, obj := range objects {
		ext := strings.ToLower(filepath.Ext(obj.Key))
		if !u.media.IsImage(ext) && !u.media.IsVideo(ext) {
			continue
		}
		key := obj.Key
		items = append(items, item{
			name: obj.Filename(),
			load: func() ([]byte, error) { return src.DownloadFile(ctx, key) },
		})
	}

	utils.Info("Found media files in S3", "prefix", prefix, "count", len(items))
	return u.process(ctx, items, opts), nil
}

// process — общий проход по элементам.
func (u *Uploader) process(ctx context.Context, items []item, opts Options) *Results {
	results := &Results{TotalFiles: len(items)}

	for _, it := range items {
		u.processItem(ctx, it, opts, results)
	}

	return results
}

// processItem обрабатывает один файл. Все исходы сводятся в results.
func (u *Uploader) processItem(ctx context.Context, it item, opts Options, results *Results) {
	utils.Info("Processing", "file", it.name)

	// 1. Журнал: уже загружали?
	if u.journal != nil && !opts.Force {
		uploaded, err := u.journal.IsUploaded(it.name)
		if err != nil {
			utils.Warn("Journal check failed", "file", it.name, "error", err)
		} else if uploaded {
			utils.Info("Already uploaded, skipping", "file", it.name)
			results.SkippedFiles++
			return
		}
	}

	// 2. Идентификатор товара из имени файла
	productID, err := u.resolveProductID(ctx, it.name)
	if err != nil {
		if errors.Is(err, errNoIdentifier) || errors.Is(err, shopify.ErrNotFound) {
			utils.Warn("No product for file, skipping", "file", it.name, "reason", err)
			results.SkippedFiles++
			return
		}
		// Сетевые/auth ошибки — это failed, не skipped
		msg := fmt.Sprintf("Error processing %s: %v", it.name, err)
		utils.Error("Product lookup failed", "file", it.name, "error", err)
		results.Errors = append(results.Errors, msg)
		results.FailedUploads++
		return
	}

	// 3. Содержимое и валидация
	data, err := it.load()
	if err != nil {
		msg := fmt.Sprintf("Error reading %s: %v", it.name, err)
		utils.Error("Read failed", "file", it.name, "error", err)
		results.Errors = append(results.Errors, msg)
		results.FailedUploads++
		return
	}

	isVideo := u.media.IsVideo(strings.ToLower(filepath.Ext(it.name)))
	if err := validateMedia(it.name, data, isVideo); err != nil {
		utils.Warn("Invalid media, skipping", "file", it.name, "error", err)
		results.SkippedFiles++
		return
	}
	results.ValidMedia++

	mediaType := "image"
	if isVideo {
		mediaType = "video"
	}

	// 4. Dry run: до сюда дошли, сам upload пропускаем
	if opts.DryRun {
		utils.Info("DRY RUN: would upload", "type", mediaType, "file", it.name, "product", productID)
		results.SuccessfulUploads++
		return
	}

	// 5. Видео через images endpoint не заливается
	if isVideo {
		msg := fmt.Sprintf("Video upload is not supported: %s", it.name)
		utils.Error("Video upload unsupported", "file", it.name)
		results.Errors = append(results.Errors, msg)
		results.FailedUploads++
		return
	}

	// 6. Загрузка
	img, err := u.api.UploadImage(ctx, productID, it.name, data, "")
	if err != nil {
		msg := fmt.Sprintf("Error uploading %s: %v", it.name, err)
		utils.Error("Upload failed", "file", it.name, "product", productID, "error", err)
		results.Errors = append(results.Errors, msg)
		results.FailedUploads++
		return
	}

	utils.Info("Uploaded", "file", it.name, "product", productID, "src", img.Src)
	results.SuccessfulUploads++

	if u.journal != nil {
		if err := u.journal.MarkUploaded(it.name, productID, img.Src); err != nil {
			utils.Warn("Journal write failed", "file", it.name, "error", err)
		}
	}
}

// errNoIdentifier — из имени файла не извлекся ни ID, ни SKU.
var errNoIdentifier = errors.New("no identifier in filename")

// resolveProductID находит ID товара для файла.
//
// Сначала цепочка правил (десятичный ID прямо в имени), затем fallback:
// дефисный SKU → GraphQL поиск. Найденный десятичный ID проверяется
// запросом товара — битый ID в имени файла не должен ронять upload позже.
// Если товара с таким ID нет, пробуем трактовать имя как SKU: в именах
// вида NK-00001-0825-02 цепочка цепляет цифры между дефисами, хотя это
// часть артикула, а не ID.
func (u *Uploader) resolveProductID(ctx context.Context, filename string) (string, error) {
	if id, rule, ok := ident.Match(filename); ok {
		utils.Debug("Identifier extracted", "file", filename, "id", id, "rule", rule)

		_, err := u.api.GetProduct(ctx, id)
		if err == nil {
			return id, nil
		}
		if !errors.Is(err, shopify.ErrNotFound) {
			return "", fmt.Errorf("product %s: %w", id, err)
		}
		utils.Debug("Product not found, trying SKU fallback", "file", filename, "id", id)
	}

	if sku, ok := ident.ExtractSKU(filename); ok {
		utils.Debug("SKU extracted", "file", filename, "sku", sku)

		id, err := u.api.ProductIDBySKU(ctx, sku)
		if err != nil {
			return "", fmt.Errorf("sku %s: %w", sku, err)
		}
		utils.Info("Resolved SKU to product", "sku", sku, "product", id)
		return id, nil
	}

	return "", errNoIdentifier
}

// validateMedia проверяет содержимое файла.
//
// Изображения stdlib-форматов декодируются целиком, остальные — проверка
// на непустоту. Видео достаточно непустого файла.
func validateMedia(filename string, data []byte, isVideo bool) error {
	if len(data) == 0 {
		return fmt.Errorf("file is empty")
	}
	if isVideo {
		return nil
	}

	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".gif":
		if _, _, err := image.Decode(bytes.NewReader(data)); err != nil {
			return fmt.Errorf("invalid image: %w", err)
		}
	}
	return nil
}
