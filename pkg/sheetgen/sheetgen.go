// Package sheetgen — пайплайн инвентарный CSV → Shopify import CSV.
//
// Для каждой валидной строки инвентаря: скачать фото с Google Drive,
// ужать, прогнать через vision-модель, собрать карточку и записать в
// выходной CSV. Падение анализа не валит строку: карточка собирается
// из fallback-значений по артикулу.
package sheetgen

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ilkoid/gemflow/pkg/config"
	"github.com/ilkoid/gemflow/pkg/gdrive"
	"github.com/ilkoid/gemflow/pkg/imaging"
	"github.com/ilkoid/gemflow/pkg/sheet"
	"github.com/ilkoid/gemflow/pkg/utils"
	"github.com/ilkoid/gemflow/pkg/vision"
)

// Analyzer — срез vision.Client для анализа товара.
type Analyzer interface {
	AnalyzeProduct(ctx context.Context, imageData []byte, mimeType string, sku string, price float64) (vision.ProductInfo, error)
}

// FileDownloader — срез gdrive.Downloader.
type FileDownloader interface {
	Download(ctx context.Context, shareURL string) ([]byte, error)
}

var _ FileDownloader = (*gdrive.Downloader)(nil)

// Results — итоги генерации.
type Results struct {
	TotalRows   int
	Processed   int // Строк записано в выходной CSV
	Fallbacks   int // Из них собрано без AI-анализа
	SkippedRows int // Невалидные строки (нет URL или SKU)
	FailedRows  int // Не скачалось фото
	Errors      []string
}

// Generator — пайплайн генерации Shopify CSV.
type Generator struct {
	analyzer   Analyzer
	downloader FileDownloader
	cfg        config.SheetConfig
	imgCfg     config.ImageProcConfig

	// Хук для TUI: вызывается перед обработкой каждой строки
	OnRow func(line int, sku string)
}

// New создает Generator.
func New(analyzer Analyzer, downloader FileDownloader, cfg config.SheetConfig, imgCfg config.ImageProcConfig) *Generator {
	return &Generator{
		analyzer:   analyzer,
		downloader: downloader,
		cfg:        cfg.GetDefaults(),
		imgCfg:     imgCfg.GetDefaults(),
	}
}

// Run читает инвентарный CSV и пишет Shopify CSV.
func (g *Generator) Run(ctx context.Context, inputPath string, outputPath string) (*Results, error) {
	in, err := os.Open(inputPath)
	if err != nil {
		return nil, fmt.Errorf("open input csv: %w", err)
	}
	defer in.Close()

	rows, err := sheet.ReadInventory(in)
	if err != nil {
		return nil, err
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return nil, fmt.Errorf("create output csv: %w", err)
	}
	defer out.Close()

	// Временная папка под скачанные фото, чистится после прогона
	tempDir := g.cfg.TempDir
	if err := os.MkdirAll(tempDir, 0o755); err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(tempDir)

	writer := sheet.NewWriter(out)
	results := &Results{TotalRows: len(rows)}

	utils.Info("Sheet generation started", "input", inputPath, "rows", len(rows))

	for _, row := range rows {
		g.processRow(ctx, writer, row, results)
	}

	if err := writer.Flush(); err != nil {
		return results, err
	}

	utils.Info("Sheet generation finished",
		"output", outputPath,
		"written", results.Processed,
		"fallbacks", results.Fallbacks)

	return results, nil
}

// processRow обрабатывает одну строку инвентаря.
func (g *Generator) processRow(ctx context.Context, writer *sheet.Writer, row sheet.InventoryRow, results *Results) {
	if g.OnRow != nil {
		g.OnRow(row.Line, row.SKU)
	}

	if !row.Valid() {
		utils.Warn("Skipping invalid row", "line", row.Line, "sku", row.SKU)
		results.SkippedRows++
		return
	}

	utils.Info("Processing row", "line", row.Line, "sku", row.SKU)

	data, err := g.downloader.Download(ctx, row.ImageURL)
	if err != nil {
		msg := fmt.Sprintf("Row %d (%s): download failed: %v", row.Line, row.SKU, err)
		utils.Error("Image download failed", "line", row.Line, "sku", row.SKU, "error", err)
		results.Errors = append(results.Errors, msg)
		results.FailedRows++
		return
	}

	// Сохраняем оригинал во временную папку: полезно для отладки и
	// повторного использования фото без перекачивания
	tempPath := filepath.Join(g.cfg.TempDir, row.SKU+".jpg")
	if err := os.WriteFile(tempPath, data, 0o644); err != nil {
		utils.Warn("Temp save failed", "path", tempPath, "error", err)
	}

	// Ужимаем перед отправкой в модель: токены стоят денег
	resized, err := imaging.ResizeImage(data, g.imgCfg.MaxWidth, g.imgCfg.Quality)
	if err != nil {
		utils.Warn("Resize failed, sending original", "sku", row.SKU, "error", err)
		resized = data
	}

	info, err := g.analyzer.AnalyzeProduct(ctx, resized, "image/jpeg", row.SKU, row.SellingPrice)
	if err != nil {
		utils.Warn("AI analysis failed, using fallback", "sku", row.SKU, "error", err)
		info = vision.FallbackProductInfo(row.SKU)
		results.Fallbacks++
	}

	card := sheet.ProductCard{
		Title:       info.Title,
		Description: info.Description,
		Category:    info.Category,
		Tags:        info.Tags,
		SKU:         row.SKU,
		BuyPrice:    row.BuyPrice,
		MRP:         row.MRP,
		Price:       row.SellingPrice,
		Quantity:    row.Quantity,
		Vendor:      g.cfg.Vendor,
	}

	if err := writer.Write(card); err != nil {
		msg := fmt.Sprintf("Row %d (%s): csv write failed: %v", row.Line, row.SKU, err)
		results.Errors = append(results.Errors, msg)
		results.FailedRows++
		return
	}

	results.Processed++
}
