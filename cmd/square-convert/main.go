// square-convert — приведение изображений к квадрату 1:1.
//
// Маркетплейсы требуют квадратные превью; утилита дополняет фон (pad),
// режет по центру (crop) или растягивает (stretch). Вход — файл или
// папка, конфиг не нужен.
package main

import (
	"flag"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ilkoid/gemflow/pkg/imaging"
	"github.com/ilkoid/gemflow/pkg/utils"
)

var (
	inputFlag   = flag.String("i", "", "Input image file or folder")
	outputFlag  = flag.String("o", "square", "Output folder")
	methodFlag  = flag.String("method", "pad", "Square method: pad, crop, stretch")
	bgFlag      = flag.String("bg", "white", "Pad background: white, black or hex (#rrggbb)")
	qualityFlag = flag.Int("quality", 90, "JPEG quality (1-100)")
	verboseFlag = flag.Bool("verbose", false, "Debug logging")
)

func main() {
	flag.Parse()

	if err := utils.InitLogger(); err != nil {
		fmt.Fprintf(os.Stderr, "Logger init failed: %v\n", err)
	}
	defer utils.Close()
	utils.SetDebug(*verboseFlag)

	if err := run(); err != nil {
		utils.Error("square-convert failed", "error", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if *inputFlag == "" {
		return fmt.Errorf("-i is required")
	}

	method, err := imaging.ParseSquareMethod(*methodFlag)
	if err != nil {
		return err
	}

	bg, err := parseColor(*bgFlag)
	if err != nil {
		return err
	}

	files, err := collectFiles(*inputFlag)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no images found at %s", *inputFlag)
	}

	if err := os.MkdirAll(*outputFlag, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	converted, failed := 0, 0
	for _, path := range files {
		if err := convertOne(path, method, bg); err != nil {
			utils.Error("Convert failed", "file", path, "error", err)
			fmt.Fprintf(os.Stderr, "  - %s: %v\n", filepath.Base(path), err)
			failed++
			continue
		}
		converted++
	}

	fmt.Printf("Converted: %d\nFailed:    %d\n", converted, failed)
	if failed > 0 {
		return fmt.Errorf("%d file(s) failed", failed)
	}
	return nil
}

// convertOne обрабатывает один файл, формат выхода — по расширению входа.
func convertOne(path string, method imaging.SquareMethod, bg color.Color) error {
	img, err := imaging.LoadImage(path)
	if err != nil {
		return err
	}

	square, err := imaging.ToSquare(img, method, bg)
	if err != nil {
		return err
	}

	outPath := filepath.Join(*outputFlag, filepath.Base(path))
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		err = imaging.SavePNG(outPath, square)
	default:
		// jpg и все остальное сохраняем как JPEG
		outPath = strings.TrimSuffix(outPath, filepath.Ext(outPath)) + ".jpg"
		err = imaging.SaveJPEG(outPath, square, *qualityFlag)
	}
	if err != nil {
		return err
	}

	utils.Info("Converted", "input", path, "output", outPath)
	return nil
}

// collectFiles возвращает список изображений: сам файл или содержимое папки.
func collectFiles(input string) ([]string, error) {
	info, err := os.Stat(input)
	if err != nil {
		return nil, fmt.Errorf("input not found: %s", input)
	}

	if !info.IsDir() {
		return []string{input}, nil
	}

	entries, err := os.ReadDir(input)
	if err != nil {
		return nil, fmt.Errorf("read folder %s: %w", input, err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".jpg", ".jpeg", ".png", ".gif":
			files = append(files, filepath.Join(input, e.Name()))
		}
	}
	return files, nil
}

// parseColor разбирает именованный цвет или hex #rrggbb.
func parseColor(s string) (color.Color, error) {
	switch strings.ToLower(s) {
	case "white":
		return color.White, nil
	case "black":
		return color.Black, nil
	}

	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 {
		return nil, fmt.Errorf("unknown color '%s' (use white, black or #rrggbb)", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return nil, fmt.Errorf("bad hex color '%s'", s)
	}
	return color.RGBA{
		R: uint8(v >> 16),
		G: uint8(v >> 8),
		B: uint8(v),
		A: 255,
	}, nil
}
