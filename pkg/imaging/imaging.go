// Package imaging — обработка изображений товаров.
//
// Валидация, приведение к квадрату 1:1, ресайз перед отправкой в vision.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	_ "image/gif" // Регистрируем декодеры поддерживаемых форматов

	"github.com/nfnt/resize"
)

// SquareMethod — способ приведения изображения к 1:1.
type SquareMethod string

const (
	// MethodPad добавляет поля фоновым цветом (сохраняет содержимое).
	MethodPad SquareMethod = "pad"
	// MethodCrop вырезает квадрат из центра (может потерять края).
	MethodCrop SquareMethod = "crop"
	// MethodStretch растягивает до квадрата (искажает пропорции).
	MethodStretch SquareMethod = "stretch"
)

// ParseSquareMethod валидирует строку метода из флага CLI.
func ParseSquareMethod(s string) (SquareMethod, error) {
	switch SquareMethod(strings.ToLower(s)) {
	case MethodPad:
		return MethodPad, nil
	case MethodCrop:
		return MethodCrop, nil
	case MethodStretch:
		return MethodStretch, nil
	default:
		return "", fmt.Errorf("invalid method '%s', must be 'pad', 'crop' or 'stretch'", s)
	}
}

// mimeByExt — fallback для расширений которых нет в системной mime базе.
var mimeByExt = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".bmp":  "image/bmp",
	".tiff": "image/tiff",
	".webp": "image/webp",
	".mp4":  "video/mp4",
}

// DetectMIME определяет MIME тип по расширению файла.
func DetectMIME(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if mt, ok := mimeByExt[ext]; ok {
		return mt, nil
	}
	return "", fmt.Errorf("could not determine MIME type for %s", path)
}

// ValidateFile проверяет что файл — декодируемое изображение.
//
// Аналог PIL verify: файл читается и декодируется целиком.
// Форматы вне stdlib декодеров (bmp, tiff, webp) проверяются только
// на непустое содержимое.
func ValidateFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read image %s: %w", path, err)
	}
	if len(data) == 0 {
		return fmt.Errorf("image file is empty: %s", path)
	}

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".gif":
		if _, _, err := image.Decode(bytes.NewReader(data)); err != nil {
			return fmt.Errorf("invalid image file %s: %w", path, err)
		}
	}

	return nil
}

// LoadImage читает и декодирует изображение с диска.
func LoadImage(path string) (image.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read image %s: %w", path, err)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image %s: %w", path, err)
	}

	return img, nil
}

// ToSquare приводит изображение к пропорции 1:1.
//
// Параметры:
//   - img: исходное изображение
//   - method: pad / crop / stretch
//   - bg: цвет фона для pad (обычно белый)
//
// Уже квадратное изображение возвращается как есть.
func ToSquare(img image.Image, method SquareMethod, bg color.Color) (image.Image, error) {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	if width == height {
		return img, nil
	}

	switch method {
	case MethodPad:
		// Квадрат по большей стороне, исходник по центру
		side := max(width, height)
		square := image.NewRGBA(image.Rect(0, 0, side, side))
		draw.Draw(square, square.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)

		xOffset := (side - width) / 2
		yOffset := (side - height) / 2
		target := image.Rect(xOffset, yOffset, xOffset+width, yOffset+height)
		draw.Draw(square, target, img, bounds.Min, draw.Over)

		return square, nil

	case MethodCrop:
		// Квадрат по меньшей стороне из центра
		side := min(width, height)
		left := (width - side) / 2
		top := (height - side) / 2

		square := image.NewRGBA(image.Rect(0, 0, side, side))
		src := image.Pt(bounds.Min.X+left, bounds.Min.Y+top)
		draw.Draw(square, square.Bounds(), img, src, draw.Src)

		return square, nil

	case MethodStretch:
		// Большая сторона как целевая, чтобы не терять качество
		side := uint(max(width, height))
		return resize.Resize(side, side, img, resize.Lanczos3), nil

	default:
		return nil, fmt.Errorf("invalid method '%s', must be 'pad', 'crop' or 'stretch'", method)
	}
}

// ResizeImage ресайзит изображение до указанной ширины, сохраняя пропорции.
//
// Параметры:
//   - data: байты исходного изображения (JPEG, PNG)
//   - maxWidth: целевая ширина в пикселях. Если 0 или меньше исходной ширины — ресайз не применяется.
//   - quality: качество JPEG при кодировании (1-100). Рекомендуется 85.
//
// Возвращает байты JPEG изображения (для vision и base64).
func ResizeImage(data []byte, maxWidth int, quality int) ([]byte, error) {
	// 1. Декодируем изображение
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	originalBounds := img.Bounds()
	originalWidth := originalBounds.Dx()

	// 2. Проверяем нужен ли ресайз
	if maxWidth <= 0 || originalWidth <= maxWidth {
		// Ресайз не нужен, но конвертируем в JPEG для консистентности
		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, fmt.Errorf("encode to jpeg: %w", err)
		}
		return buf.Bytes(), nil
	}

	// 3. Вычисляем новую высоту сохраняя aspect ratio
	aspectRatio := float64(originalBounds.Dy()) / float64(originalWidth)
	newHeight := uint(float64(maxWidth) * aspectRatio)

	// 4. Ресайзим используя Lanczos3 (качественный алгоритм)
	resized := resize.Resize(uint(maxWidth), newHeight, img, resize.Lanczos3)

	// 5. Кодируем в JPEG
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("encode resized image: %w", err)
	}

	return buf.Bytes(), nil
}

// SavePNG пишет изображение на диск как PNG.
func SavePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("encode png %s: %w", path, err)
	}
	return nil
}

// SaveJPEG пишет изображение на диск как JPEG с указанным качеством.
func SaveJPEG(path string, img image.Image, quality int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	if err := jpeg.Encode(f, img, &jpeg.Options{Quality: quality}); err != nil {
		return fmt.Errorf("encode jpeg %s: %w", path, err)
	}
	return nil
}
