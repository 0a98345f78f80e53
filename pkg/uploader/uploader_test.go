package uploader

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ilkoid/gemflow/pkg/config"
	"github.com/ilkoid/gemflow/pkg/journal"
	"github.com/ilkoid/gemflow/pkg/shopify"
)

// fakeAPI — ProductAPI без сети.
type fakeAPI struct {
	products map[string]bool   // ID существующих товаров
	skus     map[string]string // SKU → product ID
	uploads  []string          // "productID/filename"
	failNext error             // Ошибка следующего UploadImage
}

func (f *fakeAPI) GetProduct(ctx context.Context, productID string) (*shopify.Product, error) {
	if f.products[productID] {
		return &shopify.Product{Title: "Product " + productID}, nil
	}
	return nil, fmt.Errorf("product %s: %w", productID, shopify.ErrNotFound)
}

func (f *fakeAPI) ProductIDBySKU(ctx context.Context, sku string) (string, error) {
	if id, ok := f.skus[sku]; ok {
		return id, nil
	}
	return "", fmt.Errorf("sku %s: %w", sku, shopify.ErrNotFound)
}

func (f *fakeAPI) UploadImage(ctx context.Context, productID, filename string, data []byte, altText string) (*shopify.Image, error) {
	if f.failNext != nil {
		err := f.failNext
		f.failNext = nil
		return nil, err
	}
	f.uploads = append(f.uploads, productID+"/"+filename)
	return &shopify.Image{ID: 1, Src: "https://cdn.shopify.com/" + filename}, nil
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(0, 0, color.White)
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func writeFile(t *testing.T, dir, name string, data []byte) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o644))
}

func newTest(api *fakeAPI, j *journal.Journal) *Uploader {
	return New(api, config.MediaConfig{}, j)
}

func TestProcessFolderUploads(t *testing.T) {
	dir := t.TempDir()
	img := pngBytes(t)
	writeFile(t, dir, "product_123.png", img)
	writeFile(t, dir, "456_variant.jpg", []byte("definitely not a jpeg")) // битое изображение
	writeFile(t, dir, "notes.txt", []byte("не медиа"))

	api := &fakeAPI{products: map[string]bool{"123": true, "456": true}}
	u := newTest(api, nil)

	results, err := u.ProcessFolder(context.Background(), dir, Options{})
	require.NoError(t, err)

	assert.Equal(t, 2, results.TotalFiles) // txt не считается
	assert.Equal(t, 1, results.ValidMedia)
	assert.Equal(t, 1, results.SuccessfulUploads)
	assert.Equal(t, 1, results.SkippedFiles) // битый jpg
	assert.Equal(t, 0, results.FailedUploads)
	assert.Equal(t, []string{"123/product_123.png"}, api.uploads)
}

func TestProcessFolderDryRun(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "product_123.png", pngBytes(t))

	api := &fakeAPI{products: map[string]bool{"123": true}}
	u := newTest(api, nil)

	results, err := u.ProcessFolder(context.Background(), dir, Options{DryRun: true})
	require.NoError(t, err)

	assert.Equal(t, 1, results.SuccessfulUploads)
	assert.Empty(t, api.uploads) // Настоящих загрузок не было
}

func TestProcessFolderNoIdentifier(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "photo.png", pngBytes(t))

	api := &fakeAPI{}
	u := newTest(api, nil)

	results, err := u.ProcessFolder(context.Background(), dir, Options{})
	require.NoError(t, err)

	assert.Equal(t, 1, results.SkippedFiles)
	assert.Equal(t, 0, results.FailedUploads)
	assert.Empty(t, api.uploads)
}

func TestProcessFolderProductNotFound(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "product_999.png", pngBytes(t))

	api := &fakeAPI{}
	u := newTest(api, nil)

	results, err := u.ProcessFolder(context.Background(), dir, Options{})
	require.NoError(t, err)

	// Товара нет — файл пропускается, но ошибкой это не считается
	assert.Equal(t, 1, results.SkippedFiles)
	assert.Equal(t, 0, results.FailedUploads)
}

func TestSKUFallback(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "NK-00001-0825-02.png", pngBytes(t))

	// Цепочка вытащит "00001", такого товара нет → fallback на SKU
	api := &fakeAPI{skus: map[string]string{"NK-00001-0825": "777"}}
	u := newTest(api, nil)

	results, err := u.ProcessFolder(context.Background(), dir, Options{})
	require.NoError(t, err)

	assert.Equal(t, 1, results.SuccessfulUploads)
	assert.Equal(t, []string{"777/NK-00001-0825-02.png"}, api.uploads)
}

func TestUploadErrorCountsAsFailed(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "product_123.png", pngBytes(t))

	api := &fakeAPI{
		products: map[string]bool{"123": true},
		failNext: fmt.Errorf("api: rate limit"),
	}
	u := newTest(api, nil)

	results, err := u.ProcessFolder(context.Background(), dir, Options{})
	require.NoError(t, err)

	assert.Equal(t, 1, results.FailedUploads)
	require.Len(t, results.Errors, 1)
	assert.Contains(t, results.Errors[0], "product_123.png")
}

func TestVideoUploadFails(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "456-variant-01.mp4", []byte("fake video bytes"))

	api := &fakeAPI{products: map[string]bool{"456": true}}
	u := newTest(api, nil)

	results, err := u.ProcessFolder(context.Background(), dir, Options{})
	require.NoError(t, err)

	assert.Equal(t, 1, results.ValidMedia)
	assert.Equal(t, 1, results.FailedUploads)
	require.Len(t, results.Errors, 1)
	assert.Contains(t, results.Errors[0], "not supported")

	// А в dry run видео проходит как успех
	results, err = u.ProcessFolder(context.Background(), dir, Options{DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, 1, results.SuccessfulUploads)
}

func TestJournalSkipsSecondRun(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "product_123.png", pngBytes(t))

	j, err := journal.Open(filepath.Join(t.TempDir(), "uploads.db"))
	require.NoError(t, err)
	defer j.Close()

	api := &fakeAPI{products: map[string]bool{"123": true}}
	u := newTest(api, j)

	results, err := u.ProcessFolder(context.Background(), dir, Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, results.SuccessfulUploads)

	// Повторный запуск: файл уже в журнале
	results, err = u.ProcessFolder(context.Background(), dir, Options{})
	require.NoError(t, err)
	assert.Equal(t, 0, results.SuccessfulUploads)
	assert.Equal(t, 1, results.SkippedFiles)

	// Force игнорирует журнал
	results, err = u.ProcessFolder(context.Background(), dir, Options{Force: true})
	require.NoError(t, err)
	assert.Equal(t, 1, results.SuccessfulUploads)

	assert.Len(t, api.uploads, 2)
}

func TestProcessFolderMissing(t *testing.T) {
	u := newTest(&fakeAPI{}, nil)
	_, err := u.ProcessFolder(context.Background(), "/no/such/folder", Options{})
	require.Error(t, err)
}
