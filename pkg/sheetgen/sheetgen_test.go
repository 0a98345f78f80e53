package sheetgen

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ilkoid/gemflow/pkg/config"
	"github.com/ilkoid/gemflow/pkg/sheet"
	"github.com/ilkoid/gemflow/pkg/vision"
)

type fakeAnalyzer struct {
	fail bool
	skus []string
}

func (f *fakeAnalyzer) AnalyzeProduct(ctx context.Context, imageData []byte, mimeType string, sku string, price float64) (vision.ProductInfo, error) {
	f.skus = append(f.skus, sku)
	if f.fail {
		return vision.ProductInfo{}, fmt.Errorf("api: model overloaded")
	}
	return vision.ProductInfo{
		Title:       "Gold Necklace " + sku,
		Description: "A fine necklace.",
		Category:    "Necklace",
		Tags:        "gold, necklace",
	}, nil
}

type fakeDownloader struct {
	failURLs map[string]bool
}

func (f *fakeDownloader) Download(ctx context.Context, shareURL string) ([]byte, error) {
	if f.failURLs[shareURL] {
		return nil, fmt.Errorf("drive returned HTML instead of file")
	}
	return []byte("fake-image-bytes"), nil
}

func testConfig(t *testing.T) config.SheetConfig {
	t.Helper()
	return config.SheetConfig{
		Vendor:  "Test Vendor",
		TempDir: filepath.Join(t.TempDir(), "tmp"),
	}
}

func writeInput(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "inventory.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const sampleInventory = `Image URL,SNo,SKU,Buy Price,MRP,Selling Price,Quantity
https://drive.google.com/open?id=aaa,1,NK-001,450,1999,999,5
,2,NK-002,450,1999,999,5
https://drive.google.com/open?id=ccc,3,NK-003,450,1999,999,5
`

func readOutput(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return records
}

func TestRunWritesCards(t *testing.T) {
	input := writeInput(t, sampleInventory)
	output := filepath.Join(t.TempDir(), "shopify.csv")

	analyzer := &fakeAnalyzer{}
	g := New(analyzer, &fakeDownloader{}, testConfig(t), config.ImageProcConfig{})

	results, err := g.Run(context.Background(), input, output)
	require.NoError(t, err)

	assert.Equal(t, 3, results.TotalRows)
	assert.Equal(t, 2, results.Processed)
	assert.Equal(t, 1, results.SkippedRows) // Строка без URL
	assert.Equal(t, 0, results.FailedRows)
	assert.Equal(t, 0, results.Fallbacks)
	assert.Equal(t, []string{"NK-001", "NK-003"}, analyzer.skus)

	records := readOutput(t, output)
	require.Len(t, records, 3) // Заголовок + 2 карточки
	assert.Equal(t, sheet.ShopifyHeaders, records[0])
	assert.Contains(t, records[1][0], "nk-001") // Handle
}

func TestRunFallbackOnAnalysisFailure(t *testing.T) {
	input := writeInput(t, "Image URL,SKU,Selling Price\nhttps://drive.google.com/open?id=aaa,NK-001,999\n")
	output := filepath.Join(t.TempDir(), "shopify.csv")

	g := New(&fakeAnalyzer{fail: true}, &fakeDownloader{}, testConfig(t), config.ImageProcConfig{})

	results, err := g.Run(context.Background(), input, output)
	require.NoError(t, err)

	// Строка записана, но из fallback-карточки
	assert.Equal(t, 1, results.Processed)
	assert.Equal(t, 1, results.Fallbacks)

	records := readOutput(t, output)
	require.Len(t, records, 2)
	assert.Contains(t, records[1][1], "NK-001") // Title из fallback
}

func TestRunDownloadFailure(t *testing.T) {
	input := writeInput(t, "Image URL,SKU\nhttps://drive.google.com/open?id=bad,NK-001\n")
	output := filepath.Join(t.TempDir(), "shopify.csv")

	dl := &fakeDownloader{failURLs: map[string]bool{"https://drive.google.com/open?id=bad": true}}
	g := New(&fakeAnalyzer{}, dl, testConfig(t), config.ImageProcConfig{})

	results, err := g.Run(context.Background(), input, output)
	require.NoError(t, err)

	assert.Equal(t, 0, results.Processed)
	assert.Equal(t, 1, results.FailedRows)
	require.Len(t, results.Errors, 1)
	assert.Contains(t, results.Errors[0], "NK-001")
}

func TestRunCleansTempDir(t *testing.T) {
	input := writeInput(t, "Image URL,SKU\nhttps://drive.google.com/open?id=aaa,NK-001\n")
	output := filepath.Join(t.TempDir(), "shopify.csv")

	cfg := testConfig(t)
	g := New(&fakeAnalyzer{}, &fakeDownloader{}, cfg, config.ImageProcConfig{})

	_, err := g.Run(context.Background(), input, output)
	require.NoError(t, err)

	_, err = os.Stat(cfg.TempDir)
	assert.True(t, os.IsNotExist(err))
}

func TestRunOnRowHook(t *testing.T) {
	input := writeInput(t, sampleInventory)
	output := filepath.Join(t.TempDir(), "shopify.csv")

	g := New(&fakeAnalyzer{}, &fakeDownloader{}, testConfig(t), config.ImageProcConfig{})

	var seen []string
	g.OnRow = func(line int, sku string) { seen = append(seen, sku) }

	_, err := g.Run(context.Background(), input, output)
	require.NoError(t, err)

	// Хук зовется для каждой строки, включая невалидные
	assert.Equal(t, []string{"NK-001", "NK-002", "NK-003"}, seen)
}

func TestRunMissingInput(t *testing.T) {
	g := New(&fakeAnalyzer{}, &fakeDownloader{}, testConfig(t), config.ImageProcConfig{})
	_, err := g.Run(context.Background(), "/no/such.csv", filepath.Join(t.TempDir(), "out.csv"))
	require.Error(t, err)
}
