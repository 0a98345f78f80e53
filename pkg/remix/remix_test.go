package remix

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ilkoid/gemflow/pkg/prompts"
)

// fakeGen — ImageGenerator без сети, запоминает промпты.
type fakeGen struct {
	prompts []string
	fail    bool
}

func (f *fakeGen) RemixImage(ctx context.Context, imageData []byte, mimeType string, prompt string) ([]byte, error) {
	if f.fail {
		return nil, fmt.Errorf("api: quota exceeded")
	}
	f.prompts = append(f.prompts, prompt)
	return []byte("generated-png-bytes"), nil
}

func setupDirs(t *testing.T, names ...string) (string, string) {
	t.Helper()
	in := t.TempDir()
	for _, n := range names {
		require.NoError(t, os.WriteFile(filepath.Join(in, n), []byte("img"), 0o644))
	}
	return in, filepath.Join(t.TempDir(), "out")
}

func TestRunGeneratesVariants(t *testing.T) {
	in, out := setupDirs(t, "nk-00001-0825.png", "rg-002.png", "notes.txt")

	gen := &fakeGen{}
	results, err := Run(context.Background(), gen, prompts.DefaultLibrary(), Options{
		InputDir:  in,
		OutputDir: out,
		Category:  "necklace",
		Count:     3,
		Seed:      42,
	})
	require.NoError(t, err)

	// rg- и txt не относятся к категории necklace
	assert.Equal(t, 1, results.TotalFiles)
	assert.Equal(t, 3, results.Generated)
	assert.Equal(t, 0, results.Failed)

	// Артикул — стем до последнего дефиса
	for i := 1; i <= 3; i++ {
		path := filepath.Join(out, fmt.Sprintf("nk-00001-0%d.png", i))
		data, err := os.ReadFile(path)
		require.NoError(t, err, path)
		assert.Equal(t, "generated-png-bytes", string(data))
	}

	// Каждый промпт несет артикул
	require.Len(t, gen.prompts, 3)
	for _, p := range gen.prompts {
		assert.Contains(t, p, "nk-00001")
	}
}

func TestRunSeedDeterminism(t *testing.T) {
	in, out := setupDirs(t, "nk-001.png")

	run := func() []string {
		gen := &fakeGen{}
		_, err := Run(context.Background(), gen, prompts.DefaultLibrary(), Options{
			InputDir: in, OutputDir: out, Category: "necklace", Count: 3, Seed: 7,
		})
		require.NoError(t, err)
		return gen.prompts
	}

	assert.Equal(t, run(), run())
}

func TestRunCountBeyondSlots(t *testing.T) {
	in, out := setupDirs(t, "nk-001.png")

	gen := &fakeGen{}
	// Слотов в таблице 3, просим 5 — лишние берутся из последнего слота
	results, err := Run(context.Background(), gen, prompts.DefaultLibrary(), Options{
		InputDir: in, OutputDir: out, Category: "necklace", Count: 5, Seed: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, 5, results.Generated)
}

func TestRunGenerationFailure(t *testing.T) {
	in, out := setupDirs(t, "nk-001.png")

	results, err := Run(context.Background(), &fakeGen{fail: true}, prompts.DefaultLibrary(), Options{
		InputDir: in, OutputDir: out, Category: "necklace", Count: 2, Seed: 1,
	})
	require.NoError(t, err)

	assert.Equal(t, 0, results.Generated)
	assert.Equal(t, 2, results.Failed)
	require.Len(t, results.Errors, 2)
	assert.Contains(t, results.Errors[0], "nk-001.png")
}

func TestRunUnknownCategory(t *testing.T) {
	in, out := setupDirs(t, "nk-001.png")

	_, err := Run(context.Background(), &fakeGen{}, prompts.DefaultLibrary(), Options{
		InputDir: in, OutputDir: out, Category: "bracelet", Count: 1,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bracelet")
}

func TestRunNoMatchingFiles(t *testing.T) {
	in, out := setupDirs(t, "rg-001.png")

	_, err := Run(context.Background(), &fakeGen{}, prompts.DefaultLibrary(), Options{
		InputDir: in, OutputDir: out, Category: "necklace", Count: 1,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nk-")
}

func TestSKUFromName(t *testing.T) {
	assert.Equal(t, "nk-00001", SKUFromName("nk-00001-0825.png"))
	assert.Equal(t, "NK-777", SKUFromName("NK-777-01.PNG"))
	assert.Equal(t, "photo", SKUFromName("photo.png")) // Без дефисов — весь стем
}

func TestOutputName(t *testing.T) {
	assert.Equal(t, "nk-001-01.png", OutputName("nk-001", 1, ".png"))
	assert.Equal(t, "RG-55-010.PNG", OutputName("RG-55", 10, ".PNG"))
}

func TestCategoryPrefixCaseInsensitive(t *testing.T) {
	in, out := setupDirs(t, "NK-777-0825.PNG")

	gen := &fakeGen{}
	results, err := Run(context.Background(), gen, prompts.DefaultLibrary(), Options{
		InputDir: in, OutputDir: out, Category: "necklace", Count: 1, Seed: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, results.Generated)

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, strings.HasPrefix(entries[0].Name(), "NK-777"))
}
