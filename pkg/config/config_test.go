package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadExpandsEnv(t *testing.T) {
	t.Setenv("TEST_SHOPIFY_TOKEN", "shpat_secret")

	path := writeConfig(t, `
shopify:
  store_url: "my-store.myshopify.com"
  access_token: "${TEST_SHOPIFY_TOKEN}"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "my-store.myshopify.com", cfg.Shopify.StoreURL)
	assert.Equal(t, "shpat_secret", cfg.Shopify.AccessToken)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/no/such/config.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestLoadBadModelAlias(t *testing.T) {
	path := writeConfig(t, `
models:
  default_vision: "missing"
  definitions:
    glm:
      model_name: "glm-4.6"
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing")
}

func TestShopifyDefaults(t *testing.T) {
	cfg := ShopifyConfig{StoreURL: "s.myshopify.com", AccessToken: "t"}
	d := cfg.GetDefaults()

	assert.Equal(t, "2024-07", d.APIVersion)
	assert.Equal(t, 120, d.RateLimit)
	assert.Equal(t, 4, d.BurstLimit)
	assert.Equal(t, 3, d.RetryAttempts)
	assert.Equal(t, "30s", d.Timeout)

	// Заполненные значения не перетираются
	custom := ShopifyConfig{APIVersion: "2025-01", RateLimit: 10}
	assert.Equal(t, "2025-01", custom.GetDefaults().APIVersion)
	assert.Equal(t, 10, custom.GetDefaults().RateLimit)
}

func TestMediaConfigExtensions(t *testing.T) {
	var mc MediaConfig
	m := mc.GetDefaults()

	assert.True(t, m.IsImage(".jpg"))
	assert.True(t, m.IsImage(".WEBP"))
	assert.True(t, m.IsVideo(".mp4"))
	assert.False(t, m.IsImage(".mp4"))
	assert.False(t, m.IsImage(".txt"))
}

func TestValidateSections(t *testing.T) {
	var cfg AppConfig

	require.Error(t, cfg.ValidateShopify())
	require.Error(t, cfg.ValidateS3())

	cfg.Shopify = ShopifyConfig{StoreURL: "s.myshopify.com", AccessToken: "t"}
	cfg.S3 = S3Config{Endpoint: "s3.local", Bucket: "media"}

	assert.NoError(t, cfg.ValidateShopify())
	assert.NoError(t, cfg.ValidateS3())
}

func TestGetModelByAlias(t *testing.T) {
	cfg := AppConfig{
		Models: ModelsConfig{
			DefaultVision: "glm",
			Definitions: map[string]ModelDef{
				"glm":    {ModelName: "glm-4.6"},
				"banana": {ModelName: "image-edit-1"},
			},
		},
	}

	m, ok := cfg.GetVisionModel("")
	require.True(t, ok)
	assert.Equal(t, "glm-4.6", m.ModelName)

	m, ok = cfg.GetVisionModel("banana")
	require.True(t, ok)
	assert.Equal(t, "image-edit-1", m.ModelName)

	_, ok = cfg.GetImageModel("")
	assert.False(t, ok) // default_image не задан
}

func TestLoadStrictResolvesPromptsFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("app:\n  prompts_file: prompts.yaml\n"), 0o644))

	cfg, loadedPath, err := LoadStrict(cfgPath)
	require.NoError(t, err)

	assert.Equal(t, cfgPath, loadedPath)
	// Относительный путь резолвится от директории конфига
	assert.Equal(t, filepath.Join(dir, "prompts.yaml"), cfg.App.PromptsFile)
}
