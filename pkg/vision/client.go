// Package vision реализует клиент для OpenAI-совместимых vision/image API.
//
// Два сценария:
//   - AnalyzeProduct: изображение + структурированный промпт → карточка товара
//   - RemixImage: изображение + промпт → новое изображение (images/edits)
package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/ilkoid/gemflow/pkg/config"
	"github.com/ilkoid/gemflow/pkg/utils"
	openai "github.com/sashabaranov/go-openai"
)

// Client — обертка над OpenAI-совместимым API для работы с изображениями.
type Client struct {
	api         *openai.Client
	model       string
	maxTokens   int
	temperature float64
	imageSize   string
}

// NewClient создает клиент на основе конфигурации модели.
//
// Принимает ModelDef напрямую для упрощения создания клиентов.
// Поддержка custom BaseURL для non-OpenAI провайдеров (Zai, Gemini gateway и т.д.).
func NewClient(modelDef config.ModelDef) *Client {
	cfg := openai.DefaultConfig(modelDef.APIKey)
	if modelDef.BaseURL != "" {
		cfg.BaseURL = modelDef.BaseURL
	}

	imageSize := modelDef.ImageSize
	if imageSize == "" {
		imageSize = "1024x1024"
	}

	return &Client{
		api:         openai.NewClientWithConfig(cfg),
		model:       modelDef.ModelName,
		maxTokens:   modelDef.MaxTokens,
		temperature: modelDef.Temperature,
		imageSize:   imageSize,
	}
}

// generate выполняет мультимодальный chat completion запрос.
//
// Изображение уходит как data URL в ImageURL части сообщения.
func (c *Client) generate(ctx context.Context, imageData []byte, mimeType string, prompt string) (string, error) {
	startTime := time.Now()

	utils.Debug("Vision request started",
		"model", c.model,
		"image_bytes", len(imageData),
		"prompt_len", len(prompt))

	dataURL := fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(imageData))

	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type:     openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{URL: dataURL},
					},
					{
						Type: openai.ChatMessagePartTypeText,
						Text: prompt,
					},
				},
			},
		},
	}
	if c.maxTokens > 0 {
		req.MaxTokens = c.maxTokens
	}
	if c.temperature > 0 {
		req.Temperature = float32(c.temperature)
	}

	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		utils.Error("Vision API request failed",
			"error", err,
			"model", c.model,
			"duration_ms", time.Since(startTime).Milliseconds())
		return "", fmt.Errorf("vision api error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("vision api returned no choices")
	}

	utils.Debug("Vision request completed",
		"model", c.model,
		"duration_ms", time.Since(startTime).Milliseconds())

	return resp.Choices[0].Message.Content, nil
}

// RemixImage генерирует новое изображение на основе исходного и промпта.
//
// Использует endpoint images/edits с ответом в base64.
// Возвращает байты сгенерированного изображения (PNG).
func (c *Client) RemixImage(ctx context.Context, imageData []byte, mimeType string, prompt string) ([]byte, error) {
	startTime := time.Now()

	req := openai.ImageEditRequest{
		Image:          openai.WrapReader(bytes.NewReader(imageData), "input.png", mimeType),
		Prompt:         prompt,
		Model:          c.model,
		N:              1,
		Size:           c.imageSize,
		ResponseFormat: openai.CreateImageResponseFormatB64JSON,
	}

	resp, err := c.api.CreateEditImage(ctx, req)
	if err != nil {
		utils.Error("Image edit request failed",
			"error", err,
			"model", c.model,
			"duration_ms", time.Since(startTime).Milliseconds())
		return nil, fmt.Errorf("image edit error: %w", err)
	}

	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("image edit returned no data")
	}

	decoded, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return nil, fmt.Errorf("decode image response: %w", err)
	}

	utils.Debug("Image edit completed",
		"model", c.model,
		"bytes", len(decoded),
		"duration_ms", time.Since(startTime).Milliseconds())

	return decoded, nil
}
