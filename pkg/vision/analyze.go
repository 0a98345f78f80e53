package vision

import (
	"context"
	"fmt"
	"strings"
)

// ProductInfo — структурированный результат анализа изображения товара.
type ProductInfo struct {
	Title       string
	Description string
	Category    string
	Tags        string
}

// analyzePromptTemplate — промпт для извлечения карточки товара.
//
// Модель должна ответить строго в формате TITLE/DESCRIPTION/CATEGORY/TAGS,
// который потом разбирает ParseProductInfo.
const analyzePromptTemplate = `Analyze this jewelry image and provide the following information in a structured format:

1. TITLE: Generate a 4-5 word catchy product title that would appeal to customers
2. DESCRIPTION: Write a 5-6 line SEO-friendly product description that highlights the jewelry's features, materials, and appeal
3. CATEGORY: Identify the jewelry category (e.g., Necklace, Earrings, Ring, Bracelet, Pendant, Chain, etc.)
4. TAGS: Generate 8-10 relevant tags separated by commas (include style, material, occasion, color, etc.)

Please format your response exactly like this:
TITLE: [your title here]
DESCRIPTION: [your description here]
CATEGORY: [category here]
TAGS: [tag1, tag2, tag3, etc.]

The jewelry item has SKU: %s and price: $%.2f`

// AnalyzeProduct анализирует изображение товара и возвращает карточку.
//
// При ошибке API или нераспознаваемом ответе вызывающий код использует
// FallbackProductInfo — элемент не должен падать из-за каприза модели.
func (c *Client) AnalyzeProduct(ctx context.Context, imageData []byte, mimeType string, sku string, price float64) (ProductInfo, error) {
	prompt := fmt.Sprintf(analyzePromptTemplate, sku, price)

	text, err := c.generate(ctx, imageData, mimeType, prompt)
	if err != nil {
		return ProductInfo{}, err
	}

	info, err := ParseProductInfo(text)
	if err != nil {
		return ProductInfo{}, fmt.Errorf("parse vision response: %w", err)
	}

	return info, nil
}

// ParseProductInfo разбирает ответ модели в формате TITLE/DESCRIPTION/CATEGORY/TAGS.
//
// DESCRIPTION может продолжаться на следующих строках до следующего маркера —
// продолжения склеиваются через пробел. Ответ без TITLE считается невалидным.
func ParseProductInfo(text string) (ProductInfo, error) {
	var info ProductInfo
	inDescription := false

	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		line = strings.TrimSpace(line)

		switch {
		case strings.HasPrefix(line, "TITLE:"):
			info.Title = strings.TrimSpace(strings.TrimPrefix(line, "TITLE:"))
			inDescription = false
		case strings.HasPrefix(line, "DESCRIPTION:"):
			info.Description = strings.TrimSpace(strings.TrimPrefix(line, "DESCRIPTION:"))
			inDescription = true
		case strings.HasPrefix(line, "CATEGORY:"):
			info.Category = strings.TrimSpace(strings.TrimPrefix(line, "CATEGORY:"))
			inDescription = false
		case strings.HasPrefix(line, "TAGS:"):
			info.Tags = strings.TrimSpace(strings.TrimPrefix(line, "TAGS:"))
			inDescription = false
		case inDescription && line != "":
			info.Description += " " + line
		}
	}

	// Схлопываем лишние пробелы в описании
	info.Description = strings.Join(strings.Fields(info.Description), " ")

	if info.Title == "" {
		return ProductInfo{}, fmt.Errorf("response has no TITLE marker")
	}

	return info, nil
}

// FallbackProductInfo — карточка-заглушка когда анализ не удался.
func FallbackProductInfo(sku string) ProductInfo {
	return ProductInfo{
		Title:       fmt.Sprintf("Jewelry Item %s", sku),
		Description: fmt.Sprintf("Beautiful jewelry piece with SKU %s. Crafted with attention to detail and perfect for any occasion. High-quality materials and elegant design make this a must-have accessory.", sku),
		Category:    "Jewelry",
		Tags:        "jewelry, elegant, fashion, accessory, handcrafted",
	}
}
