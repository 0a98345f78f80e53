// Бизнес-логика методов
package shopify

import (
	"context"
	"encoding/base64"
	"fmt"
	"path/filepath"
	"strings"
)

// Ping проверяет связь с Admin API и валидность access token.
//
// Полезен для диагностики при старте утилиты:
// - проверка доступности магазина
// - проверка валидности токена (401 = unauthorized)
// - определение сетевых проблем
//
// Возвращает данные магазина или ошибку.
func (c *Client) Ping(ctx context.Context) (*Shop, error) {
	var resp shopResponse

	err := c.get(ctx, "ping_shop", "/shop.json", nil, &resp)
	if err != nil {
		return nil, fmt.Errorf("ping failed: %w", err)
	}

	if resp.Shop.Name == "" {
		return nil, fmt.Errorf("ping returned empty shop")
	}

	return &resp.Shop, nil
}

// GetProduct возвращает товар по числовому ID.
//
// Несуществующий товар — ErrNotFound.
func (c *Client) GetProduct(ctx context.Context, productID string) (*Product, error) {
	var resp productResponse

	err := c.get(ctx, "get_product", fmt.Sprintf("/products/%s.json", productID), nil, &resp)
	if err != nil {
		return nil, fmt.Errorf("get product %s: %w", productID, err)
	}

	return &resp.Product, nil
}

// productBySKUQuery — GraphQL запрос поиска товаров по SKU варианта.
//
// REST API не умеет фильтровать по SKU, GraphQL search умеет (sku:...).
// Берем первые 10 товаров и до 50 вариантов — SKU уникален в каталоге,
// этого хватает с запасом.
const productBySKUQuery = `
query getProductBySku($query: String!) {
    products(first: 10, query: $query) {
        edges {
            node {
                id
                title
                variants(first: 50) {
                    edges {
                        node {
                            id
                            sku
                        }
                    }
                }
            }
        }
    }
}
`

// ProductIDBySKU ищет товар по SKU через GraphQL Admin API.
//
// Поиск Shopify нестрогий, поэтому после запроса варианты фильтруются
// по точному совпадению SKU. Возвращает числовой product ID
// (из gid://shopify/Product/123 извлекается 123).
//
// SKU без товара — ErrNotFound.
func (c *Client) ProductIDBySKU(ctx context.Context, sku string) (string, error) {
	req := graphqlRequest{
		Query: productBySKUQuery,
		Variables: map[string]any{
			"query": fmt.Sprintf("sku:%s", sku),
		},
	}

	var resp productsBySKUResponse
	if err := c.post(ctx, "product_by_sku", "/graphql.json", req, &resp); err != nil {
		return "", fmt.Errorf("sku search %q: %w", sku, err)
	}

	if len(resp.Errors) > 0 {
		return "", fmt.Errorf("sku search %q: graphql error: %s", sku, resp.Errors[0].Message)
	}

	for _, productEdge := range resp.Data.Products.Edges {
		for _, variantEdge := range productEdge.Node.Variants.Edges {
			if variantEdge.Node.SKU == sku {
				return stripGID(productEdge.Node.ID), nil
			}
		}
	}

	return "", fmt.Errorf("sku %q: %w", sku, ErrNotFound)
}

// stripGID извлекает числовой ID из GraphQL идентификатора.
//
// "gid://shopify/Product/123" -> "123"
func stripGID(gid string) string {
	if idx := strings.LastIndex(gid, "/"); idx >= 0 {
		return gid[idx+1:]
	}
	return gid
}

// UploadImage загружает изображение к товару.
//
// Параметры:
//   - productID: числовой ID товара
//   - filename: имя файла (для alt text и filename в Shopify)
//   - data: байты изображения
//   - altText: альтернативный текст. Пустой — используется stem имени файла
//
// Содержимое кодируется в base64 и отправляется как attachment.
// Возвращает созданный Image (с src на CDN) или ошибку.
func (c *Client) UploadImage(ctx context.Context, productID string, filename string, data []byte, altText string) (*Image, error) {
	if altText == "" {
		altText = strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	}

	var req imageUploadRequest
	req.Image.Attachment = base64.StdEncoding.EncodeToString(data)
	req.Image.Alt = altText
	req.Image.Filename = filepath.Base(filename)

	var resp imageUploadResponse
	err := c.post(ctx, "upload_image", fmt.Sprintf("/products/%s/images.json", productID), req, &resp)
	if err != nil {
		return nil, fmt.Errorf("upload image to product %s: %w", productID, err)
	}

	return &resp.Image, nil
}
