// Package shopify provides a reusable SDK for the Shopify Admin API.
//
// Architecture:
//
// This is an **API SDK**, not just a "dumb" HTTP client. It provides:
//   - HTTP client with retry, rate limiting, and error classification
//   - High-level methods over REST (products, images) and GraphQL (SKU lookup)
//   - Workarounds for Admin API quirks (429 Retry-After, gid:// identifiers)
//
// Usage pattern:
//   - pkg/shopify - reusable SDK
//   - pkg/uploader - pipeline поверх SDK
package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ilkoid/gemflow/pkg/config"
	"golang.org/x/time/rate"
)

// ErrNotFound возвращается когда товар не существует.
//
// "Product not found" — терминальная ошибка для элемента: пайплайн логирует
// и пропускает файл, без retry.
var ErrNotFound = errors.New("product not found")

// ErrorType представляет тип ошибки при работе с Shopify API.
type ErrorType int

const (
	ErrUnknown ErrorType = iota
	ErrAuthFailed
	ErrTimeout
	ErrNetwork
	ErrRateLimit
	ErrMissing
)

// String возвращает строковое представление типа ошибки.
func (e ErrorType) String() string {
	switch e {
	case ErrAuthFailed:
		return "authentication_failed"
	case ErrTimeout:
		return "timeout"
	case ErrNetwork:
		return "network_error"
	case ErrRateLimit:
		return "rate_limit"
	case ErrMissing:
		return "not_found"
	default:
		return "unknown"
	}
}

// HumanMessage возвращает человекочитаемое сообщение для типа ошибки.
func (e ErrorType) HumanMessage() string {
	switch e {
	case ErrAuthFailed:
		return "Access token недействителен или отсутствует. Проверьте shopify.access_token в конфигурации."
	case ErrTimeout:
		return "Превышено время ожидания. Сервер Shopify не отвечает или проблемы с сетью."
	case ErrNetwork:
		return "Сервер Shopify недоступен. Проверьте подключение к интернету."
	case ErrRateLimit:
		return "Превышен лимит запросов Admin API. Подождите перед следующей попыткой."
	case ErrMissing:
		return "Товар не найден. Проверьте идентификатор в имени файла."
	default:
		return "Неизвестная ошибка при подключении к Shopify API."
	}
}

// HTTPClient интерфейс для выполнения HTTP запросов.
//
// Позволяет мокировать HTTP клиент в тестах.
// Стандартный *http.Client реализует этот интерфейс.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type Client struct {
	storeURL      string
	accessToken   string
	apiVersion    string
	httpClient    HTTPClient // Интерфейс вместо конкретного типа для testability
	retryAttempts int
	rateLimit     int // Запросов в минуту
	burst         int

	mu       sync.Mutex
	limiters map[string]*rate.Limiter // operation ID → limiter
}

// NewFromConfig создает новый клиент из конфигурации.
//
// Поля с нулевыми значениями используют дефолтные значения через GetDefaults.
func NewFromConfig(cfg config.ShopifyConfig) (*Client, error) {
	cfg = cfg.GetDefaults()

	if cfg.StoreURL == "" {
		return nil, fmt.Errorf("shopify.store_url is required")
	}
	if cfg.AccessToken == "" {
		return nil, fmt.Errorf("shopify.access_token is required")
	}

	timeout, err := time.ParseDuration(cfg.Timeout)
	if err != nil {
		return nil, fmt.Errorf("invalid shopify.timeout format: %w", err)
	}

	return &Client{
		storeURL:      strings.TrimSuffix(cfg.StoreURL, "/"),
		accessToken:   cfg.AccessToken,
		apiVersion:    cfg.APIVersion,
		retryAttempts: cfg.RetryAttempts,
		rateLimit:     cfg.RateLimit,
		burst:         cfg.BurstLimit,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		limiters: make(map[string]*rate.Limiter),
	}, nil
}

// ClassifyError классифицирует ошибку по типу для лучшей диагностики.
//
// Анализирует текст ошибки и возвращает соответствующий тип:
//   - ErrMissing: ErrNotFound и ошибки 404
//   - ErrAuthFailed: ошибки 401/403, unauthorized
//   - ErrTimeout: timeout, deadline exceeded
//   - ErrNetwork: connection refused, no such host
//   - ErrRateLimit: ошибки 429, Too Many Requests
//   - ErrUnknown: все остальные ошибки
func (c *Client) ClassifyError(err error) ErrorType {
	if err == nil {
		return ErrUnknown
	}

	if errors.Is(err, ErrNotFound) {
		return ErrMissing
	}

	errMsg := err.Error()
	errMsgLower := strings.ToLower(errMsg)

	if strings.Contains(errMsg, "401") ||
		strings.Contains(errMsg, "403") ||
		strings.Contains(errMsgLower, "unauthorized") {
		return ErrAuthFailed
	}

	if strings.Contains(errMsgLower, "timeout") ||
		strings.Contains(errMsg, "deadline exceeded") {
		return ErrTimeout
	}

	if strings.Contains(errMsg, "connection refused") ||
		strings.Contains(errMsg, "no such host") {
		return ErrNetwork
	}

	if strings.Contains(errMsg, "429") ||
		strings.Contains(errMsg, "Too Many Requests") {
		return ErrRateLimit
	}

	if strings.Contains(errMsg, "404") {
		return ErrMissing
	}

	return ErrUnknown
}

// restURL строит полный URL REST endpoint'а.
//
// Пример: restURL("/products/123/images.json") →
// https://store.myshopify.com/admin/api/2024-07/products/123/images.json
func (c *Client) restURL(path string) string {
	host := c.storeURL
	if !strings.HasPrefix(host, "http") {
		host = "https://" + host
	}
	return fmt.Sprintf("%s/admin/api/%s%s", host, c.apiVersion, path)
}

// httpRequest описывает параметры HTTP запроса.
type httpRequest struct {
	method string
	url    string
	body   []byte
}

// doRequest выполняет HTTP запрос с retry логикой и rate limiting.
//
// Общий метод для get/post, реализующий retry loop, rate limiting
// и обработку 429 ответов. 404 возвращается как ErrNotFound без retry.
func (c *Client) doRequest(ctx context.Context, opID string, req httpRequest, dest interface{}) error {
	limiter := c.getOrCreateLimiter(opID)

	var lastErr error

	// Retry loop
	for i := 0; i < c.retryAttempts; i++ {
		// 1. Ждем разрешения от лимитера (блокирует горутину, если превысили лимит)
		if err := limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter wait: %w", err)
		}

		var bodyReader io.Reader
		if req.body != nil {
			bodyReader = bytes.NewReader(req.body)
		}

		httpReq, err := http.NewRequestWithContext(ctx, req.method, req.url, bodyReader)
		if err != nil {
			return err
		}

		httpReq.Header.Set("X-Shopify-Access-Token", c.accessToken)
		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(httpReq)
		if err != nil {
			lastErr = err
			continue // Сетевая ошибка, пробуем еще
		}

		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		// Обработка 429 (Too Many Requests)
		if resp.StatusCode == http.StatusTooManyRequests {
			// Shopify отдает Retry-After в секундах
			retryAfter := 1 * time.Second
			if s := resp.Header.Get("Retry-After"); s != "" {
				if sec, err := strconv.ParseFloat(s, 64); err == nil {
					retryAfter = time.Duration(sec * float64(time.Second))
				}
			}

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(retryAfter):
				continue
			}
		}

		// 404 — терминальная ошибка, retry бессмысленен
		if resp.StatusCode == http.StatusNotFound {
			return ErrNotFound
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return fmt.Errorf("shopify api error: status %d, body: %s", resp.StatusCode, string(body))
		}

		if dest != nil {
			if err := json.Unmarshal(body, dest); err != nil {
				return fmt.Errorf("unmarshal error: %w", err)
			}
		}

		return nil // Успех
	}

	return fmt.Errorf("max retries exceeded, last error: %v", lastErr)
}

// get выполняет GET запрос к REST Admin API.
func (c *Client) get(ctx context.Context, opID string, path string, params url.Values, dest interface{}) error {
	u, err := url.Parse(c.restURL(path))
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if params != nil {
		u.RawQuery = params.Encode()
	}

	return c.doRequest(ctx, opID, httpRequest{method: "GET", url: u.String()}, dest)
}

// post выполняет POST запрос к REST Admin API.
func (c *Client) post(ctx context.Context, opID string, path string, body interface{}, dest interface{}) error {
	bodyJSON, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal body: %w", err)
	}

	return c.doRequest(ctx, opID, httpRequest{
		method: "POST",
		url:    c.restURL(path),
		body:   bodyJSON,
	}, dest)
}

// getOrCreateLimiter возвращает существующий limiter для opID или создаёт новый.
//
// Shopify считает лимиты на приложение, но отдельные limiter'ы на операцию
// позволяют дорогим вызовам (upload) не душить дешевые (lookup).
func (c *Client) getOrCreateLimiter(opID string) *rate.Limiter {
	c.mu.Lock()
	defer c.mu.Unlock()

	if limiter, exists := c.limiters[opID]; exists {
		return limiter
	}

	// rateLimit в запросах/минуту → rate.Limit в запросах/секунду
	ratePerSec := float64(c.rateLimit) / 60.0
	limiter := rate.NewLimiter(rate.Limit(ratePerSec), c.burst)
	c.limiters[opID] = limiter

	return limiter
}
