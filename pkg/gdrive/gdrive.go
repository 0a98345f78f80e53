// Package gdrive скачивает публичные файлы Google Drive по share-ссылкам.
//
// Инвентарные CSV содержат ссылки трех форматов:
//   - https://drive.google.com/open?id=<ID>
//   - https://drive.google.com/file/d/<ID>/view
//   - https://drive.google.com/uc?id=<ID>
//
// Все три приводятся к прямой download-ссылке uc?id=<ID>.
package gdrive

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ExtractFileID извлекает ID файла из Google Drive URL.
//
// Возвращает ("", false) для не-Drive ссылок и нераспознанных форматов.
func ExtractFileID(rawURL string) (string, bool) {
	if !strings.Contains(rawURL, "drive.google.com") {
		return "", false
	}

	// Формат /open?id=<ID>&...
	if idx := strings.Index(rawURL, "/open?id="); idx >= 0 {
		id := rawURL[idx+len("/open?id="):]
		if amp := strings.Index(id, "&"); amp >= 0 {
			id = id[:amp]
		}
		if id != "" {
			return id, true
		}
		return "", false
	}

	// Формат /file/d/<ID>/view
	if idx := strings.Index(rawURL, "/file/d/"); idx >= 0 {
		id := rawURL[idx+len("/file/d/"):]
		if slash := strings.Index(id, "/"); slash >= 0 {
			id = id[:slash]
		}
		if id != "" {
			return id, true
		}
		return "", false
	}

	// Общий случай: параметр id= в query
	if parsed, err := url.Parse(rawURL); err == nil {
		if id := parsed.Query().Get("id"); id != "" {
			return id, true
		}
	}

	return "", false
}

// DownloadURL строит прямую download-ссылку по ID файла.
func DownloadURL(fileID string) string {
	return "https://drive.google.com/uc?id=" + fileID
}

// Downloader скачивает файлы с retry на сетевые ошибки.
type Downloader struct {
	httpClient    *http.Client
	retryAttempts int
}

// NewDownloader создает Downloader.
//
// retryAttempts <= 0 трактуется как 3.
func NewDownloader(timeout time.Duration, retryAttempts int) *Downloader {
	if retryAttempts <= 0 {
		retryAttempts = 3
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Downloader{
		httpClient:    &http.Client{Timeout: timeout},
		retryAttempts: retryAttempts,
	}
}

// Download скачивает файл по share-ссылке и возвращает его содержимое.
//
// Нераспознанная ссылка — ошибка без retry. Пустой ответ считается
// ошибкой: Drive отдает HTML-заглушку вместо 404 для приватных файлов.
func (d *Downloader) Download(ctx context.Context, shareURL string) ([]byte, error) {
	fileID, ok := ExtractFileID(shareURL)
	if !ok {
		return nil, fmt.Errorf("could not extract file ID from URL: %s", shareURL)
	}

	var lastErr error

	for i := 0; i < d.retryAttempts; i++ {
		req, err := http.NewRequestWithContext(ctx, "GET", DownloadURL(fileID), nil)
		if err != nil {
			return nil, err
		}

		resp, err := d.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue // Сетевая ошибка, пробуем еще
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("drive download failed: status %d for file %s", resp.StatusCode, fileID)
		}

		if len(body) == 0 {
			return nil, fmt.Errorf("drive returned empty file for %s", fileID)
		}

		// Приватный или удаленный файл: вместо байтов приходит HTML
		if strings.HasPrefix(strings.TrimSpace(string(body[:min(len(body), 64)])), "<!DOCTYPE html") {
			return nil, fmt.Errorf("drive returned HTML instead of file %s (file not public?)", fileID)
		}

		return body, nil
	}

	return nil, fmt.Errorf("max retries exceeded, last error: %v", lastErr)
}
