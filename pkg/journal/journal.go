// Package journal — журнал загрузок на sqlite.
//
// Uploader записывает успешно загруженные файлы, чтобы повторный запуск
// по той же папке не заливал дубликаты. Это skip-list, не state machine:
// одна таблица, без миграций.
package journal

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3" // Регистрируем драйвер
)

const schema = `
CREATE TABLE IF NOT EXISTS uploads (
    filename    TEXT PRIMARY KEY,
    product_id  TEXT NOT NULL,
    image_src   TEXT,
    uploaded_at TIMESTAMP NOT NULL
);
`

// Journal — журнал загрузок.
type Journal struct {
	db *sql.DB
}

// Open открывает (или создает) файл журнала.
func Open(path string) (*Journal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open journal %s: %w", path, err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init journal schema: %w", err)
	}

	return &Journal{db: db}, nil
}

// Close закрывает журнал.
func (j *Journal) Close() error {
	return j.db.Close()
}

// IsUploaded проверяет был ли файл уже загружен.
func (j *Journal) IsUploaded(filename string) (bool, error) {
	var one int
	err := j.db.QueryRow("SELECT 1 FROM uploads WHERE filename = ?", filename).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("journal query: %w", err)
	}
	return true, nil
}

// MarkUploaded фиксирует успешную загрузку.
//
// Повторная отметка того же файла перезаписывает запись (upsert) —
// актуальным считается последний результат.
func (j *Journal) MarkUploaded(filename, productID, imageSrc string) error {
	_, err := j.db.Exec(
		`INSERT INTO uploads (filename, product_id, image_src, uploaded_at)
         VALUES (?, ?, ?, ?)
         ON CONFLICT(filename) DO UPDATE SET
             product_id = excluded.product_id,
             image_src = excluded.image_src,
             uploaded_at = excluded.uploaded_at`,
		filename, productID, imageSrc, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("journal insert: %w", err)
	}
	return nil
}

// Forget удаляет запись о файле (для -force перезаливки).
func (j *Journal) Forget(filename string) error {
	_, err := j.db.Exec("DELETE FROM uploads WHERE filename = ?", filename)
	if err != nil {
		return fmt.Errorf("journal delete: %w", err)
	}
	return nil
}

// Count возвращает количество записей в журнале.
func (j *Journal) Count() (int, error) {
	var n int
	if err := j.db.QueryRow("SELECT COUNT(*) FROM uploads").Scan(&n); err != nil {
		return 0, fmt.Errorf("journal count: %w", err)
	}
	return n, nil
}
