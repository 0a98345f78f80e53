// Package sheet — чтение инвентарного CSV и генерация Shopify import CSV.
package sheet

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// InventoryRow — строка входного инвентарного CSV.
//
// Формат: Image URL, SNo, SKU, Price Code, Buy Price, GST, MRP, Discount,
// Selling Price, Quantity. Лишние колонки игнорируются.
type InventoryRow struct {
	ImageURL     string
	SKU          string
	BuyPrice     string
	MRP          float64
	SellingPrice float64
	Quantity     int
	Line         int // Номер строки в файле (для сообщений об ошибках)
}

// Valid проверяет что строка пригодна для обработки.
//
// Строки без URL или SKU пропускаются с предупреждением, не ошибкой.
func (r InventoryRow) Valid() bool {
	return r.ImageURL != "" && r.SKU != ""
}

// ReadInventory читает инвентарный CSV.
//
// Первая строка — заголовки; колонки ищутся по имени, регистр и лишние
// пробелы не важны. Отсутствие колонок Image URL или SKU — ошибка файла.
// Нечисловые цены/количество в строке не валят весь файл: поле остается
// нулевым, решение принимает вызывающий код.
func ReadInventory(r io.Reader) ([]InventoryRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // Колонок может быть больше чем в спецификации

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[normalizeHeader(name)] = i
	}

	urlCol, ok := idx["image url"]
	if !ok {
		return nil, fmt.Errorf("input csv has no 'Image URL' column")
	}
	skuCol, ok := idx["sku"]
	if !ok {
		return nil, fmt.Errorf("input csv has no 'SKU' column")
	}

	var rows []InventoryRow
	line := 1

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv line %d: %w", line+1, err)
		}
		line++

		row := InventoryRow{
			ImageURL: strings.TrimSpace(field(record, urlCol)),
			SKU:      strings.TrimSpace(field(record, skuCol)),
			Line:     line,
		}

		if col, ok := idx["buy price"]; ok {
			row.BuyPrice = strings.TrimSpace(field(record, col))
		}
		if col, ok := idx["mrp"]; ok {
			row.MRP, _ = strconv.ParseFloat(strings.TrimSpace(field(record, col)), 64)
		}
		if col, ok := idx["selling price"]; ok {
			row.SellingPrice, _ = strconv.ParseFloat(strings.TrimSpace(field(record, col)), 64)
		}
		if col, ok := idx["quantity"]; ok {
			row.Quantity, _ = strconv.Atoi(strings.TrimSpace(field(record, col)))
		}

		rows = append(rows, row)
	}

	return rows, nil
}

func normalizeHeader(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// field возвращает значение колонки или пустую строку если запись короче.
func field(record []string, i int) string {
	if i < len(record) {
		return record[i]
	}
	return ""
}
