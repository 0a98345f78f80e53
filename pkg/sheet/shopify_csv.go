package sheet

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

// ShopifyHeaders — полный набор колонок Shopify product import CSV.
//
// Порядок фиксирован, Shopify чувствителен к именам колонок.
var ShopifyHeaders = []string{
	"Handle", "Title", "Body (HTML)", "Vendor", "Product Category", "Type",
	"Tags", "Published", "Option1 Name", "Option1 Value", "Option2 Name",
	"Option2 Value", "Option3 Name", "Option3 Value", "Variant SKU",
	"Variant Grams", "Variant Inventory Tracker", "Variant Inventory Qty",
	"Variant Inventory Policy", "Variant Fulfillment Service",
	"Variant Price", "Variant Compare At Price", "Variant Requires Shipping",
	"Variant Taxable", "Variant Barcode", "Image Src", "Image Position",
	"Image Alt Text", "Gift Card", "SEO Title", "SEO Description",
	"Google Shopping / Google Product Category", "Google Shopping / Gender",
	"Google Shopping / Age Group", "Google Shopping / MPN",
	"Google Shopping / AdWords Grouping", "Google Shopping / AdWords Labels",
	"Google Shopping / Condition", "Google Shopping / Custom Product",
	"Google Shopping / Custom Label 0", "Google Shopping / Custom Label 1",
	"Google Shopping / Custom Label 2", "Google Shopping / Custom Label 3",
	"Google Shopping / Custom Label 4", "Variant Image", "Variant Weight Unit",
	"Variant Tax Code", "Cost per item", "Status",
}

// ProductCard — данные для одной строки выходного CSV.
//
// Title/Description/Category/Tags приходят из vision-анализа (или fallback),
// остальное — из инвентарной строки.
type ProductCard struct {
	Title       string
	Description string
	Category    string
	Tags        string
	SKU         string
	BuyPrice    string
	MRP         float64
	Price       float64
	Quantity    int
	Vendor      string
}

var (
	nonHandleChars = regexp.MustCompile(`[^a-z0-9\s-]`)
	spaces         = regexp.MustCompile(`\s+`)
	dashes         = regexp.MustCompile(`-+`)
)

// MakeHandle строит Shopify handle из названия и SKU.
//
// "Beautiful Gold Necklace" + "NK-001" -> "beautiful-gold-necklace-nk-001"
func MakeHandle(title, sku string) string {
	handle := strings.ToLower(title + " " + sku)
	handle = nonHandleChars.ReplaceAllString(handle, "")
	handle = spaces.ReplaceAllString(handle, "-")
	handle = dashes.ReplaceAllString(handle, "-")
	return strings.Trim(handle, "-")
}

// BuildRow собирает map колонка→значение для одной карточки.
func BuildRow(card ProductCard) map[string]string {
	compareAt := ""
	if card.MRP > card.Price {
		compareAt = formatPrice(card.MRP)
	}

	seoDescription := card.Description
	if len(seoDescription) > 160 {
		seoDescription = seoDescription[:160] // Лимит SEO description
	}

	return map[string]string{
		"Handle":                      MakeHandle(card.Title, card.SKU),
		"Title":                       card.Title,
		"Body (HTML)":                 fmt.Sprintf("<p>%s</p>", card.Description),
		"Vendor":                      card.Vendor,
		"Product Category":            card.Category,
		"Type":                        card.Category,
		"Tags":                        card.Tags,
		"Published":                   "TRUE",
		"Option1 Name":                "Title",
		"Option1 Value":               "Default Title",
		"Variant SKU":                 card.SKU,
		"Variant Inventory Tracker":   "shopify",
		"Variant Inventory Qty":       strconv.Itoa(card.Quantity),
		"Variant Inventory Policy":    "deny",
		"Variant Fulfillment Service": "manual",
		"Variant Price":               formatPrice(card.Price),
		"Variant Compare At Price":    compareAt,
		"Variant Requires Shipping":   "TRUE",
		"Variant Taxable":             "TRUE",
		"Image Position":              "1",
		"Image Alt Text":              card.Title,
		"Gift Card":                   "FALSE",
		"SEO Title":                   card.Title,
		"SEO Description":             seoDescription,
		"Google Shopping / Google Product Category": "Apparel & Accessories > Jewelry",
		"Google Shopping / Gender":                  "Unisex",
		"Google Shopping / Age Group":               "Adult",
		"Google Shopping / MPN":                     card.SKU,
		"Google Shopping / AdWords Grouping":        card.Category,
		"Google Shopping / AdWords Labels":          card.Tags,
		"Google Shopping / Condition":               "New",
		"Google Shopping / Custom Product":          "FALSE",
		"Variant Weight Unit":                       "g",
		"Cost per item":                             card.BuyPrice,
		"Status":                                    "active",
	}
}

// formatPrice печатает цену без хвостовых нулей ("12.5", "120").
func formatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Writer пишет Shopify import CSV построчно.
type Writer struct {
	w           *csv.Writer
	wroteHeader bool
	rows        int
}

// NewWriter создает Writer поверх io.Writer.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: csv.NewWriter(w)}
}

// Write пишет одну карточку. Заголовок пишется при первом вызове.
func (sw *Writer) Write(card ProductCard) error {
	if !sw.wroteHeader {
		if err := sw.w.Write(ShopifyHeaders); err != nil {
			return fmt.Errorf("write csv header: %w", err)
		}
		sw.wroteHeader = true
	}

	row := BuildRow(card)
	record := make([]string, len(ShopifyHeaders))
	for i, h := range ShopifyHeaders {
		record[i] = row[h] // Отсутствующие колонки — пустые
	}

	if err := sw.w.Write(record); err != nil {
		return fmt.Errorf("write csv row: %w", err)
	}
	sw.rows++
	return nil
}

// Rows возвращает количество записанных строк (без заголовка).
func (sw *Writer) Rows() int {
	return sw.rows
}

// Flush сбрасывает буфер csv.Writer.
func (sw *Writer) Flush() error {
	sw.w.Flush()
	return sw.w.Error()
}
