package sheet

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadInventory(t *testing.T) {
	input := `Image URL,SNo,SKU,Price Code,Buy Price,GST,MRP,Discount,Selling Price,Quantity,Notes
https://drive.google.com/open?id=abc,1,NK-001,PC1,450,18,1999,50,999.50,5,extra
,2,NK-002,PC1,450,18,1999,50,999,5,
https://drive.google.com/open?id=def,3,,PC1,450,18,1999,50,999,5,
`
	rows, err := ReadInventory(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "https://drive.google.com/open?id=abc", rows[0].ImageURL)
	assert.Equal(t, "NK-001", rows[0].SKU)
	assert.Equal(t, "450", rows[0].BuyPrice)
	assert.Equal(t, 1999.0, rows[0].MRP)
	assert.Equal(t, 999.5, rows[0].SellingPrice)
	assert.Equal(t, 5, rows[0].Quantity)
	assert.Equal(t, 2, rows[0].Line)
	assert.True(t, rows[0].Valid())

	// Строка без URL и строка без SKU невалидны, но файл читается
	assert.False(t, rows[1].Valid())
	assert.False(t, rows[2].Valid())
}

func TestReadInventoryMissingColumns(t *testing.T) {
	_, err := ReadInventory(strings.NewReader("SKU,Quantity\nNK-001,5\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Image URL")

	_, err = ReadInventory(strings.NewReader("Image URL,Quantity\nhttp://x,5\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SKU")
}

func TestMakeHandle(t *testing.T) {
	tests := []struct {
		title string
		sku   string
		want  string
	}{
		{"Beautiful Gold Necklace", "NK-001", "beautiful-gold-necklace-nk-001"},
		{"Elegant Diamond Ring!", "RG-123", "elegant-diamond-ring-rg-123"},
		{"Silver Earrings & Pendant Set", "SET-456", "silver-earrings-pendant-set-set-456"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, MakeHandle(tt.title, tt.sku))
	}
}

func TestBuildRow(t *testing.T) {
	card := ProductCard{
		Title:       "Elegant Gold Necklace",
		Description: "A beautiful necklace.",
		Category:    "Necklace",
		Tags:        "gold, necklace",
		SKU:         "NK-001",
		BuyPrice:    "450",
		MRP:         1999,
		Price:       999.5,
		Quantity:    5,
		Vendor:      "Test Vendor",
	}

	row := BuildRow(card)

	assert.Equal(t, "elegant-gold-necklace-nk-001", row["Handle"])
	assert.Equal(t, "<p>A beautiful necklace.</p>", row["Body (HTML)"])
	assert.Equal(t, "999.5", row["Variant Price"])
	assert.Equal(t, "1999", row["Variant Compare At Price"])
	assert.Equal(t, "5", row["Variant Inventory Qty"])
	assert.Equal(t, "Test Vendor", row["Vendor"])
	assert.Equal(t, "Necklace", row["Type"])
	assert.Equal(t, "active", row["Status"])
	assert.Equal(t, "450", row["Cost per item"])
}

func TestBuildRowNoCompareAtWhenMRPLower(t *testing.T) {
	row := BuildRow(ProductCard{Title: "X", SKU: "S", MRP: 100, Price: 200})
	assert.Equal(t, "", row["Variant Compare At Price"])
}

func TestBuildRowTruncatesSEODescription(t *testing.T) {
	long := strings.Repeat("a", 300)
	row := BuildRow(ProductCard{Title: "X", SKU: "S", Description: long})
	assert.Len(t, row["SEO Description"], 160)
}

func TestWriter(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	require.NoError(t, w.Write(ProductCard{Title: "A", SKU: "S1", Price: 10}))
	require.NoError(t, w.Write(ProductCard{Title: "B", SKU: "S2", Price: 20}))
	require.NoError(t, w.Flush())
	assert.Equal(t, 2, w.Rows())

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3) // заголовок + 2 строки

	assert.Equal(t, ShopifyHeaders, records[0])
	assert.Len(t, records[1], len(ShopifyHeaders))

	// Handle в первой колонке
	assert.Equal(t, "a-s1", records[1][0])
	assert.Equal(t, "b-s2", records[2][0])
}
