package ident

import (
	"testing"
)

// Таблица из документации: каждый пример должен дать ровно
// задокументированный идентификатор.
func TestExtractProductID(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		wantID   string
		wantOK   bool
	}{
		{
			name:     "product_ prefix anywhere",
			filename: "product_123_image.jpg",
			wantID:   "123",
			wantOK:   true,
		},
		{
			name:     "leading digits with underscore",
			filename: "456_variant.jpg",
			wantID:   "456",
			wantOK:   true,
		},
		{
			name:     "SKU_ prefix",
			filename: "SKU_789_photo.jpeg",
			wantID:   "789",
			wantOK:   true,
		},
		{
			name:     "ID_ prefix",
			filename: "ID_42.png",
			wantID:   "42",
			wantOK:   true,
		},
		{
			name:     "digits flanked by underscores",
			filename: "img_777_final.jpg",
			wantID:   "777",
			wantOK:   true,
		},
		{
			name:     "digits flanked by hyphens",
			filename: "photo-555-small.webp",
			wantID:   "555",
			wantOK:   true,
		},
		{
			name:     "leading digits with hyphen",
			filename: "456-variant-01.mp4",
			wantID:   "456",
			wantOK:   true,
		},
		{
			name:     "long digit run anywhere",
			filename: "IMG20240815123456.jpg",
			wantID:   "20240815123456",
			wantOK:   true,
		},
		{
			name:     "no identifier",
			filename: "hero-banner.png",
			wantID:   "",
			wantOK:   false,
		},
		{
			name:     "short digit run without separators",
			filename: "img123.jpg",
			wantID:   "",
			wantOK:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := ExtractProductID(tt.filename)
			if ok != tt.wantOK {
				t.Fatalf("ExtractProductID(%q) ok = %v, want %v", tt.filename, ok, tt.wantOK)
			}
			if id != tt.wantID {
				t.Errorf("ExtractProductID(%q) = %q, want %q", tt.filename, id, tt.wantID)
			}
		})
	}
}

// Регистронезависимость литеральных токенов.
func TestExtractProductIDCaseInsensitive(t *testing.T) {
	tests := []struct {
		filename string
		wantID   string
	}{
		{"PRODUCT_123.jpg", "123"},
		{"Product_123.jpg", "123"},
		{"sku_789.jpg", "789"},
		{"Id_42.png", "42"},
	}

	for _, tt := range tests {
		id, ok := ExtractProductID(tt.filename)
		if !ok || id != tt.wantID {
			t.Errorf("ExtractProductID(%q) = %q, %v; want %q, true", tt.filename, id, ok, tt.wantID)
		}
	}
}

// Порядок приоритета: первое сработавшее правило побеждает.
func TestExtractProductIDPriority(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		wantID   string
		wantRule string
	}{
		{
			// product_ важнее ведущих цифр
			name:     "product_ beats leading digits",
			filename: "999_product_123.jpg",
			wantID:   "123",
			wantRule: "product_prefix",
		},
		{
			// ведущие цифры важнее SKU_
			name:     "leading digits beat SKU_",
			filename: "777_SKU_789.jpg",
			wantID:   "777",
			wantRule: "leading_digits_underscore",
		},
		{
			// подчёркивания важнее дефисов
			name:     "underscores beat hyphens",
			filename: "img_11_-22-.jpg",
			wantID:   "11",
			wantRule: "underscore_flanked",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, rule, ok := Match(tt.filename)
			if !ok {
				t.Fatalf("Match(%q) = no match, want %q", tt.filename, tt.wantID)
			}
			if id != tt.wantID {
				t.Errorf("Match(%q) id = %q, want %q", tt.filename, id, tt.wantID)
			}
			if rule != tt.wantRule {
				t.Errorf("Match(%q) rule = %q, want %q", tt.filename, rule, tt.wantRule)
			}
		})
	}
}

// Детерминизм: повторный вызов даёт тот же результат.
func TestExtractProductIDDeterministic(t *testing.T) {
	filenames := []string{"product_123.jpg", "no-id-here.png", "456_x.jpg"}

	for _, f := range filenames {
		id1, ok1 := ExtractProductID(f)
		id2, ok2 := ExtractProductID(f)
		if id1 != id2 || ok1 != ok2 {
			t.Errorf("ExtractProductID(%q) not deterministic: (%q,%v) vs (%q,%v)", f, id1, ok1, id2, ok2)
		}
	}
}

func TestExtractSKU(t *testing.T) {
	tests := []struct {
		filename string
		wantSKU  string
		wantOK   bool
	}{
		{"NK-00001-0825-02.jpg", "NK-00001-0825", true},
		{"RG-00042-0901.png", "RG-00042-0901", true},
		{"NK-00001.jpg", "", false},
		{"plain.jpg", "", false},
		{"/some/dir/NK-00007-0825-01.jpeg", "NK-00007-0825", true},
	}

	for _, tt := range tests {
		sku, ok := ExtractSKU(tt.filename)
		if ok != tt.wantOK || sku != tt.wantSKU {
			t.Errorf("ExtractSKU(%q) = %q, %v; want %q, %v", tt.filename, sku, ok, tt.wantSKU, tt.wantOK)
		}
	}
}
