// Package ident извлекает идентификатор товара из имени файла.
//
// Это чисто синтаксический разбор: никаких обращений к Shopify на этом
// этапе нет. Правила перебираются в фиксированном порядке приоритета,
// побеждает первое совпадение. Один и тот же filename всегда даёт один
// и тот же результат (или одинаковый "no match").
package ident

import (
	"path/filepath"
	"regexp"
	"strings"
)

// Rule — одно правило извлечения. Имя нужно для логов и тестов.
type Rule struct {
	Name string
	re   *regexp.Regexp
}

// Таблица правил в порядке приоритета. Литеральные токены (product, sku, id)
// матчатся без учёта регистра.
//
// Таблица совпадает с примерами в README:
//
//	product_123_image.jpg -> 123
//	456_variant.jpg       -> 456
//	SKU_789_photo.jpeg    -> 789
//	ID_42.png             -> 42
//	img_777_final.jpg     -> 777
//	photo-555-small.webp  -> 555
//	456-variant-01.mp4    -> 456
//	IMG20240815123456.jpg -> 20240815123456
var rules = []Rule{
	{"product_prefix", regexp.MustCompile(`(?i)product_(\d+)`)},
	{"leading_digits_underscore", regexp.MustCompile(`^(\d+)_`)},
	{"sku_prefix", regexp.MustCompile(`(?i)sku_(\d+)`)},
	{"id_prefix", regexp.MustCompile(`(?i)id_(\d+)`)},
	{"underscore_flanked", regexp.MustCompile(`_(\d+)_`)},
	{"hyphen_flanked", regexp.MustCompile(`-(\d+)-`)},
	{"leading_digits", regexp.MustCompile(`^(\d+)`)},
	{"digit_run", regexp.MustCompile(`(\d{6,})`)},
}

// ExtractProductID извлекает десятичный идентификатор товара из имени файла.
//
// Принимает имя файла (путь допустим — директория отбрасывается).
// Возвращает ("", false) если ни одно правило не сработало — тогда
// вызывающий код логирует предупреждение и пропускает файл.
func ExtractProductID(filename string) (string, bool) {
	id, _, ok := Match(filename)
	return id, ok
}

// Match — то же что ExtractProductID, но дополнительно возвращает имя
// сработавшего правила (для логов).
func Match(filename string) (id string, rule string, ok bool) {
	name := filepath.Base(filename)

	for _, r := range rules {
		if m := r.re.FindStringSubmatch(name); m != nil {
			return m[1], r.Name, true
		}
	}

	return "", "", false
}

// ExtractSKU извлекает дефисный SKU из имени файла.
//
// Пример: "NK-00001-0825-02.jpg" -> "NK-00001-0825".
// Stem разбивается по дефисам, первые три части склеиваются обратно.
// Меньше трёх частей — SKU не извлекается.
//
// Используется как fallback когда цепочка правил не дала десятичный ID:
// SKU резолвится в product ID через GraphQL поиск Shopify.
func ExtractSKU(filename string) (string, bool) {
	name := filepath.Base(filename)

	// Отрезаем расширение: NK-00001-0825-02.jpg -> NK-00001-0825-02
	stem := strings.TrimSuffix(name, filepath.Ext(name))

	parts := strings.Split(stem, "-")
	if len(parts) < 3 {
		return "", false
	}

	return strings.Join(parts[:3], "-"), true
}
