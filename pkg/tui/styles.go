// Package tui — интерактивный терминальный runner генерации Shopify CSV.
//
// Пользователь вводит пути к файлам, пайплайн крутится в фоне, прогресс
// и итог рисуются в терминале. Бизнес-логики здесь нет, только UI.
package tui

import "github.com/charmbracelet/lipgloss"

// ColorScheme определяет цвета элементов интерфейса.
type ColorScheme struct {
	Title  lipgloss.Color // Заголовок
	Prompt lipgloss.Color // Приглашение ввода
	Row    lipgloss.Color // Строки прогресса
	OK     lipgloss.Color // Успешные итоги
	Warn   lipgloss.Color // Fallback/пропуски
	Err    lipgloss.Color // Ошибки
	Dim    lipgloss.Color // Вспомогательный текст
	Border lipgloss.Color // Рамка итоговой сводки
}

// ColorSchemes — предустановленные цветовые схемы.
var ColorSchemes = map[string]ColorScheme{
	"default": {
		Title:  lipgloss.Color("86"),
		Prompt: lipgloss.Color("252"),
		Row:    lipgloss.Color("252"),
		OK:     lipgloss.Color("42"),
		Warn:   lipgloss.Color("214"),
		Err:    lipgloss.Color("196"),
		Dim:    lipgloss.Color("242"),
		Border: lipgloss.Color("240"),
	},
	"light": {
		Title:  lipgloss.Color("31"),
		Prompt: lipgloss.Color("0"),
		Row:    lipgloss.Color("0"),
		OK:     lipgloss.Color("28"),
		Warn:   lipgloss.Color("130"),
		Err:    lipgloss.Color("1"),
		Dim:    lipgloss.Color("8"),
		Border: lipgloss.Color("8"),
	},
}

// GetColorScheme возвращает схему по имени, default если не найдена.
func GetColorScheme(name string) ColorScheme {
	if scheme, ok := ColorSchemes[name]; ok {
		return scheme
	}
	return ColorSchemes["default"]
}

// styles — скомпилированные lipgloss стили для одной схемы.
type styles struct {
	title   lipgloss.Style
	prompt  lipgloss.Style
	row     lipgloss.Style
	ok      lipgloss.Style
	warn    lipgloss.Style
	err     lipgloss.Style
	dim     lipgloss.Style
	summary lipgloss.Style
}

func newStyles(c ColorScheme) styles {
	return styles{
		title:  lipgloss.NewStyle().Foreground(c.Title).Bold(true),
		prompt: lipgloss.NewStyle().Foreground(c.Prompt),
		row:    lipgloss.NewStyle().Foreground(c.Row),
		ok:     lipgloss.NewStyle().Foreground(c.OK),
		warn:   lipgloss.NewStyle().Foreground(c.Warn),
		err:    lipgloss.NewStyle().Foreground(c.Err),
		dim:    lipgloss.NewStyle().Foreground(c.Dim),
		summary: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(c.Border).
			Padding(0, 1),
	}
}
