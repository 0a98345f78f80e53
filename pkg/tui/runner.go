package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/reflow/wordwrap"
)

// Summary — итоги прогона пайплайна для отображения.
type Summary struct {
	TotalRows   int
	Processed   int
	Fallbacks   int
	SkippedRows int
	FailedRows  int
	Errors      []string
}

// RunFunc — сам пайплайн. Runner не знает что внутри: он передает пути,
// получает прогресс через onRow и итог по завершении.
type RunFunc func(ctx context.Context, inputPath, outputPath string, onRow func(line int, sku string)) (Summary, error)

// Config — настройки Runner. Все поля опциональны.
type Config struct {
	Colors        ColorScheme
	Title         string
	DefaultInput  string // Предзаполненный путь входного CSV
	DefaultOutput string // Предзаполненный путь выходного CSV
}

// Состояния интерфейса: ввод путей → работа → итог.
const (
	stateInput = iota
	stateOutput
	stateRunning
	stateDone
)

// maxVisibleRows — сколько последних строк прогресса держим на экране.
const maxVisibleRows = 12

type rowMsg struct {
	line int
	sku  string
}

type doneMsg struct {
	summary Summary
	err     error
}

// Runner — bubbletea модель интерактивного прогона.
type Runner struct {
	cfg Config
	st  styles
	run RunFunc
	ctx context.Context

	input textinput.Model
	spin  spinner.Model

	state      int
	inputPath  string
	outputPath string
	rows       []string
	width      int

	summary Summary
	runErr  error

	// send устанавливается в Run(): события из фоновой горутины
	send func(tea.Msg)
}

// NewRunner создает Runner.
func NewRunner(ctx context.Context, run RunFunc, cfg Config) *Runner {
	if cfg.Title == "" {
		cfg.Title = "Shopify Sheet Generator"
	}
	if cfg.Colors.Prompt == "" {
		cfg.Colors = GetColorScheme("default")
	}

	ti := textinput.New()
	ti.Placeholder = "inventory.csv"
	ti.SetValue(cfg.DefaultInput)
	ti.Focus()
	ti.CharLimit = 500

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return &Runner{
		cfg:   cfg,
		st:    newStyles(cfg.Colors),
		run:   run,
		ctx:   ctx,
		input: ti,
		spin:  sp,
		state: stateInput,
		width: 80,
	}
}

// Run запускает интерфейс (блокирующий вызов).
//
// Возвращает итоги прогона; если пайплайн не запускался (выход до
// ввода путей) — пустой Summary без ошибки.
func (r *Runner) Run() (Summary, error) {
	p := tea.NewProgram(r)
	r.send = p.Send

	if _, err := p.Run(); err != nil {
		return Summary{}, fmt.Errorf("tui error: %w", err)
	}
	return r.summary, r.runErr
}

// Init реализует tea.Model.
func (r *Runner) Init() tea.Cmd {
	return textinput.Blink
}

// Update реализует tea.Model.
func (r *Runner) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		r.width = msg.Width
		return r, nil

	case tea.KeyMsg:
		return r.handleKey(msg)

	case rowMsg:
		r.appendRow(fmt.Sprintf("line %d: %s", msg.line, msg.sku))
		return r, nil

	case doneMsg:
		r.summary = msg.summary
		r.runErr = msg.err
		r.state = stateDone
		return r, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		r.spin, cmd = r.spin.Update(msg)
		return r, cmd
	}

	var cmd tea.Cmd
	r.input, cmd = r.input.Update(msg)
	return r, cmd
}

// handleKey обрабатывает клавиатуру по текущему состоянию.
func (r *Runner) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		return r, tea.Quit

	case tea.KeyEnter:
		switch r.state {
		case stateInput:
			if strings.TrimSpace(r.input.Value()) == "" {
				return r, nil
			}
			r.inputPath = strings.TrimSpace(r.input.Value())
			r.input.SetValue(r.cfg.DefaultOutput)
			r.input.Placeholder = "shopify_import.csv"
			r.state = stateOutput
			return r, nil

		case stateOutput:
			if strings.TrimSpace(r.input.Value()) == "" {
				return r, nil
			}
			r.outputPath = strings.TrimSpace(r.input.Value())
			r.state = stateRunning
			r.input.Blur()
			return r, tea.Batch(r.spin.Tick, r.startPipeline())

		case stateDone:
			return r, tea.Quit
		}
	}

	if r.state == stateInput || r.state == stateOutput {
		var cmd tea.Cmd
		r.input, cmd = r.input.Update(msg)
		return r, cmd
	}
	return r, nil
}

// startPipeline запускает пайплайн в фоне.
//
// События уходят в Update через p.Send — единственный thread-safe
// способ достучаться до модели из горутины.
func (r *Runner) startPipeline() tea.Cmd {
	return func() tea.Msg {
		go func() {
			sum, err := r.run(r.ctx, r.inputPath, r.outputPath, func(line int, sku string) {
				r.send(rowMsg{line: line, sku: sku})
			})
			r.send(doneMsg{summary: sum, err: err})
		}()
		return nil
	}
}

// View реализует tea.Model.
func (r *Runner) View() string {
	var b strings.Builder
	b.WriteString(r.st.title.Render(r.cfg.Title) + "\n\n")

	switch r.state {
	case stateInput:
		b.WriteString(r.st.prompt.Render("Входной CSV (инвентарь):") + "\n")
		b.WriteString(r.input.View() + "\n\n")
		b.WriteString(r.st.dim.Render("Enter — далее, Esc — выход"))

	case stateOutput:
		b.WriteString(r.st.dim.Render("Вход: "+r.inputPath) + "\n\n")
		b.WriteString(r.st.prompt.Render("Выходной CSV (Shopify import):") + "\n")
		b.WriteString(r.input.View() + "\n\n")
		b.WriteString(r.st.dim.Render("Enter — запуск, Esc — выход"))

	case stateRunning:
		b.WriteString(r.spin.View() + r.st.prompt.Render(" Обработка "+r.inputPath) + "\n\n")
		b.WriteString(r.renderRows())

	case stateDone:
		b.WriteString(r.renderRows())
		b.WriteString("\n" + r.renderSummary() + "\n\n")
		b.WriteString(r.st.dim.Render("Enter или Esc — выход"))
	}

	return b.String() + "\n"
}

// appendRow добавляет строку прогресса, храня последние maxVisibleRows.
func (r *Runner) appendRow(row string) {
	r.rows = append(r.rows, row)
	if len(r.rows) > maxVisibleRows {
		r.rows = r.rows[len(r.rows)-maxVisibleRows:]
	}
}

// renderRows рендерит лог прогресса с переносом по ширине терминала.
func (r *Runner) renderRows() string {
	if len(r.rows) == 0 {
		return ""
	}
	content := r.st.row.Render(strings.Join(r.rows, "\n"))
	return wordwrap.String(content, max(r.width-2, 20)) + "\n"
}

// renderSummary рендерит итоговую сводку в рамке.
func (r *Runner) renderSummary() string {
	var lines []string

	if r.runErr != nil {
		lines = append(lines, r.st.err.Render("Ошибка: "+r.runErr.Error()))
	}

	lines = append(lines,
		fmt.Sprintf("Строк всего:   %d", r.summary.TotalRows),
		r.st.ok.Render(fmt.Sprintf("Записано:      %d", r.summary.Processed)),
	)
	if r.summary.Fallbacks > 0 {
		lines = append(lines, r.st.warn.Render(fmt.Sprintf("Без AI:        %d", r.summary.Fallbacks)))
	}
	if r.summary.SkippedRows > 0 {
		lines = append(lines, r.st.warn.Render(fmt.Sprintf("Пропущено:     %d", r.summary.SkippedRows)))
	}
	if r.summary.FailedRows > 0 {
		lines = append(lines, r.st.err.Render(fmt.Sprintf("С ошибками:    %d", r.summary.FailedRows)))
	}
	for _, e := range r.summary.Errors {
		lines = append(lines, r.st.err.Render("  - "+e))
	}

	return r.st.summary.Render(strings.Join(lines, "\n"))
}

var _ tea.Model = (*Runner)(nil)
