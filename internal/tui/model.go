// Package tui is an interactive terminal view of the dashboard.
package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/leapstack-labs/pipedash/internal/dashboard"
)

// loadedMsg reports the end of a load cycle.
type loadedMsg struct {
	err error
	at  time.Time
}

// Model is the bubbletea model. All cycles write into the same page, so a
// failed cycle leaves the values of earlier writes on screen.
type Model struct {
	ctx      context.Context
	loader   *dashboard.Loader
	page     *dashboard.Page
	renderer *dashboard.TextRenderer
	spinner  spinner.Model
	footer   lipgloss.Style
	now      func() time.Time

	loading  bool
	cycles   int
	failed   bool
	loadedAt time.Time
}

// New builds a model that loads through fetcher. Rendering styles target w.
func New(ctx context.Context, fetcher dashboard.Fetcher, logger *slog.Logger, w io.Writer, color bool) Model {
	page := dashboard.NewDashboardPage()
	s := spinner.New()
	s.Spinner = spinner.Dot
	return Model{
		ctx:      ctx,
		loader:   dashboard.NewLoader(fetcher, page, logger),
		page:     page,
		renderer: dashboard.NewTextRenderer(w, color),
		spinner:  s,
		footer:   lipgloss.NewStyle().Faint(true),
		now:      time.Now,
		loading:  true,
	}
}

// Init starts the first load cycle.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.load())
}

func (m Model) load() tea.Cmd {
	return func() tea.Msg {
		err := m.loader.Load(m.ctx)
		return loadedMsg{err: err, at: m.now()}
	}
}

// Update handles key presses, spinner ticks and finished cycles.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "r":
			if m.loading {
				return m, nil
			}
			m.loading = true
			return m, tea.Batch(m.spinner.Tick, m.load())
		}
		return m, nil

	case loadedMsg:
		m.loading = false
		m.cycles++
		m.failed = msg.err != nil
		m.loadedAt = msg.at
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View renders the page with a status footer.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.renderer.Render(m.page))
	b.WriteString("\n")

	var status string
	switch {
	case m.loading:
		status = m.spinner.View() + " loading…"
	case m.failed:
		status = fmt.Sprintf("last load failed at %s", m.loadedAt.Format(time.TimeOnly))
	default:
		status = fmt.Sprintf("loaded at %s", m.loadedAt.Format(time.TimeOnly))
	}
	b.WriteString(m.footer.Render(status + "  ·  r reload  ·  q quit"))
	b.WriteString("\n")
	return b.String()
}

// Page returns the page the model renders.
func (m Model) Page() *dashboard.Page {
	return m.page
}

// Run starts the interactive program and blocks until the user quits or ctx
// is cancelled.
func Run(ctx context.Context, fetcher dashboard.Fetcher, logger *slog.Logger, in io.Reader, out io.Writer, color bool) error {
	m := New(ctx, fetcher, logger, out, color)
	p := tea.NewProgram(m,
		tea.WithContext(ctx),
		tea.WithInput(in),
		tea.WithOutput(out),
		tea.WithAltScreen(),
	)
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}
