package dashboard

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/muesli/termenv"
)

// Format selects how a page is written to a terminal or file.
type Format string

// Supported output formats.
const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
)

// ParseFormat maps a user-supplied output name to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto", "text":
		return FormatText, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unknown output format %q (want text|markdown|json)", s)
}

// slotLabels are the human labels shown next to each slot.
var slotLabels = map[string]string{
	SlotPipelineStatus: "Pipeline status",
	SlotLastRunUTC:     "Last run (UTC)",
	SlotRowsIngested:   "Rows ingested",
	SlotModelVersion:   "Model version",
	SlotMetricName:     "Metric",
	SlotMetricValue:    "Metric value",
}

// TextRenderer writes a dashboard page for humans.
type TextRenderer struct {
	r      *lipgloss.Renderer
	label  lipgloss.Style
	ok     lipgloss.Style
	failed lipgloss.Style
	title  lipgloss.Style
}

// NewTextRenderer creates a renderer for w. With color false all styling is
// stripped regardless of what the terminal supports.
func NewTextRenderer(w io.Writer, color bool) *TextRenderer {
	r := lipgloss.NewRenderer(w)
	if !color {
		r.SetColorProfile(termenv.Ascii)
	}
	return &TextRenderer{
		r:      r,
		label:  r.NewStyle().Faint(true).Width(18),
		ok:     r.NewStyle().Foreground(lipgloss.Color("2")).Bold(true),
		failed: r.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		title:  r.NewStyle().Bold(true).Underline(true),
	}
}

// Render returns the page as styled text.
func (tr *TextRenderer) Render(p *Page) string {
	var b strings.Builder
	b.WriteString(tr.title.Render("Pipeline dashboard"))
	b.WriteString("\n\n")

	for _, slot := range Slots {
		v, ok := p.Text(slot)
		if !ok {
			continue
		}
		b.WriteString(tr.label.Render(slotLabels[slot]))
		b.WriteString(tr.styleValue(slot, v))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	rows := p.Rows(TablePredictions)
	if len(rows) == 0 {
		b.WriteString("(0 predictions)\n")
		return b.String()
	}

	b.WriteString(predictionTable(rows, table.StyleLight).Render())
	b.WriteString("\n")
	return b.String()
}

func (tr *TextRenderer) styleValue(slot, v string) string {
	switch {
	case slot == SlotPipelineStatus && v == ErrorStatusText,
		slot == SlotMetricValue && v == ErrorMetricText:
		return tr.failed.Render(v)
	case slot == SlotPipelineStatus && strings.EqualFold(v, "ok"):
		return tr.ok.Render(v)
	}
	return v
}

func predictionTable(rows [][]string, style table.Style) table.Writer {
	t := table.NewWriter()
	t.SetStyle(style)
	t.Style().Format.Header = text.FormatDefault
	header := make(table.Row, len(PredictionColumns))
	for i, c := range PredictionColumns {
		header[i] = c
	}
	t.AppendHeader(header)
	for _, r := range rows {
		row := make(table.Row, len(r))
		for i, c := range r {
			row[i] = c
		}
		t.AppendRow(row)
	}
	return t
}

// RenderPage writes p to w in the requested format.
func RenderPage(w io.Writer, p *Page, format Format, color bool) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(p.Snapshot())
	case FormatMarkdown:
		return renderMarkdown(w, p)
	default:
		_, err := io.WriteString(w, NewTextRenderer(w, color).Render(p))
		return err
	}
}

func renderMarkdown(w io.Writer, p *Page) error {
	var b strings.Builder
	b.WriteString("## Pipeline dashboard\n\n")
	for _, slot := range Slots {
		v, ok := p.Text(slot)
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "- **%s**: %s\n", slotLabels[slot], v)
	}
	b.WriteString("\n")

	rows := p.Rows(TablePredictions)
	if len(rows) == 0 {
		b.WriteString("(0 predictions)\n")
	} else {
		b.WriteString(predictionTable(rows, table.StyleDefault).RenderMarkdown())
		b.WriteString("\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}
