package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/justapithecus/readsim/cli/reader"
)

// sparkLevels render a quality profile one rune per position.
var sparkLevels = []rune("▁▂▃▄▅▆▇█")

// sparkMaxQuality is the score drawn as a full block.
const sparkMaxQuality = 41

// InspectModel is a Bubble Tea model for inspect views.
type InspectModel struct {
	viewType string
	data     any
	width    int
	height   int
	quitting bool
}

// NewInspectModel creates a new inspect model.
func NewInspectModel(viewType string, data any) InspectModel {
	return InspectModel{
		viewType: viewType,
		data:     data,
	}
}

// Init implements tea.Model.
func (m InspectModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m InspectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, keys.Quit) {
			m.quitting = true
			return m, tea.Quit
		}
	}

	return m, nil
}

// View implements tea.Model.
func (m InspectModel) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.viewType {
	case ViewInspectProfile:
		content = m.renderInspectProfile()
	default:
		content = fmt.Sprintf("Unknown view type: %s", m.viewType)
	}

	help := HelpStyle.Render("Press q or Ctrl+C to quit")
	return content + "\n" + help
}

func (m InspectModel) renderInspectProfile() string {
	data, ok := m.data.(*reader.ModelView)
	if !ok {
		return "Invalid data type for inspect_profile"
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render("Error Model"))
	b.WriteString("\n\n")

	rows := [][]string{
		{"Name", data.Name},
		{"Read Length", fmt.Sprintf("%d", data.ReadLength)},
		{"Insert Size", fmt.Sprintf("%.0f ± %.0f", data.InsertMean, data.InsertSD)},
		{"Subs/Read R1", fmt.Sprintf("%.3f", data.ExpectedSubsFwd)},
		{"Subs/Read R2", fmt.Sprintf("%.3f", data.ExpectedSubsRev)},
	}
	for _, row := range rows {
		fmt.Fprintf(&b, "%s %s\n", LabelStyle.Render(row[0]+":"), ValueStyle.Render(row[1]))
	}

	b.WriteString("\n")
	b.WriteString(m.renderQualityRow("Mean Q R1:", data.MeanQualityForward, data.QualityForward))
	b.WriteString(m.renderQualityRow("Mean Q R2:", data.MeanQualityReverse, data.QualityReverse))

	return BoxStyle.Render(b.String())
}

func (m InspectModel) renderQualityRow(label string, mean float64, profile []float32) string {
	value := QualityStyle(mean).Render(fmt.Sprintf("%.1f", mean))
	width := 60
	if m.width > 0 {
		width = max(m.width-40, 10)
	}
	return fmt.Sprintf("%s %s  %s\n", LabelStyle.Render(label), value, Sparkline(profile, width))
}

// Sparkline draws a quality profile in at most width runes, averaging
// positions into buckets when the profile is wider.
func Sparkline(profile []float32, width int) string {
	if len(profile) == 0 || width <= 0 {
		return ""
	}
	buckets := min(len(profile), width)
	var b strings.Builder
	for i := range buckets {
		lo := i * len(profile) / buckets
		hi := (i + 1) * len(profile) / buckets
		var sum float64
		for _, q := range profile[lo:hi] {
			sum += float64(q)
		}
		mean := sum / float64(hi-lo)
		level := int(mean / sparkMaxQuality * float64(len(sparkLevels)-1))
		level = max(0, min(level, len(sparkLevels)-1))
		b.WriteString(QualityStyle(mean).Render(string(sparkLevels[level])))
	}
	return b.String()
}

// keyMap defines key bindings.
type keyMap struct {
	Quit key.Binding
}

var keys = keyMap{
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// RunInspectTUI runs the inspect TUI.
func RunInspectTUI(viewType string, data any) error {
	model := NewInspectModel(viewType, data)
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// RenderInspectStatic renders inspect data without full TUI (for fallback).
func RenderInspectStatic(viewType string, data any) string {
	model := NewInspectModel(viewType, data)
	model.width = 80
	model.height = 24
	return lipgloss.NewStyle().Padding(1, 2).Render(model.View())
}
