package tui

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"code.cloudfoundry.org/bytefmt"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/justapithecus/readsim/cli/reader"
)

// StatsModel is a Bubble Tea model for stats views.
type StatsModel struct {
	viewType string
	data     any
	width    int
	height   int
	quitting bool
}

// NewStatsModel creates a new stats model.
func NewStatsModel(viewType string, data any) StatsModel {
	return StatsModel{
		viewType: viewType,
		data:     data,
	}
}

// Init implements tea.Model.
func (m StatsModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m StatsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
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
func (m StatsModel) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.viewType {
	case ViewStatsRun:
		content = m.renderStatsRun()
	default:
		content = fmt.Sprintf("Unknown view type: %s", m.viewType)
	}

	help := HelpStyle.Render("Press q or Ctrl+C to quit")
	return content + "\n" + help
}

func (m StatsModel) renderStatsRun() string {
	data, ok := m.data.(*reader.MetricsSnapshot)
	if !ok {
		return "Invalid data type for stats_run"
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render("Run " + data.RunID))
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s %s\n\n", LabelStyle.Render("Completed:"), ValueStyle.Render(data.Ts))

	boxes := []string{
		m.renderStatBox("Pairs", fmt.Sprintf("%d", data.PairsPersisted), highlightColor),
		m.renderStatBox("Bases", bytefmt.ByteSize(uint64(max(data.BasesPersisted, 0))), highlightColor),
		m.renderStatBox("Genomes", fmt.Sprintf("%d", data.GenomesSimulated), successColor),
		m.renderStatBox("Skipped", fmt.Sprintf("%d", data.GenomesSkipped), warningColor),
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, boxes...))
	b.WriteString("\n")

	errBoxes := []string{
		m.renderStatBox("Substitutions", fmt.Sprintf("%d", data.Substitutions), errorColor),
		m.renderStatBox("Insertions", fmt.Sprintf("%d", data.Insertions), errorColor),
		m.renderStatBox("Deletions", fmt.Sprintf("%d", data.Deletions), errorColor),
		m.renderStatBox("Failed Runs", fmt.Sprintf("%d", data.RunsFailed), errorColor),
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, errBoxes...))
	b.WriteString("\n\n")

	rows := [][]string{
		{"Policy", data.Policy},
		{"Model", data.Model},
		{"Storage", data.StorageBackend},
		{"Flushes", fmt.Sprintf("%d", data.Flushes)},
	}
	for _, row := range rows {
		fmt.Fprintf(&b, "%s %s\n", LabelStyle.Render(row[0]+":"), ValueStyle.Render(row[1]))
	}

	if len(data.PairsByGenome) > 0 {
		b.WriteString("\n")
		b.WriteString(TitleStyle.Render("Pairs by Genome"))
		b.WriteString("\n")
		for _, genome := range slices.Sorted(maps.Keys(data.PairsByGenome)) {
			fmt.Fprintf(&b, "%s %s\n",
				LabelStyle.Render(genome),
				ValueStyle.Render(fmt.Sprintf("%d", data.PairsByGenome[genome])))
		}
	}

	return b.String()
}

func (m StatsModel) renderStatBox(label, value string, color lipgloss.Color) string {
	boxStyle := StatBoxStyle.BorderForeground(color)

	valueStr := StatValueStyle.Foreground(color).Render(value)
	labelStr := StatLabelStyle.Render(label)

	content := lipgloss.JoinVertical(lipgloss.Center, valueStr, labelStr)

	return boxStyle.Render(content)
}

// RunStatsTUI runs the stats TUI.
func RunStatsTUI(viewType string, data any) error {
	model := NewStatsModel(viewType, data)
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// RenderStatsStatic renders stats data without full TUI (for fallback).
func RenderStatsStatic(viewType string, data any) string {
	model := NewStatsModel(viewType, data)
	model.width = 80
	model.height = 24
	return lipgloss.NewStyle().Padding(1, 2).Render(model.View())
}
