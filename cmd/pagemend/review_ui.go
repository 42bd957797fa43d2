package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lexcodex/pagemend/persistence"
)

var (
	reviewTitleStyle   = lipgloss.NewStyle().Bold(true)
	reviewSectionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	reviewImpactStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	reviewManualStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	reviewFooterStyle  = lipgloss.NewStyle().Faint(true)
	reviewDiffOldStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("160"))
	reviewDiffNewStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("34"))
)

type reviewModel struct {
	record   *persistence.RunRecord
	port     viewport.Model
	ready    bool
	decision string
}

func newReviewModel(record *persistence.RunRecord) *reviewModel {
	return &reviewModel{record: record}
}

// runReviewUI shows the pending changes and blocks until the reviewer decides.
// The returned decision is "approved", "rejected", or "" when the reviewer
// quit without deciding.
func runReviewUI(record *persistence.RunRecord) (string, error) {
	model := newReviewModel(record)
	program := tea.NewProgram(model, tea.WithAltScreen())
	final, err := program.Run()
	if err != nil {
		return "", err
	}
	if m, ok := final.(*reviewModel); ok {
		return m.decision, nil
	}
	return "", nil
}

func (m *reviewModel) Init() tea.Cmd {
	return nil
}

func (m *reviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "a":
			m.decision = "approved"
			return m, tea.Quit
		case "r":
			m.decision = "rejected"
			return m, tea.Quit
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		headerHeight := 2
		footerHeight := 2
		if !m.ready {
			m.port = viewport.New(msg.Width, msg.Height-headerHeight-footerHeight)
			m.port.SetContent(m.renderContent())
			m.ready = true
		} else {
			m.port.Width = msg.Width
			m.port.Height = msg.Height - headerHeight - footerHeight
		}
	}
	var cmd tea.Cmd
	m.port, cmd = m.port.Update(msg)
	return m, cmd
}

func (m *reviewModel) View() string {
	if !m.ready {
		return "loading..."
	}
	header := reviewTitleStyle.Render(fmt.Sprintf("Review %s (%s)", m.record.ID, m.record.Status))
	footer := reviewFooterStyle.Render("a approve | r reject | q quit | arrows/pgup/pgdn scroll")
	return header + "\n\n" + m.port.View() + "\n" + footer
}

func (m *reviewModel) renderContent() string {
	var b strings.Builder
	approval := map[string]any{}
	if m.record.State != nil && m.record.State.Approval != nil {
		approval = m.record.State.Approval
	}

	b.WriteString(reviewSectionStyle.Render("Summary"))
	b.WriteString("\n")
	writeSummary(&b, approval["summary"])
	b.WriteString("\n")

	b.WriteString(reviewSectionStyle.Render("Diff Views"))
	b.WriteString("\n")
	writeDiffViews(&b, approval["diff_views"])
	b.WriteString("\n")

	if manual, ok := approval["manual_fix_required"]; ok && manual != nil {
		b.WriteString(reviewManualStyle.Render("Manual Fixes Required"))
		b.WriteString("\n")
		writeManualFixes(&b, manual)
	}
	return b.String()
}

func writeSummary(b *strings.Builder, raw any) {
	summary, ok := raw.(map[string]any)
	if !ok {
		fmt.Fprintf(b, "  %v\n", raw)
		return
	}
	for _, category := range sortedKeys(summary) {
		fmt.Fprintf(b, "  %s:\n", category)
		section, ok := summary[category].(map[string]any)
		if !ok {
			fmt.Fprintf(b, "    %v\n", summary[category])
			continue
		}
		if count, ok := section["count"]; ok {
			fmt.Fprintf(b, "    changes: %v\n", count)
		}
		if impact, ok := section["impact"].(string); ok {
			fmt.Fprintf(b, "    impact: %s\n", reviewImpactStyle.Render(impact))
		}
		if changes, ok := section["changes"].([]any); ok {
			for _, change := range changes {
				fmt.Fprintf(b, "    - %v\n", change)
			}
		}
		if note, ok := section["note"]; ok {
			fmt.Fprintf(b, "    %v\n", note)
		}
	}
}

func writeDiffViews(b *strings.Builder, raw any) {
	views, ok := raw.([]any)
	if !ok {
		fmt.Fprintf(b, "  %v\n", raw)
		return
	}
	for _, view := range views {
		entry, ok := view.(map[string]any)
		if !ok {
			fmt.Fprintf(b, "  %v\n", view)
			continue
		}
		fmt.Fprintf(b, "  [%v] %v\n", entry["type"], entry["explanation"])
		if before, ok := entry["before"].(string); ok && before != "" {
			for _, line := range strings.Split(before, "\n") {
				fmt.Fprintf(b, "    %s\n", reviewDiffOldStyle.Render("- "+line))
			}
		}
		if after, ok := entry["after"].(string); ok && after != "" {
			for _, line := range strings.Split(after, "\n") {
				fmt.Fprintf(b, "    %s\n", reviewDiffNewStyle.Render("+ "+line))
			}
		}
		if note, ok := entry["note"]; ok {
			fmt.Fprintf(b, "    %v\n", note)
		}
	}
}

func writeManualFixes(b *strings.Builder, raw any) {
	switch entries := raw.(type) {
	case []any:
		for _, item := range entries {
			writeManualFix(b, item)
		}
	default:
		fmt.Fprintf(b, "  %v\n", raw)
	}
}

func writeManualFix(b *strings.Builder, item any) {
	entry, ok := item.(map[string]any)
	if !ok {
		fmt.Fprintf(b, "  - %v\n", item)
		return
	}
	fmt.Fprintf(b, "  - %v\n", entry["reason"])
	if issue, ok := entry["issue"]; ok && issue != nil {
		fmt.Fprintf(b, "    issue: %v\n", issue)
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
