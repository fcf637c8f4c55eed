package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"igfakecheck/pkg/detector"
)

// visibleResults is how many of the latest results the results panel lists
const visibleResults = 12

// View renders the entire TUI
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	var sections []string

	sections = append(sections, m.renderLogo())

	half := (m.width - 4) / 2
	left := lipgloss.JoinVertical(lipgloss.Left,
		m.renderStatsPanel(half),
		m.renderResultsPanel(half),
	)
	right := m.renderLogsPanel(half)

	sections = append(sections, lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", right))

	switch {
	case m.showHelp:
		sections = append(sections, m.renderHelp())
	case m.Finished():
		sections = append(sections, helpStyle.Render("Press enter or q to see the report"))
	default:
		sections = append(sections, helpStyle.Render("Press ? for help, q to abort"))
	}

	return baseStyle.Width(m.width).Height(m.height).Render(
		lipgloss.JoinVertical(lipgloss.Left, sections...),
	)
}

func (m *Model) renderLogo() string {
	logo := "igfakecheck · who liked this post?"
	return logoStyle.Width(m.width).Render(logo)
}

// renderStatsPanel renders the run progress and verdict counts
func (m *Model) renderStatsPanel(width int) string {
	title := titleStyle.Render(" ANALYSIS ")

	stage := m.stage
	switch m.phase {
	case PhaseDone:
		stage = successStyle.Render("✓ " + stage)
	case PhaseFailed:
		stage = errorStyle.Render("✗ " + stage)
	default:
		stage = m.spinner.View() + " " + stage
	}

	ratio := m.FakeRatio()
	lines := []string{
		stat("Post:", truncate(m.postRef, width-14)),
		stat("Stage:", stage),
		m.progress.ViewAs(m.Percent()),
		stat("Checked:", fmt.Sprintf("%d/%d", m.Checked(), m.total)),
		fmt.Sprintf("%s %s", statsLabelStyle.Render("Fake:"), fakeStyle.Render(fmt.Sprint(m.fake))),
		fmt.Sprintf("%s %s", statsLabelStyle.Render("Genuine:"), genuineStyle.Render(fmt.Sprint(m.genuine))),
		fmt.Sprintf("%s %s", statsLabelStyle.Render("Errors:"), unknownStyle.Render(fmt.Sprint(m.errors))),
		fmt.Sprintf("%s %s", statsLabelStyle.Render("Fake ratio:"), GetFakeRatioStyle(ratio).Render(fmt.Sprintf("%.0f%%", ratio*100))),
		stat("Elapsed:", formatDuration(m.Elapsed())),
	}
	if eta := m.ETA(); eta > 0 {
		lines = append(lines, stat("ETA:", formatDuration(eta)))
	}
	if m.likers > 0 {
		lines = append(lines, stat("Likers on post:", fmt.Sprint(m.likers)))
	}
	if m.err != nil {
		lines = append(lines, errorStyle.Render(truncate(m.err.Error(), width-6)))
	}

	return panelStyle.Width(width).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, strings.Join(lines, "\n")),
	)
}

// renderResultsPanel lists the latest verdicts
func (m *Model) renderResultsPanel(width int) string {
	title := titleStyle.Render(" LIKERS ")

	if len(m.results) == 0 {
		content := lipgloss.NewStyle().Foreground(dimWhite).Render("No profiles analyzed yet")
		return panelStyle.Width(width).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, content),
		)
	}

	start := len(m.results) - visibleResults
	if start < 0 {
		start = 0
	}

	var rows []string
	if start > 0 {
		rows = append(rows, lipgloss.NewStyle().Foreground(dimWhite).Render(fmt.Sprintf("  ... %d earlier", start)))
	}
	for i := start; i < len(m.results); i++ {
		rows = append(rows, renderResult(i, m.results[i], width-6))
	}

	return panelStyle.Width(width).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, strings.Join(rows, "\n")),
	)
}

func renderResult(index int, r detector.Result, width int) string {
	style := VerdictStyle(r.Verdict)

	var icon, detail string
	switch r.Verdict {
	case detector.VerdictFake:
		icon, detail = "✗", fmt.Sprintf("fake · score %d", r.Score)
	case detector.VerdictGenuine:
		icon, detail = "✓", fmt.Sprintf("genuine · score %d", r.Score)
	default:
		icon, detail = "?", r.Error
	}

	line := fmt.Sprintf("%2d %s @%s  %s", index+1, icon, r.Username, detail)
	return style.Render(truncate(line, width))
}

// renderLogsPanel renders the recent log messages
func (m *Model) renderLogsPanel(width int) string {
	title := titleStyle.Render(" LOG ")

	start := len(m.logMessages) - 15
	if start < 0 {
		start = 0
	}

	var logs []string
	for _, log := range m.logMessages[start:] {
		timestamp := logTimestampStyle.Render(log.Time.Format("15:04:05"))
		level := lipgloss.NewStyle().Foreground(log.Color).Bold(true).Render(fmt.Sprintf("[%-7s]", log.Level))
		message := logMessageStyle.Render(truncate(log.Message, width-25))
		logs = append(logs, fmt.Sprintf("%s %s %s", timestamp, level, message))
	}

	content := strings.Join(logs, "\n")
	if content == "" {
		content = lipgloss.NewStyle().Foreground(dimWhite).Render("No logs yet...")
	}

	logsHeight := m.height - 12
	if logsHeight < 5 {
		logsHeight = 5
	}

	return panelStyle.Width(width).Height(logsHeight).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, content),
	)
}

// renderHelp renders the help panel
func (m *Model) renderHelp() string {
	help := `
  Keys:
    q/esc    - Quit (aborts a running analysis)
    enter    - Close the dashboard once the analysis is done
    ctrl+l   - Clear the log
    ?        - Toggle this help

  Verdicts:
    ` + fakeStyle.Render("✗ fake") + `     - Suspicion score of 4 or more
    ` + genuineStyle.Render("✓ genuine") + `  - Score below 4
    ` + unknownStyle.Render("? error") + `    - Profile could not be analyzed
`

	return panelStyle.Width(m.width).Render(help)
}

func stat(label, value string) string {
	return fmt.Sprintf("%s %s", statsLabelStyle.Render(label), statsValueStyle.Render(value))
}

// truncate shortens s to at most n runes
func truncate(s string, n int) string {
	if n <= 3 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}

// formatDuration formats a duration as mm:ss or hh:mm:ss
func formatDuration(d time.Duration) string {
	if d < 0 {
		return "00:00"
	}

	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60

	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
