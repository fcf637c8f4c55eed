package tui

import (
	"github.com/charmbracelet/lipgloss"

	"igfakecheck/pkg/detector"
)

var (
	// Palette borrowed from the Instagram gradient
	igYellow    = lipgloss.Color("#FCAF45")
	igOrange    = lipgloss.Color("#F77737")
	igRed       = lipgloss.Color("#E1306C")
	igPurple    = lipgloss.Color("#833AB4")
	igBlue      = lipgloss.Color("#405DE6")
	okGreen     = lipgloss.Color("#04B575")
	darkBg      = lipgloss.Color("#121212")
	darkBg2     = lipgloss.Color("#1E1E1E")
	dimWhite    = lipgloss.Color("#B0B0B0")
	brightWhite = lipgloss.Color("#FFFFFF")

	// Base styles
	baseStyle = lipgloss.NewStyle().
			Background(darkBg).
			Foreground(dimWhite)

	logoStyle = lipgloss.NewStyle().
			Foreground(igRed).
			Bold(true).
			Padding(1, 0).
			Align(lipgloss.Center)

	// Panel styles
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(igPurple).
			Background(darkBg2).
			Padding(1, 2)

	// Stats styles
	statsLabelStyle = lipgloss.NewStyle().
			Foreground(igYellow).
			Bold(true)

	statsValueStyle = lipgloss.NewStyle().
			Foreground(brightWhite)

	// Status styles
	successStyle = lipgloss.NewStyle().
			Foreground(okGreen).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	// Result list styles
	fakeStyle = lipgloss.NewStyle().
			Foreground(igRed).
			Bold(true)

	genuineStyle = lipgloss.NewStyle().
			Foreground(okGreen)

	unknownStyle = lipgloss.NewStyle().
			Foreground(igYellow)

	// Log styles
	logTimestampStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#666666"))

	logMessageStyle = lipgloss.NewStyle().
			Foreground(dimWhite)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262")).
			Padding(1, 0, 0, 2)

	// Title styles for panels
	titleStyle = lipgloss.NewStyle().
			Background(igPurple).
			Foreground(brightWhite).
			Bold(true).
			Padding(0, 1)

	// Fake ratio styles
	ratioLowStyle = lipgloss.NewStyle().
			Foreground(okGreen)

	ratioMediumStyle = lipgloss.NewStyle().
				Foreground(igOrange)

	ratioHighStyle = lipgloss.NewStyle().
			Foreground(igRed)
)

// VerdictStyle returns the style used for a verdict
func VerdictStyle(v detector.Verdict) lipgloss.Style {
	switch v {
	case detector.VerdictFake:
		return fakeStyle
	case detector.VerdictGenuine:
		return genuineStyle
	default:
		return unknownStyle
	}
}

// GetFakeRatioStyle returns the style for a share of fake likers in [0, 1]
func GetFakeRatioStyle(ratio float64) lipgloss.Style {
	switch {
	case ratio >= 0.5:
		return ratioHighStyle
	case ratio >= 0.2:
		return ratioMediumStyle
	default:
		return ratioLowStyle
	}
}

// levelColor returns the color of a log level
func levelColor(level string) lipgloss.Color {
	switch level {
	case "ERROR":
		return lipgloss.Color("#FF0000")
	case "WARN":
		return igOrange
	case "SUCCESS":
		return okGreen
	case "INFO":
		return igBlue
	default:
		return dimWhite
	}
}
