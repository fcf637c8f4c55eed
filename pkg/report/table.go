package report

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"igfakecheck/pkg/detector"
)

// maxBioWidth bounds the bio column in runes
const maxBioWidth = 40

// TableOptions controls how results are rendered
type TableOptions struct {
	// Explain adds the score and the rules that fired
	Explain bool
}

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F58529")).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	fakeStyle    = cellStyle.Foreground(lipgloss.Color("#FF5F87")).Bold(true)
	genuineStyle = cellStyle.Foreground(lipgloss.Color("#04B575"))
	errorStyle   = cellStyle.Foreground(lipgloss.Color("#FFD700"))
	borderStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#626262"))
)

// Headers returns the column titles for the given options
func Headers(opts TableOptions) []string {
	headers := []string{"#", "Username", "Posts", "Followers", "Following", "Bio", "Fake Account", "Error"}
	if opts.Explain {
		headers = append(headers, "Score", "Reasons")
	}
	return headers
}

// Rows returns the plain cell values of results
func Rows(results []detector.Result, opts TableOptions) [][]string {
	rows := make([][]string, 0, len(results))
	for i, r := range results {
		row := []string{
			strconv.Itoa(i + 1),
			r.Username,
			optionalInt(r.Posts),
			optionalInt(r.Followers),
			optionalInt(r.Following),
			truncate(r.Bio, maxBioWidth),
			string(r.Verdict),
			r.Error,
		}
		if opts.Explain {
			row = append(row, strconv.Itoa(r.Score), reasons(r.Reasons))
		}
		rows = append(rows, row)
	}
	return rows
}

// Table renders results as a bordered terminal table
func Table(results []detector.Result, opts TableOptions) string {
	verdictCol := 6

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(Headers(opts)...).
		Rows(Rows(results, opts)...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col != verdictCol || row < 0 || row >= len(results) {
				return cellStyle
			}
			switch results[row].Verdict {
			case detector.VerdictFake:
				return fakeStyle
			case detector.VerdictGenuine:
				return genuineStyle
			default:
				return errorStyle
			}
		})

	return t.Render()
}

func optionalInt(v *int) string {
	if v == nil {
		return "-"
	}
	return strconv.Itoa(*v)
}

func reasons(rs []detector.Reason) string {
	names := make([]string, 0, len(rs))
	for _, r := range rs {
		names = append(names, r.Rule+" (+"+strconv.Itoa(r.Points)+")")
	}
	return strings.Join(names, ", ")
}

// truncate flattens s onto one line and cuts it to max runes
func truncate(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
