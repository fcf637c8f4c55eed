package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"igfakecheck/pkg/detector"
)

// StageMsg is sent when the run moves to a new step
type StageMsg struct {
	Stage string
}

// StartMsg is sent once the likers to analyze are known
type StartMsg struct {
	Total int
}

// ResultMsg is sent for each analyzed liker
type ResultMsg struct {
	Index  int
	Result detector.Result
}

// FinishMsg is sent when the run completes
type FinishMsg struct {
	Run *detector.Run
}

// FailMsg is sent when the run aborts
type FailMsg struct {
	Err error
}

// LogMsg is sent to add a log message
type LogMsg struct {
	Level   string
	Message string
}

// TickMsg is sent periodically to update the UI
type TickMsg time.Time

// Update handles all messages and updates the model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = max(10, (m.width-4)/2-16)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case TickMsg:
		if m.Finished() {
			return m, nil
		}
		return m, tickCmd()

	case StageMsg:
		m.SetStage(msg.Stage)
		m.AddLogMessage("INFO", msg.Stage+"...")
		return m, nil

	case StartMsg:
		m.Start(msg.Total)
		m.AddLogMessage("INFO", fmt.Sprintf("Analyzing %d likers", msg.Total))
		return m, nil

	case ResultMsg:
		m.AddResult(msg.Index, msg.Result)
		m.logResult(msg.Result)
		return m, nil

	case FinishMsg:
		m.Finish(msg.Run)
		m.AddLogMessage("SUCCESS", fmt.Sprintf("Analysis complete: %d fake of %d checked", m.fake, m.Checked()))
		return m, nil

	case FailMsg:
		m.Fail(msg.Err)
		m.AddLogMessage("ERROR", fmt.Sprintf("Analysis failed: %v", msg.Err))
		return m, nil

	case LogMsg:
		m.AddLogMessage(msg.Level, msg.Message)
		return m, nil
	}

	return m, nil
}

func (m *Model) logResult(r detector.Result) {
	switch r.Verdict {
	case detector.VerdictFake:
		m.AddLogMessage("WARN", fmt.Sprintf("@%s looks fake (score %d)", r.Username, r.Score))
	case detector.VerdictGenuine:
		m.AddLogMessage("SUCCESS", fmt.Sprintf("@%s looks genuine", r.Username))
	default:
		m.AddLogMessage("ERROR", fmt.Sprintf("@%s: %s", r.Username, r.Error))
	}
}

// handleKeyPress handles keyboard input
func (m *Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "Q", "esc", "ctrl+c":
		if !m.Finished() && m.onQuit != nil {
			m.onQuit()
		}
		return m, tea.Quit

	case "enter":
		if m.Finished() {
			return m, tea.Quit
		}
		return m, nil

	case "?":
		m.showHelp = !m.showHelp
		return m, nil

	case "ctrl+l":
		m.logMessages = []LogMessage{}
		return m, nil
	}

	return m, nil
}

// tickCmd returns a command that sends a tick message
func tickCmd() tea.Cmd {
	return tea.Tick(time.Millisecond*250, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}
