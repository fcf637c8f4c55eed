package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"igfakecheck/pkg/detector"
)

// TUI is a live dashboard for an analysis run. Its observer methods may be
// called from the goroutine running the detector while Start blocks.
type TUI struct {
	program *tea.Program
	model   *Model
}

// NewTUI creates a dashboard for postRef. onQuit, if set, is called when
// the user quits before the run is over. Extra program options are applied
// after the alternate screen option.
func NewTUI(postRef string, onQuit func(), opts ...tea.ProgramOption) *TUI {
	model := NewModel(postRef)
	model.onQuit = onQuit

	options := append([]tea.ProgramOption{tea.WithAltScreen()}, opts...)
	program := tea.NewProgram(&model, options...)

	return &TUI{
		program: program,
		model:   &model,
	}
}

// Start runs the dashboard until the user quits or Stop is called
func (t *TUI) Start() error {
	_, err := t.program.Run()
	return err
}

// Stop stops the TUI gracefully
func (t *TUI) Stop() {
	t.program.Quit()
}

// Send sends a message to the TUI
func (t *TUI) Send(msg tea.Msg) {
	if t.program != nil {
		t.program.Send(msg)
	}
}

// OnStage implements detector.Observer
func (t *TUI) OnStage(stage string) {
	t.Send(StageMsg{Stage: stage})
}

// OnStart implements detector.Observer
func (t *TUI) OnStart(total int) {
	t.Send(StartMsg{Total: total})
}

// OnResult implements detector.Observer
func (t *TUI) OnResult(index int, result detector.Result) {
	t.Send(ResultMsg{Index: index, Result: result})
}

// OnFinish implements detector.Observer
func (t *TUI) OnFinish(run *detector.Run) {
	t.Send(FinishMsg{Run: run})
}

// Fail shows that the run aborted
func (t *TUI) Fail(err error) {
	t.Send(FailMsg{Err: err})
}

// Log sends a log message to the TUI
func (t *TUI) Log(level, format string, args ...interface{}) {
	t.Send(LogMsg{Level: level, Message: fmt.Sprintf(format, args...)})
}

// LogInfo logs an info message
func (t *TUI) LogInfo(format string, args ...interface{}) {
	t.Log("INFO", format, args...)
}

// LogSuccess logs a success message
func (t *TUI) LogSuccess(format string, args ...interface{}) {
	t.Log("SUCCESS", format, args...)
}

// LogWarning logs a warning message
func (t *TUI) LogWarning(format string, args ...interface{}) {
	t.Log("WARN", format, args...)
}

// LogError logs an error message
func (t *TUI) LogError(format string, args ...interface{}) {
	t.Log("ERROR", format, args...)
}
