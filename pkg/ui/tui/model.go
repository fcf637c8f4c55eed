package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"igfakecheck/pkg/detector"
)

// Phase is where an analysis run currently is
type Phase int

const (
	PhaseStarting Phase = iota
	PhaseAnalyzing
	PhaseDone
	PhaseFailed
)

// LogMessage represents a log entry
type LogMessage struct {
	Time    time.Time
	Level   string
	Message string
	Color   lipgloss.Color
}

// Model is the dashboard state. It is only touched from the bubbletea
// event loop.
type Model struct {
	// UI components
	spinner  spinner.Model
	progress progress.Model

	// Run state
	postRef    string
	stage      string
	phase      Phase
	total      int
	likers     int
	results    []detector.Result
	fake       int
	genuine    int
	errors     int
	err        error
	startTime  time.Time
	finishTime time.Time

	// UI state
	width          int
	height         int
	showHelp       bool
	logMessages    []LogMessage
	maxLogMessages int

	// onQuit runs when the user leaves before the run is over
	onQuit func()
}

// NewModel creates the dashboard model for postRef
func NewModel(postRef string) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(igRed)

	p := progress.New(progress.WithGradient(string(igPurple), string(igYellow)))
	p.Width = 40

	return Model{
		spinner:        s,
		progress:       p,
		postRef:        postRef,
		stage:          "Starting",
		startTime:      time.Now(),
		logMessages:    []LogMessage{},
		maxLogMessages: 50,
	}
}

// Init starts the spinner and the refresh tick
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, tickCmd())
}

// SetStage records the step the run is in
func (m *Model) SetStage(stage string) {
	m.stage = stage
}

// Start records how many likers will be analyzed
func (m *Model) Start(total int) {
	m.phase = PhaseAnalyzing
	m.total = total
	m.stage = "Analyzing likers"
	m.results = make([]detector.Result, 0, total)
}

// AddResult records the result for the liker at index
func (m *Model) AddResult(index int, r detector.Result) {
	for len(m.results) <= index {
		m.results = append(m.results, detector.Result{})
	}
	m.results[index] = r

	switch r.Verdict {
	case detector.VerdictFake:
		m.fake++
	case detector.VerdictGenuine:
		m.genuine++
	default:
		m.errors++
	}
}

// Finish marks the run as complete
func (m *Model) Finish(run *detector.Run) {
	m.phase = PhaseDone
	m.stage = "Done"
	m.finishTime = time.Now()
	if run != nil {
		m.likers = run.Likers
	}
}

// Fail marks the run as aborted
func (m *Model) Fail(err error) {
	m.phase = PhaseFailed
	m.stage = "Failed"
	m.err = err
	m.finishTime = time.Now()
}

// Finished reports whether the run is over, successfully or not
func (m *Model) Finished() bool {
	return m.phase == PhaseDone || m.phase == PhaseFailed
}

// Checked returns how many likers have a result
func (m *Model) Checked() int {
	return m.fake + m.genuine + m.errors
}

// Results returns the results received so far
func (m *Model) Results() []detector.Result {
	return m.results
}

// Percent returns the completed share of the run in [0, 1]
func (m *Model) Percent() float64 {
	if m.total == 0 {
		if m.phase == PhaseDone {
			return 1
		}
		return 0
	}
	p := float64(m.Checked()) / float64(m.total)
	if p > 1 {
		p = 1
	}
	return p
}

// FakeRatio returns the share of analyzed likers flagged fake
func (m *Model) FakeRatio() float64 {
	analyzed := m.fake + m.genuine
	if analyzed == 0 {
		return 0
	}
	return float64(m.fake) / float64(analyzed)
}

// Elapsed returns the time spent so far, frozen once the run is over
func (m *Model) Elapsed() time.Duration {
	if m.Finished() {
		return m.finishTime.Sub(m.startTime)
	}
	return time.Since(m.startTime)
}

// ETA estimates the time left from the average pace so far
func (m *Model) ETA() time.Duration {
	checked := m.Checked()
	if checked == 0 || m.Finished() {
		return 0
	}
	remaining := m.total - checked
	if remaining <= 0 {
		return 0
	}
	return m.Elapsed() / time.Duration(checked) * time.Duration(remaining)
}

// AddLogMessage adds a log message, keeping the most recent ones
func (m *Model) AddLogMessage(level, message string) {
	m.logMessages = append(m.logMessages, LogMessage{
		Time:    time.Now(),
		Level:   level,
		Message: message,
		Color:   levelColor(level),
	})

	if len(m.logMessages) > m.maxLogMessages {
		m.logMessages = m.logMessages[len(m.logMessages)-m.maxLogMessages:]
	}
}
