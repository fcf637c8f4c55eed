package tui

import (
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"igfakecheck/pkg/detector"
)

func results() []detector.Result {
	return []detector.Result{
		{Username: "user98765", Verdict: detector.VerdictFake, Score: 7},
		{Username: "alice", Verdict: detector.VerdictGenuine, Score: 1},
		detector.ErrorResult("ghost", "user not found"),
	}
}

func TestModel(t *testing.T) {
	model := NewModel("https://www.instagram.com/p/B-fKL9qpeab/")

	model.Update(StageMsg{Stage: "Resolving post"})
	assert.Equal(t, "Resolving post", model.stage)
	assert.Equal(t, PhaseStarting, model.phase)

	model.Update(StartMsg{Total: 4})
	assert.Equal(t, PhaseAnalyzing, model.phase)
	assert.Equal(t, 4, model.total)

	for i, r := range results() {
		model.Update(ResultMsg{Index: i, Result: r})
	}
	assert.Equal(t, 3, model.Checked())
	assert.Equal(t, 1, model.fake)
	assert.Equal(t, 1, model.genuine)
	assert.Equal(t, 1, model.errors)
	assert.InDelta(t, 0.75, model.Percent(), 1e-9)
	assert.InDelta(t, 0.5, model.FakeRatio(), 1e-9)
	assert.False(t, model.Finished())

	model.Update(FinishMsg{Run: &detector.Run{Likers: 120}})
	assert.True(t, model.Finished())
	assert.Equal(t, 120, model.likers)
	assert.Equal(t, time.Duration(0), model.ETA())

	// Stage, start, three results and finish each log one line
	require.Len(t, model.logMessages, 6)
	assert.Equal(t, "WARN", model.logMessages[2].Level)
	assert.Contains(t, model.logMessages[2].Message, "@user98765 looks fake (score 7)")
	assert.Equal(t, "ERROR", model.logMessages[4].Level)
	assert.Equal(t, "SUCCESS", model.logMessages[5].Level)
}

func TestModelResultsOutOfOrder(t *testing.T) {
	model := NewModel("B-fKL9qpeab")
	model.Start(3)

	model.AddResult(2, results()[2])
	model.AddResult(0, results()[0])

	require.Len(t, model.Results(), 3)
	assert.Equal(t, "user98765", model.Results()[0].Username)
	assert.Equal(t, "ghost", model.Results()[2].Username)
	assert.Equal(t, 2, model.Checked())
}

func TestModelFail(t *testing.T) {
	model := NewModel("B-fKL9qpeab")
	model.Update(FailMsg{Err: errors.New("post_resolution_failed error")})

	assert.Equal(t, PhaseFailed, model.phase)
	assert.True(t, model.Finished())
	assert.Equal(t, 0.0, model.Percent())
}

func TestModelLogLimit(t *testing.T) {
	model := NewModel("B-fKL9qpeab")
	for i := 0; i < 60; i++ {
		model.AddLogMessage("INFO", "message")
	}
	assert.Len(t, model.logMessages, 50)

	model.Update(tea.KeyMsg{Type: tea.KeyCtrlL})
	assert.Empty(t, model.logMessages)
}

func TestQuitAbortsRunningAnalysis(t *testing.T) {
	aborted := 0
	model := NewModel("B-fKL9qpeab")
	model.onQuit = func() { aborted++ }

	_, cmd := model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Equal(t, 1, aborted)

	model.Finish(nil)
	model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	assert.Equal(t, 1, aborted, "quitting after the run is over must not abort it")

	_, cmd = model.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
}

func TestView(t *testing.T) {
	model := NewModel("https://www.instagram.com/p/B-fKL9qpeab/")
	assert.Equal(t, "Initializing...", model.View())

	model.Update(tea.WindowSizeMsg{Width: 160, Height: 48})
	model.Start(3)
	for i, r := range results() {
		model.AddResult(i, r)
	}

	view := model.View()
	assert.Contains(t, view, "ANALYSIS")
	assert.Contains(t, view, "@user98765")
	assert.Contains(t, view, "user not found")
	assert.Contains(t, view, "q to abort")

	model.Finish(&detector.Run{Likers: 3})
	assert.Contains(t, model.View(), "Press enter or q")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate(strings.Repeat("abcdefghij", 3), 10))
	assert.Equal(t, "ñññ...", truncate("ñññññññ", 6))
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "00:42", formatDuration(42*time.Second))
	assert.Equal(t, "01:02:03", formatDuration(time.Hour+2*time.Minute+3*time.Second))
	assert.Equal(t, "00:00", formatDuration(-time.Second))
}

func TestTUIReceivesObserverEvents(t *testing.T) {
	dash := NewTUI("B-fKL9qpeab", nil,
		tea.WithInput(nil),
		tea.WithOutput(io.Discard),
		tea.WithoutRenderer(),
	)

	done := make(chan error, 1)
	go func() { done <- dash.Start() }()

	dash.OnStage("Getting likers")
	dash.OnStart(3)
	for i, r := range results() {
		dash.OnResult(i, r)
	}
	dash.OnFinish(&detector.Run{Likers: 3})
	dash.LogInfo("report written to %s", "instagram_users_report.json")
	dash.Stop()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("dashboard did not stop")
	}

	model := dash.model
	assert.True(t, model.Finished())
	assert.Equal(t, 3, model.Checked())
	assert.Equal(t, "report written to instagram_users_report.json", model.logMessages[len(model.logMessages)-1].Message)
}
