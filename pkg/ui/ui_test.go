package ui

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"igfakecheck/pkg/detector"
)

func intPtr(v int) *int { return &v }

func sampleResults() []detector.Result {
	return []detector.Result{
		{Username: "user12345", Posts: intPtr(0), Followers: intPtr(2), Following: intPtr(300), Bio: detector.NoBio, Verdict: detector.VerdictFake, Score: 10},
		{Username: "alice", Posts: intPtr(120), Followers: intPtr(900), Following: intPtr(400), Bio: "Photographer in Lisbon", Verdict: detector.VerdictGenuine},
		detector.ErrorResult("ghost", "not_found error: user not found"),
	}
}

func TestStatusTracker(t *testing.T) {
	st := NewStatusTracker(4)
	for _, r := range sampleResults() {
		st.Record(r)
	}

	assert.Equal(t, 3, st.Checked)
	assert.Equal(t, 1, st.Fake)
	assert.Equal(t, 1, st.Genuine)
	assert.Equal(t, 1, st.Errors)
	assert.Equal(t, 1, st.Remaining())
	assert.InDelta(t, 0.75, st.Fraction(), 1e-9)
	assert.Equal(t, strings.Repeat(ProgressBar, 15)+strings.Repeat(ProgressEmpty, 5), st.Bar(20))
}

func TestStatusTrackerBounds(t *testing.T) {
	empty := NewStatusTracker(0)
	assert.Equal(t, 0.0, empty.Fraction())
	assert.Equal(t, time.Duration(0), empty.ETA())
	assert.Equal(t, strings.Repeat(ProgressEmpty, 10), empty.Bar(10))

	over := NewStatusTracker(1)
	over.Record(detector.Result{Verdict: detector.VerdictGenuine})
	over.Record(detector.Result{Verdict: detector.VerdictGenuine})
	assert.Equal(t, 1.0, over.Fraction())
	assert.Equal(t, 0, over.Remaining())
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "42s", FormatDuration(42*time.Second))
	assert.Equal(t, "3m5s", FormatDuration(3*time.Minute+5*time.Second))
	assert.Equal(t, "2h10m", FormatDuration(2*time.Hour+10*time.Minute))
}

func TestProgressDisplayVerbose(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgressDisplay(&buf, "https://www.instagram.com/p/B-fKL9qpeab/", true)

	p.OnStage("Resolving post")
	p.OnStart(3)
	for i, r := range sampleResults() {
		p.OnResult(i, r)
	}
	started := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	p.OnFinish(&detector.Run{
		Likers:     40,
		Results:    sampleResults(),
		StartedAt:  started,
		FinishedAt: started.Add(75 * time.Second),
	})

	out := buf.String()
	assert.Contains(t, out, "Resolving post...")
	assert.Contains(t, out, "Analyzing 3 likers")
	assert.Contains(t, out, "@user12345")
	assert.Contains(t, out, "fake (score 10)")
	assert.Contains(t, out, "https://www.instagram.com/user12345/")
	assert.NotContains(t, out, "https://www.instagram.com/alice/")
	assert.Contains(t, out, "user not found")
	assert.Contains(t, out, "Analyzed 3 of 40 likers in 1m15s")
	assert.Contains(t, out, "1 fake, 1 genuine")
	assert.Contains(t, out, "1 profiles could not be analyzed")

	tally := *p.tracker
	assert.Equal(t, 3, tally.Checked)
}

func TestProgressDisplayInline(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgressDisplay(&buf, "B-fKL9qpeab", false)

	p.OnStart(2)
	p.OnResult(0, sampleResults()[0])
	p.LogWarning("rate limited, waiting %s", "2s")
	p.Fail(errors.New("boom"))

	out := buf.String()
	assert.Contains(t, out, "\r")
	assert.Contains(t, out, "1/2")
	// Log lines start on a fresh line after the in-place progress line
	assert.Contains(t, out, "\n"+Yellow("⚠")+" rate limited, waiting 2s\n")
	assert.Contains(t, out, Red("✗")+" boom")
}

type recordingSender struct {
	titles   []string
	messages []string
	err      error
}

func (r *recordingSender) Send(title, message string) error {
	r.titles = append(r.titles, title)
	r.messages = append(r.messages, message)
	return r.err
}

func TestNotifierNotifyRun(t *testing.T) {
	var buf bytes.Buffer
	sender := &recordingSender{err: errors.New("no display")}
	n := NewNotifierWithSender(&buf, sender)

	n.NotifyRun(&detector.Run{Results: sampleResults()})

	require.Len(t, sender.messages, 1)
	assert.Equal(t, "Analysis complete", sender.titles[0])
	assert.Equal(t, "1 of 3 likers look fake, 1 could not be checked", sender.messages[0])
	assert.Contains(t, buf.String(), "likers look fake")
}

func TestNotifierNotifyRunLinksPost(t *testing.T) {
	sender := &recordingSender{}
	n := NewNotifierWithSender(&bytes.Buffer{}, sender)

	n.NotifyRun(&detector.Run{
		PostRef: "https://www.instagram.com/reel/B-fKL9qpeab/?igsh=abc",
		MediaID: "2278584739065882267",
		Results: sampleResults()[1:2],
	})

	require.Len(t, sender.messages, 1)
	assert.Equal(t, "0 of 1 likers look fake\nhttps://www.instagram.com/p/B-fKL9qpeab/", sender.messages[0])
}

func TestNotifierWithoutSender(t *testing.T) {
	var buf bytes.Buffer
	n := NewNotifierWithSender(&buf, nil)

	n.SendError("Login failed", "challenge required")
	assert.Contains(t, buf.String(), "challenge required")
}

func TestPrintHelpers(t *testing.T) {
	var buf bytes.Buffer
	prev := Output
	Output = &buf
	defer func() { Output = prev }()

	PrintError("Analysis failed", errors.New("no likers"))
	PrintWarning("Careful")
	PrintInfo("Report", "instagram_users_report.json")

	out := buf.String()
	assert.Contains(t, out, Red("Analysis failed: no likers"))
	assert.Contains(t, out, Yellow("Careful"))
	assert.Contains(t, out, Cyan("Report"))
}

var (
	_ Dashboard = (*ProgressDisplay)(nil)
)
