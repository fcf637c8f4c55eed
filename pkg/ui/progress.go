package ui

import (
	"fmt"
	"strings"
	"time"

	"igfakecheck/pkg/detector"
)

const (
	ProgressBar   = "━"
	ProgressEmpty = "─"
	BarWidth      = 20
)

// StatusTracker tallies verdicts as likers are analyzed
type StatusTracker struct {
	Total     int
	Checked   int
	Fake      int
	Genuine   int
	Errors    int
	StartTime time.Time
}

// NewStatusTracker creates a tracker expecting total results
func NewStatusTracker(total int) *StatusTracker {
	return &StatusTracker{
		Total:     total,
		StartTime: time.Now(),
	}
}

// Record counts one result
func (st *StatusTracker) Record(r detector.Result) {
	st.Checked++
	switch r.Verdict {
	case detector.VerdictFake:
		st.Fake++
	case detector.VerdictGenuine:
		st.Genuine++
	default:
		st.Errors++
	}
}

// Remaining returns how many likers are still to be analyzed
func (st *StatusTracker) Remaining() int {
	if st.Checked >= st.Total {
		return 0
	}
	return st.Total - st.Checked
}

// Fraction returns the completed share in [0, 1]
func (st *StatusTracker) Fraction() float64 {
	if st.Total <= 0 {
		return 0
	}
	f := float64(st.Checked) / float64(st.Total)
	if f > 1 {
		f = 1
	}
	return f
}

// Bar renders a progress bar of the given width
func (st *StatusTracker) Bar(width int) string {
	filled := int(st.Fraction() * float64(width))
	return strings.Repeat(ProgressBar, filled) + strings.Repeat(ProgressEmpty, width-filled)
}

// GetElapsedTime returns the elapsed time since tracking started
func (st *StatusTracker) GetElapsedTime() time.Duration {
	return time.Since(st.StartTime)
}

// GetRate returns the average number of profiles analyzed per minute
func (st *StatusTracker) GetRate() float64 {
	elapsed := st.GetElapsedTime().Minutes()
	if elapsed == 0 {
		return 0
	}
	return float64(st.Checked) / elapsed
}

// ETA estimates the time left from the average pace so far
func (st *StatusTracker) ETA() time.Duration {
	if st.Checked == 0 {
		return 0
	}
	perProfile := st.GetElapsedTime() / time.Duration(st.Checked)
	return perProfile * time.Duration(st.Remaining())
}

// Line returns the one-line progress summary
func (st *StatusTracker) Line() string {
	line := fmt.Sprintf("[%s] %d/%d • %s fake • %s genuine",
		st.Bar(BarWidth),
		st.Checked,
		st.Total,
		Red(fmt.Sprint(st.Fake)),
		Green(fmt.Sprint(st.Genuine)),
	)
	if st.Errors > 0 {
		line += " • " + Yellow(fmt.Sprintf("%d errors", st.Errors))
	}
	return line
}

// FormatDuration formats a duration compactly
func FormatDuration(d time.Duration) string {
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	default:
		return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
	}
}
