package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"igfakecheck/pkg/detector"
	"igfakecheck/pkg/instagram"
)

// ProgressDisplay is a minimal line-based progress display for analysis runs
type ProgressDisplay struct {
	mu      sync.Mutex
	out     io.Writer
	postRef string
	tracker *StatusTracker
	verbose bool
	inline  bool
}

// NewProgressDisplay creates a progress display writing to out. In verbose
// mode every result is printed on its own line.
func NewProgressDisplay(out io.Writer, postRef string, verbose bool) *ProgressDisplay {
	return &ProgressDisplay{
		out:     out,
		postRef: postRef,
		tracker: NewStatusTracker(0),
		verbose: verbose,
	}
}

// OnStage announces a step of the run
func (p *ProgressDisplay) OnStage(stage string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.breakLine()
	fmt.Fprintf(p.out, "%s %s...\n", Magenta("→"), stage)
}

// OnStart resets the tally for total likers
func (p *ProgressDisplay) OnStart(total int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.tracker = NewStatusTracker(total)
	fmt.Fprintf(p.out, "%s Analyzing %d likers of %s\n", Magenta("→"), total, Cyan(p.postRef))
	if !p.verbose {
		p.printProgress()
	}
}

// OnResult records one analyzed liker
func (p *ProgressDisplay) OnResult(index int, result detector.Result) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.tracker.Record(result)
	if p.verbose {
		p.printResult(index, result)
		return
	}
	p.printProgress()
}

// OnFinish prints the closing summary
func (p *ProgressDisplay) OnFinish(run *detector.Run) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.breakLine()
	elapsed := run.FinishedAt.Sub(run.StartedAt)
	fmt.Fprintf(p.out, "\n%s Analyzed %d of %d likers in %s\n",
		Green("✓"),
		len(run.Results),
		run.Likers,
		FormatDuration(elapsed),
	)
	fmt.Fprintf(p.out, "  %s %d fake, %d genuine\n", Dim("•"), p.tracker.Fake, p.tracker.Genuine)
	if p.tracker.Errors > 0 {
		fmt.Fprintf(p.out, "  %s %d profiles could not be analyzed\n", Dim("•"), p.tracker.Errors)
	}
}

// Fail reports a run that aborted
func (p *ProgressDisplay) Fail(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.breakLine()
	fmt.Fprintf(p.out, "%s %v\n", Red("✗"), err)
}

// LogInfo prints an informational line
func (p *ProgressDisplay) LogInfo(format string, args ...interface{}) {
	p.log(Cyan("•"), format, args...)
}

// LogSuccess prints a success line
func (p *ProgressDisplay) LogSuccess(format string, args ...interface{}) {
	p.log(Green("✓"), format, args...)
}

// LogWarning prints a warning line
func (p *ProgressDisplay) LogWarning(format string, args ...interface{}) {
	p.log(Yellow("⚠"), format, args...)
}

// LogError prints an error line
func (p *ProgressDisplay) LogError(format string, args ...interface{}) {
	p.log(Red("✗"), format, args...)
}

func (p *ProgressDisplay) log(icon, format string, args ...interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.breakLine()
	fmt.Fprintf(p.out, "%s %s\n", icon, fmt.Sprintf(format, args...))
}

// printProgress rewrites the progress line in place
func (p *ProgressDisplay) printProgress() {
	line := p.tracker.Line()
	if eta := p.tracker.ETA(); eta > 0 {
		line += " • " + Dim("eta "+FormatDuration(eta.Round(time.Second)))
	}
	fmt.Fprintf(p.out, "\r%s\r%s", strings.Repeat(" ", 100), line)
	p.inline = true
}

// printResult prints one result line in verbose mode
func (p *ProgressDisplay) printResult(index int, r detector.Result) {
	prefix := fmt.Sprintf("%2d/%d", index+1, p.tracker.Total)
	switch r.Verdict {
	case detector.VerdictFake:
		fmt.Fprintf(p.out, "%s %s @%s %s %s\n", Dim(prefix), Red("✗"), r.Username, Red(fmt.Sprintf("fake (score %d)", r.Score)),
			Dim(instagram.GetUserProfileURL(r.Username)))
	case detector.VerdictGenuine:
		fmt.Fprintf(p.out, "%s %s @%s %s\n", Dim(prefix), Green("✓"), r.Username, Dim(fmt.Sprintf("genuine (score %d)", r.Score)))
	default:
		fmt.Fprintf(p.out, "%s %s @%s %s\n", Dim(prefix), Yellow("?"), r.Username, Yellow(r.Error))
	}
}

// breakLine ends a pending in-place progress line
func (p *ProgressDisplay) breakLine() {
	if p.inline {
		fmt.Fprintln(p.out)
		p.inline = false
	}
}
