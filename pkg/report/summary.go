package report

import (
	"fmt"

	"igfakecheck/pkg/detector"
)

// Summary counts results by verdict
type Summary struct {
	Total   int
	Fake    int
	Genuine int
	Errors  int
}

// Summarize counts the verdicts in results
func Summarize(results []detector.Result) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		switch r.Verdict {
		case detector.VerdictFake:
			s.Fake++
		case detector.VerdictGenuine:
			s.Genuine++
		default:
			s.Errors++
		}
	}
	return s
}

// FakeRatio is the share of analyzed accounts flagged fake, ignoring errors
func (s Summary) FakeRatio() float64 {
	analyzed := s.Fake + s.Genuine
	if analyzed == 0 {
		return 0
	}
	return float64(s.Fake) / float64(analyzed)
}

func (s Summary) String() string {
	return fmt.Sprintf("%d checked: %d fake, %d genuine, %d errors (%.0f%% fake)",
		s.Total, s.Fake, s.Genuine, s.Errors, s.FakeRatio()*100)
}
