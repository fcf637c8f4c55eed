package ui

import "igfakecheck/pkg/detector"

// Dashboard shows the progress of an analysis run. Both the plain
// ProgressDisplay and the bubbletea dashboard implement it.
type Dashboard interface {
	detector.Observer
	Fail(err error)
	LogInfo(format string, args ...interface{})
	LogSuccess(format string, args ...interface{})
	LogWarning(format string, args ...interface{})
	LogError(format string, args ...interface{})
}
