// Package logger provides structured logging for igfakecheck.
//
// It wraps zerolog behind a small interface so that packages can log with fields
// and tests can swap in a TestLogger that records every message.
//
//	err := logger.Initialize(&cfg.Logging)
//
//	logger.WithField("post", postURL).Info("Starting analysis")
//	logger.WithError(err).Warn("Login failed, trying next account")
//
// Level is one of debug, info, warn, error or disabled. When File is set, log lines
// go to both the console and the file.
package logger
