package logger

import "time"

// LogRequest logs an Instagram API request at a level matching its outcome
func LogRequest(l Logger, method, url string, statusCode int, duration time.Duration) {
	fields := map[string]interface{}{
		"method":   method,
		"url":      url,
		"status":   statusCode,
		"duration": duration,
	}

	switch {
	case statusCode >= 500:
		l.ErrorWithFields("HTTP request server error", fields)
	case statusCode >= 400:
		l.WarnWithFields("HTTP request client error", fields)
	default:
		l.DebugWithFields("HTTP request completed", fields)
	}
}

// LogLoginAttempt logs the outcome of one credential during fallback login
func LogLoginAttempt(l Logger, username string, attempt, total int, err error) {
	fields := map[string]interface{}{
		"account": username,
		"attempt": attempt,
		"total":   total,
	}
	if err != nil {
		l.WithError(err).WarnWithFields("Login failed, trying next account", fields)
		return
	}
	l.InfoWithFields("Logged in", fields)
}

// LogAnalysis logs the verdict for one analyzed liker
func LogAnalysis(l Logger, username, verdict string, score int, errMsg string) {
	fields := map[string]interface{}{
		"username": username,
		"verdict":  verdict,
		"score":    score,
	}
	if errMsg != "" {
		fields["error"] = errMsg
		l.WarnWithFields("Profile could not be analyzed", fields)
		return
	}
	l.DebugWithFields("Profile analyzed", fields)
}
