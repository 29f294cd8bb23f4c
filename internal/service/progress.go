package service

import "gapcheck/internal/domain"

const (
	msgLaunched  = "Analysis started. This may take 2-3 minutes..."
	msgCompleted = "Analysis completed"
	msgFailed    = "Analysis failed"
	msgTimedOut  = "Analysis is taking longer than expected. You can check back later."
)

// Progress is what the user should see after one transition.
type Progress struct {
	Percent int
	Message string
}

// ProgressReporter maps poller state onto user-visible progress. It holds
// only configuration; callers pass the previously displayed percent back in.
type ProgressReporter struct {
	messageEvery int
}

// NewProgressReporter creates a reporter that surfaces non-terminal messages
// on every messageEvery-th attempt.
func NewProgressReporter(messageEvery int) ProgressReporter {
	return ProgressReporter{messageEvery: messageEvery}
}

// Report computes the next display values. Percent never drops below prev.
// Message is non-empty only when it should be shown: on launch, on a
// throttled non-terminal attempt carrying a server message, and on every
// terminal transition.
func (r ProgressReporter) Report(prev int, state domain.SessionState, attempt int, serverProgress *int, serverMessage string) Progress {
	pct := max(0, min(100, prev))
	if serverProgress != nil && *serverProgress > pct {
		pct = min(100, *serverProgress)
	}

	switch state {
	case domain.StateLaunched:
		return Progress{Percent: pct, Message: msgLaunched}
	case domain.StateCompleted:
		return Progress{Percent: 100, Message: orDefault(serverMessage, msgCompleted)}
	case domain.StateFailed:
		return Progress{Percent: pct, Message: orDefault(serverMessage, msgFailed)}
	case domain.StateTimedOut:
		return Progress{Percent: pct, Message: msgTimedOut}
	}

	if serverMessage != "" && r.messageEvery > 0 && attempt > 0 && attempt%r.messageEvery == 0 {
		return Progress{Percent: pct, Message: serverMessage}
	}
	return Progress{Percent: pct}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
