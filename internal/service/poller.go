package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"gapcheck/internal/config"
	"gapcheck/internal/domain"
	"gapcheck/internal/port"
)

// Observer receives every visible state transition. A nil Observer is allowed.
type Observer func(domain.Event)

func (o Observer) emit(ev domain.Event) {
	if o != nil {
		o(ev)
	}
}

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// PollerOption customizes a StatusPoller.
type PollerOption func(*StatusPoller)

// WithSleeper replaces the real timer, mostly for tests.
func WithSleeper(s Sleeper) PollerOption {
	return func(p *StatusPoller) {
		p.sleep = s
	}
}

// StatusPoller drives one session from Launched to a terminal state by
// checking the remote status at a fixed interval. Requests are strictly
// sequential. A poller runs at most once.
type StatusPoller struct {
	api      port.AnalysisAPI
	cfg      config.PollerConfig
	reporter ProgressReporter
	observer Observer
	sleep    Sleeper

	session domain.AnalysisSession
	started bool
}

// NewStatusPoller creates a poller for an already launched session.
func NewStatusPoller(api port.AnalysisAPI, sessionID string, cfg config.PollerConfig, observer Observer, opts ...PollerOption) (*StatusPoller, error) {
	if sessionID == "" {
		return nil, domain.NewValidationError("session_id", "identifier is missing", domain.ErrMissingIdentifier)
	}
	cfg = withPollerDefaults(cfg)

	p := &StatusPoller{
		api:      api,
		cfg:      cfg,
		reporter: NewProgressReporter(cfg.MessageEvery),
		observer: observer,
		sleep:    sleepContext,
		session: domain.AnalysisSession{
			ID:    sessionID,
			State: domain.StateLaunched,
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// withPollerDefaults fills unset fields from config.DefaultPollerConfig.
// A negative GraceAttempts disables the grace window.
func withPollerDefaults(cfg config.PollerConfig) config.PollerConfig {
	def := config.DefaultPollerConfig()
	if cfg.Interval <= 0 {
		cfg.Interval = def.Interval
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = def.MaxAttempts
	}
	switch {
	case cfg.GraceAttempts == 0:
		cfg.GraceAttempts = def.GraceAttempts
	case cfg.GraceAttempts < 0:
		cfg.GraceAttempts = 0
	}
	if cfg.MessageEvery <= 0 {
		cfg.MessageEvery = def.MessageEvery
	}
	return cfg
}

// Session returns a snapshot of the session.
func (p *StatusPoller) Session() domain.AnalysisSession {
	return p.session
}

// Run polls until the session reaches a terminal state.
//
// Completed and TimedOut return a nil error. Failed returns a
// *domain.AnalysisFailedError. Cancellation returns ctx.Err() and leaves the
// session in its last non-terminal state.
func (p *StatusPoller) Run(ctx context.Context) (domain.AnalysisSession, error) {
	if p.started {
		return p.session, fmt.Errorf("statusPoller.Run: session %s already polled", p.session.ID)
	}
	p.started = true

	for attempt := 1; attempt <= p.cfg.MaxAttempts; attempt++ {
		if err := p.sleep(ctx, p.cfg.Interval); err != nil {
			log.Printf("statusPoller.Run: session %s stopped before attempt %d: %v", p.session.ID, attempt, err)
			return p.session, err
		}
		if err := ctx.Err(); err != nil {
			return p.session, err
		}

		p.session.Attempts = attempt
		if p.session.State == domain.StateLaunched {
			p.transition(domain.StatePolling, attempt, nil, "")
		}

		reply, err := p.api.Status(ctx, p.session.ID)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return p.session, ctxErr
			}
			if errors.Is(err, domain.ErrNotFound) && attempt <= p.cfg.GraceAttempts {
				log.Printf("statusPoller.Run: session %s not registered yet (attempt %d/%d)", p.session.ID, attempt, p.cfg.GraceAttempts)
				continue
			}
			log.Printf("statusPoller.Run: session %s failed at attempt %d: %v", p.session.ID, attempt, err)
			return p.fail(attempt, "", err)
		}

		switch reply.Status {
		case domain.RemoteStatusCompleted:
			p.transition(domain.StateCompleted, attempt, reply.Progress, reply.Message)
			log.Printf("statusPoller.Run: session %s completed after %d attempts", p.session.ID, attempt)
			return p.session, nil
		case domain.RemoteStatusFailed:
			log.Printf("statusPoller.Run: session %s reported failure: %s", p.session.ID, reply.Message)
			return p.fail(attempt, reply.Message, nil)
		default:
			p.transition(domain.StatePolling, attempt, reply.Progress, reply.Message)
		}
	}

	p.transition(domain.StateTimedOut, p.session.Attempts, nil, "")
	log.Printf("statusPoller.Run: session %s timed out after %d attempts", p.session.ID, p.session.Attempts)
	return p.session, nil
}

func (p *StatusPoller) fail(attempt int, serverMessage string, cause error) (domain.AnalysisSession, error) {
	p.transition(domain.StateFailed, attempt, nil, failureMessage(serverMessage, cause))
	return p.session, &domain.AnalysisFailedError{
		SessionID: p.session.ID,
		Message:   p.session.Message,
		Cause:     cause,
	}
}

func failureMessage(serverMessage string, cause error) string {
	if serverMessage != "" || cause == nil {
		return serverMessage
	}
	var serr *domain.ServerError
	if errors.As(cause, &serr) && serr.Message != "" {
		return serr.Message
	}
	return ""
}

// transition applies a reply to the session and publishes the visible result.
// Non-terminal updates without anything new to show are not published.
func (p *StatusPoller) transition(state domain.SessionState, attempt int, serverProgress *int, serverMessage string) {
	prevState := p.session.State
	prevPercent := p.session.Progress

	shown := p.reporter.Report(prevPercent, state, attempt, serverProgress, serverMessage)
	p.session.State = state
	p.session.Progress = shown.Percent
	if serverMessage != "" {
		p.session.Message = serverMessage
	}
	if state.IsTerminal() {
		p.session.Message = shown.Message
	}

	if state == prevState && shown.Percent == prevPercent && shown.Message == "" {
		return
	}
	p.observer.emit(domain.Event{
		SessionID: p.session.ID,
		Stage:     domain.StagePoll,
		State:     state,
		Percent:   shown.Percent,
		Message:   shown.Message,
		Attempt:   attempt,
	})
}
