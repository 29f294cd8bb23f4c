package service

import (
	"context"
	"fmt"
	"log"

	"gapcheck/internal/config"
	"gapcheck/internal/domain"
	"gapcheck/internal/port"
)

// Orchestrator runs a whole submission: validate, upload, launch, poll and
// fetch the normalized report. Each call owns its own poller and session, so
// one Orchestrator can serve concurrent submissions.
type Orchestrator struct {
	api        port.AnalysisAPI
	validator  *DocumentValidator
	submitter  *UploadSubmitter
	launcher   *JobLauncher
	pollerCfg  config.PollerConfig
	pollerOpts []PollerOption
}

// NewOrchestrator creates a new Orchestrator.
func NewOrchestrator(api port.AnalysisAPI, validator *DocumentValidator, pollerCfg config.PollerConfig, opts ...PollerOption) *Orchestrator {
	return &Orchestrator{
		api:        api,
		validator:  validator,
		submitter:  NewUploadSubmitter(api),
		launcher:   NewJobLauncher(api),
		pollerCfg:  withPollerDefaults(pollerCfg),
		pollerOpts: opts,
	}
}

// Run submits a new document pair and follows it to a terminal state.
//
// Completed and TimedOut sessions produce an Outcome. Validation, transport,
// server and decode problems are returned as errors before or instead of
// polling; a session that ends in Failed returns *domain.AnalysisFailedError.
func (o *Orchestrator) Run(ctx context.Context, curriculum, standards domain.UploadedDocument, observer Observer) (*domain.Outcome, error) {
	curriculum.Role = domain.RoleCurriculum
	standards.Role = domain.RoleStandards
	if err := o.validator.ValidatePair(curriculum, standards); err != nil {
		observer.emit(domain.Event{Stage: domain.StageValidate, Message: domain.UserMessage(err)})
		return nil, err
	}

	observer.emit(domain.Event{Stage: domain.StageUpload, Message: "Uploading documents..."})
	sub, err := o.submitter.Submit(ctx, curriculum, standards, func(pct int) {
		observer.emit(domain.Event{Stage: domain.StageUpload, Percent: pct})
	})
	if err != nil {
		return nil, fmt.Errorf("uploading documents: %w", err)
	}
	observer.emit(domain.Event{
		SessionID: sub.SessionID,
		Stage:     domain.StageUpload,
		Percent:   100,
		Message:   "Files uploaded successfully",
	})

	if err := o.launcher.Launch(ctx, sub.SessionID, sub.Curriculum.ServerID, sub.Standards.ServerID); err != nil {
		return nil, fmt.Errorf("starting analysis: %w", err)
	}
	shown := NewProgressReporter(o.pollerCfg.MessageEvery).Report(0, domain.StateLaunched, 0, nil, "")
	observer.emit(domain.Event{
		SessionID: sub.SessionID,
		Stage:     domain.StageLaunch,
		State:     domain.StateLaunched,
		Percent:   shown.Percent,
		Message:   shown.Message,
	})

	return o.follow(ctx, sub.SessionID, observer)
}

// Resume polls a session launched earlier, typically one that timed out.
func (o *Orchestrator) Resume(ctx context.Context, sessionID string, observer Observer) (*domain.Outcome, error) {
	log.Printf("orchestrator.Resume: resuming session %s", sessionID)
	return o.follow(ctx, sessionID, observer)
}

// FetchReport downloads and normalizes the report of a finished session
// without polling.
func (o *Orchestrator) FetchReport(ctx context.Context, sessionID string) (*domain.AnalysisReport, error) {
	if sessionID == "" {
		return nil, domain.NewValidationError("session_id", "identifier is missing", domain.ErrMissingIdentifier)
	}
	raw, err := o.api.Report(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("fetching report: %w", err)
	}
	report, err := NormalizeReport(raw)
	if err != nil {
		return nil, err
	}
	if report.ID == "" {
		report.ID = sessionID
	}
	return report, nil
}

func (o *Orchestrator) follow(ctx context.Context, sessionID string, observer Observer) (*domain.Outcome, error) {
	poller, err := NewStatusPoller(o.api, sessionID, o.pollerCfg, observer, o.pollerOpts...)
	if err != nil {
		return nil, err
	}

	session, err := poller.Run(ctx)
	if err != nil {
		return nil, err
	}

	outcome := &domain.Outcome{
		SessionID: session.ID,
		State:     session.State,
		Message:   session.Message,
		Attempts:  session.Attempts,
	}
	if session.State != domain.StateCompleted {
		return outcome, nil
	}

	report, err := o.FetchReport(ctx, session.ID)
	if err != nil {
		log.Printf("orchestrator.follow: session %s completed but report unavailable: %v", session.ID, err)
		return nil, err
	}
	outcome.Report = report
	observer.emit(domain.Event{
		SessionID: session.ID,
		Stage:     domain.StageResult,
		State:     domain.StateCompleted,
		Percent:   100,
		Message:   fmt.Sprintf("Report ready: %d gaps found", len(report.Gaps)),
		Attempt:   session.Attempts,
	})
	return outcome, nil
}
