// Package controller runs the update gate: fetch the policy, pick the branch
// for this platform, decide, and present the matching alert.
//
// A Service runs at most once. Every caller of Run shares that run's outcome,
// and any infrastructure failure lets the app continue.
package controller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/asimihsan/manup/internal/logger"
	"github.com/asimihsan/manup/internal/metrics"
	"github.com/asimihsan/manup/internal/platform"
	"github.com/asimihsan/manup/pkg/gate"
)

// MetadataSource acquires and persists policy documents.
type MetadataSource interface {
	Fetch(ctx context.Context, sourceURL string) (gate.PolicyDocument, error)
	LoadFromCache(ctx context.Context) (gate.PolicyDocument, error)
	Save(ctx context.Context, doc gate.PolicyDocument) error
}

// AlertPresenter shows the alert for a decision.
type AlertPresenter interface {
	Present(ctx context.Context, d gate.Decision, branch gate.PolicyBranch) (gate.Status, error)
}

// State is the lifecycle of a Service.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateDone
	StateBlocked
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateDone:
		return "done"
	case StateBlocked:
		return "blocked"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Config wires a Service. Audit and Logger are optional.
type Config struct {
	URL      string
	Metadata MetadataSource
	Platform gate.Platform
	AppInfo  gate.AppInfo
	Engine   gate.PolicyEngine
	Alerts   AlertPresenter
	Audit    gate.AuditLogger

	// ConfigID identifies the host configuration in audit records.
	ConfigID string

	Logger *slog.Logger
}

// Service is the gate controller.
type Service struct {
	cfg Config
	log *slog.Logger

	mu      sync.Mutex
	state   State
	runID   string
	done    chan struct{}
	outcome gate.Outcome
}

// New creates an idle Service.
func New(cfg Config) *Service {
	return &Service{
		cfg: cfg,
		log: logger.WithComponent(cfg.Logger, "controller"),
	}
}

// State reports where the Service is in its lifecycle.
func (s *Service) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Run starts the gate on first call and waits for its outcome. Later and
// concurrent calls join the same run. The run itself is detached from ctx;
// a caller whose ctx ends first gets StatusPending while the run continues.
//
// StatusBlocked means a mandatory update or maintenance notice is on screen
// and the app must not proceed.
func (s *Service) Run(ctx context.Context) gate.Outcome {
	s.mu.Lock()
	if s.state == StateIdle {
		s.state = StateRunning
		s.runID = uuid.NewString()
		s.done = make(chan struct{})
		go s.run(context.WithoutCancel(ctx), s.runID)
	}
	runID, done := s.runID, s.done
	s.mu.Unlock()

	select {
	case <-done:
		return s.outcome
	case <-ctx.Done():
		return gate.Outcome{RunID: runID, Decision: gate.DecisionNOP, Status: gate.StatusPending}
	}
}

func (s *Service) run(ctx context.Context, runID string) {
	log := s.log.With("run_id", runID)

	decision, status, stage, err := s.evaluateRecovered(ctx, runID, log)
	result := status.String()
	if err != nil {
		// Nothing that goes wrong here may block the app.
		decision, status, result = gate.DecisionNOP, gate.StatusContinue, "failed_open"
		log.Warn("gate failed open", "stage", stage, "error", err)
		s.auditError(ctx, runID, stage, err)
	}
	metrics.GateRuns.WithLabelValues(result).Inc()

	s.mu.Lock()
	s.outcome = gate.Outcome{RunID: runID, Decision: decision, Status: status}
	if status == gate.StatusBlocked {
		s.state = StateBlocked
	} else {
		s.state = StateDone
	}
	s.mu.Unlock()
	close(s.done)
}

// evaluateRecovered turns a panicking collaborator into a failed stage.
func (s *Service) evaluateRecovered(ctx context.Context, runID string, log *slog.Logger) (d gate.Decision, status gate.Status, stage string, err error) {
	defer func() {
		if r := recover(); r != nil {
			d, status, stage = gate.DecisionNOP, gate.StatusContinue, "panic"
			err = fmt.Errorf("collaborator panicked: %v", r)
		}
	}()
	return s.evaluate(ctx, runID, log)
}

// evaluate runs the gate steps in order and names the stage that failed.
func (s *Service) evaluate(ctx context.Context, runID string, log *slog.Logger) (gate.Decision, gate.Status, string, error) {
	if err := s.cfg.Platform.Ready(ctx); err != nil {
		return gate.DecisionNOP, gate.StatusContinue, "ready", err
	}

	doc, err := s.Metadata(ctx)
	if err != nil {
		return gate.DecisionNOP, gate.StatusContinue, "fetch", err
	}

	platformName, err := platform.Classify(s.cfg.Platform)
	if err != nil {
		return gate.DecisionNOP, gate.StatusContinue, "resolve", err
	}
	branch, err := s.PlatformData(doc)
	if err != nil {
		return gate.DecisionNOP, gate.StatusContinue, "resolve", err
	}

	start := time.Now()
	decision, running, stage, err := s.decide(ctx, branch)
	evalDuration := time.Since(start)
	if err != nil {
		return gate.DecisionNOP, gate.StatusContinue, stage, err
	}
	metrics.GateDecisions.WithLabelValues(decision.String()).Inc()
	log.Info("gate decision", "platform", platformName, "running_version", running, "decision", decision.String())
	if s.cfg.Audit != nil {
		if err := s.cfg.Audit.LogDecision(ctx, runID, platformName, running, decision, doc.ID(), s.cfg.ConfigID, evalDuration); err != nil {
			log.Warn("audit decision failed", "error", err)
		}
	}

	status, err := s.PresentAlert(ctx, decision, branch)
	if err != nil {
		return decision, gate.StatusContinue, "present", err
	}
	return decision, status, "", nil
}

func (s *Service) auditError(ctx context.Context, runID, stage string, err error) {
	if s.cfg.Audit == nil {
		return
	}
	if auditErr := s.cfg.Audit.LogSystemError(ctx, runID, stage, err); auditErr != nil {
		s.log.Warn("audit system error failed", "error", auditErr)
	}
}

// Metadata fetches the policy document, falling back to the cached copy.
func (s *Service) Metadata(ctx context.Context) (gate.PolicyDocument, error) {
	return s.cfg.Metadata.Fetch(ctx, s.cfg.URL)
}

// MetadataFromStorage returns the cached policy document.
func (s *Service) MetadataFromStorage(ctx context.Context) (gate.PolicyDocument, error) {
	return s.cfg.Metadata.LoadFromCache(ctx)
}

// SaveMetadata replaces the cached policy document.
func (s *Service) SaveMetadata(ctx context.Context, doc gate.PolicyDocument) error {
	return s.cfg.Metadata.Save(ctx, doc)
}

// PlatformData returns the branch of doc that applies to this platform.
func (s *Service) PlatformData(doc gate.PolicyDocument) (gate.PolicyBranch, error) {
	return platform.Select(doc, s.cfg.Platform)
}

// Evaluate decides branch against the running app version.
func (s *Service) Evaluate(ctx context.Context, branch gate.PolicyBranch) (gate.Decision, error) {
	d, _, _, err := s.decide(ctx, branch)
	return d, err
}

// decide returns the decision for branch and the running version it used.
// A disabled branch is maintenance whatever the version, so the version is
// not read at all.
func (s *Service) decide(ctx context.Context, branch gate.PolicyBranch) (d gate.Decision, running, stage string, err error) {
	if !branch.Enabled {
		return gate.DecisionMaintenance, "", "", nil
	}
	running, err = s.cfg.AppInfo.VersionNumber(ctx)
	if err != nil {
		return gate.DecisionNOP, "", "version", fmt.Errorf("reading app version: %w", err)
	}
	d, err = s.cfg.Engine.Decide(ctx, branch, running)
	if err != nil {
		return gate.DecisionNOP, running, "evaluate", err
	}
	return d, running, "", nil
}

// PresentAlert shows the alert for d. NOP shows nothing.
func (s *Service) PresentAlert(ctx context.Context, d gate.Decision, branch gate.PolicyBranch) (gate.Status, error) {
	if d == gate.DecisionNOP {
		return gate.StatusContinue, nil
	}
	if s.cfg.Alerts == nil {
		return gate.StatusContinue, errors.New("no alert presenter configured")
	}
	return s.cfg.Alerts.Present(ctx, d, branch)
}
