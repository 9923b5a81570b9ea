package gate

import (
	"context"
	"time"
)

// AuditLogger persists decision and error information.
type AuditLogger interface {
	// LogDecision records the outcome of a successful evaluation.
	// runID: identifier of the gate run.
	// platform, runningVersion: what was evaluated.
	// policyID, configID: identifiers for traceability.
	// evalDuration: time taken by the PolicyEngine.
	LogDecision(ctx context.Context, runID, platform, runningVersion string, decision Decision, policyID, configID string, evalDuration time.Duration) error

	// LogSystemError records failures the gate swallowed.
	// stage: which step of the run failed (fetch, resolve, evaluate, present).
	LogSystemError(ctx context.Context, runID, stage string, systemError error) error
}
