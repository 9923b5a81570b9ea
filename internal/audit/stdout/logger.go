package stdout

import (
	"context"
	"log/slog"
	"time"

	"github.com/asimihsan/manup/internal/logger"
	"github.com/asimihsan/manup/pkg/gate"
)

// Logger implements gate.AuditLogger on a structured logger.
type Logger struct {
	log *slog.Logger
}

var _ gate.AuditLogger = (*Logger)(nil)

// New creates a new audit logger. A nil logger writes through slog.Default().
func New(l *slog.Logger) *Logger {
	return &Logger{log: logger.WithComponent(l, "audit")}
}

// LogDecision implements gate.AuditLogger.
func (l *Logger) LogDecision(ctx context.Context, runID, platform, runningVersion string, decision gate.Decision, policyID, configID string, evalDuration time.Duration) error {
	l.log.InfoContext(ctx, "audit decision",
		slog.String("run_id", runID),
		slog.String("platform", platform),
		slog.String("running_version", runningVersion),
		slog.String("decision", decision.String()),
		slog.String("policy_id", policyID),
		slog.String("config_id", configID),
		slog.Duration("eval_duration", evalDuration),
	)
	return nil
}

// LogSystemError implements gate.AuditLogger.
func (l *Logger) LogSystemError(ctx context.Context, runID, stage string, systemError error) error {
	l.log.WarnContext(ctx, "audit system error",
		slog.String("run_id", runID),
		slog.String("stage", stage),
		slog.Any("error", systemError),
	)
	return nil
}
