package decision

import (
	"context"

	"github.com/asimihsan/manup/pkg/gate"
)

// Engine implements gate.PolicyEngine as a plain decision table.
type Engine struct{}

var _ gate.PolicyEngine = Engine{}

// NewEngine creates a new decision-table engine.
func NewEngine() Engine {
	return Engine{}
}

// Decide implements gate.PolicyEngine. The order of checks matters: a
// disabled branch wins over any version, and being below minimum wins over
// being below latest.
func (Engine) Decide(_ context.Context, branch gate.PolicyBranch, runningVersion string) (gate.Decision, error) {
	return Decide(branch, runningVersion)
}

// Decide maps a branch and the running version to a decision.
func Decide(branch gate.PolicyBranch, runningVersion string) (gate.Decision, error) {
	if !branch.Enabled {
		return gate.DecisionMaintenance, nil
	}

	belowMinimum, err := gate.LessThan(runningVersion, branch.Minimum)
	if err != nil {
		return gate.DecisionNOP, err
	}
	if belowMinimum {
		return gate.DecisionMandatory, nil
	}

	belowLatest, err := gate.LessThan(runningVersion, branch.Latest)
	if err != nil {
		return gate.DecisionNOP, err
	}
	if belowLatest {
		return gate.DecisionOptional, nil
	}

	return gate.DecisionNOP, nil
}
