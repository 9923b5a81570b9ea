package gate

import "fmt"

// Decision is the outcome of evaluating a policy branch against the running
// app version.
type Decision int

const (
	// DecisionNOP means the app may continue unmodified.
	DecisionNOP Decision = iota
	// DecisionMandatory means the app must be updated before it can be used.
	DecisionMandatory
	// DecisionOptional means an update is available but not required.
	DecisionOptional
	// DecisionMaintenance means the app is disabled on this platform.
	DecisionMaintenance
)

var decisionNames = map[Decision]string{
	DecisionNOP:         "nop",
	DecisionMandatory:   "mandatory",
	DecisionOptional:    "optional",
	DecisionMaintenance: "maintenance",
}

func (d Decision) String() string {
	if name, ok := decisionNames[d]; ok {
		return name
	}
	return fmt.Sprintf("decision(%d)", int(d))
}

// Blocking reports whether the decision prevents the app from continuing.
func (d Decision) Blocking() bool {
	return d == DecisionMandatory || d == DecisionMaintenance
}

// ParseDecision maps a decision name back to its value.
func ParseDecision(name string) (Decision, error) {
	for d, n := range decisionNames {
		if n == name {
			return d, nil
		}
	}
	return DecisionNOP, fmt.Errorf("%w: unknown decision %q", ErrPolicyEvaluation, name)
}

// Status describes where a gate run left the app.
type Status int

const (
	// StatusContinue means the app may proceed.
	StatusContinue Status = iota
	// StatusBlocked means a blocking alert is on screen and the gate will
	// never release for the rest of the process lifetime.
	StatusBlocked
	// StatusPending is returned to a caller whose context ended before the
	// shared run finished. The run itself keeps going.
	StatusPending
)

func (s Status) String() string {
	switch s {
	case StatusContinue:
		return "continue"
	case StatusBlocked:
		return "blocked"
	case StatusPending:
		return "pending"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Outcome is what a gate run hands back to every caller that joined it.
type Outcome struct {
	RunID    string
	Decision Decision
	Status   Status
}
