package gate

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// AlertText overrides the title and body of one kind of alert.
type AlertText struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

// CustomAlerts carries per-branch alert overrides. Any of them may be nil.
type CustomAlerts struct {
	Mandatory   *AlertText `json:"mandatory,omitempty"`
	Optional    *AlertText `json:"optional,omitempty"`
	Maintenance *AlertText `json:"maintenance,omitempty"`
}

// For returns the override for the alert shown for d, if any.
func (c *CustomAlerts) For(d Decision) *AlertText {
	if c == nil {
		return nil
	}
	switch d {
	case DecisionMandatory:
		return c.Mandatory
	case DecisionOptional:
		return c.Optional
	case DecisionMaintenance:
		return c.Maintenance
	default:
		return nil
	}
}

// PolicyBranch holds the version-gate rules for one platform.
// Minimum <= Latest is expected but not enforced.
type PolicyBranch struct {
	Minimum      string        `json:"minimum"`
	Latest       string        `json:"latest"`
	URL          string        `json:"url"`
	Enabled      bool          `json:"enabled"`
	CustomAlerts *CustomAlerts `json:"customAlerts,omitempty"`
}

// PolicyDocument maps a platform key (ios, android, windows, ...) to its branch.
type PolicyDocument map[string]*PolicyBranch

// ParsePolicyDocument decodes a raw metadata document. An empty body or a JSON
// null is an error, not an empty policy.
func ParsePolicyDocument(raw []byte) (PolicyDocument, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, ErrEmptyResponse
	}

	var doc PolicyDocument
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return nil, fmt.Errorf("decoding metadata: %w", err)
	}
	if doc == nil {
		return nil, ErrEmptyResponse
	}
	return doc, nil
}

// ID returns the SHA-256 of the document's canonical JSON encoding, used to
// trace which policy produced a decision.
func (d PolicyDocument) ID() string {
	if d == nil {
		return ""
	}
	b, err := json.Marshal(d)
	if err != nil {
		return ""
	}
	hash := sha256.Sum256(b)
	return hex.EncodeToString(hash[:])
}

// PolicyEngine maps a policy branch and the running version to a Decision.
type PolicyEngine interface {
	// Decide must return ErrInvalidVersionFormat when either side of a
	// comparison is malformed, and ErrPolicyEvaluation if the evaluation
	// itself fails.
	Decide(ctx context.Context, branch PolicyBranch, runningVersion string) (Decision, error)
}
