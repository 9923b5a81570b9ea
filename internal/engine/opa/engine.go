package opa

import (
	"context"
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/open-policy-agent/opa/v1/ast"
	"github.com/open-policy-agent/opa/v1/rego"

	"github.com/asimihsan/manup/pkg/gate"
)

// DefaultQuery is the rule every decision module must define.
const DefaultQuery = "data.manup.decision"

//go:embed manup.rego
var defaultModule string

// Engine implements gate.PolicyEngine by evaluating a Rego module.
type Engine struct {
	moduleID string
	query    rego.PreparedEvalQuery
}

var _ gate.PolicyEngine = (*Engine)(nil)

// NewEngine compiles the bundled decision module.
func NewEngine(ctx context.Context) (*Engine, error) {
	return NewEngineFromModule(ctx, "manup.rego", defaultModule)
}

// NewEngineFromFile compiles a decision module read from disk.
func NewEngineFromFile(ctx context.Context, path string) (*Engine, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading policy file %s: %v", gate.ErrPolicyEvaluation, path, err)
	}
	return NewEngineFromModule(ctx, filepath.Base(path), string(src))
}

// NewEngineFromModule compiles src, which must define DefaultQuery.
func NewEngineFromModule(ctx context.Context, name, src string) (*Engine, error) {
	compiler, err := ast.CompileModules(map[string]string{name: src})
	if err != nil {
		return nil, fmt.Errorf("%w: compiling policy module %s: %v", gate.ErrPolicyEvaluation, name, err)
	}

	pq, err := rego.New(
		rego.Query(DefaultQuery),
		rego.Compiler(compiler),
	).PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: preparing policy query '%s': %v", gate.ErrPolicyEvaluation, DefaultQuery, err)
	}

	hash := sha256.Sum256([]byte(src))
	return &Engine{
		moduleID: hex.EncodeToString(hash[:]),
		query:    pq,
	}, nil
}

// ModuleID returns the SHA-256 of the module source.
func (e *Engine) ModuleID() string {
	return e.moduleID
}

// Decide implements gate.PolicyEngine. Versions are validated before the
// module runs because Rego treats a malformed version as undefined.
func (e *Engine) Decide(ctx context.Context, branch gate.PolicyBranch, runningVersion string) (gate.Decision, error) {
	input := map[string]any{
		"version": runningVersion,
		"branch": map[string]any{
			"enabled": branch.Enabled,
			"minimum": branch.Minimum,
			"latest":  branch.Latest,
		},
	}

	if branch.Enabled {
		normalized := make([]string, 0, 3)
		for _, v := range []string{runningVersion, branch.Minimum, branch.Latest} {
			parsed, err := gate.ParseVersion(v)
			if err != nil {
				return gate.DecisionNOP, err
			}
			normalized = append(normalized, parsed.String())
		}
		input["version"] = normalized[0]
		input["branch"] = map[string]any{
			"enabled": true,
			"minimum": normalized[1],
			"latest":  normalized[2],
		}
	}

	resultSet, err := e.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return gate.DecisionNOP, fmt.Errorf("%w: evaluation failed: %v", gate.ErrPolicyEvaluation, err)
	}
	if len(resultSet) == 0 || len(resultSet[0].Expressions) == 0 {
		return gate.DecisionNOP, fmt.Errorf("%w: policy result set is empty or malformed", gate.ErrPolicyEvaluation)
	}

	name, ok := resultSet[0].Expressions[0].Value.(string)
	if !ok {
		return gate.DecisionNOP, fmt.Errorf("%w: unexpected result format %T", gate.ErrPolicyEvaluation, resultSet[0].Expressions[0].Value)
	}
	return gate.ParseDecision(name)
}
