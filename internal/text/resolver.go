package text

import (
	"regexp"

	"github.com/asimihsan/manup/pkg/gate"
)

var placeholder = regexp.MustCompile(`\{\{\s*(\w+)\s*\}\}`)

// Interpolate replaces {{name}} placeholders with params; unknown names are
// left untouched.
func Interpolate(s string, params map[string]string) string {
	return placeholder.ReplaceAllStringFunc(s, func(m string) string {
		name := placeholder.FindStringSubmatch(m)[1]
		if v, ok := params[name]; ok {
			return v
		}
		return m
	})
}

// Resolver picks alert text from, in order: the branch's custom alerts, the
// translator, the built-in English strings.
type Resolver struct {
	translator gate.Translator
}

// NewResolver creates a Resolver. translator may be nil.
func NewResolver(translator gate.Translator) *Resolver {
	return &Resolver{translator: translator}
}

// Resolve returns the text for key.
func (r *Resolver) Resolve(key MessageKey, branch gate.PolicyBranch, appName string) string {
	if text, ok := overrideFor(key, branch); ok {
		return text
	}
	params := map[string]string{"app": appName}
	if r.translator != nil {
		return r.translator.Instant(string(key), params)
	}
	return Interpolate(builtin[key], params)
}
