// Package platform picks the policy branch that applies to the running device.
package platform

import (
	"fmt"

	"github.com/asimihsan/manup/pkg/gate"
)

// route maps a recognised platform to the document keys that may hold its
// branch, in order of preference.
type route struct {
	platform string
	keys     []string
}

// routes is checked in order; the first platform the host claims wins.
var routes = []route{
	{platform: gate.PlatformIOS, keys: []string{"ios"}},
	{platform: gate.PlatformAndroid, keys: []string{"android"}},
	{platform: gate.PlatformDesktop, keys: []string{"windows", "desktop"}},
}

// Classify returns the recognised platform name the host reports.
func Classify(p gate.Platform) (string, error) {
	if p == nil {
		return "", fmt.Errorf("%w: no platform configured", gate.ErrUnknownPlatform)
	}
	for _, r := range routes {
		if p.Is(r.platform) {
			return r.platform, nil
		}
	}
	return "", gate.ErrUnknownPlatform
}

// Select returns the branch of doc for the platform the host reports.
func Select(doc gate.PolicyDocument, p gate.Platform) (gate.PolicyBranch, error) {
	if doc == nil {
		return gate.PolicyBranch{}, gate.ErrMissingMetadata
	}

	name, err := Classify(p)
	if err != nil {
		return gate.PolicyBranch{}, err
	}

	for _, r := range routes {
		if r.platform != name {
			continue
		}
		for _, key := range r.keys {
			if branch := doc[key]; branch != nil {
				return *branch, nil
			}
		}
	}
	return gate.PolicyBranch{}, fmt.Errorf("%w: no branch for %s", gate.ErrMissingMetadata, name)
}
