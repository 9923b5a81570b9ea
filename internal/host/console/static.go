package console

import (
	"context"
	"strings"

	"github.com/asimihsan/manup/pkg/gate"
)

// Platform implements gate.Platform for a fixed platform name. It is always
// ready.
type Platform struct {
	name string
}

var _ gate.Platform = Platform{}

// NewPlatform creates a Platform. Names are matched case-insensitively.
func NewPlatform(name string) Platform {
	return Platform{name: strings.ToLower(strings.TrimSpace(name))}
}

// Is implements gate.Platform.
func (p Platform) Is(name string) bool {
	return p.name == name
}

// Ready implements gate.Platform.
func (Platform) Ready(context.Context) error {
	return nil
}

// AppInfo implements gate.AppInfo with fixed values.
type AppInfo struct {
	Version string
	Name    string
}

var _ gate.AppInfo = AppInfo{}

// VersionNumber implements gate.AppInfo.
func (a AppInfo) VersionNumber(context.Context) (string, error) {
	return a.Version, nil
}

// AppName implements gate.AppInfo.
func (a AppInfo) AppName(context.Context) (string, error) {
	return a.Name, nil
}
