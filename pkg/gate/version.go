package gate

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// ParseVersion parses a major.minor.patch version. A leading "v" or "=" is
// tolerated; anything else that is not strict semver is rejected.
func ParseVersion(s string) (*semver.Version, error) {
	cleaned := strings.TrimSpace(s)
	if trimmed := strings.TrimPrefix(cleaned, "v"); trimmed != cleaned {
		cleaned = trimmed
	} else {
		cleaned = strings.TrimPrefix(cleaned, "=")
	}
	v, err := semver.StrictNewVersion(cleaned)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidVersionFormat, s, err)
	}
	return v, nil
}

// LessThan reports whether version a orders strictly before version b.
// Pre-releases order before their release.
func LessThan(a, b string) (bool, error) {
	va, err := ParseVersion(a)
	if err != nil {
		return false, err
	}
	vb, err := ParseVersion(b)
	if err != nil {
		return false, err
	}
	return va.LessThan(vb), nil
}
