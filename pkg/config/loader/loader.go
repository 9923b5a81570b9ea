// Package loader memoises the gate configuration per file, so repeated
// launches in one process reuse the parsed config and its content hash.
package loader

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/asimihsan/manup/internal/config"
	"github.com/asimihsan/manup/pkg/gate"
)

// fileState identifies one version of a config file on disk.
type fileState struct {
	path    string
	size    int64
	modTime time.Time
}

func (a fileState) same(b fileState) bool {
	return a.path == b.path && a.size == b.size && a.modTime.Equal(b.modTime)
}

type entry struct {
	state    fileState
	cfg      *config.AppConfig
	configID string
}

var current atomic.Pointer[entry]

// LoadFromPathWithSHA returns the gate configuration at path and its config
// ID, the hex SHA-256 of the file. An unchanged file (same path, size and
// mtime) is served from memory. The config is shared: copy before mutating.
func LoadFromPathWithSHA(ctx context.Context, path string) (*config.AppConfig, string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, "", fmt.Errorf("%w: resolving %s: %v", gate.ErrConfigLoad, path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", gate.ErrConfigLoad, err)
	}
	state := fileState{path: abs, size: info.Size(), modTime: info.ModTime()}

	if e := current.Load(); e != nil && e.state.same(state) {
		return e.cfg, e.configID, nil
	}

	raw, err := os.ReadFile(abs)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", gate.ErrConfigLoad, err)
	}
	sum := sha256.Sum256(raw)

	cfg, err := config.LoadFromPath(ctx, abs)
	if err != nil {
		return nil, "", err
	}

	e := &entry{state: state, cfg: cfg, configID: hex.EncodeToString(sum[:])}
	current.Store(e)
	return e.cfg, e.configID, nil
}
