// Package mock provides controllable host collaborators for tests.
package mock

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/asimihsan/manup/pkg/gate"
)

// Fetcher implements gate.Fetcher with a canned body or error.
type Fetcher struct {
	Body  []byte
	Err   error
	block chan struct{}
	calls atomic.Int32
}

var _ gate.Fetcher = (*Fetcher)(nil)

// NewFetcher creates a fetcher that returns body.
func NewFetcher(body string) *Fetcher {
	return &Fetcher{Body: []byte(body)}
}

// WithError configures the fetcher to return the specified error.
func (f *Fetcher) WithError(err error) *Fetcher {
	f.Err = err
	return f
}

// Blocked makes Get wait until Release is called.
func (f *Fetcher) Blocked() *Fetcher {
	f.block = make(chan struct{})
	return f
}

// Release unblocks pending and future Get calls.
func (f *Fetcher) Release() {
	close(f.block)
}

// Calls returns how many times Get was called.
func (f *Fetcher) Calls() int {
	return int(f.calls.Load())
}

// Get implements gate.Fetcher.
func (f *Fetcher) Get(ctx context.Context, _ string) ([]byte, error) {
	f.calls.Add(1)
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", gate.ErrNetworkFailure, ctx.Err())
		}
	}
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Body, nil
}

// Cache implements gate.CacheStore in memory with injectable failures.
type Cache struct {
	mu     sync.Mutex
	values map[string]string
	GetErr error
	SetErr error
}

var _ gate.CacheStore = (*Cache)(nil)

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{values: map[string]string{}}
}

// WithValue stores value under key.
func (c *Cache) WithValue(key, value string) *Cache {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = value
	return c
}

// Value returns what is stored under key.
func (c *Cache) Value(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.values[key]
	return v, ok
}

// Get implements gate.CacheStore.
func (c *Cache) Get(_ context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.GetErr != nil {
		return "", c.GetErr
	}
	v, ok := c.values[key]
	if !ok {
		return "", gate.ErrCacheMiss
	}
	return v, nil
}

// Set implements gate.CacheStore.
func (c *Cache) Set(_ context.Context, key, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.SetErr != nil {
		return c.SetErr
	}
	c.values[key] = value
	return nil
}

// Platform implements gate.Platform for a single named platform.
type Platform struct {
	Name     string
	ReadyErr error
	ready    chan struct{}
}

var _ gate.Platform = (*Platform)(nil)

// NewPlatform creates a platform that is immediately ready.
func NewPlatform(name string) *Platform {
	return &Platform{Name: name}
}

// NotReady makes Ready wait until MarkReady is called.
func (p *Platform) NotReady() *Platform {
	p.ready = make(chan struct{})
	return p
}

// MarkReady releases Ready.
func (p *Platform) MarkReady() {
	close(p.ready)
}

// Is implements gate.Platform.
func (p *Platform) Is(name string) bool {
	return p.Name == name
}

// Ready implements gate.Platform.
func (p *Platform) Ready(ctx context.Context) error {
	if p.ready != nil {
		select {
		case <-p.ready:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return p.ReadyErr
}

// AppInfo implements gate.AppInfo.
type AppInfo struct {
	Version    string
	Name       string
	VersionErr error
}

var _ gate.AppInfo = (*AppInfo)(nil)

// NewAppInfo creates app info with the given version and name.
func NewAppInfo(version, name string) *AppInfo {
	return &AppInfo{Version: version, Name: name}
}

// VersionNumber implements gate.AppInfo.
func (a *AppInfo) VersionNumber(context.Context) (string, error) {
	if a.VersionErr != nil {
		return "", a.VersionErr
	}
	return a.Version, nil
}

// AppName implements gate.AppInfo.
func (a *AppInfo) AppName(context.Context) (string, error) {
	return a.Name, nil
}

// Alert is a dialog created through Presenter.
type Alert struct {
	Spec gate.AlertSpec

	mu        sync.Mutex
	presented bool
	dismissed bool
}

// Present implements gate.Dialog.
func (a *Alert) Present(context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.presented = true
	return nil
}

// Presented reports whether Present was called.
func (a *Alert) Presented() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.presented
}

// Dismissed reports whether a tapped button closed the alert.
func (a *Alert) Dismissed() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.dismissed
}

// Tap runs the handler of the button labelled text, the way a user tap would.
func (a *Alert) Tap(text string) error {
	for _, b := range a.Spec.Buttons {
		if b.Text != text {
			continue
		}
		keepOpen := b.Handler != nil && !b.Handler()
		if !keepOpen {
			a.mu.Lock()
			a.dismissed = true
			a.mu.Unlock()
		}
		return nil
	}
	return fmt.Errorf("no button %q", text)
}

// Presenter implements gate.AlertPresenter and hands every created alert to
// the test through Alerts.
type Presenter struct {
	Alerts    chan *Alert
	CreateErr error
}

var _ gate.AlertPresenter = (*Presenter)(nil)

// NewPresenter creates a presenter with room for a few alerts.
func NewPresenter() *Presenter {
	return &Presenter{Alerts: make(chan *Alert, 8)}
}

// Create implements gate.AlertPresenter.
func (p *Presenter) Create(_ context.Context, spec gate.AlertSpec) (gate.Dialog, error) {
	if p.CreateErr != nil {
		return nil, p.CreateErr
	}
	a := &Alert{Spec: spec}
	p.Alerts <- a
	return a, nil
}

// Opener implements gate.LinkOpener and records what it opened.
type Opener struct {
	mu     sync.Mutex
	opened []string
}

var _ gate.LinkOpener = (*Opener)(nil)

// Open implements gate.LinkOpener.
func (o *Opener) Open(_ context.Context, url, target string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.opened = append(o.opened, target+" "+url)
	return nil
}

// Opened returns every "target url" pair opened so far.
func (o *Opener) Opened() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.opened...)
}

// Translator implements gate.TranslationLoader by echoing keys, so tests can
// tell translated text from built-in text.
type Translator struct {
	Current, Default string

	mu     sync.Mutex
	loaded map[string]map[string]string
}

var _ gate.TranslationLoader = (*Translator)(nil)

// NewTranslator creates a translator with the given languages.
func NewTranslator(current, def string) *Translator {
	return &Translator{Current: current, Default: def, loaded: map[string]map[string]string{}}
}

// Instant implements gate.Translator as "key|app=value".
func (t *Translator) Instant(key string, params map[string]string) string {
	if app, ok := params["app"]; ok {
		return key + "|app=" + app
	}
	return key
}

// CurrentLang implements gate.TranslationLoader.
func (t *Translator) CurrentLang() string { return t.Current }

// DefaultLang implements gate.TranslationLoader.
func (t *Translator) DefaultLang() string { return t.Default }

// SetTranslation implements gate.TranslationLoader.
func (t *Translator) SetTranslation(lang string, translations map[string]string, _ bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.loaded[lang] = translations
}

// Loaded returns the translations loaded for lang.
func (t *Translator) Loaded(lang string) (map[string]string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	m, ok := t.loaded[lang]
	return m, ok
}
