package gate

import "context"

// CacheKey is the single key under which the last good metadata document is
// cached.
const CacheKey = "com.nextfaze.ionic-manup.manup"

// Recognised platform names as understood by Platform.Is.
const (
	PlatformIOS     = "ios"
	PlatformAndroid = "android"
	PlatformDesktop = "desktop"
)

// Fetcher retrieves the raw metadata document from a remote source.
type Fetcher interface {
	// Get must wrap ErrNetworkFailure for transport or status failures.
	Get(ctx context.Context, url string) ([]byte, error)
}

// CacheStore persists strings under a key.
type CacheStore interface {
	// Get must return ErrCacheMiss when nothing is stored under key.
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

// Platform classifies the device the app runs on.
type Platform interface {
	Is(name string) bool
	// Ready blocks until the host platform is ready for the gate to run.
	Ready(ctx context.Context) error
}

// AppInfo exposes the identity of the running app.
type AppInfo interface {
	VersionNumber(ctx context.Context) (string, error)
	AppName(ctx context.Context) (string, error)
}

// Button is one action on an alert. Handler returns false to keep the alert
// open after the action runs.
type Button struct {
	Text    string
	Handler func() bool
}

// AlertSpec describes an alert to render.
type AlertSpec struct {
	BackdropDismiss bool
	Header          string
	SubHeader       string
	Buttons         []Button
}

// Dialog is an alert that has been created but not necessarily shown.
type Dialog interface {
	Present(ctx context.Context) error
}

// AlertPresenter creates alerts.
type AlertPresenter interface {
	Create(ctx context.Context, spec AlertSpec) (Dialog, error)
}

// LinkOpener opens a URL outside the app, in a browser or a store.
type LinkOpener interface {
	Open(ctx context.Context, url, target string) error
}

// Translator looks up a namespaced message key. Misses are the translator's
// problem; Instant always returns a string.
type Translator interface {
	Instant(key string, params map[string]string) string
}

// TranslationLoader is a Translator that accepts bundled translations.
type TranslationLoader interface {
	Translator
	CurrentLang() string
	DefaultLang() string
	SetTranslation(lang string, translations map[string]string, merge bool)
}
