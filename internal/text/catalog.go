package text

import (
	"embed"
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/language"

	"github.com/asimihsan/manup/pkg/gate"
)

//go:embed i18n/*.json
var catalogFiles embed.FS

var (
	bundledOnce sync.Once
	bundled     map[string]map[string]string
	bundledErr  error
)

// Bundled returns the flattened translations shipped with the module, keyed
// by language.
func Bundled() (map[string]map[string]string, error) {
	bundledOnce.Do(func() {
		bundled, bundledErr = loadCatalogs()
	})
	return bundled, bundledErr
}

func loadCatalogs() (map[string]map[string]string, error) {
	entries, err := catalogFiles.ReadDir("i18n")
	if err != nil {
		return nil, fmt.Errorf("reading catalogs: %w", err)
	}
	out := make(map[string]map[string]string, len(entries))
	for _, e := range entries {
		raw, err := catalogFiles.ReadFile(path.Join("i18n", e.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading catalog %s: %w", e.Name(), err)
		}
		flat, err := FlattenCatalog(raw)
		if err != nil {
			return nil, fmt.Errorf("catalog %s: %w", e.Name(), err)
		}
		out[strings.TrimSuffix(e.Name(), ".json")] = flat
	}
	return out, nil
}

// FlattenCatalog turns nested JSON objects into dotted keys.
func FlattenCatalog(raw []byte) (map[string]string, error) {
	var nested map[string]any
	if err := json.Unmarshal(raw, &nested); err != nil {
		return nil, fmt.Errorf("decoding catalog: %w", err)
	}
	flat := make(map[string]string)
	if err := flatten("", nested, flat); err != nil {
		return nil, err
	}
	return flat, nil
}

func flatten(prefix string, node map[string]any, out map[string]string) error {
	for k, v := range node {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch val := v.(type) {
		case string:
			out[key] = val
		case map[string]any:
			if err := flatten(key, val, out); err != nil {
				return err
			}
		default:
			return fmt.Errorf("catalog key %s: unexpected %T", key, v)
		}
	}
	return nil
}

// Languages lists the bundled languages.
func Languages() []string {
	catalogs, _ := Bundled()
	langs := make([]string, 0, len(catalogs))
	for lang := range catalogs {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}

// lookup finds a bundled catalog for lang, trying the exact tag first and
// then its base language, so "es-MX" uses "es".
func lookup(lang string) (map[string]string, bool) {
	catalogs, err := Bundled()
	if err != nil || lang == "" {
		return nil, false
	}
	if c, ok := catalogs[lang]; ok {
		return c, true
	}
	tag, err := language.Parse(lang)
	if err != nil {
		return nil, false
	}
	base, _ := tag.Base()
	c, ok := catalogs[base.String()]
	return c, ok
}

// LoadTranslations loads bundled text into t: the current language if it is
// bundled, else the default language if it is bundled, else English under the
// default language so raw keys are never shown.
func LoadTranslations(t gate.TranslationLoader) {
	if c, ok := lookup(t.CurrentLang()); ok {
		t.SetTranslation(t.CurrentLang(), c, true)
		return
	}
	if c, ok := lookup(t.DefaultLang()); ok {
		t.SetTranslation(t.DefaultLang(), c, true)
		return
	}
	if c, ok := lookup("en"); ok {
		t.SetTranslation(t.DefaultLang(), c, true)
	}
}

// CatalogTranslator is an in-process gate.TranslationLoader.
type CatalogTranslator struct {
	mu           sync.RWMutex
	current      string
	def          string
	translations map[string]map[string]string
}

var _ gate.TranslationLoader = (*CatalogTranslator)(nil)

// NewCatalogTranslator creates an empty translator for the given languages.
func NewCatalogTranslator(current, def string) *CatalogTranslator {
	return &CatalogTranslator{
		current:      current,
		def:          def,
		translations: make(map[string]map[string]string),
	}
}

// CurrentLang implements gate.TranslationLoader.
func (c *CatalogTranslator) CurrentLang() string { return c.current }

// DefaultLang implements gate.TranslationLoader.
func (c *CatalogTranslator) DefaultLang() string { return c.def }

// SetTranslation implements gate.TranslationLoader.
func (c *CatalogTranslator) SetTranslation(lang string, translations map[string]string, merge bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	existing, ok := c.translations[lang]
	if !merge || !ok {
		existing = make(map[string]string, len(translations))
		c.translations[lang] = existing
	}
	for k, v := range translations {
		existing[k] = v
	}
}

// Instant implements gate.Translator. It looks in the current language, then
// the default language, and returns key itself on a miss.
func (c *CatalogTranslator) Instant(key string, params map[string]string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, lang := range []string{c.current, c.def} {
		if v, ok := c.translations[lang][key]; ok {
			return Interpolate(v, params)
		}
	}
	return key
}
