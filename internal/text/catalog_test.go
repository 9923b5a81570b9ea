package text

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asimihsan/manup/internal/host/mock"
)

func TestBundledCatalogs(t *testing.T) {
	catalogs, err := Bundled()
	require.NoError(t, err)

	assert.Equal(t, []string{"ar", "en", "es", "it"}, Languages())
	for lang, catalog := range catalogs {
		for _, key := range AllKeys {
			assert.NotEmpty(t, catalog[string(key)], "%s missing %s", lang, key)
		}
	}
	assert.Equal(t, "Actualizar", catalogs["es"]["manup.buttons.update"])
}

func TestFlattenCatalog(t *testing.T) {
	flat, err := FlattenCatalog([]byte(`{"manup": {"buttons": {"later": "Later"}}, "top": "x"}`))
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"manup.buttons.later": "Later", "top": "x"}, flat)

	_, err = FlattenCatalog([]byte(`{"manup": {"count": 3}}`))
	assert.Error(t, err)

	_, err = FlattenCatalog([]byte(`[`))
	assert.Error(t, err)
}

func TestLoadTranslations(t *testing.T) {
	t.Run("Current language bundled", func(t *testing.T) {
		tr := mock.NewTranslator("it", "en")
		LoadTranslations(tr)

		it, ok := tr.Loaded("it")
		require.True(t, ok)
		assert.Equal(t, "Aggiorna", it["manup.buttons.update"])
		_, ok = tr.Loaded("en")
		assert.False(t, ok)
	})

	t.Run("Regional current language uses base", func(t *testing.T) {
		tr := mock.NewTranslator("es-MX", "en")
		LoadTranslations(tr)

		es, ok := tr.Loaded("es-MX")
		require.True(t, ok)
		assert.Equal(t, "Ahora No", es["manup.buttons.later"])
	})

	t.Run("Default language bundled", func(t *testing.T) {
		tr := mock.NewTranslator("fr", "ar")
		LoadTranslations(tr)

		ar, ok := tr.Loaded("ar")
		require.True(t, ok)
		assert.Equal(t, "تحديث", ar["manup.buttons.update"])
	})

	t.Run("English as last resort under default language", func(t *testing.T) {
		tr := mock.NewTranslator("fr", "de")
		LoadTranslations(tr)

		de, ok := tr.Loaded("de")
		require.True(t, ok)
		assert.Equal(t, "Update", de["manup.buttons.update"])
	})
}

func TestCatalogTranslator(t *testing.T) {
	tr := NewCatalogTranslator("es", "en")
	LoadTranslations(tr)

	assert.Equal(t, "Hay disponible una actualización para Grain. ¿Te gustaría actualizar?",
		tr.Instant("manup.optional.text", map[string]string{"app": "Grain"}))

	// Falls back to the default language, then to the key.
	tr.SetTranslation("en", map[string]string{"extra.key": "Extra"}, true)
	assert.Equal(t, "Extra", tr.Instant("extra.key", nil))
	assert.Equal(t, "missing.key", tr.Instant("missing.key", nil))

	// Merge keeps existing keys; replace drops them.
	tr.SetTranslation("es", map[string]string{"extra.key": "Extra ES"}, true)
	assert.Equal(t, "Actualizar", tr.Instant("manup.buttons.update", nil))
	tr.SetTranslation("es", map[string]string{"extra.key": "Extra ES"}, false)
	assert.Equal(t, "manup.buttons.update", tr.Instant("manup.buttons.update", nil))
	assert.Equal(t, "Extra ES", tr.Instant("extra.key", nil))

	assert.Equal(t, "es", tr.CurrentLang())
	assert.Equal(t, "en", tr.DefaultLang())
}
