package i18n

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_EmbeddedCatalogs(t *testing.T) {
	loc, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "Итого", loc.Text(RU, "total"))
	assert.Equal(t, "Барлығы", loc.Text(KZ, "total"))
	assert.Equal(t, "⚠️ Ең төменгі тапсырыс сомасы — 2,000 тг", loc.Text(KZ, "min_warn", Params{"min": loc.Amount(2000)}))
}

func TestLoad_CatalogsDefineSameKeys(t *testing.T) {
	loc, err := Load()
	require.NoError(t, err)

	for key := range loc.sources[RU] {
		_, ok := loc.sources[KZ][key]
		assert.True(t, ok, "kz catalog misses %q", key)
	}
	for key := range loc.sources[KZ] {
		_, ok := loc.sources[RU][key]
		assert.True(t, ok, "ru catalog misses %q", key)
	}
}

func TestText_Fallbacks(t *testing.T) {
	fsys := fstest.MapFS{
		"locales/ru.yaml": {Data: []byte("lang: ru\ntag: ru\nmessages:\n  only_ru: \"привет {{.name}}\"\n")},
		"locales/kz.yaml": {Data: []byte("lang: kz\ntag: kk\nmessages:\n  other: \"сәлем\"\n")},
	}
	loc, err := LoadFromFS(fsys)
	require.NoError(t, err)

	assert.Equal(t, "привет Айгүл", loc.Text(KZ, "only_ru", Params{"name": "Айгүл"}))
	assert.Equal(t, "unknown_key", loc.Text(RU, "unknown_key"))
	// missing parameter renders the raw template
	assert.Equal(t, "привет {{.name}}", loc.Text(RU, "only_ru"))
	assert.True(t, loc.Has(KZ, "only_ru"))
	assert.False(t, loc.Has(RU, "nope"))
}

func TestLoadFromFS_Errors(t *testing.T) {
	cases := map[string]fstest.MapFS{
		"no files": {},
		"bad tag": {
			"locales/ru.yaml": {Data: []byte("lang: ru\ntag: en\nmessages:\n  a: \"b\"\n")},
		},
		"missing default": {
			"locales/kz.yaml": {Data: []byte("lang: kz\ntag: kk\nmessages:\n  a: \"b\"\n")},
		},
		"broken template": {
			"locales/ru.yaml": {Data: []byte("lang: ru\ntag: ru\nmessages:\n  a: \"{{.b\"\n")},
		},
	}
	for name, fsys := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadFromFS(fsys)
			require.Error(t, err)
		})
	}
}

func TestAmount_Grouping(t *testing.T) {
	loc, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "950", loc.Amount(950))
	assert.Equal(t, "12,500", loc.Amount(12500))
	assert.Equal(t, "1,250,000", loc.Amount(1250000))
}

func TestParseLang(t *testing.T) {
	lang, ok := ParseLang("KK")
	require.True(t, ok)
	assert.Equal(t, KZ, lang)
	_, ok = ParseLang("en")
	assert.False(t, ok)
	assert.Equal(t, "Rus", Localized{RU: "Rus"}.In(KZ))
	assert.Equal(t, "Qaz", Localized{RU: "Rus", KZ: "Qaz"}.In(KZ))
}
