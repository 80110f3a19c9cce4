package i18n

import (
	"strings"

	"golang.org/x/text/language"
)

// Lang is a customer-facing language code as stored on a session.
type Lang string

const (
	RU Lang = "ru"
	KZ Lang = "kz"
)

// Default is the language of a brand-new session.
const Default = RU

// ParseLang accepts the bot language codes and their BCP 47 equivalents.
func ParseLang(raw string) (Lang, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "ru", "ru-ru":
		return RU, true
	case "kz", "kk", "kk-kz":
		return KZ, true
	}
	return "", false
}

// Tag maps the bot code to its BCP 47 tag.
func (l Lang) Tag() language.Tag {
	if l == KZ {
		return language.Kazakh
	}
	return language.Russian
}

// Localized is a short piece of reference text in every supported language.
type Localized struct {
	RU string `json:"ru" yaml:"ru" validate:"required"`
	KZ string `json:"kz,omitempty" yaml:"kz"`
}

// In returns the text for lang, falling back to Russian.
func (t Localized) In(lang Lang) string {
	if lang == KZ && t.KZ != "" {
		return t.KZ
	}
	return t.RU
}
