// Package i18n negotiates the display locale of a request and resolves
// translated names and titles with fallback to the restaurant's default locale.
package i18n

import (
	"golang.org/x/text/language"

	"github.com/galettery/galettery/internal/customizer"
)

// Bundle holds the locales a restaurant publishes translations for
type Bundle struct {
	fallback  language.Tag
	supported []language.Tag
	matcher   language.Matcher
}

// NewBundle builds a bundle whose first supported locale is the default one.
// Unparseable locales are skipped; an empty list falls back to French.
func NewBundle(locales ...string) *Bundle {
	var tags []language.Tag
	for _, l := range locales {
		tag, err := language.Parse(l)
		if err != nil {
			continue
		}
		tags = append(tags, tag)
	}
	if len(tags) == 0 {
		tags = []language.Tag{language.French}
	}
	return &Bundle{
		fallback:  tags[0],
		supported: tags,
		matcher:   language.NewMatcher(tags),
	}
}

// Default returns the default locale
func (b *Bundle) Default() string {
	return b.fallback.String()
}

// Supported lists the published locales, default first
func (b *Bundle) Supported() []string {
	out := make([]string, len(b.supported))
	for i, t := range b.supported {
		out[i] = t.String()
	}
	return out
}

// Negotiate picks the best supported locale for an Accept-Language header or an
// explicit lang parameter
func (b *Bundle) Negotiate(accept string) string {
	if accept == "" {
		return b.Default()
	}
	tags, _, err := language.ParseAcceptLanguage(accept)
	if err != nil || len(tags) == 0 {
		return b.Default()
	}
	_, idx, conf := b.matcher.Match(tags...)
	if conf == language.No {
		return b.Default()
	}
	return b.supported[idx].String()
}

// Translator returns a customizer.Translator for one locale. Lookup tries the
// exact locale, then its base language, then the default-locale string.
func (b *Bundle) Translator(locale string) customizer.Translator {
	tag, err := language.Parse(locale)
	if err != nil || tag == b.fallback {
		return customizer.NoTranslation
	}
	exact := tag.String()
	base, _ := tag.Base()
	short := base.String()

	return customizer.TranslatorFunc(func(translations map[string]string, fallback string) string {
		if v, ok := translations[exact]; ok && v != "" {
			return v
		}
		if v, ok := translations[short]; ok && v != "" {
			return v
		}
		return fallback
	})
}
