// internal/pkg/i18n/i18n.go
package i18n

import (
	"fmt"

	"golang.org/x/text/language"
)

// Arabic is the primary language and the answer for any client that does not
// clearly ask for English.
var (
	Arabic  = language.Arabic
	English = language.English

	matcher = language.NewMatcher([]language.Tag{Arabic, English})
)

// Negotiate picks the response language from an Accept-Language header.
// Empty, unparsable or unsupported languages resolve to Arabic.
func Negotiate(acceptLanguage string) language.Tag {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return Arabic
	}

	tag, _, conf := matcher.Match(tags...)
	if conf < language.High {
		return Arabic
	}
	base, _ := tag.Base()
	if base.String() == "en" {
		return English
	}
	return Arabic
}

// T renders a message id in the given language. Unknown ids are returned as-is
// so a missing translation never produces an empty message.
func T(lang language.Tag, id string, args ...interface{}) string {
	entry, ok := catalog[id]
	if !ok {
		return id
	}

	text := entry.ar
	if lang == English {
		text = entry.en
	}

	if len(args) > 0 {
		return fmt.Sprintf(text, args...)
	}
	return text
}

// Has reports whether id is a known message id.
func Has(id string) bool {
	_, ok := catalog[id]
	return ok
}
