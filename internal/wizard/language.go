package wizard

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// CanonicalLanguage normalizes a language tag to its base language code,
// e.g. "EN-us" becomes "en".
func CanonicalLanguage(tag string) (string, error) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return "", fmt.Errorf("%w: empty language", ErrUnsupportedLanguage)
	}
	t, err := language.Parse(tag)
	if err != nil || t == language.Und {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedLanguage, tag)
	}
	base, confidence := t.Base()
	if confidence == language.No {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedLanguage, tag)
	}
	return base.String(), nil
}

// LanguageName returns the English name of a language code, or the code
// itself when it has no name.
func LanguageName(code string) string {
	t, err := language.Parse(code)
	if err != nil {
		return code
	}
	if name := display.English.Languages().Name(t); name != "" {
		return name
	}
	return code
}
