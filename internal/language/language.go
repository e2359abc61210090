// Package language normalizes the language identifiers used across the
// catalog. The canonical set is Kazakh, Russian and English; the legacy
// "kz" code still found in older records maps to the ISO "kk".
package language

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// Canonical codes accepted by the catalog and the translation layer.
const (
	Kazakh  = "kk"
	Russian = "ru"
	English = "en"

	// Auto marks an unspecified source language; the remote translator
	// detects it.
	Auto = "auto"
)

var aliases = map[string]string{
	"kz":  Kazakh,
	"kaz": Kazakh,
	"rus": Russian,
	"eng": English,
}

var displayNames = map[string]string{
	Kazakh:  "Қазақша",
	Russian: "Русский",
	English: "English",
}

// Normalize canonicalizes a language code: trims, lowercases, resolves
// legacy aliases and collapses region subtags (ru-RU becomes ru). Empty
// input normalizes to Auto.
func Normalize(code string) (string, error) {
	trimmed := strings.ToLower(strings.TrimSpace(code))
	if trimmed == "" || trimmed == Auto {
		return Auto, nil
	}
	if canonical, ok := aliases[trimmed]; ok {
		return canonical, nil
	}

	tag, err := language.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("unrecognized language code %q: %w", code, err)
	}
	base, _ := tag.Base()
	return base.String(), nil
}

// NormalizeTarget is Normalize for translation targets, where "auto" is
// not a valid answer.
func NormalizeTarget(code string) (string, error) {
	normalized, err := Normalize(code)
	if err != nil {
		return "", err
	}
	if normalized == Auto {
		return "", fmt.Errorf("target language required")
	}
	return normalized, nil
}

// DisplayName returns the native name for a canonical catalog language,
// falling back to the code itself for anything else.
func DisplayName(code string) string {
	if name, ok := displayNames[code]; ok {
		return name
	}
	return code
}

// Supported reports whether code is one of the catalog languages.
func Supported(code string) bool {
	_, ok := displayNames[code]
	return ok
}
