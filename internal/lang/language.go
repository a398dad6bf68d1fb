// Package lang validates and normalizes the caption language codes used
// when picking subtitle tracks.
package lang

import (
	"fmt"
	"strings"
)

// validLanguages contains ISO 639-1 language codes with caption coverage
// on the major platforms. Not exhaustive; users can request additions.
var validLanguages = map[string]bool{
	"af": true, // Afrikaans
	"ar": true, // Arabic
	"bg": true, // Bulgarian
	"bn": true, // Bengali
	"ca": true, // Catalan
	"cs": true, // Czech
	"da": true, // Danish
	"de": true, // German
	"el": true, // Greek
	"en": true, // English
	"es": true, // Spanish
	"et": true, // Estonian
	"fa": true, // Persian
	"fi": true, // Finnish
	"fr": true, // French
	"gu": true, // Gujarati
	"he": true, // Hebrew
	"hi": true, // Hindi
	"hr": true, // Croatian
	"hu": true, // Hungarian
	"id": true, // Indonesian
	"it": true, // Italian
	"ja": true, // Japanese
	"kn": true, // Kannada
	"ko": true, // Korean
	"lt": true, // Lithuanian
	"lv": true, // Latvian
	"mk": true, // Macedonian
	"ml": true, // Malayalam
	"mr": true, // Marathi
	"ms": true, // Malay
	"nl": true, // Dutch
	"no": true, // Norwegian
	"pa": true, // Punjabi
	"pl": true, // Polish
	"pt": true, // Portuguese
	"ro": true, // Romanian
	"ru": true, // Russian
	"sk": true, // Slovak
	"sl": true, // Slovenian
	"sr": true, // Serbian
	"sv": true, // Swedish
	"sw": true, // Swahili
	"ta": true, // Tamil
	"te": true, // Telugu
	"th": true, // Thai
	"tl": true, // Tagalog
	"tr": true, // Turkish
	"uk": true, // Ukrainian
	"ur": true, // Urdu
	"vi": true, // Vietnamese
	"zh": true, // Chinese
}

// Canonical normalizes a language code to the form caption track keys
// use: lowercase base, uppercase region, hyphen separator.
// Accepts: "pt-BR", "pt_br", "PT-BR" -> "pt-BR"; "EN" -> "en".
func Canonical(code string) string {
	normalized := strings.ToLower(strings.ReplaceAll(code, "_", "-"))
	base, region, ok := strings.Cut(normalized, "-")
	if !ok {
		return base
	}
	return base + "-" + strings.ToUpper(region)
}

// BaseCode extracts the ISO 639-1 base code from a locale.
// Examples: "pt-BR" -> "pt", "en" -> "en".
func BaseCode(code string) string {
	base, _, _ := strings.Cut(Canonical(code), "-")
	return base
}

// Validate checks a language code. Regional variants are accepted as
// long as the base language is recognized.
func Validate(code string) error {
	if code == "" {
		return fmt.Errorf("empty language code: %w", ErrInvalid)
	}
	if !validLanguages[BaseCode(code)] {
		return fmt.Errorf("invalid language code %q (use ISO 639-1 codes like 'en', 'fr', 'pt-BR'): %w",
			code, ErrInvalid)
	}
	return nil
}

// ParseList validates a comma-separated preference list and returns the
// canonical codes in order. An empty input yields nil, meaning the
// caller's defaults apply.
func ParseList(csv string) ([]string, error) {
	if strings.TrimSpace(csv) == "" {
		return nil, nil
	}
	var out []string
	for _, part := range strings.Split(csv, ",") {
		code := strings.TrimSpace(part)
		if code == "" {
			continue
		}
		if err := Validate(code); err != nil {
			return nil, err
		}
		out = append(out, Canonical(code))
	}
	return out, nil
}
