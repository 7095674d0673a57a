package localeflow

import "strings"

// DefaultCanonicalLocale is the locale of the source document.
const DefaultCanonicalLocale = "en"

// DefaultLocales is the default set of supported locale codes, canonical
// locale included.
var DefaultLocales = []string{
	"en", "sv", "de", "fr", "es", "it", "ja", "pt", "nl", "da", "nb", "fi",
}

// LocaleNames maps locale codes to human-readable names for AI prompts.
var LocaleNames = map[string]string{
	"en": "English",
	"sv": "Swedish",
	"de": "German",
	"fr": "French",
	"es": "Spanish",
	"it": "Italian",
	"ja": "Japanese",
	"pt": "Portuguese",
	"nl": "Dutch",
	"da": "Danish",
	"nb": "Norwegian Bokmål",
	"fi": "Finnish",
	"pl": "Polish",
	"ru": "Russian",
	"zh": "Chinese (Simplified)",
	"ko": "Korean",
	"ar": "Arabic",
	"he": "Hebrew",
	"tr": "Turkish",
	"cs": "Czech",
	"el": "Greek",
	"hu": "Hungarian",
	"ro": "Romanian",
	"uk": "Ukrainian",
	"vi": "Vietnamese",
	"th": "Thai",
	"hi": "Hindi",
	"id": "Indonesian",
}

// RegionalNames maps full locale codes (language_REGION) to names. Used when
// a regional variant needs a clearer prompt than its base language.
var RegionalNames = map[string]string{
	"en_GB": "English (United Kingdom)",
	"es_MX": "Spanish (Mexico)",
	"pt_BR": "Portuguese (Brazil)",
	"pt_PT": "Portuguese (Portugal)",
	"zh_TW": "Chinese (Traditional)",
	"fr_CA": "French (Canada)",
}

// priorityLocales is the fixed set of locales that lease ahead of the rest.
var priorityLocales = map[string]bool{
	"sv": true,
	"de": true,
	"fr": true,
	"es": true,
}

// Job priorities. Lower leases sooner.
const (
	PriorityImmediate = 0 // administrative regeneration
	PriorityHigh      = 1 // priority locales
	PriorityNormal    = 2 // everything else
)

// DefaultPriority returns the enqueue priority for a locale.
func DefaultPriority(locale string) int {
	if priorityLocales[BaseLocale(locale)] {
		return PriorityHigh
	}
	return PriorityNormal
}

// rtlLocales contains base language codes written right to left.
var rtlLocales = map[string]bool{
	"ar": true,
	"he": true,
	"fa": true,
	"ur": true,
	"ps": true,
}

// LocaleName returns the human-readable name for a locale code, trying the
// regional table first and falling back to the base language, then to the
// code itself.
func LocaleName(locale string) string {
	code := NormalizeLocale(locale)
	if name, ok := RegionalNames[code]; ok {
		return name
	}
	if name, ok := LocaleNames[code]; ok {
		return name
	}
	if name, ok := LocaleNames[BaseLocale(code)]; ok {
		return name
	}
	return locale
}

// NormalizeLocale converts a locale code to the canonical underscore format
// (e.g. "sv-SE" → "sv_SE") and lower-cases the language part.
func NormalizeLocale(locale string) string {
	code := strings.ReplaceAll(locale, "-", "_")
	parts := strings.SplitN(code, "_", 2)
	parts[0] = strings.ToLower(parts[0])
	return strings.Join(parts, "_")
}

// BaseLocale extracts the base language code (e.g. "pt" from "pt_BR").
func BaseLocale(locale string) string {
	return strings.ToLower(strings.SplitN(NormalizeLocale(locale), "_", 2)[0])
}

// Direction returns "rtl" for right-to-left locales, "ltr" otherwise.
func Direction(locale string) string {
	if rtlLocales[BaseLocale(locale)] {
		return "rtl"
	}
	return "ltr"
}

// IsRTL reports whether the locale is written right to left.
func IsRTL(locale string) bool {
	return Direction(locale) == "rtl"
}

// SameLanguage reports whether two locale codes share a base language, e.g.
// "pt" and "pt_BR". Translation is skipped between same-language locales.
func SameLanguage(a, b string) bool {
	return BaseLocale(a) == BaseLocale(b)
}
