package localeflow

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Segment is a translatable leaf of a content document.
type Segment struct {
	Path string // dotted path from the document root, e.g. "home.hero.title"
	Text string // leaf text
	Hash string // SHA-256 of the trimmed text
}

// ExcludedPathPrefixes lists dotted-path namespaces whose leaves are never
// translated. These hold metadata and SEO plumbing, not copy.
var ExcludedPathPrefixes = []string{
	"meta",
	"seo",
	"og",
	"_meta",
}

// ExcludedKeys lists leaf keys whose string values are configuration or
// identifiers rather than copy.
var ExcludedKeys = map[string]bool{
	"currency":     true,
	"currencyCode": true,
	"locale":       true,
	"lang":         true,
	"language":     true,
	"version":      true,
	"id":           true,
	"slug":         true,
	"url":          true,
	"href":         true,
	"src":          true,
	"image":        true,
	"icon":         true,
	"video":        true,
	"email":        true,
	"phone":        true,
	"tel":          true,
	"isoCode":      true,
	"countryCode":  true,
	"timezone":     true,
	"dateFormat":   true,
}

// ExcludedValues lists literal string values that look like copy but are
// locale, currency, or format tokens.
var ExcludedValues = map[string]bool{
	"USD": true, "EUR": true, "GBP": true, "SEK": true, "NOK": true,
	"DKK": true, "JPY": true, "CHF": true,
	"en": true, "sv": true, "de": true, "fr": true, "es": true,
	"it": true, "ja": true, "nl": true, "pt": true,
	"YYYY-MM-DD": true, "DD/MM/YYYY": true, "MM/DD/YYYY": true,
}

var (
	urlValuePattern   = regexp.MustCompile(`^(https?://|mailto:|tel:|//)`)
	emailValuePattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	phoneValuePattern = regexp.MustCompile(`^\+?[0-9][0-9 ().\-]{5,}$`)
	timeValuePattern  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}([T ]\d{2}:\d{2}(:\d{2})?(\.\d+)?(Z|[+-]\d{2}:?\d{2})?)?$`)
)

// Extract flattens a document into its ordered list of translatable segments.
// Traversal is depth-first over object keys in insertion order and array
// elements in index order, so the output order is deterministic for a given
// document. Only string leaves that pass the exclusion rules are included.
func Extract(doc *Value) []Segment {
	var out []Segment
	extractInto(doc, "", "", &out)
	return out
}

func extractInto(v *Value, path, key string, out *[]Segment) {
	switch v.Kind() {
	case KindObject:
		for _, k := range v.Keys() {
			child, _ := v.Get(k)
			extractInto(child, joinPath(path, k), k, out)
		}
	case KindArray:
		for i, child := range v.Items() {
			extractInto(child, joinPath(path, strconv.Itoa(i)), key, out)
		}
	case KindString:
		text := v.Text()
		if !translatable(path, key, text) {
			return
		}
		*out = append(*out, Segment{Path: path, Text: text, Hash: HashText(text)})
	}
}

func joinPath(path, component string) string {
	if path == "" {
		return component
	}
	return path + "." + component
}

// translatable applies the exclusion rules: path namespaces, key names, and
// value shapes (URLs, emails, phone numbers, timestamps, locale/currency/
// format literals).
func translatable(path, key, text string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}
	for _, prefix := range ExcludedPathPrefixes {
		if path == prefix || strings.HasPrefix(path, prefix+".") {
			return false
		}
	}
	if ExcludedKeys[key] {
		return false
	}
	if ExcludedValues[text] {
		return false
	}
	trimmed := strings.TrimSpace(text)
	if urlValuePattern.MatchString(trimmed) ||
		emailValuePattern.MatchString(trimmed) ||
		phoneValuePattern.MatchString(trimmed) ||
		timeValuePattern.MatchString(trimmed) {
		return false
	}
	return true
}

// Rebuild deep-clones base and writes each segment's text back at its dotted
// path, creating intermediate object nodes as needed. A path component that
// collides with an existing non-container node is a programmer error and
// panics: segments produced by Extract from the same base can never collide.
func Rebuild(segments []Segment, base *Value) *Value {
	doc := base.Clone()
	for _, seg := range segments {
		setPath(doc, seg.Path, seg.Text)
	}
	return doc
}

func setPath(doc *Value, path, text string) {
	components := strings.Split(path, ".")
	cur := doc
	for _, comp := range components[:len(components)-1] {
		switch cur.Kind() {
		case KindObject:
			child, ok := cur.Get(comp)
			if !ok {
				child = NewObject()
				cur.Set(comp, child)
			}
			cur = child
		case KindArray:
			idx, err := strconv.Atoi(comp)
			if err != nil || cur.Index(idx) == nil {
				panic(fmt.Sprintf("localeflow: path %q indexes array with invalid component %q", path, comp))
			}
			cur = cur.Index(idx)
		default:
			panic(fmt.Sprintf("localeflow: path %q collides with non-container node at %q", path, comp))
		}
	}
	last := components[len(components)-1]
	switch cur.Kind() {
	case KindObject:
		cur.Set(last, NewString(text))
	case KindArray:
		idx, err := strconv.Atoi(last)
		if err != nil || cur.Index(idx) == nil {
			panic(fmt.Sprintf("localeflow: path %q indexes array with invalid component %q", path, last))
		}
		cur.setIndex(idx, NewString(text))
	default:
		panic(fmt.Sprintf("localeflow: path %q collides with non-container node at %q", path, last))
	}
}
