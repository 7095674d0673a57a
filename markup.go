package localeflow

import (
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// MarkupPreserved reports whether a translated string retains the element
// structure of its original. Content leaves may embed HTML fragments
// (emphasis, links, line breaks); a translation that drops or invents tags
// is flagged so the review record can note it. Plain-text strings always
// pass.
func MarkupPreserved(original, translated string) bool {
	if !strings.Contains(original, "<") && !strings.Contains(translated, "<") {
		return true
	}
	origTags := fragmentTags(original)
	transTags := fragmentTags(translated)
	if len(origTags) != len(transTags) {
		return false
	}
	for i := range origTags {
		if origTags[i] != transTags[i] {
			return false
		}
	}
	return true
}

// MarkupMismatches returns the indices of translation pairs whose markup
// structure differs. The two lists are positionally aligned.
func MarkupMismatches(originals, translations []string) []int {
	var out []int
	for i := range originals {
		if i >= len(translations) {
			break
		}
		if !MarkupPreserved(originals[i], translations[i]) {
			out = append(out, i)
		}
	}
	return out
}

// fragmentTags parses a string as an HTML fragment and returns the sorted
// multiset of element names inside it.
func fragmentTags(s string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return nil
	}

	var tags []string
	doc.Find("body *").Each(func(_ int, sel *goquery.Selection) {
		tags = append(tags, goquery.NodeName(sel))
	})
	sort.Strings(tags)
	return tags
}
