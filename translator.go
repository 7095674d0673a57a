package localeflow

import (
	"context"
	"time"
)

// Provider is the interface for AI text-generation backends. Translate and
// Review each issue one round trip.
type Provider interface {
	// Translate returns one translation per input text, in input order. A
	// result with a different count is a bug in the provider; conforming
	// implementations return CountMismatchError instead.
	Translate(ctx context.Context, req TranslateRequest) ([]string, error)

	// Review scores a batch of (original, translation) pairs. A response
	// that cannot be parsed is a soft failure: implementations return a
	// ReviewResult with score 0 and status review_failed, not an error.
	Review(ctx context.Context, req ReviewRequest) (ReviewResult, error)
}

// TranslateRequest contains the parameters for a bulk translation request.
type TranslateRequest struct {
	Texts         []string
	TargetLocale  string
	SourceLocale  string
	Context       string            // what the content is for, e.g. "travel marketing site"
	ExcludedTerms []string          // terms to keep verbatim
	Glossary      map[string]string // preferred translations
	Style         TranslationStyle
}

// ReviewRequest contains the parameters for a quality review request. The
// two lists are positionally aligned and always cover the full job.
type ReviewRequest struct {
	Originals    []string
	Translations []string
	TargetLocale string
	SourceLocale string
}

// BulkTranslator translates an ordered segment list in bounded sub-batches,
// consulting the translation memory before calling the provider.
type BulkTranslator struct {
	provider          Provider
	cache             TranslationCache
	sourceLocale      string
	batchSize         int
	batchDelay        time.Duration
	context           string
	excludedTerms     []string
	glossary          map[string]string
	style             TranslationStyle
	parallelThreshold int
}

// TranslatorOption is a functional option for configuring a BulkTranslator.
type TranslatorOption func(*BulkTranslator)

// WithSegmentCache sets the translation-memory cache.
func WithSegmentCache(cache TranslationCache) TranslatorOption {
	return func(t *BulkTranslator) {
		t.cache = cache
	}
}

// WithSourceLocale sets the source locale (default "en").
func WithSourceLocale(locale string) TranslatorOption {
	return func(t *BulkTranslator) {
		t.sourceLocale = locale
	}
}

// WithBatchSize bounds the number of texts per provider request.
func WithBatchSize(n int) TranslatorOption {
	return func(t *BulkTranslator) {
		if n > 0 {
			t.batchSize = n
		}
	}
}

// WithBatchDelay sets the politeness pause between provider requests. The
// delay is a rate-limit courtesy, never an ordering mechanism.
func WithBatchDelay(d time.Duration) TranslatorOption {
	return func(t *BulkTranslator) {
		t.batchDelay = d
	}
}

// WithTranslationContext sets the global content context for prompts.
func WithTranslationContext(ctx string) TranslatorOption {
	return func(t *BulkTranslator) {
		t.context = ctx
	}
}

// WithExcludedTerms sets terms that must never be translated.
func WithExcludedTerms(terms []string) TranslatorOption {
	return func(t *BulkTranslator) {
		t.excludedTerms = terms
	}
}

// WithGlossary sets preferred translations for specific phrases.
func WithGlossary(glossary map[string]string) TranslatorOption {
	return func(t *BulkTranslator) {
		t.glossary = glossary
	}
}

// WithStyle sets the translation style/register.
func WithStyle(style TranslationStyle) TranslatorOption {
	return func(t *BulkTranslator) {
		t.style = style
	}
}

// WithParallelThreshold sets the segment count above which cache lookups run
// in parallel.
func WithParallelThreshold(n int) TranslatorOption {
	return func(t *BulkTranslator) {
		t.parallelThreshold = n
	}
}

// NewBulkTranslator creates a BulkTranslator backed by the given provider.
func NewBulkTranslator(provider Provider, opts ...TranslatorOption) *BulkTranslator {
	t := &BulkTranslator{
		provider:          provider,
		sourceLocale:      DefaultCanonicalLocale,
		batchSize:         40,
		batchDelay:        500 * time.Millisecond,
		style:             StyleMarketing,
		parallelThreshold: 5,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// BatchResult is the outcome of translating a segment list.
type BatchResult struct {
	Texts           []string // one per input segment, in input order
	TranslatedCount int      // segments newly translated by the provider
	CachedCount     int      // segments served from translation memory
}

// TranslateSegments translates the segments into the target locale. The
// result list has exactly one entry per segment, in segment order; a
// provider count mismatch aborts the whole call. Duplicate texts are
// translated once, and memory hits skip the provider entirely.
func (t *BulkTranslator) TranslateSegments(ctx context.Context, segments []Segment, targetLocale string) (*BatchResult, error) {
	result := &BatchResult{Texts: make([]string, len(segments))}
	if len(segments) == 0 {
		return result, nil
	}

	// Source locale requested: nothing to translate.
	if SameLanguage(targetLocale, t.sourceLocale) {
		for i, seg := range segments {
			result.Texts[i] = seg.Text
		}
		return result, nil
	}

	translations, misses := t.lookup(segments, targetLocale)

	for _, batch := range chunkSegments(misses, t.batchSize) {
		texts := make([]string, len(batch))
		for i, seg := range batch {
			texts[i] = seg.Text
		}

		out, err := t.provider.Translate(ctx, TranslateRequest{
			Texts:         texts,
			TargetLocale:  targetLocale,
			SourceLocale:  t.sourceLocale,
			Context:       t.context,
			ExcludedTerms: t.excludedTerms,
			Glossary:      t.glossary,
			Style:         t.style,
		})
		if err != nil {
			return nil, err
		}
		if len(out) != len(batch) {
			return nil, &CountMismatchError{Expected: len(batch), Got: len(out)}
		}

		for i, seg := range batch {
			translations[seg.Hash] = out[i]
			if t.cache != nil {
				_ = t.cache.Set(SegmentCacheKey(seg.Hash, targetLocale), out[i]) // best effort
			}
		}

		if t.batchDelay > 0 && len(misses) > t.batchSize {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(t.batchDelay):
			}
		}
	}

	missed := make(map[string]bool, len(misses))
	for _, seg := range misses {
		missed[seg.Hash] = true
	}
	for i, seg := range segments {
		result.Texts[i] = translations[seg.Hash]
		if missed[seg.Hash] {
			result.TranslatedCount++
		} else {
			result.CachedCount++
		}
	}
	return result, nil
}

// lookup consults the translation memory and returns known translations by
// hash plus the deduplicated list of misses, preserving segment order.
func (t *BulkTranslator) lookup(segments []Segment, targetLocale string) (map[string]string, []Segment) {
	if t.cache == nil {
		return make(map[string]string, len(segments)), dedupeSegments(segments)
	}
	if len(segments) >= t.parallelThreshold {
		return ParallelSegmentLookup(t.cache, segments, targetLocale)
	}

	translations := make(map[string]string)
	var misses []Segment
	seen := make(map[string]bool)
	for _, seg := range segments {
		if _, done := translations[seg.Hash]; done || seen[seg.Hash] {
			continue
		}
		if cached, ok := t.cache.Get(SegmentCacheKey(seg.Hash, targetLocale)); ok {
			translations[seg.Hash] = cached
			continue
		}
		misses = append(misses, seg)
		seen[seg.Hash] = true
	}
	return translations, misses
}

func dedupeSegments(segments []Segment) []Segment {
	var out []Segment
	seen := make(map[string]bool, len(segments))
	for _, seg := range segments {
		if !seen[seg.Hash] {
			out = append(out, seg)
			seen[seg.Hash] = true
		}
	}
	return out
}

func chunkSegments(segments []Segment, size int) [][]Segment {
	if size <= 0 {
		size = len(segments)
	}
	var out [][]Segment
	for start := 0; start < len(segments); start += size {
		end := start + size
		if end > len(segments) {
			end = len(segments)
		}
		out = append(out, segments[start:end])
	}
	return out
}
