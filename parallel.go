package localeflow

import "sync"

// ParallelSegmentLookup checks the translation memory for every segment
// concurrently. Returns known translations keyed by segment hash and the
// deduplicated misses in original segment order. Useful for large documents
// against a networked cache, where sequential round trips dominate.
func ParallelSegmentLookup(cache TranslationCache, segments []Segment, targetLocale string) (map[string]string, []Segment) {
	if cache == nil || len(segments) == 0 {
		return make(map[string]string), dedupeSegments(segments)
	}

	unique := make(map[string]Segment, len(segments))
	for _, seg := range segments {
		if _, ok := unique[seg.Hash]; !ok {
			unique[seg.Hash] = seg
		}
	}

	type lookupResult struct {
		hash  string
		value string
		found bool
	}

	results := make(chan lookupResult, len(unique))
	var wg sync.WaitGroup
	for hash := range unique {
		wg.Add(1)
		go func(h string) {
			defer wg.Done()
			if val, ok := cache.Get(SegmentCacheKey(h, targetLocale)); ok {
				results <- lookupResult{hash: h, value: val, found: true}
			} else {
				results <- lookupResult{hash: h}
			}
		}(hash)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	translations := make(map[string]string)
	missedHashes := make(map[string]bool)
	for res := range results {
		if res.found {
			translations[res.hash] = res.value
		} else {
			missedHashes[res.hash] = true
		}
	}

	// Rebuild the miss list in the original segment order.
	var misses []Segment
	seen := make(map[string]bool)
	for _, seg := range segments {
		if missedHashes[seg.Hash] && !seen[seg.Hash] {
			misses = append(misses, seg)
			seen[seg.Hash] = true
		}
	}
	return translations, misses
}
