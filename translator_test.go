package localeflow

import (
	"context"
	"errors"
	"testing"
	"time"
)

// mockProvider is a simple in-package mock for translator tests.
type mockProvider struct {
	translations map[string]string
	callCount    int
	lastTexts    []string
	lastReq      TranslateRequest
	err          error
	short        bool // return one translation too few
}

func newTestProvider() *mockProvider {
	return &mockProvider{
		translations: map[string]string{
			"Hello":              "Hej",
			"World":              "Världen",
			"Discover the World": "Upptäck Världen",
		},
	}
}

func (m *mockProvider) Translate(_ context.Context, req TranslateRequest) ([]string, error) {
	m.callCount++
	m.lastTexts = req.Texts
	m.lastReq = req
	if m.err != nil {
		return nil, m.err
	}

	results := make([]string, len(req.Texts))
	for i, text := range req.Texts {
		if tr, ok := m.translations[text]; ok {
			results[i] = tr
		} else {
			results[i] = "[" + text + "]"
		}
	}
	if m.short && len(results) > 0 {
		results = results[:len(results)-1]
	}
	return results, nil
}

func (m *mockProvider) Review(_ context.Context, _ ReviewRequest) (ReviewResult, error) {
	return ReviewResult{Score: 92, Status: ReviewExcellent}, nil
}

// memoryTM is a trivial in-package translation memory for tests.
type memoryTM struct {
	data map[string]string
}

func newMemoryTM() *memoryTM {
	return &memoryTM{data: make(map[string]string)}
}

func (c *memoryTM) Get(key string) (string, bool) {
	v, ok := c.data[key]
	return v, ok
}

func (c *memoryTM) Set(key, value string) error {
	c.data[key] = value
	return nil
}

func segs(texts ...string) []Segment {
	out := make([]Segment, len(texts))
	for i, text := range texts {
		out[i] = Segment{Path: "p" + string(rune('0'+i)), Text: text, Hash: HashText(text)}
	}
	return out
}

func TestTranslateSegments_Order(t *testing.T) {
	p := newTestProvider()
	tr := NewBulkTranslator(p, WithBatchDelay(0))

	result, err := tr.TranslateSegments(context.Background(), segs("Hello", "World"), "sv")
	if err != nil {
		t.Fatalf("TranslateSegments failed: %v", err)
	}

	want := []string{"Hej", "Världen"}
	for i, text := range want {
		if result.Texts[i] != text {
			t.Errorf("text %d: expected %q, got %q", i, text, result.Texts[i])
		}
	}
	if result.TranslatedCount != 2 || result.CachedCount != 0 {
		t.Errorf("unexpected counts: %+v", result)
	}
}

func TestTranslateSegments_Empty(t *testing.T) {
	p := newTestProvider()
	tr := NewBulkTranslator(p)

	result, err := tr.TranslateSegments(context.Background(), nil, "sv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Texts) != 0 || p.callCount != 0 {
		t.Error("expected no work for an empty segment list")
	}
}

func TestTranslateSegments_SameLanguageShortcut(t *testing.T) {
	p := newTestProvider()
	tr := NewBulkTranslator(p, WithSourceLocale("en"))

	result, err := tr.TranslateSegments(context.Background(), segs("Hello"), "en_GB")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Texts[0] != "Hello" {
		t.Errorf("expected passthrough, got %q", result.Texts[0])
	}
	if p.callCount != 0 {
		t.Error("provider should not be called for the source language")
	}
}

func TestTranslateSegments_CacheHit(t *testing.T) {
	p := newTestProvider()
	tm := newMemoryTM()
	tr := NewBulkTranslator(p, WithSegmentCache(tm), WithBatchDelay(0))

	ctx := context.Background()
	if _, err := tr.TranslateSegments(ctx, segs("Hello", "World"), "sv"); err != nil {
		t.Fatalf("first call failed: %v", err)
	}

	result, err := tr.TranslateSegments(ctx, segs("Hello", "World"), "sv")
	if err != nil {
		t.Fatalf("second call failed: %v", err)
	}
	if p.callCount != 1 {
		t.Errorf("expected 1 provider call, got %d", p.callCount)
	}
	if result.CachedCount != 2 || result.TranslatedCount != 0 {
		t.Errorf("unexpected counts: %+v", result)
	}
	if result.Texts[0] != "Hej" {
		t.Errorf("cached translation lost: %q", result.Texts[0])
	}
}

func TestTranslateSegments_CachePerLocale(t *testing.T) {
	p := newTestProvider()
	tm := newMemoryTM()
	tr := NewBulkTranslator(p, WithSegmentCache(tm), WithBatchDelay(0))

	ctx := context.Background()
	tr.TranslateSegments(ctx, segs("Hello"), "sv")
	tr.TranslateSegments(ctx, segs("Hello"), "de")

	if p.callCount != 2 {
		t.Errorf("expected per-locale cache entries, got %d provider calls", p.callCount)
	}
}

func TestTranslateSegments_DedupesTexts(t *testing.T) {
	p := newTestProvider()
	tr := NewBulkTranslator(p, WithBatchDelay(0))

	result, err := tr.TranslateSegments(context.Background(), segs("Hello", "Hello", "Hello"), "sv")
	if err != nil {
		t.Fatalf("TranslateSegments failed: %v", err)
	}
	if len(p.lastTexts) != 1 {
		t.Errorf("expected 1 deduplicated text, provider saw %d", len(p.lastTexts))
	}
	for i := range result.Texts {
		if result.Texts[i] != "Hej" {
			t.Errorf("text %d: expected Hej, got %q", i, result.Texts[i])
		}
	}
}

func TestTranslateSegments_Batching(t *testing.T) {
	p := newTestProvider()
	tr := NewBulkTranslator(p, WithBatchSize(2), WithBatchDelay(0))

	_, err := tr.TranslateSegments(context.Background(), segs("a", "b", "c", "d", "e"), "sv")
	if err != nil {
		t.Fatalf("TranslateSegments failed: %v", err)
	}
	if p.callCount != 3 {
		t.Errorf("expected 3 batches of size 2, got %d calls", p.callCount)
	}
}

func TestTranslateSegments_CountMismatch(t *testing.T) {
	p := newTestProvider()
	p.short = true
	tr := NewBulkTranslator(p, WithBatchDelay(0))

	_, err := tr.TranslateSegments(context.Background(), segs("Hello", "World"), "sv")
	var mismatch *CountMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected CountMismatchError, got %v", err)
	}
	if mismatch.Expected != 2 || mismatch.Got != 1 {
		t.Errorf("unexpected counts: %+v", mismatch)
	}
	if !IsPermanent(err) {
		t.Error("count mismatch must be permanent")
	}
}

func TestTranslateSegments_ProviderError(t *testing.T) {
	p := newTestProvider()
	p.err = &ProviderError{Message: "boom", Retryable: true}
	tr := NewBulkTranslator(p, WithBatchDelay(0))

	_, err := tr.TranslateSegments(context.Background(), segs("Hello"), "sv")
	if err == nil {
		t.Fatal("expected error")
	}
	if IsPermanent(err) {
		t.Error("provider errors are transient")
	}
}

func TestTranslateSegments_RequestParameters(t *testing.T) {
	p := newTestProvider()
	tr := NewBulkTranslator(p,
		WithBatchDelay(0),
		WithSourceLocale("en"),
		WithTranslationContext("travel site"),
		WithExcludedTerms([]string{"ACME"}),
		WithGlossary(map[string]string{"journey": "resa"}),
		WithStyle(StyleCasual),
	)

	tr.TranslateSegments(context.Background(), segs("Hello"), "sv")

	req := p.lastReq
	if req.TargetLocale != "sv" || req.SourceLocale != "en" {
		t.Errorf("unexpected locales: %+v", req)
	}
	if req.Context != "travel site" || req.Style != StyleCasual {
		t.Errorf("options not forwarded: %+v", req)
	}
	if len(req.ExcludedTerms) != 1 || req.Glossary["journey"] != "resa" {
		t.Errorf("terms not forwarded: %+v", req)
	}
}

func TestTranslateSegments_ContextCancelled(t *testing.T) {
	p := newTestProvider()
	tr := NewBulkTranslator(p, WithBatchSize(1), WithBatchDelay(time.Minute))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := tr.TranslateSegments(ctx, segs("a", "b"), "sv")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
