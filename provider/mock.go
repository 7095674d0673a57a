package provider

import (
	"context"
	"fmt"

	"github.com/ZaguanLabs/localeflow"
)

// MockProvider is a mock AI provider for testing. Unknown texts translate
// to their bracketed original, so tests can spot untranslated strings.
type MockProvider struct {
	Translations map[string]string // source text → translation
	ReviewScore  int               // score returned by Review
	ReviewNotes  string            // notes returned by Review

	TranslateErr error // returned by Translate when set
	ReviewErr    error // returned by Review when set

	// TranslateFunc overrides Translate entirely when set.
	TranslateFunc func(ctx context.Context, req TranslateRequest) ([]string, error)
	// ReviewFunc overrides Review entirely when set.
	ReviewFunc func(ctx context.Context, req ReviewRequest) (ReviewResult, error)

	TranslateCalls int
	ReviewCalls    int
	LastTranslate  *TranslateRequest
	LastReview     *ReviewRequest
}

// NewMockProvider creates a mock provider that scores every review 92.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		Translations: map[string]string{
			"Hello":       "Hej",
			"World":       "Världen",
			"Hello World": "Hej Världen",
		},
		ReviewScore: 92,
		ReviewNotes: "ok",
	}
}

// Translate returns mock translations in input order.
func (m *MockProvider) Translate(ctx context.Context, req TranslateRequest) ([]string, error) {
	m.TranslateCalls++
	m.LastTranslate = &req

	if m.TranslateFunc != nil {
		return m.TranslateFunc(ctx, req)
	}
	if m.TranslateErr != nil {
		return nil, m.TranslateErr
	}

	results := make([]string, len(req.Texts))
	for i, text := range req.Texts {
		if translation, ok := m.Translations[text]; ok {
			results[i] = translation
		} else {
			results[i] = fmt.Sprintf("[%s]", text)
		}
	}
	return results, nil
}

// Review returns the configured mock review result.
func (m *MockProvider) Review(ctx context.Context, req ReviewRequest) (ReviewResult, error) {
	m.ReviewCalls++
	m.LastReview = &req

	if m.ReviewFunc != nil {
		return m.ReviewFunc(ctx, req)
	}
	if m.ReviewErr != nil {
		return ReviewResult{}, m.ReviewErr
	}

	return ReviewResult{
		Score:  m.ReviewScore,
		Status: localeflow.ReviewStatusForScore(m.ReviewScore),
		Notes:  m.ReviewNotes,
	}, nil
}

// Reset clears call counts and recorded requests.
func (m *MockProvider) Reset() {
	m.TranslateCalls = 0
	m.ReviewCalls = 0
	m.LastTranslate = nil
	m.LastReview = nil
}

// Verify MockProvider implements Provider
var _ Provider = (*MockProvider)(nil)
