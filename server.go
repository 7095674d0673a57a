package localeflow

import (
	"context"
	"sync"
	"time"
)

// Server is the read path: it serves per-locale translated documents behind
// a short-lived in-memory cache, falling back to the canonical-locale
// document when a translation is absent. It never writes to the stores and
// never fails a request past validation: the worst case is a fallback or
// placeholder document.
type Server struct {
	docs      DocumentStore
	jobs      JobStore
	source    SourceProvider
	canonical string
	locales   []string
	ttl       time.Duration

	mu    sync.RWMutex
	cache map[string]serveEntry
}

type serveEntry struct {
	doc       *TranslatedDocument
	fallback  bool
	fetchedAt time.Time
}

// ServerOption is a functional option for configuring a Server.
type ServerOption func(*Server)

// WithServeTTL sets the read-path cache TTL (default 5 minutes).
func WithServeTTL(ttl time.Duration) ServerOption {
	return func(s *Server) {
		s.ttl = ttl
	}
}

// WithServeLocales sets the locale codes the server accepts.
func WithServeLocales(locales ...string) ServerOption {
	return func(s *Server) {
		s.locales = locales
	}
}

// WithServeCanonical sets the canonical locale served as the fallback.
func WithServeCanonical(locale string) ServerOption {
	return func(s *Server) {
		s.canonical = locale
	}
}

// NewServer creates a read-path server over the document store, job store,
// and canonical source. The job store may be nil when Status is not needed.
func NewServer(docs DocumentStore, jobs JobStore, source SourceProvider, opts ...ServerOption) *Server {
	s := &Server{
		docs:      docs,
		jobs:      jobs,
		source:    source,
		canonical: DefaultCanonicalLocale,
		locales:   DefaultLocales,
		ttl:       5 * time.Minute,
		cache:     make(map[string]serveEntry),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Quality is the review summary attached to a served document.
type Quality struct {
	Score  int          `json:"score"`
	Status ReviewStatus `json:"status"`
}

// ServeResult is a served document plus staleness and quality annotations.
type ServeResult struct {
	Locale              string              `json:"locale"`
	Document            *TranslatedDocument `json:"document"`
	Cached              bool                `json:"cached"`
	Fallback            bool                `json:"fallback"`
	Quality             *Quality            `json:"quality,omitempty"`
	TranslationComplete bool                `json:"translation_complete"`
}

// Get serves the document for a locale. The lookup order is cache (unless
// force), document store, canonical source with the fallback flag set, and
// finally a built-in placeholder. Every successful read refreshes the cache.
func (s *Server) Get(ctx context.Context, locale string, force bool) (*ServeResult, error) {
	code := NormalizeLocale(locale)
	if !s.supported(code) {
		return nil, &UnsupportedLocaleError{Locale: locale, Supported: s.supportedList()}
	}

	if !force {
		if entry, ok := s.cached(code); ok {
			return s.result(code, entry.doc, true, entry.fallback), nil
		}
	}

	if code != NormalizeLocale(s.canonical) {
		doc, err := s.docs.Load(ctx, code)
		if err == nil {
			s.store(code, doc, false)
			return s.result(code, doc, false, false), nil
		}
		// Missing or unreadable: degrade to the canonical document.
	}

	fallback := code != NormalizeLocale(s.canonical)
	doc, err := s.sourceDocument(ctx, !fallback)
	if err != nil {
		// Even the source is unavailable; serve the placeholder uncached so
		// recovery is picked up immediately.
		return s.result(code, placeholderDocument(s.canonical), false, true), nil
	}
	s.store(code, doc, fallback)
	return s.result(code, doc, false, fallback), nil
}

// StatusResult surfaces the most recent job for a locale.
type StatusResult struct {
	Locale string `json:"locale"`
	Job    *Job   `json:"job,omitempty"`
	Fresh  bool   `json:"fresh"`
}

// Status reports the latest translation job for the locale and whether its
// completed output still matches the live source fingerprint. Observability
// only; content serving does not depend on it.
func (s *Server) Status(ctx context.Context, locale string) (*StatusResult, error) {
	code := NormalizeLocale(locale)
	if !s.supported(code) {
		return nil, &UnsupportedLocaleError{Locale: locale, Supported: s.supportedList()}
	}
	if s.jobs == nil {
		return &StatusResult{Locale: code}, nil
	}

	job, err := s.jobs.LatestForLocale(ctx, code)
	if err == ErrNotFound {
		return &StatusResult{Locale: code}, nil
	}
	if err != nil {
		return nil, &StoreError{Op: "load latest job", Cause: err}
	}

	result := &StatusResult{Locale: code, Job: job}
	if src, err := s.source.Load(ctx); err == nil {
		result.Fresh = IsFresh(job, Fingerprint(src))
	}
	return result, nil
}

// Flush drops all cached entries. Intended for tests and administrative use.
func (s *Server) Flush() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = make(map[string]serveEntry)
}

func (s *Server) supported(code string) bool {
	for _, l := range s.locales {
		if NormalizeLocale(l) == code {
			return true
		}
	}
	return false
}

func (s *Server) supportedList() []string {
	out := make([]string, len(s.locales))
	for i, l := range s.locales {
		out[i] = NormalizeLocale(l)
	}
	return out
}

func (s *Server) cached(code string) (serveEntry, bool) {
	s.mu.RLock()
	entry, ok := s.cache[code]
	s.mu.RUnlock()
	if !ok {
		return serveEntry{}, false
	}
	if s.ttl > 0 && time.Since(entry.fetchedAt) > s.ttl {
		s.mu.Lock()
		delete(s.cache, code)
		s.mu.Unlock()
		return serveEntry{}, false
	}
	return entry, true
}

func (s *Server) store(code string, doc *TranslatedDocument, fallback bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache[code] = serveEntry{doc: doc, fallback: fallback, fetchedAt: time.Now()}
}

func (s *Server) result(code string, doc *TranslatedDocument, cached, fallback bool) *ServeResult {
	res := &ServeResult{
		Locale:   code,
		Document: doc,
		Cached:   cached,
		Fallback: fallback,
	}
	if doc.Meta.Review != nil {
		res.Quality = &Quality{Score: doc.Meta.Review.Score, Status: doc.Meta.Review.Status}
	}
	res.TranslationComplete = doc.Completion != nil && doc.Completion.Done
	return res
}

// sourceDocument wraps the canonical source as a servable document. The
// completion marker is only attached when the canonical locale itself was
// requested; a fallback substitution is not a completed translation.
func (s *Server) sourceDocument(ctx context.Context, complete bool) (*TranslatedDocument, error) {
	src, err := s.source.Load(ctx)
	if err != nil {
		return nil, err
	}
	doc := &TranslatedDocument{
		Content: src,
		Meta: DocumentMeta{
			Locale:         NormalizeLocale(s.canonical),
			LastUpdated:    time.Now().UTC(),
			TranslatedFrom: NormalizeLocale(s.canonical),
			Provider:       "source",
		},
	}
	if complete {
		doc.Completion = NewCompletionMarker(ReviewExcellent, time.Now().UTC())
	}
	return doc, nil
}

// placeholderDocument is the last-resort response when neither a translation
// nor the canonical source can be read.
func placeholderDocument(canonical string) *TranslatedDocument {
	content := NewObject()
	content.Set("message", NewString("Content is temporarily unavailable."))
	return &TranslatedDocument{
		Content: content,
		Meta: DocumentMeta{
			Locale:         NormalizeLocale(canonical),
			LastUpdated:    time.Now().UTC(),
			TranslatedFrom: NormalizeLocale(canonical),
			Provider:       "placeholder",
		},
	}
}
