// Package client provides a resilient consumer-side loader for translated
// documents. A Loader keeps its own short-lived cache and degrades through
// the default locale down to an empty document rather than surfacing errors
// to rendering code.
package client

import (
	"context"
	"sync"
	"time"

	"github.com/ZaguanLabs/localeflow"
)

// FetchFunc retrieves the served document for a locale. localeflow's
// (*Server).Get satisfies this signature directly; an HTTP client against
// the content endpoint works just as well.
type FetchFunc func(ctx context.Context, locale string, force bool) (*localeflow.ServeResult, error)

// Loader caches fetched documents per locale and never returns an error
// from Get: a failed fetch falls back to the default locale, and a failed
// fallback yields an empty object.
type Loader struct {
	fetch      FetchFunc
	ttl        time.Duration
	defaultLoc string

	mu    sync.RWMutex
	cache map[string]loaderEntry
}

type loaderEntry struct {
	content   *localeflow.Value
	fetchedAt time.Time
}

// LoaderOption is a functional option for configuring a Loader.
type LoaderOption func(*Loader)

// WithTTL sets how long fetched documents are reused (default 5 minutes).
func WithTTL(ttl time.Duration) LoaderOption {
	return func(l *Loader) {
		l.ttl = ttl
	}
}

// WithDefaultLocale sets the locale used as the fallback when a fetch
// fails (default "en").
func WithDefaultLocale(locale string) LoaderOption {
	return func(l *Loader) {
		l.defaultLoc = localeflow.NormalizeLocale(locale)
	}
}

// NewLoader creates a Loader over the given fetch function.
func NewLoader(fetch FetchFunc, opts ...LoaderOption) *Loader {
	l := &Loader{
		fetch:      fetch,
		ttl:        5 * time.Minute,
		defaultLoc: localeflow.DefaultCanonicalLocale,
		cache:      make(map[string]loaderEntry),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Get returns the content for a locale. The resolution chain is the local
// cache, a fetch, the default locale's cache, a default-locale fetch, and
// finally an empty object. Get never returns nil and never fails.
func (l *Loader) Get(ctx context.Context, locale string) *localeflow.Value {
	code := localeflow.NormalizeLocale(locale)

	if content, ok := l.cached(code); ok {
		return content
	}
	if content := l.load(ctx, code); content != nil {
		return content
	}
	if code != l.defaultLoc {
		if content, ok := l.cached(l.defaultLoc); ok {
			return content
		}
		if content := l.load(ctx, l.defaultLoc); content != nil {
			return content
		}
	}
	return localeflow.NewObject()
}

// Preload fetches the given locales up front, warming the cache. Locales
// that fail to load are skipped; the returned count is how many loaded.
func (l *Loader) Preload(ctx context.Context, locales ...string) int {
	loaded := 0
	for _, locale := range locales {
		if l.load(ctx, localeflow.NormalizeLocale(locale)) != nil {
			loaded++
		}
	}
	return loaded
}

// Refresh drops the cached entry for a locale and fetches it again,
// bypassing the server-side cache too.
func (l *Loader) Refresh(ctx context.Context, locale string) *localeflow.Value {
	code := localeflow.NormalizeLocale(locale)
	l.mu.Lock()
	delete(l.cache, code)
	l.mu.Unlock()

	res, err := l.fetch(ctx, code, true)
	if err != nil || res == nil || res.Document == nil || res.Document.Content == nil {
		return l.Get(ctx, code)
	}
	content := res.Document.Content.Clone()
	l.store(code, content)
	return content
}

// Flush drops all cached entries.
func (l *Loader) Flush() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cache = make(map[string]loaderEntry)
}

func (l *Loader) load(ctx context.Context, code string) *localeflow.Value {
	res, err := l.fetch(ctx, code, false)
	if err != nil || res == nil || res.Document == nil || res.Document.Content == nil {
		return nil
	}
	content := res.Document.Content.Clone()
	l.store(code, content)
	return content
}

func (l *Loader) cached(code string) (*localeflow.Value, bool) {
	l.mu.RLock()
	entry, ok := l.cache[code]
	l.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if l.ttl > 0 && time.Since(entry.fetchedAt) > l.ttl {
		l.mu.Lock()
		delete(l.cache, code)
		l.mu.Unlock()
		return nil, false
	}
	return entry.content, true
}

func (l *Loader) store(code string, content *localeflow.Value) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cache[code] = loaderEntry{content: content, fetchedAt: time.Now()}
}
