package store

import (
	"context"
	"sync"
	"time"

	"github.com/ZaguanLabs/localeflow"
)

// MemoryJobStore is a mutex-guarded in-memory job store. The lease methods
// mutate under a single lock, which makes pending→processing atomic for
// concurrent worker activations within one process.
type MemoryJobStore struct {
	mu    sync.Mutex
	jobs  map[string]*localeflow.Job
	order []string // creation order, for latest-job lookups
}

// NewMemoryJobStore creates an empty in-memory job store.
func NewMemoryJobStore() *MemoryJobStore {
	return &MemoryJobStore{jobs: make(map[string]*localeflow.Job)}
}

// Create persists a new job.
func (s *MemoryJobStore) Create(_ context.Context, job *localeflow.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = cloneJob(job)
	s.order = append(s.order, job.ID)
	return nil
}

// Update persists the current state of an existing job.
func (s *MemoryJobStore) Update(_ context.Context, job *localeflow.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[job.ID]; !ok {
		return localeflow.ErrNotFound
	}
	s.jobs[job.ID] = cloneJob(job)
	return nil
}

// Get returns a job by id.
func (s *MemoryJobStore) Get(_ context.Context, id string) (*localeflow.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil, localeflow.ErrNotFound
	}
	return cloneJob(job), nil
}

// LeaseNext atomically claims the (priority, created_at)-least eligible
// pending job. Exactly one concurrent caller can win a given job.
func (s *MemoryJobStore) LeaseNext(_ context.Context) (*localeflow.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var best *localeflow.Job
	for _, job := range s.jobs {
		if !job.Eligible() {
			continue
		}
		if best == nil ||
			job.Priority < best.Priority ||
			(job.Priority == best.Priority && job.CreatedAt.Before(best.CreatedAt)) {
			best = job
		}
	}
	if best == nil {
		return nil, nil
	}
	s.lease(best)
	return cloneJob(best), nil
}

// Lease atomically claims the specific pending job with the given id.
func (s *MemoryJobStore) Lease(_ context.Context, id string) (*localeflow.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok || !job.Eligible() {
		return nil, nil
	}
	s.lease(job)
	return cloneJob(job), nil
}

// lease marks a job processing. Caller holds the lock.
func (s *MemoryJobStore) lease(job *localeflow.Job) {
	now := time.Now().UTC()
	job.Status = localeflow.JobProcessing
	job.Attempts++
	job.StartedAt = &now
}

// LatestForLocale returns the most recently created job for a locale.
func (s *MemoryJobStore) LatestForLocale(_ context.Context, locale string) (*localeflow.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.order) - 1; i >= 0; i-- {
		if job := s.jobs[s.order[i]]; job != nil && job.Locale == locale {
			return cloneJob(job), nil
		}
	}
	return nil, localeflow.ErrNotFound
}

// FindByFingerprint returns the most recent job for the locale pinned to the
// given source fingerprint.
func (s *MemoryJobStore) FindByFingerprint(_ context.Context, locale, fingerprint string) (*localeflow.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.order) - 1; i >= 0; i-- {
		job := s.jobs[s.order[i]]
		if job != nil && job.Locale == locale && job.SourceFingerprint == fingerprint {
			return cloneJob(job), nil
		}
	}
	return nil, localeflow.ErrNotFound
}

// Len returns the total number of jobs ever created.
func (s *MemoryJobStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// MemoryDocumentStore is a mutex-guarded in-memory document store.
type MemoryDocumentStore struct {
	mu   sync.RWMutex
	docs map[string]*localeflow.TranslatedDocument
}

// NewMemoryDocumentStore creates an empty in-memory document store.
func NewMemoryDocumentStore() *MemoryDocumentStore {
	return &MemoryDocumentStore{docs: make(map[string]*localeflow.TranslatedDocument)}
}

// Save writes (or overwrites) the translated document for a locale.
func (s *MemoryDocumentStore) Save(_ context.Context, locale string, doc *localeflow.TranslatedDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[locale] = doc.Clone()
	return nil
}

// Load returns the translated document for a locale.
func (s *MemoryDocumentStore) Load(_ context.Context, locale string) (*localeflow.TranslatedDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[locale]
	if !ok {
		return nil, localeflow.ErrNotFound
	}
	return doc.Clone(), nil
}

var (
	_ localeflow.JobStore      = (*MemoryJobStore)(nil)
	_ localeflow.DocumentStore = (*MemoryDocumentStore)(nil)
)
