package localeflow

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Worker orchestrates the translation pipeline: it enqueues jobs when the
// source fingerprint changes, and on each activation leases pending jobs one
// at a time, translating, reviewing, and persisting each before touching the
// next. It is the sole writer of the job store and the document store.
//
// A Worker is not a standing process. An external trigger (timer, cron,
// request handler) calls ProcessPending at a fixed cadence; the job lease is
// atomic at the storage layer, so overlapping activations never double-
// process a job.
type Worker struct {
	jobs       JobStore
	docs       DocumentStore
	source     SourceProvider
	provider   Provider
	translator *BulkTranslator

	locales      []string
	canonical    string
	providerName string
	maxJobs      int
}

// WorkerOption is a functional option for configuring a Worker.
type WorkerOption func(*Worker)

// WithLocales sets the supported target locale codes.
func WithLocales(locales ...string) WorkerOption {
	return func(w *Worker) {
		w.locales = locales
	}
}

// WithCanonicalLocale sets the source-content locale (default "en").
func WithCanonicalLocale(locale string) WorkerOption {
	return func(w *Worker) {
		w.canonical = locale
	}
}

// WithMaxJobsPerRun bounds how many jobs one activation may process.
func WithMaxJobsPerRun(n int) WorkerOption {
	return func(w *Worker) {
		if n > 0 {
			w.maxJobs = n
		}
	}
}

// WithProviderName sets the provider label recorded on document metadata.
func WithProviderName(name string) WorkerOption {
	return func(w *Worker) {
		w.providerName = name
	}
}

// WithTranslator replaces the worker's bulk translator. Use this to attach
// translation memory or tune batching.
func WithTranslator(t *BulkTranslator) WorkerOption {
	return func(w *Worker) {
		w.translator = t
	}
}

// NewWorker creates a Worker over the given stores, source, and provider.
func NewWorker(jobs JobStore, docs DocumentStore, source SourceProvider, provider Provider, opts ...WorkerOption) *Worker {
	w := &Worker{
		jobs:         jobs,
		docs:         docs,
		source:       source,
		provider:     provider,
		locales:      DefaultLocales,
		canonical:    DefaultCanonicalLocale,
		providerName: "openai",
		maxJobs:      5,
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.translator == nil {
		w.translator = NewBulkTranslator(provider, WithSourceLocale(w.canonical))
	}
	return w
}

// Locales returns the supported locale codes.
func (w *Worker) Locales() []string {
	out := make([]string, len(w.locales))
	copy(out, w.locales)
	return out
}

// CanonicalLocale returns the source-content locale.
func (w *Worker) CanonicalLocale() string {
	return w.canonical
}

func (w *Worker) supported(locale string) bool {
	code := NormalizeLocale(locale)
	for _, l := range w.locales {
		if NormalizeLocale(l) == code {
			return true
		}
	}
	return false
}

func (w *Worker) newJob(locale, fingerprint string, priority int) *Job {
	return &Job{
		ID:                uuid.NewString(),
		Locale:            NormalizeLocale(locale),
		Status:            JobPending,
		Priority:          priority,
		SourceFingerprint: fingerprint,
		CreatedAt:         time.Now().UTC(),
		ReviewStatus:      ReviewPending,
	}
}

// EnqueueResult summarizes an enqueue pass.
type EnqueueResult struct {
	Fingerprint string   `json:"fingerprint"`
	Created     []*Job   `json:"created"`
	Skipped     []string `json:"skipped"` // locales already covered at this fingerprint
}

// EnqueueAll creates one pending job per supported non-canonical locale that
// does not already have a job pinned to the current source fingerprint.
// Called from the publish path whenever source content changes; calling it
// with unchanged content is a no-op.
func (w *Worker) EnqueueAll(ctx context.Context) (*EnqueueResult, error) {
	src, err := w.source.Load(ctx)
	if err != nil {
		return nil, &TranslationError{Message: "loading source document", Cause: err}
	}
	fingerprint := Fingerprint(src)
	result := &EnqueueResult{Fingerprint: fingerprint}

	for _, locale := range w.locales {
		// Only the canonical code itself is exempt; regional variants of the
		// canonical language still get their own jobs.
		if NormalizeLocale(locale) == NormalizeLocale(w.canonical) {
			continue
		}

		existing, err := w.jobs.FindByFingerprint(ctx, NormalizeLocale(locale), fingerprint)
		if err != nil && err != ErrNotFound {
			return nil, &StoreError{Op: "find job by fingerprint", Cause: err}
		}
		if existing != nil {
			result.Skipped = append(result.Skipped, NormalizeLocale(locale))
			continue
		}

		job := w.newJob(locale, fingerprint, DefaultPriority(locale))
		if err := w.jobs.Create(ctx, job); err != nil {
			return nil, &StoreError{Op: "create job", Cause: err}
		}
		result.Created = append(result.Created, job)
	}
	return result, nil
}

// RunResult is what a worker activation reports back to its trigger.
type RunResult struct {
	Processed int    `json:"processed_count"`
	Message   string `json:"message"`
}

// ProcessPending leases and processes up to the activation budget of jobs,
// strictly one at a time, then returns control to the trigger. A job spends
// at most one attempt per activation; a transiently failed job goes back to
// pending and is retried by a later activation. ProcessPending never returns
// an error: failures are recorded on the job records and summarized in the
// message.
func (w *Worker) ProcessPending(ctx context.Context) RunResult {
	var attempted, completed, failed int
	leased := make(map[string]bool)
	var deferred []*Job
	defer func() {
		for _, job := range deferred {
			w.unlease(ctx, job)
		}
	}()

	for attempted < w.maxJobs {
		job, err := w.jobs.LeaseNext(ctx)
		if err != nil {
			return RunResult{
				Processed: attempted,
				Message:   fmt.Sprintf("stopped after %d job(s): lease failed: %v", attempted, err),
			}
		}
		if job == nil {
			break
		}
		if leased[job.ID] {
			// A transient failure returned this job to pending. Its retry
			// belongs to a later activation; hold the lease aside so the
			// rest of the queue still gets its turn.
			deferred = append(deferred, job)
			continue
		}
		leased[job.ID] = true
		attempted++
		if err := w.processJob(ctx, job); err != nil {
			failed++
		} else {
			completed++
		}
	}

	msg := fmt.Sprintf("processed %d job(s)", attempted)
	if attempted > 0 {
		msg = fmt.Sprintf("processed %d job(s): %d completed, %d failed", attempted, completed, failed)
	}
	return RunResult{Processed: attempted, Message: msg}
}

// unlease reverses a LeaseNext without consuming an attempt, putting the job
// back in the queue for the next activation.
func (w *Worker) unlease(ctx context.Context, job *Job) {
	job.Attempts--
	job.Status = JobPending
	_ = w.jobs.Update(ctx, job)
}

// Regenerate creates a fresh job for the locale regardless of freshness and
// runs it immediately at the highest priority. Administrative operation: it
// is the only path back for a job that exhausted its attempt budget.
func (w *Worker) Regenerate(ctx context.Context, locale string) (*Job, error) {
	if !w.supported(locale) {
		return nil, &UnsupportedLocaleError{Locale: locale, Supported: w.Locales()}
	}
	if NormalizeLocale(locale) == NormalizeLocale(w.canonical) {
		return nil, &UnsupportedLocaleError{Locale: locale, Supported: w.Locales()}
	}

	src, err := w.source.Load(ctx)
	if err != nil {
		return nil, &TranslationError{Message: "loading source document", Cause: err}
	}

	job := w.newJob(locale, Fingerprint(src), PriorityImmediate)
	if err := w.jobs.Create(ctx, job); err != nil {
		return nil, &StoreError{Op: "create job", Cause: err}
	}

	leased, err := w.jobs.Lease(ctx, job.ID)
	if err != nil {
		return nil, &StoreError{Op: "lease job", Cause: err}
	}
	if leased == nil {
		// A concurrent activation claimed it first; it will be processed there.
		return w.jobs.Get(ctx, job.ID)
	}

	// Failures are recorded on the job, same as the timer path.
	_ = w.processJob(ctx, leased)
	return leased, nil
}

// processJob runs the processing body of the state machine for one leased
// job: extract, translate, review, rebuild, persist, then transition the job
// to completed or record the failure.
func (w *Worker) processJob(ctx context.Context, job *Job) error {
	src, err := w.source.Load(ctx)
	if err != nil {
		return w.failJob(ctx, job, &TranslationError{Message: "loading source document", Cause: err})
	}

	// The job stays pinned to its enqueue-time fingerprint, but translation
	// always runs against the live source. If the source moved on, a newer
	// job covers the newer fingerprint; completing this one is still valid.
	segments := Extract(src)
	originals := make([]string, len(segments))
	for i, seg := range segments {
		originals[i] = seg.Text
	}

	batch, err := w.translator.TranslateSegments(ctx, segments, job.Locale)
	if err != nil {
		return w.failJob(ctx, job, err)
	}

	var review ReviewResult
	if len(segments) > 0 {
		review, err = w.provider.Review(ctx, ReviewRequest{
			Originals:    originals,
			Translations: batch.Texts,
			TargetLocale: job.Locale,
			SourceLocale: w.canonical,
		})
		if err != nil {
			return w.failJob(ctx, job, err)
		}
		if mismatches := MarkupMismatches(originals, batch.Texts); len(mismatches) > 0 {
			note := fmt.Sprintf("markup structure altered in %d segment(s)", len(mismatches))
			if review.Notes != "" {
				review.Notes += "; " + note
			} else {
				review.Notes = note
			}
		}
	}

	translated := make([]Segment, len(segments))
	for i, seg := range segments {
		translated[i] = Segment{Path: seg.Path, Hash: seg.Hash, Text: batch.Texts[i]}
	}
	content := Rebuild(translated, src)

	now := time.Now().UTC()
	doc := &TranslatedDocument{
		Content: content,
		Meta: DocumentMeta{
			Locale:         job.Locale,
			LastUpdated:    now,
			TranslatedFrom: w.canonical,
			Provider:       w.providerName,
		},
	}
	if len(segments) > 0 {
		doc.Meta.Review = &ReviewRecord{
			Score:      review.Score,
			Status:     review.Status,
			Notes:      review.Notes,
			ReviewedAt: now,
		}
		if review.Score >= CompletionThreshold {
			doc.Completion = NewCompletionMarker(review.Status, now)
		}
	}

	if err := w.docs.Save(ctx, job.Locale, doc); err != nil {
		return w.failJob(ctx, job, &StoreError{Op: "save document", Cause: err})
	}

	job.Status = JobCompleted
	job.CompletedAt = &now
	job.ErrorMessage = ""
	if len(segments) > 0 {
		score := review.Score
		job.ReviewStatus = review.Status
		job.ReviewScore = &score
		job.ReviewNotes = review.Notes
	}
	if err := w.jobs.Update(ctx, job); err != nil {
		return &StoreError{Op: "update job", Cause: err}
	}
	return nil
}

// failJob records a processing failure. Structural errors and exhausted
// attempt budgets end the job permanently; anything else returns it to
// pending, where the incremented attempt count is the only retry state.
func (w *Worker) failJob(ctx context.Context, job *Job, cause error) error {
	job.ErrorMessage = cause.Error()
	if IsPermanent(cause) || job.Attempts >= MaxAttempts {
		now := time.Now().UTC()
		job.Status = JobFailed
		job.CompletedAt = &now
	} else {
		job.Status = JobPending
	}
	_ = w.jobs.Update(ctx, job) // the original cause takes precedence
	return cause
}
