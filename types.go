package localeflow

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// TranslationStyle controls the tone and register of translations.
type TranslationStyle string

const (
	// StyleFormal uses formal, professional language suitable for official documents.
	StyleFormal TranslationStyle = "formal"
	// StyleNeutral uses a neutral, professional tone suitable for general content.
	StyleNeutral TranslationStyle = "neutral"
	// StyleCasual uses casual, conversational language suitable for blogs/social media.
	StyleCasual TranslationStyle = "casual"
	// StyleMarketing uses persuasive, engaging language for promotional content.
	StyleMarketing TranslationStyle = "marketing"
	// StyleTechnical uses precise, technical language for documentation.
	StyleTechnical TranslationStyle = "technical"
)

// StyleDescription returns the prompt wording for a translation style.
func StyleDescription(style TranslationStyle) string {
	switch style {
	case StyleFormal:
		return "Use formal, professional language appropriate for official communication."
	case StyleCasual:
		return "Use casual, conversational language, as if talking to a friend."
	case StyleMarketing:
		return "Use persuasive, engaging language that motivates the reader while staying truthful."
	case StyleTechnical:
		return "Use precise, technical language with consistent terminology."
	default:
		return "Use a neutral, professional tone."
	}
}

// JobStatus is the lifecycle state of a translation job.
type JobStatus string

const (
	JobPending    JobStatus = "pending"
	JobProcessing JobStatus = "processing"
	JobCompleted  JobStatus = "completed"
	JobFailed     JobStatus = "failed"
)

// ReviewStatus is the qualitative outcome of a quality review.
type ReviewStatus string

const (
	ReviewPending   ReviewStatus = "pending"
	ReviewExcellent ReviewStatus = "excellent"
	ReviewGood      ReviewStatus = "good"
	ReviewNeedsWork ReviewStatus = "needs_review"
	ReviewPoor      ReviewStatus = "poor"
	ReviewFailed    ReviewStatus = "review_failed"
)

// MaxAttempts is the per-job attempt budget. A job leased this many times
// without completing is left failed and requires administrative regeneration.
const MaxAttempts = 3

// CompletionThreshold is the minimum review score for a translated document
// to carry a completion marker.
const CompletionThreshold = 70

// ReviewStatusForScore maps a 0–100 review score to its band.
func ReviewStatusForScore(score int) ReviewStatus {
	switch {
	case score >= 90:
		return ReviewExcellent
	case score >= 70:
		return ReviewGood
	case score >= 50:
		return ReviewNeedsWork
	default:
		return ReviewPoor
	}
}

// Job is a unit of translation work: "translate the source content into
// locale L at content version F". Jobs are append-only; a regeneration
// creates a new job rather than mutating a finished one.
type Job struct {
	ID                string       `json:"id"`
	Locale            string       `json:"locale"`
	Status            JobStatus    `json:"status"`
	Priority          int          `json:"priority"`
	SourceFingerprint string       `json:"source_fingerprint"`
	Attempts          int          `json:"attempts"`
	CreatedAt         time.Time    `json:"created_at"`
	StartedAt         *time.Time   `json:"started_at,omitempty"`
	CompletedAt       *time.Time   `json:"completed_at,omitempty"`
	ErrorMessage      string       `json:"error_message,omitempty"`
	ReviewStatus      ReviewStatus `json:"review_status"`
	ReviewScore       *int         `json:"review_score,omitempty"`
	ReviewNotes       string       `json:"review_notes,omitempty"`
}

// Eligible reports whether the job can still be leased.
func (j *Job) Eligible() bool {
	return j.Status == JobPending && j.Attempts < MaxAttempts
}

// IsFresh reports whether a completed job still reflects the live source
// content. A job pinned to fingerprint F is fresh iff the current source
// fingerprint equals F.
func IsFresh(job *Job, currentFingerprint string) bool {
	return job != nil && job.Status == JobCompleted && job.SourceFingerprint == currentFingerprint
}

// ReviewResult is the outcome of a quality review call.
type ReviewResult struct {
	Score  int          `json:"score"`
	Status ReviewStatus `json:"status"`
	Notes  string       `json:"notes,omitempty"`
}

// ReviewRecord is the review outcome persisted on a translated document.
type ReviewRecord struct {
	Score      int          `json:"score"`
	Status     ReviewStatus `json:"status"`
	Notes      string       `json:"notes,omitempty"`
	ReviewedAt time.Time    `json:"reviewed_at"`
}

// DocumentMeta is the provenance metadata persisted on a translated document.
type DocumentMeta struct {
	Locale         string        `json:"locale"`
	LastUpdated    time.Time     `json:"last_updated"`
	TranslatedFrom string        `json:"translated_from"`
	Provider       string        `json:"provider"`
	Review         *ReviewRecord `json:"review,omitempty"`
}

// CompletionMarker flags a translated document whose review score met the
// completion threshold.
type CompletionMarker struct {
	Status      string       `json:"status"`
	Quality     ReviewStatus `json:"quality"`
	CompletedAt time.Time    `json:"completed_at"`
	Done        bool         `json:"done"`
}

// NewCompletionMarker builds the marker for a passing review.
func NewCompletionMarker(quality ReviewStatus, at time.Time) *CompletionMarker {
	return &CompletionMarker{
		Status:      "completed",
		Quality:     quality,
		CompletedAt: at,
		Done:        true,
	}
}

// TranslatedDocument is a per-locale translated copy of the source document.
// Its persisted JSON mirrors the content tree's shape, with a "meta" object
// and an optional "completion_marker" object added at the top level.
type TranslatedDocument struct {
	Content    *Value
	Meta       DocumentMeta
	Completion *CompletionMarker
}

// Clone returns a deep copy of the translated document.
func (d *TranslatedDocument) Clone() *TranslatedDocument {
	if d == nil {
		return nil
	}
	out := &TranslatedDocument{
		Content: d.Content.Clone(),
		Meta:    d.Meta,
	}
	if d.Meta.Review != nil {
		r := *d.Meta.Review
		out.Meta.Review = &r
	}
	if d.Completion != nil {
		m := *d.Completion
		out.Completion = &m
	}
	return out
}

// MarshalJSON encodes the document in its persisted shape: the content
// object's own keys first, then "meta", then "completion_marker" if set.
// Those two top-level keys are reserved; content entries under them are
// dropped on marshal.
func (d *TranslatedDocument) MarshalJSON() ([]byte, error) {
	if d.Content == nil || d.Content.Kind() != KindObject {
		return nil, fmt.Errorf("translated document content must be an object")
	}

	content := d.Content
	_, hasMeta := content.Get("meta")
	_, hasMarker := content.Get("completion_marker")
	if hasMeta || hasMarker {
		content = content.Clone()
		content.Delete("meta")
		content.Delete("completion_marker")
	}

	body, err := content.MarshalJSON()
	if err != nil {
		return nil, err
	}
	meta, err := json.Marshal(d.Meta)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.Write(body[:len(body)-1]) // strip closing brace
	if content.Len() > 0 {
		buf.WriteByte(',')
	}
	buf.WriteString(`"meta":`)
	buf.Write(meta)
	if d.Completion != nil {
		marker, err := json.Marshal(d.Completion)
		if err != nil {
			return nil, err
		}
		buf.WriteString(`,"completion_marker":`)
		buf.Write(marker)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes the persisted shape, splitting the meta and marker
// objects back out of the content tree.
func (d *TranslatedDocument) UnmarshalJSON(data []byte) error {
	v, err := ParseDocument(data)
	if err != nil {
		return err
	}
	if v.Kind() != KindObject {
		return fmt.Errorf("translated document must be a JSON object")
	}

	if metaVal, ok := v.Get("meta"); ok {
		raw, err := metaVal.MarshalJSON()
		if err != nil {
			return err
		}
		if err := json.Unmarshal(raw, &d.Meta); err != nil {
			return fmt.Errorf("parsing document meta: %w", err)
		}
		v.Delete("meta")
	}
	if markerVal, ok := v.Get("completion_marker"); ok {
		raw, err := markerVal.MarshalJSON()
		if err != nil {
			return err
		}
		var marker CompletionMarker
		if err := json.Unmarshal(raw, &marker); err != nil {
			return fmt.Errorf("parsing completion marker: %w", err)
		}
		d.Completion = &marker
		v.Delete("completion_marker")
	}
	d.Content = v
	return nil
}

// SourceProvider loads the current canonical source document.
type SourceProvider interface {
	Load(ctx context.Context) (*Value, error)
}

// JobStore is the durable queue of translation jobs. LeaseNext and Lease are
// the one hard concurrency point of the pipeline: both must atomically move
// a job from pending to processing so that two overlapping worker
// activations can never claim the same job.
type JobStore interface {
	// Create persists a new job.
	Create(ctx context.Context, job *Job) error

	// Update persists the current state of an existing job.
	Update(ctx context.Context, job *Job) error

	// Get returns a job by id, or ErrNotFound.
	Get(ctx context.Context, id string) (*Job, error)

	// LeaseNext atomically claims the single most eligible pending job,
	// ordered by (priority ascending, created_at ascending), increments its
	// attempt count and marks it processing. Returns (nil, nil) when no job
	// is eligible.
	LeaseNext(ctx context.Context) (*Job, error)

	// Lease atomically claims the specific pending job with the given id.
	// Returns (nil, nil) when the job is not leasable.
	Lease(ctx context.Context, id string) (*Job, error)

	// LatestForLocale returns the most recently created job for a locale,
	// or ErrNotFound.
	LatestForLocale(ctx context.Context, locale string) (*Job, error)

	// FindByFingerprint returns a job for the locale pinned to the given
	// source fingerprint, or ErrNotFound. Used to deduplicate enqueues.
	FindByFingerprint(ctx context.Context, locale, fingerprint string) (*Job, error)
}

// DocumentStore persists per-locale translated documents.
type DocumentStore interface {
	// Save writes (or overwrites) the translated document for a locale.
	Save(ctx context.Context, locale string, doc *TranslatedDocument) error

	// Load returns the translated document for a locale, or ErrNotFound.
	Load(ctx context.Context, locale string) (*TranslatedDocument, error)
}

// TranslationCache is the interface for segment-level translation memory.
type TranslationCache interface {
	Get(key string) (string, bool)
	Set(key string, value string) error
}
