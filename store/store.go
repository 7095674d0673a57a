// Package store provides job-store, document-store, and source-provider
// implementations for the translation pipeline: process-local in-memory
// stores for tests and single-node deployments, and Redis-backed stores for
// durable shared state.
package store

import (
	"time"

	"github.com/ZaguanLabs/localeflow"
)

// queueScore orders the pending queue by (priority, created_at): the integer
// priority occupies the high digits and the creation timestamp in
// milliseconds the low ones, so a lower-priority-number job always sorts
// first and ties break on age. Millisecond timestamps stay well inside
// float64's exact integer range.
func queueScore(priority int, createdAt time.Time) float64 {
	return float64(priority)*1e13 + float64(createdAt.UnixMilli())
}

func cloneJob(j *localeflow.Job) *localeflow.Job {
	if j == nil {
		return nil
	}
	out := *j
	if j.StartedAt != nil {
		t := *j.StartedAt
		out.StartedAt = &t
	}
	if j.CompletedAt != nil {
		t := *j.CompletedAt
		out.CompletedAt = &t
	}
	if j.ReviewScore != nil {
		s := *j.ReviewScore
		out.ReviewScore = &s
	}
	return &out
}
