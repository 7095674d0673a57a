package store

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"

	"github.com/ZaguanLabs/localeflow"
)

func marshalJob(t *testing.T, job *localeflow.Job) string {
	t.Helper()
	data, err := json.Marshal(job)
	if err != nil {
		t.Fatalf("marshal job: %v", err)
	}
	return string(data)
}

func TestQueueScore(t *testing.T) {
	base := time.Now()

	// Priority dominates creation time.
	high := queueScore(localeflow.PriorityHigh, base.Add(time.Hour))
	normal := queueScore(localeflow.PriorityNormal, base)
	if high >= normal {
		t.Errorf("high priority must score below normal: %f vs %f", high, normal)
	}

	// Within a priority, older scores lower.
	older := queueScore(localeflow.PriorityHigh, base)
	newer := queueScore(localeflow.PriorityHigh, base.Add(time.Second))
	if older >= newer {
		t.Errorf("older job must score below newer: %f vs %f", older, newer)
	}
}

func TestRedisJobStore_Create(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()
	s := NewRedisJobStoreFromClient(db, "test:")

	created := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	job := pendingJob("a", "sv", localeflow.PriorityHigh, created)

	mock.ExpectSet("test:job:a", []byte(marshalJob(t, job)), 0).SetVal("OK")
	mock.ExpectZAdd("test:jobs:pending", redis.Z{
		Score:  queueScore(job.Priority, job.CreatedAt),
		Member: "a",
	}).SetVal(1)
	mock.ExpectZAdd("test:jobs:locale:sv", redis.Z{
		Score:  float64(created.UnixMilli()),
		Member: "a",
	}).SetVal(1)
	mock.ExpectSetNX("test:jobs:fp:sv:fp-a", "a", time.Duration(0)).SetVal(true)

	if err := s.Create(context.Background(), job); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestRedisJobStore_LeaseNext(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()
	s := NewRedisJobStoreFromClient(db, "test:")

	// Deterministic clock so the claimed-job JSON is predictable.
	now := time.Date(2026, 2, 1, 12, 30, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	job := pendingJob("a", "sv", localeflow.PriorityHigh, now.Add(-time.Minute))
	claimed := *job
	claimed.Status = localeflow.JobProcessing
	claimed.Attempts = 1
	claimed.StartedAt = &now

	mock.ExpectZPopMin("test:jobs:pending", 1).SetVal([]redis.Z{{Score: 1, Member: "a"}})
	mock.ExpectGet("test:job:a").SetVal(marshalJob(t, job))
	mock.ExpectSet("test:job:a", []byte(marshalJob(t, &claimed)), 0).SetVal("OK")

	leased, err := s.LeaseNext(context.Background())
	if err != nil {
		t.Fatalf("LeaseNext failed: %v", err)
	}
	if leased.Status != localeflow.JobProcessing || leased.Attempts != 1 {
		t.Errorf("unexpected leased job: %+v", leased)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestRedisJobStore_LeaseNextEmpty(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()
	s := NewRedisJobStoreFromClient(db, "test:")

	mock.ExpectZPopMin("test:jobs:pending", 1).SetVal([]redis.Z{})

	job, err := s.LeaseNext(context.Background())
	if err != nil || job != nil {
		t.Errorf("expected (nil, nil) for an empty queue, got %v, %v", job, err)
	}
}

func TestRedisJobStore_LeaseLoses(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()
	s := NewRedisJobStoreFromClient(db, "test:")

	// ZREM returning 0 means another activation already claimed the job.
	mock.ExpectZRem("test:jobs:pending", "a").SetVal(0)

	job, err := s.Lease(context.Background(), "a")
	if err != nil || job != nil {
		t.Errorf("expected (nil, nil) when losing the race, got %v, %v", job, err)
	}
}

func TestRedisJobStore_Lease(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()
	s := NewRedisJobStoreFromClient(db, "test:")

	now := time.Date(2026, 2, 1, 12, 30, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	job := pendingJob("a", "sv", localeflow.PriorityImmediate, now.Add(-time.Second))
	claimed := *job
	claimed.Status = localeflow.JobProcessing
	claimed.Attempts = 1
	claimed.StartedAt = &now

	mock.ExpectZRem("test:jobs:pending", "a").SetVal(1)
	mock.ExpectGet("test:job:a").SetVal(marshalJob(t, job))
	mock.ExpectSet("test:job:a", []byte(marshalJob(t, &claimed)), 0).SetVal("OK")

	leased, err := s.Lease(context.Background(), "a")
	if err != nil {
		t.Fatalf("Lease failed: %v", err)
	}
	if leased == nil || leased.Attempts != 1 {
		t.Errorf("unexpected leased job: %+v", leased)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestRedisJobStore_UpdateRequeuesPending(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()
	s := NewRedisJobStoreFromClient(db, "test:")

	job := pendingJob("a", "sv", localeflow.PriorityHigh, time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC))
	job.Attempts = 1 // transient failure, back to pending

	mock.ExpectSet("test:job:a", []byte(marshalJob(t, job)), 0).SetVal("OK")
	mock.ExpectZAdd("test:jobs:pending", redis.Z{
		Score:  queueScore(job.Priority, job.CreatedAt),
		Member: "a",
	}).SetVal(1)

	if err := s.Update(context.Background(), job); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestRedisJobStore_UpdateCompletedStaysOut(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()
	s := NewRedisJobStoreFromClient(db, "test:")

	job := pendingJob("a", "sv", localeflow.PriorityHigh, time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC))
	job.Status = localeflow.JobCompleted

	// Only the Set; no ZAdd back into the queue.
	mock.ExpectSet("test:job:a", []byte(marshalJob(t, job)), 0).SetVal("OK")

	if err := s.Update(context.Background(), job); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestRedisJobStore_GetNotFound(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()
	s := NewRedisJobStoreFromClient(db, "test:")

	mock.ExpectGet("test:job:ghost").RedisNil()

	if _, err := s.Get(context.Background(), "ghost"); !errors.Is(err, localeflow.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRedisJobStore_LatestForLocale(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()
	s := NewRedisJobStoreFromClient(db, "test:")

	job := pendingJob("newest", "sv", localeflow.PriorityHigh, time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC))

	mock.ExpectZRevRange("test:jobs:locale:sv", 0, 0).SetVal([]string{"newest"})
	mock.ExpectGet("test:job:newest").SetVal(marshalJob(t, job))

	got, err := s.LatestForLocale(context.Background(), "sv")
	if err != nil || got.ID != "newest" {
		t.Errorf("LatestForLocale = %v, %v", got, err)
	}

	mock.ExpectZRevRange("test:jobs:locale:de", 0, 0).SetVal([]string{})
	if _, err := s.LatestForLocale(context.Background(), "de"); !errors.Is(err, localeflow.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRedisJobStore_FindByFingerprint(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()
	s := NewRedisJobStoreFromClient(db, "test:")

	job := pendingJob("a", "sv", localeflow.PriorityHigh, time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC))

	mock.ExpectGet("test:jobs:fp:sv:fp-a").SetVal("a")
	mock.ExpectGet("test:job:a").SetVal(marshalJob(t, job))

	got, err := s.FindByFingerprint(context.Background(), "sv", "fp-a")
	if err != nil || got.ID != "a" {
		t.Errorf("FindByFingerprint = %v, %v", got, err)
	}

	mock.ExpectGet("test:jobs:fp:sv:fp-unknown").RedisNil()
	if _, err := s.FindByFingerprint(context.Background(), "sv", "fp-unknown"); !errors.Is(err, localeflow.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRedisDocumentStore(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()
	s := NewRedisDocumentStoreFromClient(db, "test:")

	content, _ := localeflow.ParseDocument([]byte(`{"body":"Hej"}`))
	doc := &localeflow.TranslatedDocument{
		Content: content,
		Meta:    localeflow.DocumentMeta{Locale: "sv", TranslatedFrom: "en", Provider: "openai"},
	}
	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal doc: %v", err)
	}

	mock.ExpectSet("test:doc:sv", data, time.Duration(0)).SetVal("OK")
	if err := s.Save(context.Background(), "sv", doc); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	mock.ExpectGet("test:doc:sv").SetVal(string(data))
	loaded, err := s.Load(context.Background(), "sv")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	body, _ := loaded.Content.Get("body")
	if body.Text() != "Hej" || loaded.Meta.Locale != "sv" {
		t.Errorf("unexpected document: %+v", loaded)
	}

	mock.ExpectGet("test:doc:de").RedisNil()
	if _, err := s.Load(context.Background(), "de"); !errors.Is(err, localeflow.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
