package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ZaguanLabs/localeflow"
)

// RedisJobStore is a Redis-backed job store. Jobs live as JSON values; the
// pending queue is a sorted set scored by (priority, created_at), and the
// atomic lease is ZPOPMIN/ZREM: the member leaves the queue in a single
// command, so two overlapping worker activations can never claim the same
// job.
type RedisJobStore struct {
	client    *redis.Client
	keyPrefix string
	now       func() time.Time
}

// RedisConfig holds configuration for the Redis-backed stores.
type RedisConfig struct {
	URL       string // Redis connection URL (e.g., "redis://localhost:6379")
	KeyPrefix string // Prefix for all keys (default: "localeflow:")
}

// NewRedisJobStore connects to Redis and returns a job store.
func NewRedisJobStore(cfg RedisConfig) (*RedisJobStore, error) {
	client, err := dialRedis(cfg.URL)
	if err != nil {
		return nil, err
	}
	return NewRedisJobStoreFromClient(client, cfg.KeyPrefix), nil
}

// NewRedisJobStoreFromClient creates a RedisJobStore from an existing client.
func NewRedisJobStoreFromClient(client *redis.Client, keyPrefix string) *RedisJobStore {
	if keyPrefix == "" {
		keyPrefix = "localeflow:"
	}
	return &RedisJobStore{client: client, keyPrefix: keyPrefix, now: time.Now}
}

func dialRedis(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return client, nil
}

func (s *RedisJobStore) jobKey(id string) string {
	return s.keyPrefix + "job:" + id
}

func (s *RedisJobStore) queueKey() string {
	return s.keyPrefix + "jobs:pending"
}

func (s *RedisJobStore) localeKey(locale string) string {
	return s.keyPrefix + "jobs:locale:" + locale
}

func (s *RedisJobStore) fingerprintKey(locale, fingerprint string) string {
	return s.keyPrefix + "jobs:fp:" + locale + ":" + fingerprint
}

func (s *RedisJobStore) saveJob(ctx context.Context, job *localeflow.Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.jobKey(job.ID), data, 0).Err()
}

func (s *RedisJobStore) loadJob(ctx context.Context, id string) (*localeflow.Job, error) {
	data, err := s.client.Get(ctx, s.jobKey(id)).Result()
	if err == redis.Nil {
		return nil, localeflow.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var job localeflow.Job
	if err := json.Unmarshal([]byte(data), &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// Create persists a new job and indexes it: into the pending queue, into the
// per-locale creation index, and under its locale+fingerprint dedupe key
// (first job wins; later regenerations do not displace it).
func (s *RedisJobStore) Create(ctx context.Context, job *localeflow.Job) error {
	if err := s.saveJob(ctx, job); err != nil {
		return err
	}
	if job.Status == localeflow.JobPending {
		if err := s.client.ZAdd(ctx, s.queueKey(), redis.Z{
			Score:  queueScore(job.Priority, job.CreatedAt),
			Member: job.ID,
		}).Err(); err != nil {
			return err
		}
	}
	if err := s.client.ZAdd(ctx, s.localeKey(job.Locale), redis.Z{
		Score:  float64(job.CreatedAt.UnixMilli()),
		Member: job.ID,
	}).Err(); err != nil {
		return err
	}
	return s.client.SetNX(ctx, s.fingerprintKey(job.Locale, job.SourceFingerprint), job.ID, 0).Err()
}

// Update persists the job and re-queues it when it returned to pending (a
// transient failure with attempts remaining). Any other status keeps it out
// of the queue.
func (s *RedisJobStore) Update(ctx context.Context, job *localeflow.Job) error {
	if err := s.saveJob(ctx, job); err != nil {
		return err
	}
	if job.Eligible() {
		return s.client.ZAdd(ctx, s.queueKey(), redis.Z{
			Score:  queueScore(job.Priority, job.CreatedAt),
			Member: job.ID,
		}).Err()
	}
	return nil
}

// Get returns a job by id.
func (s *RedisJobStore) Get(ctx context.Context, id string) (*localeflow.Job, error) {
	return s.loadJob(ctx, id)
}

// LeaseNext pops the lowest-scored pending job. ZPOPMIN removes the member
// atomically, which is what makes the lease exclusive.
func (s *RedisJobStore) LeaseNext(ctx context.Context) (*localeflow.Job, error) {
	popped, err := s.client.ZPopMin(ctx, s.queueKey(), 1).Result()
	if err != nil {
		return nil, err
	}
	if len(popped) == 0 {
		return nil, nil
	}
	id, _ := popped[0].Member.(string)
	return s.claim(ctx, id)
}

// Lease claims the specific pending job with the given id. ZREM returning 1
// proves this caller removed it from the queue.
func (s *RedisJobStore) Lease(ctx context.Context, id string) (*localeflow.Job, error) {
	removed, err := s.client.ZRem(ctx, s.queueKey(), id).Result()
	if err != nil {
		return nil, err
	}
	if removed == 0 {
		return nil, nil
	}
	return s.claim(ctx, id)
}

// claim transitions a queue-popped job to processing.
func (s *RedisJobStore) claim(ctx context.Context, id string) (*localeflow.Job, error) {
	job, err := s.loadJob(ctx, id)
	if err == localeflow.ErrNotFound {
		// Queue entry without a record; treat as no eligible job.
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	job.Status = localeflow.JobProcessing
	job.Attempts++
	job.StartedAt = &now
	if err := s.saveJob(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

// LatestForLocale returns the most recently created job for a locale.
func (s *RedisJobStore) LatestForLocale(ctx context.Context, locale string) (*localeflow.Job, error) {
	ids, err := s.client.ZRevRange(ctx, s.localeKey(locale), 0, 0).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, localeflow.ErrNotFound
	}
	return s.loadJob(ctx, ids[0])
}

// FindByFingerprint returns the job recorded under the locale+fingerprint
// dedupe key.
func (s *RedisJobStore) FindByFingerprint(ctx context.Context, locale, fingerprint string) (*localeflow.Job, error) {
	id, err := s.client.Get(ctx, s.fingerprintKey(locale, fingerprint)).Result()
	if err == redis.Nil {
		return nil, localeflow.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return s.loadJob(ctx, id)
}

// Close closes the Redis connection.
func (s *RedisJobStore) Close() error {
	return s.client.Close()
}

// RedisDocumentStore persists translated documents as per-locale JSON values.
type RedisDocumentStore struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisDocumentStore connects to Redis and returns a document store.
func NewRedisDocumentStore(cfg RedisConfig) (*RedisDocumentStore, error) {
	client, err := dialRedis(cfg.URL)
	if err != nil {
		return nil, err
	}
	return NewRedisDocumentStoreFromClient(client, cfg.KeyPrefix), nil
}

// NewRedisDocumentStoreFromClient creates a RedisDocumentStore from an
// existing client.
func NewRedisDocumentStoreFromClient(client *redis.Client, keyPrefix string) *RedisDocumentStore {
	if keyPrefix == "" {
		keyPrefix = "localeflow:"
	}
	return &RedisDocumentStore{client: client, keyPrefix: keyPrefix}
}

func (s *RedisDocumentStore) docKey(locale string) string {
	return s.keyPrefix + "doc:" + locale
}

// Save writes the translated document for a locale. Documents are durable;
// no TTL.
func (s *RedisDocumentStore) Save(ctx context.Context, locale string, doc *localeflow.TranslatedDocument) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.docKey(locale), data, 0).Err()
}

// Load returns the translated document for a locale.
func (s *RedisDocumentStore) Load(ctx context.Context, locale string) (*localeflow.TranslatedDocument, error) {
	data, err := s.client.Get(ctx, s.docKey(locale)).Result()
	if err == redis.Nil {
		return nil, localeflow.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var doc localeflow.TranslatedDocument
	if err := json.Unmarshal([]byte(data), &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Close closes the Redis connection.
func (s *RedisDocumentStore) Close() error {
	return s.client.Close()
}

var (
	_ localeflow.JobStore      = (*RedisJobStore)(nil)
	_ localeflow.DocumentStore = (*RedisDocumentStore)(nil)
)
