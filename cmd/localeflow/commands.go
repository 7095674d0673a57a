package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ZaguanLabs/localeflow"
	"github.com/ZaguanLabs/localeflow/cache"
	"github.com/ZaguanLabs/localeflow/provider"
	"github.com/ZaguanLabs/localeflow/store"
)

// pipeline bundles everything a command needs: stores, source, cache, and
// (when an API key is present) a worker ready to process jobs.
type pipeline struct {
	jobs   localeflow.JobStore
	docs   localeflow.DocumentStore
	source localeflow.SourceProvider
	tm     localeflow.TranslationCache
	memTM  *cache.MemoryCache // set when tm is the in-memory cache
	worker *localeflow.Worker
	server *localeflow.Server
}

// buildStores selects Redis-backed stores when a URL is configured and
// falls back to process-local memory otherwise. Memory stores only make
// sense for single-invocation flows (process, serve) since nothing
// survives the process.
func buildStores(cfg *config) (localeflow.JobStore, localeflow.DocumentStore, localeflow.TranslationCache, *cache.MemoryCache, error) {
	if cfg.redisURL == "" {
		mem := cache.NewMemoryCache(cfg.cacheTTL)
		return store.NewMemoryJobStore(), store.NewMemoryDocumentStore(), mem, mem, nil
	}

	jobs, err := store.NewRedisJobStore(store.RedisConfig{URL: cfg.redisURL})
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("connecting job store: %w", err)
	}
	docs, err := store.NewRedisDocumentStore(store.RedisConfig{URL: cfg.redisURL})
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("connecting document store: %w", err)
	}
	tm, err := cache.NewRedisCache(cache.RedisConfig{URL: cfg.redisURL, TTL: cfg.cacheTTL})
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("connecting translation memory: %w", err)
	}
	return jobs, docs, tm, nil, nil
}

// buildPipeline assembles the full worker pipeline. withProvider commands
// need OPENAI_API_KEY; read-only commands pass false and get no worker.
func buildPipeline(cfg *config, withProvider bool) (*pipeline, error) {
	jobs, docs, tm, memTM, err := buildStores(cfg)
	if err != nil {
		return nil, err
	}

	source := store.NewFileSource(cfg.sourceFile)
	p := &pipeline{jobs: jobs, docs: docs, source: source, tm: tm, memTM: memTM}

	p.server = localeflow.NewServer(docs, jobs, source,
		localeflow.WithServeLocales(cfg.locales...),
		localeflow.WithServeCanonical(cfg.canonical),
	)

	if !withProvider {
		return p, nil
	}
	if cfg.apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key required (--api-key or OPENAI_API_KEY env)")
	}

	ai := provider.NewOpenAIProvider(provider.OpenAIConfig{
		APIKey: cfg.apiKey,
		Model:  cfg.model,
	})
	limited := localeflow.NewRateLimitedProvider(ai, localeflow.RateLimitConfig{
		RequestsPerMinute: cfg.rpm,
	})

	translator := localeflow.NewBulkTranslator(limited,
		localeflow.WithSegmentCache(tm),
		localeflow.WithSourceLocale(cfg.canonical),
	)
	p.worker = localeflow.NewWorker(jobs, docs, source, limited,
		localeflow.WithLocales(cfg.locales...),
		localeflow.WithCanonicalLocale(cfg.canonical),
		localeflow.WithMaxJobsPerRun(cfg.maxJobs),
		localeflow.WithTranslator(translator),
	)
	return p, nil
}

// loadTM seeds the translation memory from an export file when --tm is set.
func (p *pipeline) loadTM(cfg *config, stderr io.Writer) {
	if cfg.tmFile == "" {
		return
	}
	res, err := cache.ImportFromFile(p.tm, cfg.tmFile)
	if err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintf(stderr, "warning: loading translation memory: %v\n", err)
		}
		return
	}
	fmt.Fprintf(stderr, "Loaded %d translation(s) from %s\n", res.Imported, cfg.tmFile)
}

// saveTM writes the in-memory translation memory back to the --tm file.
// Redis-backed memory persists on its own and is skipped.
func (p *pipeline) saveTM(cfg *config, stderr io.Writer) {
	if cfg.tmFile == "" || p.memTM == nil {
		return
	}
	if err := cache.ExportToFile(p.memTM, cfg.tmFile, map[string]string{
		"source": cfg.sourceFile,
	}); err != nil {
		fmt.Fprintf(stderr, "warning: saving translation memory: %v\n", err)
		return
	}
	fmt.Fprintf(stderr, "Saved translation memory to %s\n", cfg.tmFile)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func runEnqueue(args []string, stdout, stderr io.Writer) error {
	cfg, _, err := parseCommand("enqueue", args, stderr)
	if err != nil {
		return err
	}
	p, err := buildPipeline(cfg, false)
	if err != nil {
		return err
	}

	// Enqueueing does not need a provider; jobs are processed later.
	worker := localeflow.NewWorker(p.jobs, p.docs, p.source, nil,
		localeflow.WithLocales(cfg.locales...),
		localeflow.WithCanonicalLocale(cfg.canonical),
	)
	result, err := worker.EnqueueAll(context.Background())
	if err != nil {
		return err
	}

	if cfg.jsonOut {
		return printJSON(stdout, result)
	}
	fmt.Fprintf(stdout, "Source fingerprint: %s\n", result.Fingerprint)
	for _, job := range result.Created {
		fmt.Fprintf(stdout, "  queued %s  priority=%d  id=%s\n", job.Locale, job.Priority, job.ID)
	}
	for _, locale := range result.Skipped {
		fmt.Fprintf(stdout, "  up to date %s\n", locale)
	}
	if len(result.Created) == 0 {
		fmt.Fprintln(stdout, "Nothing to enqueue.")
	}
	return nil
}

func runProcess(args []string, stdout, stderr io.Writer) error {
	cfg, _, err := parseCommand("process", args, stderr)
	if err != nil {
		return err
	}
	p, err := buildPipeline(cfg, true)
	if err != nil {
		return err
	}
	p.loadTM(cfg, stderr)

	ctx := context.Background()

	// With memory stores the queue starts empty, so a one-shot run enqueues
	// first. Against Redis this is a cheap no-op when content is unchanged.
	if _, err := p.worker.EnqueueAll(ctx); err != nil {
		return err
	}

	start := time.Now()
	result := p.worker.ProcessPending(ctx)
	elapsed := time.Since(start)

	p.saveTM(cfg, stderr)

	if cfg.jsonOut {
		return printJSON(stdout, result)
	}
	fmt.Fprintf(stdout, "%s (%v)\n", result.Message, elapsed.Round(time.Millisecond))
	return nil
}

func runRegenerate(args []string, stdout, stderr io.Writer) error {
	cfg, fs, err := parseCommand("regenerate", args, stderr)
	if err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return fmt.Errorf("a locale argument is required")
	}
	locale := fs.Arg(0)

	p, err := buildPipeline(cfg, true)
	if err != nil {
		return err
	}
	p.loadTM(cfg, stderr)

	job, err := p.worker.Regenerate(context.Background(), locale)
	if err != nil {
		return err
	}
	p.saveTM(cfg, stderr)

	if cfg.jsonOut {
		return printJSON(stdout, job)
	}
	fmt.Fprintf(stdout, "Job %s for %s: %s\n", job.ID, job.Locale, job.Status)
	if job.ReviewScore != nil {
		fmt.Fprintf(stdout, "  review: %d (%s)\n", *job.ReviewScore, job.ReviewStatus)
	}
	if job.ErrorMessage != "" {
		fmt.Fprintf(stdout, "  error: %s\n", job.ErrorMessage)
	}
	return nil
}

func runStatus(args []string, stdout, stderr io.Writer) error {
	cfg, fs, err := parseCommand("status", args, stderr)
	if err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return fmt.Errorf("a locale argument is required")
	}

	p, err := buildPipeline(cfg, false)
	if err != nil {
		return err
	}
	result, err := p.server.Status(context.Background(), fs.Arg(0))
	if err != nil {
		return err
	}

	if cfg.jsonOut {
		return printJSON(stdout, result)
	}
	if result.Job == nil {
		fmt.Fprintf(stdout, "%s: no jobs\n", result.Locale)
		return nil
	}
	job := result.Job
	fmt.Fprintf(stdout, "%s: %s  attempts=%d  fresh=%v\n", result.Locale, job.Status, job.Attempts, result.Fresh)
	if job.ReviewScore != nil {
		fmt.Fprintf(stdout, "  review: %d (%s)\n", *job.ReviewScore, job.ReviewStatus)
	}
	if job.ErrorMessage != "" {
		fmt.Fprintf(stdout, "  error: %s\n", job.ErrorMessage)
	}
	return nil
}

func runGet(args []string, stdout, stderr io.Writer) error {
	cfg, fs, err := parseCommand("get", args, stderr)
	if err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return fmt.Errorf("a locale argument is required")
	}

	p, err := buildPipeline(cfg, false)
	if err != nil {
		return err
	}
	result, err := p.server.Get(context.Background(), fs.Arg(0), false)
	if err != nil {
		return err
	}

	if cfg.jsonOut {
		return printJSON(stdout, result)
	}
	if result.Fallback {
		fmt.Fprintf(stderr, "Serving fallback content for %s\n", result.Locale)
	}
	return printJSON(stdout, result.Document)
}

func runDiff(args []string, stdout, stderr io.Writer) error {
	cfg, fs, err := parseCommand("diff", args, stderr)
	if err != nil {
		return err
	}
	if fs.NArg() < 2 {
		return fmt.Errorf("two file arguments are required: old.json new.json")
	}

	oldDoc, err := loadDocument(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("reading previous version: %w", err)
	}
	newDoc, err := loadDocument(fs.Arg(1))
	if err != nil {
		return fmt.Errorf("reading new version: %w", err)
	}

	diff := localeflow.DiffSegments(localeflow.Extract(oldDoc), localeflow.Extract(newDoc))
	stats := diff.Stats()

	if cfg.jsonOut {
		return printJSON(stdout, diff)
	}

	fmt.Fprintf(stdout, "Added: %d  Removed: %d  Modified: %d  Unchanged: %d\n",
		stats.Added, stats.Removed, stats.Modified, stats.Unchanged)
	for _, seg := range diff.Added {
		fmt.Fprintf(stdout, "  + %s: %q\n", seg.Path, seg.Text)
	}
	for _, seg := range diff.Removed {
		fmt.Fprintf(stdout, "  - %s: %q\n", seg.Path, seg.Text)
	}
	for _, mod := range diff.Modified {
		fmt.Fprintf(stdout, "  ~ %s: %q -> %q\n", mod.New.Path, mod.Old.Text, mod.New.Text)
	}
	if !diff.HasChanges() {
		fmt.Fprintln(stdout, "No translatable changes.")
	}
	return nil
}

func runImport(args []string, stdout, stderr io.Writer) error {
	cfg, fs, err := parseCommand("import", args, stderr)
	if err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return fmt.Errorf("an export file argument is required")
	}

	_, _, tm, _, err := buildStores(cfg)
	if err != nil {
		return err
	}
	if cfg.redisURL == "" {
		return fmt.Errorf("import requires a persistent cache (--redis or REDIS_URL)")
	}

	result, err := cache.ImportFromFile(tm, fs.Arg(0))
	if err != nil {
		return err
	}
	if cfg.jsonOut {
		return printJSON(stdout, result)
	}
	fmt.Fprintf(stdout, "Imported %d translation(s), %d failed\n", result.Imported, result.Failed)
	return nil
}

func loadDocument(path string) (*localeflow.Value, error) {
	data, err := os.ReadFile(path) // #nosec G304 - CLI tool reads user-specified files
	if err != nil {
		return nil, err
	}
	return localeflow.ParseDocument(data)
}
