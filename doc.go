// Package localeflow keeps multi-locale copies of a structured content
// document synchronized with a single canonical source, using an AI text
// generation provider to produce translations and to score their quality.
//
// The pipeline is built from small pieces: content-change detection via
// fingerprinting, a persisted priority job queue, a sequential worker that
// translates and reviews one job at a time, and a cached read path that
// falls back to the canonical document when a translation is missing.
//
// Basic usage:
//
//	import (
//	    "context"
//	    "github.com/ZaguanLabs/localeflow"
//	    "github.com/ZaguanLabs/localeflow/provider"
//	    "github.com/ZaguanLabs/localeflow/store"
//	)
//
//	func main() {
//	    p := provider.NewOpenAIProvider(provider.OpenAIConfig{
//	        APIKey: os.Getenv("OPENAI_API_KEY"),
//	    })
//
//	    jobs := store.NewMemoryJobStore()
//	    docs := store.NewMemoryDocumentStore()
//	    source := store.NewFileSource("content/en.json")
//
//	    worker := localeflow.NewWorker(jobs, docs, source, p,
//	        localeflow.WithLocales("sv", "de", "fr"),
//	    )
//
//	    // On publish: enqueue one job per stale locale.
//	    worker.EnqueueAll(context.Background())
//
//	    // On a timer tick: process a bounded batch of jobs.
//	    result := worker.ProcessPending(context.Background())
//	    fmt.Println(result.Message)
//
//	    // On request: serve translated content with caching and fallback.
//	    server := localeflow.NewServer(docs, jobs, source)
//	    res, err := server.Get(context.Background(), "sv", false)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(res.Document.Content)
//	}
package localeflow
