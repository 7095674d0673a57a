// Command localeflow manages a multi-locale translation pipeline over a
// canonical JSON source document: enqueue jobs, run the worker, serve
// translated content over HTTP, and inspect job status.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/ZaguanLabs/localeflow"
)

// Build-time variables (can be overridden with ldflags)
var (
	version   = localeflow.Version
	commit    = localeflow.GitCommit
	buildDate = localeflow.BuildDate
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	// Optional .env; a missing file is fine.
	_ = godotenv.Load()

	if len(args) == 0 {
		usage(stderr)
		return fmt.Errorf("a command is required")
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "version", "--version", "-version":
		fmt.Fprintf(stdout, "%s %s\n", localeflow.Name, version)
		if commit != "unknown" && commit != "" {
			fmt.Fprintf(stdout, "  commit:  %s\n", commit)
		}
		if buildDate != "unknown" && buildDate != "" {
			fmt.Fprintf(stdout, "  built:   %s\n", buildDate)
		}
		return nil
	case "enqueue":
		return runEnqueue(rest, stdout, stderr)
	case "process":
		return runProcess(rest, stdout, stderr)
	case "regenerate":
		return runRegenerate(rest, stdout, stderr)
	case "status":
		return runStatus(rest, stdout, stderr)
	case "get":
		return runGet(rest, stdout, stderr)
	case "diff":
		return runDiff(rest, stdout, stderr)
	case "import":
		return runImport(rest, stdout, stderr)
	case "serve":
		return runServe(rest, stdout, stderr)
	case "help", "--help", "-h":
		usage(stdout)
		return nil
	default:
		usage(stderr)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "Usage: localeflow <command> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  enqueue     Create translation jobs for the current source content")
	fmt.Fprintln(w, "  process     Run one worker activation over pending jobs")
	fmt.Fprintln(w, "  regenerate  Force an immediate re-translation of one locale")
	fmt.Fprintln(w, "  status      Show the latest job for a locale")
	fmt.Fprintln(w, "  get         Print the served document for a locale")
	fmt.Fprintln(w, "  diff        Compare two source files segment by segment")
	fmt.Fprintln(w, "  import      Load a translation memory export into the cache")
	fmt.Fprintln(w, "  serve       Run the HTTP content server")
	fmt.Fprintln(w, "  version     Show version")
}

// config is the shared environment every command builds its pipeline from.
// Flags default from the environment so the same settings work for the CLI
// and for a deployed serve process.
type config struct {
	sourceFile string
	redisURL   string
	apiKey     string
	model      string
	canonical  string
	tmFile     string
	maxJobs    int
	rpm        int
	cacheTTL   time.Duration
	jsonOut    bool

	localesCSV string
	locales    []string
}

func registerFlags(fs *flag.FlagSet) *config {
	cfg := &config{}
	fs.StringVar(&cfg.sourceFile, "source", envOr("SOURCE_FILE", "content.json"), "Canonical source JSON file")
	fs.StringVar(&cfg.redisURL, "redis", os.Getenv("REDIS_URL"), "Redis URL (default: REDIS_URL env; empty = in-memory)")
	fs.StringVar(&cfg.apiKey, "api-key", "", "OpenAI API key (default: OPENAI_API_KEY env)")
	fs.StringVar(&cfg.model, "model", envOr("OPENAI_MODEL", "gpt-4o-mini"), "OpenAI model to use")
	fs.StringVar(&cfg.canonical, "canonical", envOr("CANONICAL_LOCALE", localeflow.DefaultCanonicalLocale), "Canonical source locale")
	fs.StringVar(&cfg.localesCSV, "locales", envOr("LOCALES", ""), "Comma-separated locale codes (default: built-in set)")
	fs.StringVar(&cfg.tmFile, "tm", "", "Translation memory file to load before and save after a run")
	fs.IntVar(&cfg.maxJobs, "max-jobs", 5, "Jobs processed per worker activation")
	fs.IntVar(&cfg.rpm, "rpm", 30, "Provider requests per minute")
	fs.DurationVar(&cfg.cacheTTL, "cache-ttl", envDuration("CACHE_TTL", time.Hour), "Translation memory TTL (0 to keep forever)")
	fs.BoolVar(&cfg.jsonOut, "json", false, "Output result as JSON")
	return cfg
}

// finish resolves flag values that need post-Parse processing.
func (c *config) finish() {
	if c.localesCSV != "" {
		c.locales = splitCSV(c.localesCSV)
	} else {
		c.locales = localeflow.DefaultLocales
	}
	if c.apiKey == "" {
		c.apiKey = os.Getenv("OPENAI_API_KEY")
	}
}

func parseCommand(name string, args []string, stderr io.Writer) (*config, *flag.FlagSet, error) {
	fs := flag.NewFlagSet("localeflow "+name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	cfg := registerFlags(fs)
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	cfg.finish()
	return cfg, fs, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
