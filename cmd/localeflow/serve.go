package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ZaguanLabs/localeflow"
)

func runServe(args []string, stdout, stderr io.Writer) error {
	cfg, addr, err := serveFlags(args, stderr)
	if err != nil {
		return err
	}

	p, err := buildPipeline(cfg, cfg.apiKey != "")
	if err != nil {
		return err
	}
	p.loadTM(cfg, stderr)

	srv := &http.Server{
		Addr:              addr,
		Handler:           newHandler(p),
		ReadHeaderTimeout: 10 * time.Second,
	}

	fmt.Fprintf(stderr, "%s %s listening on %s\n", localeflow.Name, version, addr)
	if p.worker == nil {
		fmt.Fprintln(stderr, "No API key configured; write endpoints are disabled.")
	}
	return srv.ListenAndServe()
}

func serveFlags(args []string, stderr io.Writer) (*config, string, error) {
	fs := flag.NewFlagSet("localeflow serve", flag.ContinueOnError)
	fs.SetOutput(stderr)
	cfg := registerFlags(fs)
	addr := fs.String("addr", ":"+envOr("PORT", "8080"), "Listen address")
	if err := fs.Parse(args); err != nil {
		return nil, "", err
	}
	cfg.finish()
	a := *addr
	if a != "" && !strings.Contains(a, ":") {
		a = ":" + a
	}
	return cfg, a, nil
}

// newHandler wires the HTTP surface: read endpoints over the Server, write
// endpoints over the Worker when one is configured.
func newHandler(p *pipeline) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": version})
	})

	mux.HandleFunc("GET /v1/content/{locale}", func(w http.ResponseWriter, r *http.Request) {
		force := r.URL.Query().Get("force") == "1" || r.URL.Query().Get("force") == "true"
		result, err := p.server.Get(r.Context(), r.PathValue("locale"), force)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	})

	mux.HandleFunc("GET /v1/status/{locale}", func(w http.ResponseWriter, r *http.Request) {
		result, err := p.server.Status(r.Context(), r.PathValue("locale"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	})

	mux.HandleFunc("POST /v1/enqueue", func(w http.ResponseWriter, r *http.Request) {
		worker, ok := requireWorker(w, p)
		if !ok {
			return
		}
		result, err := worker.EnqueueAll(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	})

	mux.HandleFunc("POST /v1/process", func(w http.ResponseWriter, r *http.Request) {
		worker, ok := requireWorker(w, p)
		if !ok {
			return
		}
		result := worker.ProcessPending(r.Context())
		p.server.Flush()
		writeJSON(w, http.StatusOK, result)
	})

	mux.HandleFunc("POST /v1/regenerate/{locale}", func(w http.ResponseWriter, r *http.Request) {
		worker, ok := requireWorker(w, p)
		if !ok {
			return
		}
		job, err := worker.Regenerate(r.Context(), r.PathValue("locale"))
		if err != nil {
			writeError(w, err)
			return
		}
		p.server.Flush()
		writeJSON(w, http.StatusOK, job)
	})

	return mux
}

func requireWorker(w http.ResponseWriter, p *pipeline) (*localeflow.Worker, bool) {
	if p.worker == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error": "no translation provider configured",
		})
		return nil, false
	}
	return p.worker, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	var unsupported *localeflow.UnsupportedLocaleError
	if errors.As(err, &unsupported) {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":             unsupported.Error(),
			"supported_locales": unsupported.Supported,
		})
		return
	}
	if errors.Is(err, localeflow.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
}
