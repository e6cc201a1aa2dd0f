// cmd/mcp-server/main.go — Standalone HTTP MCP server for goexpr
//
// Exposes goexpr tools as an HTTP endpoint for AI agent frameworks.
// Expressions travel as JSON trees (see goexpr.FromJSON).
//
// Usage:
//   go run ./cmd/mcp-server -port 8080 -symbols symbols.yaml
//
// Tool call endpoint: POST /tool
// Schema endpoint:    GET  /schema
// Health endpoint:    GET  /health
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"runtime/debug"
	"time"

	"golang.org/x/time/rate"

	"github.com/njchilds90/goexpr"
)

const maxBodyBytes = 1 << 20 // 1 MiB

func main() {
	port := flag.Int("port", 8080, "Port to listen on")
	symbolsPath := flag.String("symbols", "", "YAML file with extra constants and function names")
	rps := flag.Float64("rate", 50, "Tool calls per second")
	burst := flag.Int("burst", 100, "Tool call burst size")
	flag.Parse()

	if *symbolsPath != "" {
		table, err := goexpr.LoadSymbolsYAML(*symbolsPath)
		if err != nil {
			log.Fatal(err)
		}
		if err := goexpr.InstallSymbols(table); err != nil {
			log.Fatal(err)
		}
		log.Printf("loaded %d constants, %d functions from %s",
			len(table.Constants()), len(table.FunctionNames()), *symbolsPath)
	}

	mux := newMux(rate.NewLimiter(rate.Limit(*rps), *burst))

	addr := fmt.Sprintf(":%d", *port)
	log.Printf("goexpr MCP server listening on %s", addr)
	log.Printf("  POST /tool   — execute a tool call")
	log.Printf("  GET  /schema — tool schema for agent registration")
	log.Printf("  GET  /health — health check")

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode response: %v", err)
	}
}

func newMux(limiter *rate.Limiter) *http.ServeMux {
	mux := http.NewServeMux()

	// POST /tool: handle a tool call
	mux.HandleFunc("/tool", func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Printf("panic in /tool: %v\n%s", rec, string(debug.Stack()))
				http.Error(w, "internal server error", http.StatusInternalServerError)
			}
		}()

		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if !limiter.Allow() {
			writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": "rate limit exceeded"})
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		defer r.Body.Close()

		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()

		var req goexpr.ToolRequest
		if err := dec.Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		// Ensure there's no trailing junk.
		if dec.More() {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: trailing data"})
			return
		}

		resp := goexpr.HandleToolCall(req)
		if resp.Error != "" {
			log.Printf("tool %s: %s", req.Tool, resp.Error)
		}
		writeJSON(w, http.StatusOK, resp)
	})

	// GET /schema: tool schema for agent registration
	mux.HandleFunc("/schema", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, goexpr.MCPToolSpec())
	})

	// GET /health: liveness check
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status": "ok",
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	})

	return mux
}
