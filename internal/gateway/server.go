// Package gateway is the request/response boundary used by the remote admin
// UI. Every operation authenticates before it touches the store.
package gateway

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/tidwall/pretty"

	"github.com/BeAPI/log-http-requests/internal/logstore"
	"github.com/BeAPI/log-http-requests/internal/query"
)

// NonceHeader carries the anti-forgery token on query and clear calls.
const NonceHeader = "X-LHR-Nonce"

// nonceTTL bounds how long an issued nonce stays valid.
const nonceTTL = 10 * time.Minute

// Options configures a Server.
type Options struct {
	// APIToken authorizes callers. Generated and logged when empty.
	APIToken string
	// SigningSecret signs anti-forgery nonces. Generated when empty.
	SigningSecret string
	// DBPath is reported by the stats endpoint.
	DBPath string
	// PerPage is the page size used when the caller supplies none.
	PerPage int
	Logger  *log.Logger
}

// Server exposes the log over HTTP.
type Server struct {
	engine   *query.Engine
	store    *logstore.Store
	apiToken string
	secret   []byte
	dbPath   string
	perPage  int
	logger   *log.Logger
	srv      *http.Server
}

// New creates a gateway server over the given engine and store.
func New(engine *query.Engine, store *logstore.Store, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.APIToken == "" {
		opts.APIToken = randomHex(16)
		opts.Logger.Printf("httplog: generated api token %s", opts.APIToken)
	}
	if opts.SigningSecret == "" {
		opts.SigningSecret = randomHex(32)
	}
	return &Server{
		engine:   engine,
		store:    store,
		apiToken: opts.APIToken,
		secret:   []byte(opts.SigningSecret),
		dbPath:   opts.DBPath,
		perPage:  opts.PerPage,
		logger:   opts.Logger,
	}
}

// Handler returns the routed handler, exported for tests and embedding.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/api/nonce", s.auth(http.HandlerFunc(s.handleNonce)))
	mux.Handle("/api/query", s.auth(s.nonce(http.HandlerFunc(s.handleQuery))))
	mux.Handle("/api/clear", s.auth(s.nonce(http.HandlerFunc(s.handleClear))))
	mux.Handle("/api/records/", s.auth(http.HandlerFunc(s.handleRecord)))
	mux.Handle("/api/stats", s.auth(http.HandlerFunc(s.handleStats)))
	return mux
}

// Start runs the HTTP server until it is shut down.
func (s *Server) Start(addr string) error {
	s.srv = &http.Server{Addr: addr, Handler: s.Handler()}
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv != nil {
		return s.srv.Shutdown(ctx)
	}
	return nil
}

// auth checks the Bearer token before any handler runs.
func (s *Server) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == authHeader {
			token = r.URL.Query().Get("token")
		}

		if token == "" || subtle.ConstantTimeCompare([]byte(token), []byte(s.apiToken)) != 1 {
			w.Header().Set("WWW-Authenticate", `Bearer realm="httplog"`)
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// nonce verifies the anti-forgery token on operations the UI triggers.
func (s *Server) nonce(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := s.verifyNonce(r.Header.Get(NonceHeader)); err != nil {
			http.Error(w, "invalid nonce", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleNonce(w http.ResponseWriter, r *http.Request) {
	nonce, err := s.issueNonce()
	if err != nil {
		http.Error(w, "nonce generation failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]string{"nonce": nonce})
}

// handleQuery returns one enriched page plus rendered pager markup. Raw
// parameters arrive as form or query values; anything invalid silently falls
// back to its default.
func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost && r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	args := parseArgs(r)
	if args.PerPage == 0 {
		args.PerPage = s.perPage
	}
	rows, pager, err := s.engine.GetResults(args)
	if err != nil {
		s.logger.Printf("httplog: query failed: %v", err)
		http.Error(w, "query failed", http.StatusInternalServerError)
		return
	}
	if rows == nil {
		rows = []query.Row{}
	}

	writeJSON(w, map[string]any{
		"rows":  rows,
		"pager": query.Paginate(pager),
	})
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := s.engine.TruncateTable(); err != nil {
		s.logger.Printf("httplog: clear failed: %v", err)
		http.Error(w, "clear failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]bool{"cleared": true})
}

// handleRecord serves one full record with its payloads pretty-printed for
// the UI's detail modal.
func (s *Server) handleRecord(w http.ResponseWriter, r *http.Request) {
	idStr := strings.TrimPrefix(r.URL.Path, "/api/records/")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id < 1 {
		http.Error(w, "invalid record id", http.StatusBadRequest)
		return
	}

	record, err := s.store.Get(id)
	if errors.Is(err, logstore.ErrNotFound) {
		http.Error(w, "record not found", http.StatusNotFound)
		return
	}
	if err != nil {
		s.logger.Printf("httplog: record read failed: %v", err)
		http.Error(w, "record read failed", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]any{
		"id":           record.ID,
		"url":          record.URL,
		"request_args": string(pretty.Pretty([]byte(record.RequestArgs))),
		"response":     string(pretty.Pretty([]byte(record.Response))),
		"backtrace":    record.Backtrace,
		"runtime":      record.Runtime,
		"date_added":   record.DateAdded.UTC().Format("2006-01-02 15:04:05"),
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	total, err := s.engine.Count()
	if err != nil {
		s.logger.Printf("httplog: stats failed: %v", err)
		http.Error(w, "stats failed", http.StatusInternalServerError)
		return
	}

	stats := map[string]any{"total_rows": total}

	if oldest, ok, err := s.store.OldestDate(); err == nil && ok {
		stats["oldest"] = query.TimeSince(oldest, time.Now())
	}
	if s.dbPath != "" {
		if info, err := os.Stat(s.dbPath); err == nil {
			stats["db_size"] = humanize.Bytes(uint64(info.Size()))
		}
	}

	writeJSON(w, stats)
}

// parseArgs reads raw query parameters leniently: non-numeric or missing
// values become zero and the engine substitutes its defaults.
func parseArgs(r *http.Request) query.Args {
	get := func(key string) string {
		if v := r.PostFormValue(key); v != "" {
			return v
		}
		return r.URL.Query().Get(key)
	}

	page, _ := strconv.Atoi(get("page"))
	perPage, _ := strconv.Atoi(get("per_page"))

	return query.Args{
		Page:    page,
		PerPage: perPage,
		OrderBy: get("orderby"),
		Order:   get("order"),
		Search:  get("search"),
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Headers are gone at this point; nothing left to surface.
		_ = err
	}
}

func randomHex(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms.
		panic(fmt.Sprintf("reading random bytes: %v", err))
	}
	return hex.EncodeToString(buf)
}
