// Package httplog records the host application's outbound HTTP requests into
// a queryable, self-pruning log. Construct an App once at process start and
// hand its pieces to whatever needs them; there is no global accessor.
package httplog

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/BeAPI/log-http-requests/internal/capture"
	"github.com/BeAPI/log-http-requests/internal/config"
	"github.com/BeAPI/log-http-requests/internal/logstore"
	"github.com/BeAPI/log-http-requests/internal/query"
	"github.com/BeAPI/log-http-requests/internal/retention"
	"github.com/BeAPI/log-http-requests/internal/scripting"
)

// Config re-exports the daemon configuration.
type Config = config.Config

// DefaultConfig returns the default configuration.
func DefaultConfig() Config { return config.DefaultConfig() }

// LoadConfig reads configuration from a YAML file.
func LoadConfig(path string) (Config, error) { return config.Load(path) }

// App bundles the wired components. Fields are the injection points: pass
// Interceptor to the HTTP layer, Engine to the query surface, Sweeper to the
// scheduler.
type App struct {
	Store       *logstore.Store
	Interceptor *capture.Interceptor
	Engine      *query.Engine
	Sweeper     *retention.Sweeper

	logger *log.Logger
}

// New opens the store and wires all components from cfg.
func New(cfg Config, logger *log.Logger) (*App, error) {
	if logger == nil {
		logger = log.Default()
	}

	store, err := logstore.Open(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	var filter capture.Filter
	if cfg.FilterScript != "" {
		src, err := os.ReadFile(cfg.FilterScript)
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("reading filter script: %w", err)
		}
		filter = scripting.NewEngine(string(src), 5*time.Second).Filter(logger)
	}

	interceptor := capture.New(store, capture.Options{
		CronMarker:     cfg.CronMarker,
		MaxBodyBytes:   cfg.MaxBodyBytes,
		BacktraceDepth: cfg.BacktraceDepth,
		Filter:         filter,
		Logger:         logger,
	})

	return &App{
		Store:       store,
		Interceptor: interceptor,
		Engine:      query.NewEngine(store),
		Sweeper:     retention.New(store, cfg.ExpirationDays, logger),
		logger:      logger,
	}, nil
}

// WrapTransport returns base with request logging attached. A nil base wraps
// http.DefaultTransport.
func (a *App) WrapTransport(base http.RoundTripper) http.RoundTripper {
	return capture.NewTransport(base, a.Interceptor)
}

// Client returns an http.Client whose requests are logged.
func (a *App) Client() *http.Client {
	return capture.Client(a.Interceptor)
}

// Close releases the underlying store.
func (a *App) Close() error {
	return a.Store.Close()
}
