// Package scripting runs user-provided JavaScript filters over pending log
// records, so deployments can veto or rewrite records without recompiling.
package scripting

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/dop251/goja"

	"github.com/BeAPI/log-http-requests/internal/capture"
	"github.com/BeAPI/log-http-requests/internal/logstore"
)

// Engine executes a record-filter script. The script must define
//
//	function filter(record) { ... }
//
// where record carries url, request_args, response, backtrace and runtime.
// Returning false drops the record; returning an object persists it with the
// object's fields applied; any other return keeps the record unchanged.
type Engine struct {
	src     string
	timeout time.Duration
}

// NewEngine creates an engine for the given script source.
func NewEngine(src string, timeout time.Duration) *Engine {
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	return &Engine{src: src, timeout: timeout}
}

// Run applies the filter script to a record. A nil record result means the
// write is vetoed. Script failures return the record untouched alongside the
// error, so the caller can decide to fail open.
func (e *Engine) Run(rec *logstore.Record) (*logstore.Record, error) {
	vm := goja.New()

	ctx, cancel := context.WithTimeout(context.Background(), e.timeout)
	defer cancel()

	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			vm.Interrupt("filter script timeout exceeded")
		case <-done:
		}
	}()
	defer close(done)

	if _, err := vm.RunString(e.src); err != nil {
		return rec, fmt.Errorf("filter script error: %w", err)
	}

	fn, ok := goja.AssertFunction(vm.Get("filter"))
	if !ok {
		return rec, fmt.Errorf("filter script does not define filter(record)")
	}

	arg := vm.ToValue(map[string]any{
		"url":          rec.URL,
		"request_args": rec.RequestArgs,
		"response":     rec.Response,
		"backtrace":    rec.Backtrace,
		"runtime":      rec.Runtime,
	})

	result, err := fn(goja.Undefined(), arg)
	if err != nil {
		return rec, fmt.Errorf("filter script error: %w", err)
	}

	switch v := result.Export().(type) {
	case bool:
		if !v {
			return nil, nil
		}
		return rec, nil
	case map[string]any:
		applyFields(rec, v)
		return rec, nil
	default:
		return rec, nil
	}
}

// Filter adapts the engine into a capture filter. Script failures are logged
// and the record is kept: a broken filter must not silence the log.
func (e *Engine) Filter(logger *log.Logger) capture.Filter {
	if logger == nil {
		logger = log.Default()
	}
	return func(rec *logstore.Record) *logstore.Record {
		out, err := e.Run(rec)
		if err != nil {
			logger.Printf("httplog: %v", err)
			return rec
		}
		return out
	}
}

func applyFields(rec *logstore.Record, fields map[string]any) {
	if v, ok := fields["url"].(string); ok {
		rec.URL = v
	}
	if v, ok := fields["request_args"].(string); ok {
		rec.RequestArgs = v
	}
	if v, ok := fields["response"].(string); ok {
		rec.Response = v
	}
	if v, ok := fields["backtrace"].(string); ok {
		rec.Backtrace = v
	}
	switch v := fields["runtime"].(type) {
	case float64:
		rec.Runtime = v
	case int64:
		rec.Runtime = float64(v)
	}
}
