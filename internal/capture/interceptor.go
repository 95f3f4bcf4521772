// Package capture times outbound HTTP requests and writes one log record per
// completed call. Logging is best-effort: nothing in this package ever
// propagates an error back into the host's HTTP call.
package capture

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/BeAPI/log-http-requests/internal/logstore"
)

// DefaultCronMarker suppresses logging for the system's own scheduled
// traffic. URLs containing it (exact, case-sensitive substring) are never
// recorded.
const DefaultCronMarker = "httplog_cron"

// DefaultMaxBodyBytes caps how much of a request or response body is
// captured into a record.
const DefaultMaxBodyBytes = 64 * 1024

// Filter may veto or rewrite a record before it is persisted. Returning nil
// skips the write; any other return value is stored as-is.
type Filter func(*logstore.Record) *logstore.Record

// Options configures an Interceptor. Zero values select the defaults.
type Options struct {
	CronMarker     string
	MaxBodyBytes   int64
	BacktraceDepth int
	Filter         Filter
	Logger         *log.Logger
}

// StartToken correlates a request start with its completion, so overlapping
// requests within one process each keep their own start time.
type StartToken struct {
	id uuid.UUID
}

// Interceptor builds and persists log records from request lifecycle hooks.
type Interceptor struct {
	store      *logstore.Store
	logger     *log.Logger
	cronMarker string
	maxBody    int64
	btDepth    int
	filter     Filter

	mu     sync.Mutex
	starts map[uuid.UUID]time.Time
}

// New creates an interceptor writing to store.
func New(store *logstore.Store, opts Options) *Interceptor {
	if opts.CronMarker == "" {
		opts.CronMarker = DefaultCronMarker
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if opts.BacktraceDepth <= 0 {
		opts.BacktraceDepth = defaultBacktraceDepth
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &Interceptor{
		store:      store,
		logger:     opts.Logger,
		cronMarker: opts.CronMarker,
		maxBody:    opts.MaxBodyBytes,
		btDepth:    opts.BacktraceDepth,
		filter:     opts.Filter,
		starts:     make(map[uuid.UUID]time.Time),
	}
}

// OnRequestStart marks the start of an outbound request and returns a token
// the completion hook uses to look the start time back up.
func (i *Interceptor) OnRequestStart() StartToken {
	tok := StartToken{id: uuid.New()}
	i.mu.Lock()
	i.starts[tok.id] = time.Now()
	i.mu.Unlock()
	return tok
}

// OnRequestComplete computes the request runtime and persists a record. resp
// may be nil when reqErr holds a transport-level failure. contextTag and
// transportName identify where in the host the call came from.
func (i *Interceptor) OnRequestComplete(tok StartToken, resp *http.Response, reqErr error, contextTag, transportName string, args RequestArgs, rawURL string) {
	runtime := i.consumeStart(tok)

	if strings.Contains(rawURL, i.cronMarker) {
		return
	}

	args.Context = contextTag
	args.Transport = transportName

	record := &logstore.Record{
		URL:         rawURL,
		RequestArgs: marshalPayload(args),
		Response:    i.serializeOutcome(resp, reqErr),
		Backtrace:   backtrace(i.btDepth),
		Runtime:     runtime.Seconds(),
	}

	if i.filter != nil {
		record = i.filter(record)
		if record == nil {
			return
		}
	}

	if _, err := i.store.Insert(record); err != nil {
		i.logger.Printf("httplog: dropping record for %s: %v", rawURL, err)
	}
}

// consumeStart returns the elapsed time since the token's start mark and
// forgets the mark. An unknown token yields zero.
func (i *Interceptor) consumeStart(tok StartToken) time.Duration {
	i.mu.Lock()
	start, ok := i.starts[tok.id]
	delete(i.starts, tok.id)
	i.mu.Unlock()
	if !ok {
		return 0
	}
	d := time.Since(start)
	if d < 0 {
		d = 0
	}
	return d
}

// RequestArgs describes the outgoing request. It is serialized verbatim into
// the record's request_args payload.
type RequestArgs struct {
	Method        string            `json:"method"`
	Headers       map[string]string `json:"headers,omitempty"`
	Body          string            `json:"body,omitempty"`
	BodyTruncated bool              `json:"body_truncated,omitempty"`
	Context       string            `json:"context,omitempty"`
	Transport     string            `json:"transport,omitempty"`
}

type responsePayload struct {
	Response struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"response"`
	Headers       map[string]string `json:"headers,omitempty"`
	Body          string            `json:"body,omitempty"`
	BodyTruncated bool              `json:"body_truncated,omitempty"`
}

type errorPayload struct {
	Error struct {
		Kind    string `json:"kind"`
		Message string `json:"message"`
	} `json:"error"`
}

// serializeOutcome encodes either the HTTP response or the transport failure.
// The two shapes are distinguishable: only a real response carries a nested
// response.code.
func (i *Interceptor) serializeOutcome(resp *http.Response, reqErr error) string {
	if reqErr != nil {
		var p errorPayload
		p.Error.Kind = "transport"
		p.Error.Message = reqErr.Error()
		return marshalPayload(p)
	}
	if resp == nil {
		var p errorPayload
		p.Error.Kind = "transport"
		p.Error.Message = "no response"
		return marshalPayload(p)
	}

	var p responsePayload
	p.Response.Code = resp.StatusCode
	p.Response.Message = strings.TrimSpace(strings.TrimPrefix(resp.Status, fmt.Sprintf("%d", resp.StatusCode)))
	p.Headers = flattenHeader(resp.Header)
	p.Body, p.BodyTruncated = i.snapshotBody(resp)
	return marshalPayload(p)
}

// snapshotBody reads up to the capture limit from the response body and
// splices the read prefix back so the host still sees the full stream.
func (i *Interceptor) snapshotBody(resp *http.Response) (string, bool) {
	if resp.Body == nil || resp.Body == http.NoBody {
		return "", false
	}
	prefix := make([]byte, i.maxBody+1)
	n, err := io.ReadFull(resp.Body, prefix)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		i.logger.Printf("httplog: reading response body: %v", err)
	}
	prefix = prefix[:n]

	resp.Body = &splicedBody{
		Reader: io.MultiReader(bytes.NewReader(prefix), resp.Body),
		closer: resp.Body,
	}

	if int64(len(prefix)) > i.maxBody {
		return string(prefix[:i.maxBody]), true
	}
	return string(prefix), false
}

type splicedBody struct {
	io.Reader
	closer io.Closer
}

func (b *splicedBody) Close() error { return b.closer.Close() }

// marshalPayload never fails: a marshal error is replaced by a placeholder
// payload noting the failure.
func marshalPayload(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		var p errorPayload
		p.Error.Kind = "serialization"
		p.Error.Message = err.Error()
		fallback, ferr := json.Marshal(p)
		if ferr != nil {
			return `{"error":{"kind":"serialization","message":"unencodable payload"}}`
		}
		return string(fallback)
	}
	return string(data)
}

func flattenHeader(h http.Header) map[string]string {
	if len(h) == 0 {
		return nil
	}
	out := make(map[string]string, len(h))
	for k, vs := range h {
		out[k] = strings.Join(vs, ", ")
	}
	return out
}
