// Package query computes filtered, sorted, paginated views over the request
// log and enriches rows with presentation fields.
package query

import (
	"fmt"
	"html"
	"math"
	"time"

	"github.com/valyala/fastjson"

	"github.com/BeAPI/log-http-requests/internal/logstore"
)

// DefaultPerPage is the page size used when the caller supplies none.
const DefaultPerPage = 50

// Args are the raw, untrusted query parameters. Anything invalid falls back
// to its default instead of erroring.
type Args struct {
	Page    int    `json:"page"`
	PerPage int    `json:"per_page"`
	OrderBy string `json:"orderby"`
	Order   string `json:"order"`
	Search  string `json:"search"`
}

// Row is one enriched log record ready for display. StatusCode, DateAdded
// and the escaped URL are derived at query time and never persisted.
type Row struct {
	ID          int64   `json:"id"`
	URL         string  `json:"url"`
	RequestArgs string  `json:"request_args"`
	Response    string  `json:"response"`
	Backtrace   string  `json:"backtrace"`
	StatusCode  string  `json:"status_code"`
	Runtime     float64 `json:"runtime"`
	DateAdded   string  `json:"date_added"`
	DateRaw     string  `json:"date_raw"`
}

// Pager is the ephemeral pagination state produced by one query.
type Pager struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	TotalRows  int `json:"total_rows"`
	TotalPages int `json:"total_pages"`
}

// Engine reads pages from the store.
type Engine struct {
	store *logstore.Store
	now   func() time.Time
}

// NewEngine creates a query engine over the given store.
func NewEngine(store *logstore.Store) *Engine {
	return &Engine{store: store, now: time.Now}
}

// GetResults returns one enriched page plus its pager state.
func (e *Engine) GetResults(args Args) ([]Row, Pager, error) {
	page := args.Page
	if page < 1 {
		page = 1
	}
	perPage := args.PerPage
	if perPage < 1 {
		perPage = DefaultPerPage
	}

	var orderBy logstore.OrderField
	switch args.OrderBy {
	case "url":
		orderBy = logstore.OrderByURL
	case "runtime":
		orderBy = logstore.OrderByRuntime
	default:
		orderBy = logstore.OrderByDateAdded
	}
	desc := args.Order != "ASC"

	totalRows, err := e.store.CountMatching(args.Search)
	if err != nil {
		return nil, Pager{}, fmt.Errorf("counting results: %w", err)
	}

	records, err := e.store.Select(logstore.SelectOptions{
		OrderBy: orderBy,
		Desc:    desc,
		Limit:   perPage,
		Offset:  (page - 1) * perPage,
		Search:  args.Search,
	})
	if err != nil {
		return nil, Pager{}, fmt.Errorf("selecting results: %w", err)
	}

	pager := Pager{
		Page:       page,
		PerPage:    perPage,
		TotalRows:  totalRows,
		TotalPages: int(math.Ceil(float64(totalRows) / float64(perPage))),
	}

	now := e.now()
	rows := make([]Row, 0, len(records))
	for _, r := range records {
		rows = append(rows, Row{
			ID:          r.ID,
			URL:         html.EscapeString(r.URL),
			RequestArgs: r.RequestArgs,
			Response:    r.Response,
			Backtrace:   r.Backtrace,
			StatusCode:  StatusCode(r.Response),
			Runtime:     math.Round(r.Runtime*10000) / 10000,
			DateAdded:   TimeSince(r.DateAdded, now),
			DateRaw:     r.DateAdded.UTC().Format("2006-01-02 15:04:05"),
		})
	}

	return rows, pager, nil
}

// TruncateTable deletes every record. Confirmation is the caller's concern.
func (e *Engine) TruncateTable() error {
	return e.store.Truncate()
}

// Count returns the total number of stored records, ignoring any filter.
func (e *Engine) Count() (int, error) {
	return e.store.Count()
}

// StatusCode pulls the nested success code out of a stored response payload.
// Transport failures and unparsable payloads yield the "-" sentinel.
func StatusCode(response string) string {
	v, err := fastjson.Parse(response)
	if err != nil {
		return "-"
	}
	code := v.GetInt("response", "code")
	if code == 0 {
		return "-"
	}
	return fmt.Sprintf("%d", code)
}
