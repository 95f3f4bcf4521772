package logstore

import "time"

// Record is one captured outbound HTTP request.
type Record struct {
	ID          int64
	URL         string
	RequestArgs string  // JSON-encoded request arguments
	Response    string  // JSON-encoded response, or a transport error shape
	Backtrace   string  // newline-joined call-site frames
	Runtime     float64 // elapsed seconds
	DateAdded   time.Time
}
