// Package export converts stored request log records into interchange
// formats for external tooling.
package export

import (
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/valyala/fastjson"

	"github.com/BeAPI/log-http-requests/internal/logstore"
	"github.com/BeAPI/log-http-requests/pkg/version"
)

// HAR represents the HAR 1.2 format.
type HAR struct {
	Log HARLog `json:"log"`
}

// HARLog is the top-level log object.
type HARLog struct {
	Version string     `json:"version"`
	Creator HARCreator `json:"creator"`
	Entries []HAREntry `json:"entries"`
}

// HARCreator identifies the tool that created the HAR.
type HARCreator struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// HAREntry represents a single request/response pair.
type HAREntry struct {
	StartedDateTime string      `json:"startedDateTime"`
	Time            float64     `json:"time"`
	Request         HARRequest  `json:"request"`
	Response        HARResponse `json:"response"`
	Timings         HARTimings  `json:"timings"`
}

// HARRequest is the request portion of an entry.
type HARRequest struct {
	Method      string       `json:"method"`
	URL         string       `json:"url"`
	HTTPVersion string       `json:"httpVersion"`
	Headers     []HARHeader  `json:"headers"`
	QueryString []HARQuery   `json:"queryString"`
	PostData    *HARPostData `json:"postData,omitempty"`
	HeadersSize int          `json:"headersSize"`
	BodySize    int          `json:"bodySize"`
}

// HARResponse is the response portion of an entry.
type HARResponse struct {
	Status      int         `json:"status"`
	StatusText  string      `json:"statusText"`
	HTTPVersion string      `json:"httpVersion"`
	Headers     []HARHeader `json:"headers"`
	Content     HARContent  `json:"content"`
	HeadersSize int         `json:"headersSize"`
	BodySize    int         `json:"bodySize"`
}

// HARHeader is a name/value pair for headers.
type HARHeader struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// HARQuery is a name/value pair for query string parameters.
type HARQuery struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// HARPostData is the body of a request.
type HARPostData struct {
	MimeType string `json:"mimeType"`
	Text     string `json:"text"`
}

// HARContent is the body of a response.
type HARContent struct {
	Size     int    `json:"size"`
	MimeType string `json:"mimeType"`
	Text     string `json:"text"`
}

// HARTimings holds timing info for an entry. The log stores only total
// runtime, so the breakdown fields carry the HAR "unknown" sentinel.
type HARTimings struct {
	DNS     float64 `json:"dns"`
	Connect float64 `json:"connect"`
	SSL     float64 `json:"ssl"`
	Send    float64 `json:"send"`
	Wait    float64 `json:"wait"`
	Receive float64 `json:"receive"`
}

// ToHAR creates a HAR 1.2 JSON document from log records. Records whose
// request never produced an HTTP response export with status 0 and the
// transport error as the status text, matching browser devtools output for
// failed requests.
func ToHAR(records []logstore.Record) ([]byte, error) {
	var p fastjson.Parser

	entries := make([]HAREntry, 0, len(records))
	for _, r := range records {
		entries = append(entries, HAREntry{
			StartedDateTime: r.DateAdded.UTC().Format(time.RFC3339),
			Time:            r.Runtime * 1000,
			Request:         buildRequest(&p, r),
			Response:        buildResponse(&p, r),
			Timings: HARTimings{
				DNS:     -1,
				Connect: -1,
				SSL:     -1,
				Send:    0,
				Wait:    r.Runtime * 1000,
				Receive: 0,
			},
		})
	}

	har := HAR{
		Log: HARLog{
			Version: "1.2",
			Creator: HARCreator{Name: "httplog", Version: version.Version},
			Entries: entries,
		},
	}

	out, err := json.MarshalIndent(har, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding har: %w", err)
	}
	return out, nil
}

func buildRequest(p *fastjson.Parser, r logstore.Record) HARRequest {
	req := HARRequest{
		Method:      "GET",
		URL:         r.URL,
		HTTPVersion: "HTTP/1.1",
		Headers:     []HARHeader{},
		QueryString: queryPairs(r.URL),
		HeadersSize: -1,
		BodySize:    -1,
	}

	v, err := p.Parse(r.RequestArgs)
	if err != nil {
		return req
	}

	if m := string(v.GetStringBytes("method")); m != "" {
		req.Method = m
	}
	req.Headers = headerPairs(v.GetObject("headers"))

	if body := string(v.GetStringBytes("body")); body != "" {
		req.BodySize = len(body)
		req.PostData = &HARPostData{
			MimeType: headerValue(req.Headers, "Content-Type", "text/plain"),
			Text:     body,
		}
	}

	return req
}

func buildResponse(p *fastjson.Parser, r logstore.Record) HARResponse {
	resp := HARResponse{
		HTTPVersion: "HTTP/1.1",
		Headers:     []HARHeader{},
		HeadersSize: -1,
		BodySize:    -1,
	}

	v, err := p.Parse(r.Response)
	if err != nil {
		return resp
	}

	if msg := string(v.GetStringBytes("error", "message")); msg != "" {
		resp.StatusText = msg
		return resp
	}

	resp.Status = v.GetInt("response", "code")
	resp.StatusText = string(v.GetStringBytes("response", "message"))
	resp.Headers = headerPairs(v.GetObject("headers"))

	body := string(v.GetStringBytes("body"))
	resp.BodySize = len(body)
	resp.Content = HARContent{
		Size:     len(body),
		MimeType: headerValue(resp.Headers, "Content-Type", "text/plain"),
		Text:     body,
	}

	return resp
}

func queryPairs(rawURL string) []HARQuery {
	params := []HARQuery{}
	u, err := url.Parse(rawURL)
	if err != nil {
		return params
	}
	for name, vals := range u.Query() {
		for _, v := range vals {
			params = append(params, HARQuery{Name: name, Value: v})
		}
	}
	return params
}

func headerPairs(obj *fastjson.Object) []HARHeader {
	headers := []HARHeader{}
	if obj == nil {
		return headers
	}
	obj.Visit(func(key []byte, val *fastjson.Value) {
		headers = append(headers, HARHeader{
			Name:  string(key),
			Value: string(val.GetStringBytes()),
		})
	})
	return headers
}

func headerValue(headers []HARHeader, name, fallback string) string {
	for _, h := range headers {
		if h.Name == name {
			return h.Value
		}
	}
	return fallback
}
