package capture

import (
	"fmt"
	"io"
	"net/http"
)

// Transport wraps an http.RoundTripper and logs every request that passes
// through it. It observes only the start and end of each call; the wrapped
// transport's behavior is unchanged, including on failure.
type Transport struct {
	base        http.RoundTripper
	interceptor *Interceptor
}

// NewTransport wraps base (http.DefaultTransport when nil).
func NewTransport(base http.RoundTripper, i *Interceptor) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &Transport{base: base, interceptor: i}
}

// Client returns an http.Client whose transport logs through the
// interceptor. Convenience for hosts that do not carry their own client.
func Client(i *Interceptor) *http.Client {
	return &http.Client{Transport: NewTransport(nil, i)}
}

// RoundTrip times the request, forwards it, and hands the outcome to the
// interceptor. Each redirect hop is a separate record.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	tok := t.interceptor.OnRequestStart()
	args := t.buildRequestArgs(req)

	resp, err := t.base.RoundTrip(req)

	t.interceptor.OnRequestComplete(tok, resp, err, "roundtrip",
		fmt.Sprintf("%T", t.base), args, req.URL.String())
	return resp, err
}

// buildRequestArgs snapshots the outgoing request. The body is only read
// through GetBody, which hands back a fresh reader, so the request itself is
// left untouched.
func (t *Transport) buildRequestArgs(req *http.Request) RequestArgs {
	args := RequestArgs{
		Method:  req.Method,
		Headers: flattenHeader(req.Header),
	}

	if req.GetBody == nil {
		return args
	}
	body, err := req.GetBody()
	if err != nil {
		t.interceptor.logger.Printf("httplog: reading request body: %v", err)
		return args
	}
	defer body.Close()

	prefix, err := io.ReadAll(io.LimitReader(body, t.interceptor.maxBody+1))
	if err != nil {
		t.interceptor.logger.Printf("httplog: reading request body: %v", err)
		return args
	}
	if int64(len(prefix)) > t.interceptor.maxBody {
		args.Body = string(prefix[:t.interceptor.maxBody])
		args.BodyTruncated = true
	} else {
		args.Body = string(prefix)
	}
	return args
}
