package export

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/BeAPI/log-http-requests/internal/logstore"
)

func TestToHAR(t *testing.T) {
	added := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	records := []logstore.Record{
		{
			ID:          1,
			URL:         "https://api.example.com/users?page=2",
			RequestArgs: `{"method":"POST","headers":{"Content-Type":"application/json","Authorization":"Bearer x"},"body":"{\"name\":\"ada\"}","body_truncated":false}`,
			Response:    `{"response":{"code":201,"message":"Created"},"headers":{"Content-Type":"application/json"},"body":"{\"id\":7}"}`,
			Runtime:     0.25,
			DateAdded:   added,
		},
	}

	out, err := ToHAR(records)
	if err != nil {
		t.Fatal(err)
	}

	var har HAR
	if err := json.Unmarshal(out, &har); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}

	if har.Log.Version != "1.2" {
		t.Errorf("version = %q, want 1.2", har.Log.Version)
	}
	if har.Log.Creator.Name != "httplog" {
		t.Errorf("creator = %q, want httplog", har.Log.Creator.Name)
	}
	if len(har.Log.Entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(har.Log.Entries))
	}

	e := har.Log.Entries[0]
	if e.StartedDateTime != "2026-03-14T09:26:53Z" {
		t.Errorf("startedDateTime = %q", e.StartedDateTime)
	}
	if e.Time != 250 {
		t.Errorf("time = %v, want 250", e.Time)
	}

	if e.Request.Method != "POST" {
		t.Errorf("method = %q, want POST", e.Request.Method)
	}
	if e.Request.URL != "https://api.example.com/users?page=2" {
		t.Errorf("url = %q", e.Request.URL)
	}
	if len(e.Request.QueryString) != 1 || e.Request.QueryString[0].Name != "page" || e.Request.QueryString[0].Value != "2" {
		t.Errorf("queryString = %v", e.Request.QueryString)
	}
	if e.Request.PostData == nil {
		t.Fatal("postData missing")
	}
	if e.Request.PostData.MimeType != "application/json" {
		t.Errorf("postData mimeType = %q", e.Request.PostData.MimeType)
	}
	if e.Request.PostData.Text != `{"name":"ada"}` {
		t.Errorf("postData text = %q", e.Request.PostData.Text)
	}

	if e.Response.Status != 201 {
		t.Errorf("status = %d, want 201", e.Response.Status)
	}
	if e.Response.StatusText != "Created" {
		t.Errorf("statusText = %q, want Created", e.Response.StatusText)
	}
	if e.Response.Content.Text != `{"id":7}` {
		t.Errorf("content = %q", e.Response.Content.Text)
	}
	if e.Response.Content.MimeType != "application/json" {
		t.Errorf("content mimeType = %q", e.Response.Content.MimeType)
	}
}

func TestToHAR_TransportFailure(t *testing.T) {
	records := []logstore.Record{
		{
			ID:          2,
			URL:         "https://down.example.com/",
			RequestArgs: `{"method":"GET","headers":{},"body":"","body_truncated":false}`,
			Response:    `{"error":{"kind":"transport","message":"dial tcp: connection refused"}}`,
			Runtime:     0.01,
			DateAdded:   time.Now(),
		},
	}

	out, err := ToHAR(records)
	if err != nil {
		t.Fatal(err)
	}

	var har HAR
	if err := json.Unmarshal(out, &har); err != nil {
		t.Fatal(err)
	}
	e := har.Log.Entries[0]
	if e.Response.Status != 0 {
		t.Errorf("status = %d, want 0 for transport failure", e.Response.Status)
	}
	if e.Response.StatusText != "dial tcp: connection refused" {
		t.Errorf("statusText = %q", e.Response.StatusText)
	}
	if e.Request.PostData != nil {
		t.Errorf("bodyless request exported postData %v", e.Request.PostData)
	}
}

func TestToHAR_EmptyLog(t *testing.T) {
	out, err := ToHAR(nil)
	if err != nil {
		t.Fatal(err)
	}
	var har HAR
	if err := json.Unmarshal(out, &har); err != nil {
		t.Fatal(err)
	}
	if len(har.Log.Entries) != 0 {
		t.Errorf("got %d entries, want 0", len(har.Log.Entries))
	}
}

func TestToHAR_MalformedPayloads(t *testing.T) {
	records := []logstore.Record{
		{
			URL:         "https://api.example.com/x",
			RequestArgs: "not json",
			Response:    "also not json",
			DateAdded:   time.Now(),
		},
	}

	out, err := ToHAR(records)
	if err != nil {
		t.Fatal(err)
	}
	var har HAR
	if err := json.Unmarshal(out, &har); err != nil {
		t.Fatal(err)
	}
	e := har.Log.Entries[0]
	if e.Request.Method != "GET" {
		t.Errorf("method = %q, want GET fallback", e.Request.Method)
	}
	if e.Response.Status != 0 {
		t.Errorf("status = %d, want 0", e.Response.Status)
	}
}
