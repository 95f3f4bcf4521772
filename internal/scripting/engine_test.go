package scripting

import (
	"io"
	"log"
	"strings"
	"testing"
	"time"

	"github.com/BeAPI/log-http-requests/internal/logstore"
)

func record() *logstore.Record {
	return &logstore.Record{
		URL:      "https://api.example.com/users?token=secret",
		Response: `{"response":{"code":200,"message":"OK"}}`,
		Runtime:  0.25,
	}
}

func TestRun_Veto(t *testing.T) {
	engine := NewEngine(`
		function filter(record) {
			if (record.url.indexOf("api.example.com") !== -1) {
				return false;
			}
			return true;
		}
	`, time.Second)

	out, err := engine.Run(record())
	if err != nil {
		t.Fatal(err)
	}
	if out != nil {
		t.Error("expected record to be vetoed")
	}

	kept, err := engine.Run(&logstore.Record{URL: "https://other.com"})
	if err != nil {
		t.Fatal(err)
	}
	if kept == nil {
		t.Error("expected non-matching record to be kept")
	}
}

func TestRun_Rewrite(t *testing.T) {
	engine := NewEngine(`
		function filter(record) {
			return {
				url: record.url.split("?")[0],
				runtime: record.runtime,
			};
		}
	`, time.Second)

	out, err := engine.Run(record())
	if err != nil {
		t.Fatal(err)
	}
	if out == nil {
		t.Fatal("expected record to survive")
	}
	if out.URL != "https://api.example.com/users" {
		t.Errorf("expected query string stripped, got %q", out.URL)
	}
	if out.Runtime != 0.25 {
		t.Errorf("runtime changed unexpectedly: %v", out.Runtime)
	}
	// Fields the script did not return stay intact.
	if !strings.Contains(out.Response, `"code":200`) {
		t.Errorf("response payload lost: %q", out.Response)
	}
}

func TestRun_UndefinedKeepsRecord(t *testing.T) {
	engine := NewEngine(`function filter(record) {}`, time.Second)

	out, err := engine.Run(record())
	if err != nil {
		t.Fatal(err)
	}
	if out == nil {
		t.Error("undefined return must keep the record")
	}
}

func TestRun_ScriptError(t *testing.T) {
	engine := NewEngine(`function filter(record) { throw new Error("boom"); }`, time.Second)

	out, err := engine.Run(record())
	if err == nil {
		t.Fatal("expected script error")
	}
	if out == nil {
		t.Error("errors must return the record for fail-open handling")
	}
}

func TestRun_MissingFilterFunction(t *testing.T) {
	engine := NewEngine(`var x = 1;`, time.Second)

	if _, err := engine.Run(record()); err == nil {
		t.Fatal("expected error for missing filter function")
	}
}

func TestRun_Timeout(t *testing.T) {
	engine := NewEngine(`function filter(record) { while (true) {} }`, 50*time.Millisecond)

	start := time.Now()
	_, err := engine.Run(record())
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if time.Since(start) > 5*time.Second {
		t.Error("interrupt did not fire promptly")
	}
}

func TestFilter_FailsOpen(t *testing.T) {
	engine := NewEngine(`function filter(record) { throw new Error("boom"); }`, time.Second)
	filter := engine.Filter(log.New(io.Discard, "", 0))

	if out := filter(record()); out == nil {
		t.Error("a broken filter script must not drop records")
	}
}
