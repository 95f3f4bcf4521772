package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromastyles "github.com/alecthomas/chroma/v2/styles"
	"github.com/tidwall/pretty"

	"github.com/BeAPI/log-http-requests/internal/logstore"
)

func showCmd() {
	fs := flag.NewFlagSet("show", flag.ExitOnError)
	dbFlag := fs.String("db", "httplog.db", "Path to the log database")
	plainFlag := fs.Bool("plain", false, "Disable syntax highlighting")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: httplog show <id> [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Print one logged request with its full payloads and backtrace.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  httplog show 42\n")
		fmt.Fprintf(os.Stderr, "  httplog show 42 --plain\n")
	}

	if err := fs.Parse(os.Args[2:]); err != nil {
		os.Exit(2)
	}

	if fs.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Error: record id is required\n\n")
		fs.Usage()
		os.Exit(2)
	}
	id, err := strconv.ParseInt(fs.Arg(0), 10, 64)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid record id %q\n", fs.Arg(0))
		os.Exit(2)
	}

	store, err := logstore.Open(*dbFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	r, err := store.Get(id)
	if errors.Is(err, logstore.ErrNotFound) {
		fmt.Fprintf(os.Stderr, "Error: no record with id %d\n", id)
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	color := !*plainFlag

	fmt.Printf("ID:       %d\n", r.ID)
	fmt.Printf("URL:      %s\n", r.URL)
	fmt.Printf("Runtime:  %.4fs\n", r.Runtime)
	fmt.Printf("Captured: %s\n", r.DateAdded.UTC().Format("2006-01-02 15:04:05"))

	fmt.Printf("\n--- Request ---\n%s\n", renderJSON(r.RequestArgs, color))
	fmt.Printf("\n--- Response ---\n%s\n", renderJSON(r.Response, color))
	if r.Backtrace != "" {
		fmt.Printf("\n--- Backtrace ---\n%s\n", r.Backtrace)
	}
}

// renderJSON pretty-prints a stored JSON payload, highlighting it for
// terminal output when color is on.
func renderJSON(payload string, color bool) string {
	out := string(pretty.Pretty([]byte(payload)))
	if !color {
		return out
	}
	return highlight(out, "json")
}

// highlight applies chroma syntax highlighting to source code.
func highlight(source, lexerName string) string {
	lexer := lexers.Get(lexerName)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := chromastyles.Get("monokai")
	if style == nil {
		style = chromastyles.Fallback
	}

	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, source)
	if err != nil {
		return source
	}

	var buf bytes.Buffer
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return source
	}
	return buf.String()
}
