package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/BeAPI/log-http-requests/internal/logstore"
	"github.com/BeAPI/log-http-requests/internal/query"
)

func tailCmd() {
	fs := flag.NewFlagSet("tail", flag.ExitOnError)
	dbFlag := fs.String("db", "httplog.db", "Path to the log database")
	limitFlag := fs.Int("n", 20, "Number of records to print")
	searchFlag := fs.String("search", "", "Only show records whose URL contains this term")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: httplog tail [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Print the most recent logged requests, newest first.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  httplog tail\n")
		fmt.Fprintf(os.Stderr, "  httplog tail -n 50\n")
		fmt.Fprintf(os.Stderr, "  httplog tail --search api.example.com\n")
	}

	if err := fs.Parse(os.Args[2:]); err != nil {
		os.Exit(2)
	}

	store, err := logstore.Open(*dbFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	records, err := store.Select(logstore.SelectOptions{
		OrderBy: logstore.OrderByDateAdded,
		Desc:    true,
		Limit:   *limitFlag,
		Search:  *searchFlag,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if len(records) == 0 {
		fmt.Println("No records.")
		return
	}

	now := time.Now()
	for _, r := range records {
		fmt.Printf("%6d  %-4s %8.4fs  %-14s  %s\n",
			r.ID, query.StatusCode(r.Response), r.Runtime,
			query.TimeSince(r.DateAdded, now)+" ago", truncate(r.URL, 80))
	}
}

// truncate shortens s to max characters, using an ellipsis.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
