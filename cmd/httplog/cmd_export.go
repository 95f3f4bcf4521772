package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/BeAPI/log-http-requests/internal/export"
	"github.com/BeAPI/log-http-requests/internal/logstore"
)

func exportCmd() {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	dbFlag := fs.String("db", "httplog.db", "Path to the log database")
	limitFlag := fs.Int("n", 0, "Maximum number of records to export (0 for all)")
	searchFlag := fs.String("search", "", "Only export records whose URL contains this term")
	outputFlag := fs.String("o", "", "Write to a file instead of stdout")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: httplog export [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Export logged requests as a HAR 1.2 archive, oldest first, for\n")
		fmt.Fprintf(os.Stderr, "inspection in browser devtools or any HAR viewer.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  httplog export > requests.har\n")
		fmt.Fprintf(os.Stderr, "  httplog export -o requests.har\n")
		fmt.Fprintf(os.Stderr, "  httplog export --search api.example.com -n 100\n")
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

	limit := *limitFlag
	if limit <= 0 {
		total, err := store.Count()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		limit = total
	}
	if limit == 0 {
		fmt.Fprintf(os.Stderr, "Error: log is empty\n")
		os.Exit(1)
	}

	records, err := store.Select(logstore.SelectOptions{
		OrderBy: logstore.OrderByDateAdded,
		Limit:   limit,
		Search:  *searchFlag,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	out, err := export.ToHAR(records)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *outputFlag == "" {
		fmt.Println(string(out))
		return
	}
	if err := os.WriteFile(*outputFlag, out, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "Exported %d records to %s\n", len(records), *outputFlag)
}
