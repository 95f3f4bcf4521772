package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sahilm/fuzzy"

	"github.com/BeAPI/log-http-requests/internal/logstore"
)

func urlsCmd() {
	fs := flag.NewFlagSet("urls", flag.ExitOnError)
	dbFlag := fs.String("db", "httplog.db", "Path to the log database")
	limitFlag := fs.Int("n", 0, "Maximum number of URLs to print (0 for all)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: httplog urls [term] [flags]\n\n")
		fmt.Fprintf(os.Stderr, "List distinct logged URLs, most recently seen first. With a term,\n")
		fmt.Fprintf(os.Stderr, "URLs are fuzzy-matched and ranked by match quality instead.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  httplog urls\n")
		fmt.Fprintf(os.Stderr, "  httplog urls apiusers\n")
		fmt.Fprintf(os.Stderr, "  httplog urls -n 10\n")
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

	urls, err := store.DistinctURLs(0)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if fs.NArg() > 0 {
		matches := fuzzy.Find(fs.Arg(0), urls)
		ranked := make([]string, len(matches))
		for i, match := range matches {
			ranked[i] = urls[match.Index]
		}
		urls = ranked
	}

	if *limitFlag > 0 && len(urls) > *limitFlag {
		urls = urls[:*limitFlag]
	}

	if len(urls) == 0 {
		fmt.Println("No URLs.")
		return
	}
	for _, u := range urls {
		fmt.Println(u)
	}
}
