package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/BeAPI/log-http-requests/internal/logstore"
	"github.com/BeAPI/log-http-requests/internal/retention"
)

func cleanupCmd() {
	fs := flag.NewFlagSet("cleanup", flag.ExitOnError)
	dbFlag := fs.String("db", "httplog.db", "Path to the log database")
	daysFlag := fs.Int("expiration-days", retention.DefaultExpirationDays, "Delete records older than this many days")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: httplog cleanup [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Delete records older than the retention window, once, then exit.\n")
		fmt.Fprintf(os.Stderr, "The serve command runs the same sweep on a schedule.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  httplog cleanup\n")
		fmt.Fprintf(os.Stderr, "  httplog cleanup --expiration-days 7\n")
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

	logger := log.New(os.Stderr, "", log.LstdFlags)
	sweeper := retention.New(store, *daysFlag, logger)
	if err := sweeper.Cleanup(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
