package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/BeAPI/log-http-requests/internal/logstore"
)

func clearCmd() {
	fs := flag.NewFlagSet("clear", flag.ExitOnError)
	dbFlag := fs.String("db", "httplog.db", "Path to the log database")
	forceFlag := fs.Bool("force", false, "Skip the confirmation prompt")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: httplog clear [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Delete every record in the log.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  httplog clear\n")
		fmt.Fprintf(os.Stderr, "  httplog clear --force\n")
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

	total, err := store.Count()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if total == 0 {
		fmt.Println("Log is already empty.")
		return
	}

	if !*forceFlag {
		fmt.Printf("Delete all %d records? [y/N] ", total)
		line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
		if answer := strings.ToLower(strings.TrimSpace(line)); answer != "y" && answer != "yes" {
			fmt.Println("Aborted.")
			return
		}
	}

	if err := store.Truncate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Deleted %d records.\n", total)
}
