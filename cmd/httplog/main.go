package main

import (
	"fmt"
	"os"

	"github.com/BeAPI/log-http-requests/pkg/version"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "serve":
			serveCmd()
			return
		case "tail":
			tailCmd()
			return
		case "show":
			showCmd()
			return
		case "urls":
			urlsCmd()
			return
		case "export":
			exportCmd()
			return
		case "cleanup":
			cleanupCmd()
			return
		case "clear":
			clearCmd()
			return
		case "version":
			fmt.Printf("httplog %s (%s) built %s\n", version.Version, version.Commit, version.Date)
			return
		case "help":
			printHelp()
			return
		default:
			fmt.Fprintf(os.Stderr, "Error: unknown command %q\n\n", os.Args[1])
			printHelp()
			os.Exit(2)
		}
	}
	printHelp()
	os.Exit(2)
}

func printHelp() {
	fmt.Fprintf(os.Stderr, `httplog - Capture, inspect and prune outbound HTTP request logs

Usage:
  httplog <command> [args] [flags]

Commands:
  serve     Start the query API server and the retention sweeper
  tail      Print the most recent logged requests
  show      Print one logged request with its full payloads
  urls      List distinct logged URLs, optionally fuzzy-filtered
  export    Export logged requests as a HAR 1.2 archive
  cleanup   Delete records older than the retention window, once
  clear     Delete every record in the log
  version   Print version information
  help      Show this help message

Run 'httplog <command> --help' for more information about a command.
`)
}
