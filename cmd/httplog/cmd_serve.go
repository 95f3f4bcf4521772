package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	httplog "github.com/BeAPI/log-http-requests"
	"github.com/BeAPI/log-http-requests/internal/gateway"
)

func serveCmd() {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configFlag := fs.String("config", "", "Path to a YAML config file")
	dbFlag := fs.String("db", "", "Path to the log database (overrides config)")
	listenFlag := fs.String("listen", "", "Address to listen on (overrides config)")
	tokenFlag := fs.String("token", "", "API bearer token (overrides config; generated when empty)")
	daysFlag := fs.Int("expiration-days", 0, "Retention window in days (overrides config)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: httplog serve [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Start the query API server and the retention sweeper.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  httplog serve\n")
		fmt.Fprintf(os.Stderr, "  httplog serve --config httplog.yaml\n")
		fmt.Fprintf(os.Stderr, "  httplog serve --db /var/lib/httplog.db --listen 0.0.0.0:8687\n")
	}

	if err := fs.Parse(os.Args[2:]); err != nil {
		os.Exit(2)
	}

	cfg, err := httplog.LoadConfig(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	if *dbFlag != "" {
		cfg.DBPath = *dbFlag
	}
	if *listenFlag != "" {
		cfg.Listen = *listenFlag
	}
	if *tokenFlag != "" {
		cfg.APIToken = *tokenFlag
	}
	if *daysFlag > 0 {
		cfg.ExpirationDays = *daysFlag
	}

	logger := log.New(os.Stderr, "", log.LstdFlags)

	app, err := httplog.New(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer app.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	app.Sweeper.Start(ctx, time.Duration(cfg.CleanupInterval))

	srv := gateway.New(app.Engine, app.Store, gateway.Options{
		APIToken:      cfg.APIToken,
		SigningSecret: cfg.SigningSecret,
		DBPath:        cfg.DBPath,
		PerPage:       cfg.PerPage,
		Logger:        logger,
	})

	errCh := make(chan error, 1)
	go func() {
		logger.Printf("httplog: listening on %s (db %s)", cfg.Listen, cfg.DBPath)
		errCh <- srv.Start(cfg.Listen)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			fmt.Fprintf(os.Stderr, "Error during shutdown: %v\n", err)
			os.Exit(1)
		}
		logger.Printf("httplog: shut down")
	}
}
