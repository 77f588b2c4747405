package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"parking-ledger/internal/config"
	"parking-ledger/internal/logging"
	"parking-ledger/internal/parking"
	"parking-ledger/internal/server"
	"parking-ledger/internal/words"
)

var (
	mode    = flag.String("mode", "cli", "Mode to run: cli, batch, server, both, or dupes")
	port    = flag.String("port", "", "Port for HTTP server (overrides APP_PORT)")
	input   = flag.String("input", "", "Input file for batch and dupes modes")
	envFile = flag.String("env", ".env", "Optional .env file to load")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *port != "" {
		cfg.Port = *port
	}

	logging.Configure(cfg.LogLevel, cfg.OTelServiceName, os.Stderr)
	log := logging.Logger()

	if *mode == "dupes" {
		if err := runDupes(*input, os.Stdout); err != nil {
			log.Fatalf("Duplicate scan failed: %v", err)
		}
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	telemetryProvider, err := parking.NewTelemetryProvider(ctx, parking.TelemetryConfig{
		ServiceName:  cfg.OTelServiceName,
		OTLPEndpoint: cfg.OTelEndpoint,
		FromEnv:      os.Getenv("OTEL_RESOURCE_ATTRIBUTES") != "",
	})
	if err != nil {
		log.Fatalf("Failed to initialize telemetry: %v", err)
	}

	app, err := newApp(cfg, telemetryProvider)
	if err != nil {
		log.Fatalf("Failed to initialize ledger: %v", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	switch *mode {
	case "cli":
		runCLI(ctx, cancel, app, sigChan)
	case "batch":
		runBatch(ctx, app, *input)
	case "server":
		runServer(ctx, cancel, app, sigChan)
	case "both":
		runBoth(ctx, cancel, app, sigChan)
	default:
		log.Errorf("Invalid mode: %s. Must be cli, batch, server, both, or dupes", *mode)
	}

	shutdownTelemetry(telemetryProvider)
}

// app holds the single ledger every front end shares.
type app struct {
	cfg        *config.Config
	telemetry  *parking.TelemetryProvider
	dispatcher *parking.Dispatcher
	batch      *parking.BatchRunner
}

func newApp(cfg *config.Config, telemetry *parking.TelemetryProvider) (*app, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", cfg.Timezone, err)
	}

	ledger, err := parking.NewInstrumentedLedger(cfg.Capacity, telemetry)
	if err != nil {
		return nil, err
	}

	plates, err := parking.NewPlateValidator()
	if err != nil {
		return nil, err
	}

	dispatcher := parking.NewDispatcher(ledger, plates, telemetry)

	return &app{
		cfg:        cfg,
		telemetry:  telemetry,
		dispatcher: dispatcher,
		batch:      parking.NewBatchRunner(dispatcher, loc, telemetry),
	}, nil
}

func (a *app) newServer() (*server.Server, error) {
	handler, err := server.NewHandler(a.dispatcher, a.batch, time.Now, a.cfg.OTelServiceName)
	if err != nil {
		return nil, err
	}
	return server.NewServer(a.cfg.Port, handler), nil
}

func runCLI(ctx context.Context, cancel context.CancelFunc, a *app, sigChan chan os.Signal) {
	go func() {
		<-sigChan
		logging.Info(ctx, "Shutting down...")
		cancel()
	}()

	shell := parking.NewShell(a.dispatcher, os.Stdin, os.Stdout, time.Now, a.telemetry)
	shell.Run(ctx)
}

func runBatch(ctx context.Context, a *app, path string) {
	var err error
	if path == "" {
		err = a.batch.RunLines(ctx, parking.SampleCommands, os.Stdout)
	} else {
		var f *os.File
		f, err = os.Open(path)
		if err == nil {
			defer f.Close()
			err = a.batch.Run(ctx, f, os.Stdout)
		}
	}

	if err != nil {
		logging.Errorf(ctx, "Batch run failed: %v", err)
	}
}

func runServer(ctx context.Context, cancel context.CancelFunc, a *app, sigChan chan os.Signal) {
	srv, err := a.newServer()
	if err != nil {
		logging.Errorf(ctx, "Failed to create server: %v", err)
		return
	}

	go func() {
		<-sigChan
		logging.Info(ctx, "Received shutdown signal...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logging.Errorf(ctx, "Server shutdown error: %v", err)
		}

		cancel()
	}()

	logging.Infof(ctx, "Starting server mode at %s", srv.GetAddress())
	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logging.Errorf(ctx, "Server error: %v", err)
	}
}

func runBoth(ctx context.Context, cancel context.CancelFunc, a *app, sigChan chan os.Signal) {
	srv, err := a.newServer()
	if err != nil {
		logging.Errorf(ctx, "Failed to create server: %v", err)
		return
	}

	serverDone := make(chan error, 1)
	go func() {
		serverDone <- srv.Start()
	}()

	cliDone := make(chan struct{})
	go func() {
		shell := parking.NewShell(a.dispatcher, os.Stdin, os.Stdout, time.Now, a.telemetry)
		shell.Run(ctx)
		close(cliDone)
	}()

	select {
	case err := <-serverDone:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Errorf(ctx, "Server error: %v", err)
		}
	case <-cliDone:
		logging.Info(ctx, "CLI exited")
	case <-sigChan:
		logging.Info(ctx, "Received shutdown signal...")
	}

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Errorf(ctx, "Server shutdown error: %v", err)
	}
}

func runDupes(path string, out io.Writer) error {
	if path == "" {
		path = "words.txt"
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dups, err := words.Duplicates(f)
	if err != nil {
		return err
	}

	for _, word := range dups {
		fmt.Fprintln(out, word)
	}
	return nil
}

func shutdownTelemetry(telemetryProvider *parking.TelemetryProvider) {
	ctx := context.Background()
	logging.Info(ctx, "Shutting down telemetry...")

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 5*time.Second)
	defer shutdownCancel()

	if err := telemetryProvider.Shutdown(shutdownCtx); err != nil {
		logging.Errorf(ctx, "Error shutting down telemetry: %v", err)
	}
}
