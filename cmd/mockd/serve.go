package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/getmockd/mockd/pkg/admin"
	"github.com/getmockd/mockd/pkg/config"
	"github.com/getmockd/mockd/pkg/engine"
	"github.com/getmockd/mockd/pkg/graphqlmock"
	"github.com/getmockd/mockd/pkg/logging"
	"github.com/getmockd/mockd/pkg/ratelimit"
	"github.com/getmockd/mockd/pkg/requestlog"
	"github.com/getmockd/mockd/pkg/store"
	"github.com/getmockd/mockd/pkg/websocket"
)

const shutdownTimeout = 30 * time.Second

type serveFlags struct {
	port      int
	dataDir   string
	logLevel  string
	logFormat string
	logFile   string
	maxLogs   int
}

func newServeCmd() *cobra.Command {
	f := &serveFlags{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the mock server (HTTP, WebSocket, GraphQL, and the admin API)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(f)
		},
	}

	cfg := config.Load()
	cmd.Flags().IntVar(&f.port, "port", cfg.Port, "HTTP server port")
	cmd.Flags().StringVar(&f.dataDir, "data-dir", cfg.DataDir, "Directory for persisted endpoints")
	cmd.Flags().StringVar(&f.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	cmd.Flags().StringVar(&f.logFormat, "log-format", "text", "Log format (text, json)")
	cmd.Flags().StringVar(&f.logFile, "log-file", "", "Additionally append logs to this file")
	cmd.Flags().IntVar(&f.maxLogs, "max-log-entries", 1000, "Maximum request log entries kept in memory")
	return cmd
}

func runServe(f *serveFlags) error {
	log, closeLog, err := newLogger(f)
	if err != nil {
		return err
	}
	defer closeLog()

	cfg := config.Load()
	if f.dataDir != "" {
		cfg.DataDir = f.dataDir
	}

	s, err := store.New(store.Options{DataDir: cfg.DataDir, Logger: log})
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}

	requests := requestlog.NewStore(f.maxLogs)
	limiter := ratelimit.New()
	wsStore := websocket.NewStore()
	wsManager := websocket.NewManager(wsStore, requests, log)
	defer wsManager.Close()
	gqlStore := graphqlmock.NewStore()
	gqlEngine := graphqlmock.New(gqlStore, log)

	mockEngine := engine.New(s, requests, log)
	adminAPI := admin.New(s, requests, limiter, wsManager, wsStore, gqlStore, Version, log)

	mux := http.NewServeMux()
	mux.Handle("/api/admin/", http.StripPrefix("/api/admin", admin.RequireAdminToken(cfg.AdminPrincipals, adminAPI.Handler())))
	mux.HandleFunc("/ws/", wsManager.HandleUpgrade)
	mux.Handle("/", dispatch(gqlStore, gqlEngine, mockEngine))

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", f.port),
		Handler: mux,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("mockd listening", "port", f.port, "data_dir", cfg.DataDir)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
			return
		}
		serveErr <- nil
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serveErr:
		return err
	case <-sigChan:
		log.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Warn("server shutdown error", "error", err)
	}
	<-serveErr
	return nil
}

// newLogger builds the process logger from f.logLevel/f.logFormat, fanning
// out to f.logFile as well when set. The returned close func flushes and
// closes the log file descriptor; it is a no-op when no file was opened.
func newLogger(f *serveFlags) (*slog.Logger, func(), error) {
	level := logging.ParseLevel(f.logLevel)
	format := logging.ParseFormat(f.logFormat)
	opts := &slog.HandlerOptions{Level: level}

	newHandler := func(w io.Writer) slog.Handler {
		if format == logging.FormatJSON {
			return slog.NewJSONHandler(w, opts)
		}
		return slog.NewTextHandler(w, opts)
	}

	if f.logFile == "" {
		return slog.New(newHandler(os.Stderr)), func() {}, nil
	}

	file, err := os.OpenFile(f.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	handler := logging.NewMultiHandler(newHandler(os.Stderr), newHandler(file))
	return slog.New(handler), func() { file.Close() }, nil
}

// dispatch routes POSTs to a registered, active GraphQL endpoint path to
// gql; everything else falls through to the HTTP mock engine.
func dispatch(gqlStore *graphqlmock.Store, gql, mock http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			if _, ok := gqlStore.FindByPath(r.URL.Path); ok {
				gql.ServeHTTP(w, r)
				return
			}
		}
		mock.ServeHTTP(w, r)
	})
}
