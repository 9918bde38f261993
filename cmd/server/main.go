// cmd/server/main.go
package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/sozercan/thesis-ai/internal/analyzer"
	"github.com/sozercan/thesis-ai/internal/config"
	"github.com/sozercan/thesis-ai/internal/history"
	"github.com/sozercan/thesis-ai/internal/llm"
	"github.com/sozercan/thesis-ai/internal/server"
)

func main() {
	cfg, err := config.LoadConfig("")
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	slog.SetDefault(newLogger(cfg.Log))

	ctx := context.Background()
	backends, err := llm.NewBackends(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to create LLM backends: %v", err)
	}
	defer backends.Close()

	chain := analyzer.NewChain(cfg.Analysis, backends)
	if chain.Len() == 0 {
		slog.Warn("no model candidate has credentials, every analysis will fail")
	}
	analyzer := analyzer.New(chain, cfg.Analysis.AttemptTimeout,
		llm.WithMaxTokens(cfg.Analysis.MaxTokens),
		llm.WithTemperature(cfg.Analysis.Temperature),
	)

	store, closeStore, err := openStore(cfg.History)
	if err != nil {
		log.Fatalf("failed to open history store: %v", err)
	}
	defer closeStore()

	historyLog := history.New(store)
	historyLog.Load(ctx)

	srv := server.New(*cfg, analyzer, historyLog)
	slog.Info("starting server", "host", cfg.Server.Host, "port", cfg.Server.Port)
	if err := srv.Run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func newLogger(cfg config.LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.ParseLevel()}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

// openStore opens the SQLite history shared with thesisctl. Without a home
// directory to put it in, the log is kept in memory.
func openStore(cfg config.HistoryConfig) (history.Store, func(), error) {
	path, err := cfg.ResolvedPath()
	if err != nil {
		slog.Warn("keeping history in memory", "error", err)
		return history.NewMemoryStore(), func() {}, nil
	}
	store, err := history.OpenSQLiteStore(path)
	if err != nil {
		return nil, nil, err
	}
	slog.Info("history store opened", "path", store.Path())
	return store, func() { store.Close() }, nil
}
