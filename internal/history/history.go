// Package history keeps the most recent analyses, newest first, in a durable
// key-value store under a single key.
//
// The store is the source of truth: several processes (the server and
// thesisctl) may share it, so reads refresh from it and writes merge with
// what is stored rather than with the in-memory copy.
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/sozercan/thesis-ai/internal/thesis"
)

const (
	// Key is the storage key the log is persisted under.
	Key = "thesis_history"

	// Limit is the maximum number of entries kept.
	Limit = 10
)

type Log struct {
	store   Store
	mu      sync.Mutex
	entries []thesis.HistoryEntry
}

func New(store Store) *Log {
	return &Log{store: store}
}

// Load replaces the in-memory log with the stored one. Unreadable or corrupt
// data yields an empty log; it is never reported as an error.
func (l *Log) Load(ctx context.Context) []thesis.HistoryEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = nil
	if err := l.refresh(ctx); err != nil {
		slog.Warn("failed to read history, starting empty", "error", err)
		return nil
	}
	slog.Debug("history loaded", "entries", len(l.entries))
	return l.snapshot()
}

// Record prepends entry to the stored log, evicts the oldest entries beyond
// Limit and persists the result in one store update. The in-memory log is
// only updated once the write succeeded.
func (l *Log) Record(ctx context.Context, entry thesis.HistoryEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var updated []thesis.HistoryEntry
	err := l.store.Update(ctx, Key, func(current string, ok bool) (string, error) {
		stored := decode(current, ok)

		updated = make([]thesis.HistoryEntry, 0, Limit)
		updated = append(updated, entry)
		updated = append(updated, stored...)
		if len(updated) > Limit {
			updated = updated[:Limit]
		}
		return encode(updated)
	})
	if err != nil {
		return fmt.Errorf("saving history: %w", err)
	}
	l.entries = updated
	return nil
}

// Entries returns the log, most recent first. When the store cannot be read
// the last known copy is returned.
func (l *Log) Entries(ctx context.Context) []thesis.HistoryEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.refreshOrKeep(ctx)
	return l.snapshot()
}

// Get returns the entry at index i, 0 being the most recent.
func (l *Log) Get(ctx context.Context, i int) (thesis.HistoryEntry, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.refreshOrKeep(ctx)
	if i < 0 || i >= len(l.entries) {
		return thesis.HistoryEntry{}, false
	}
	return l.entries[i], true
}

func (l *Log) Clear(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	data, err := encode([]thesis.HistoryEntry{})
	if err != nil {
		return err
	}
	if err := l.store.Set(ctx, Key, data); err != nil {
		return fmt.Errorf("saving history: %w", err)
	}
	l.entries = nil
	return nil
}

// refresh replaces the in-memory log with the stored one. Corrupt data counts
// as an empty log; only read failures are returned.
func (l *Log) refresh(ctx context.Context) error {
	raw, ok, err := l.store.Get(ctx, Key)
	if err != nil {
		return err
	}
	l.entries = decode(raw, ok)
	return nil
}

func (l *Log) refreshOrKeep(ctx context.Context) {
	if err := l.refresh(ctx); err != nil {
		slog.Warn("failed to read history, using cached copy", "error", err)
	}
}

func (l *Log) snapshot() []thesis.HistoryEntry {
	out := make([]thesis.HistoryEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

func decode(raw string, ok bool) []thesis.HistoryEntry {
	if !ok {
		return nil
	}
	var entries []thesis.HistoryEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		slog.Debug("discarding corrupt history", "error", err)
		return nil
	}
	if len(entries) > Limit {
		entries = entries[:Limit]
	}
	return entries
}

func encode(entries []thesis.HistoryEntry) (string, error) {
	data, err := json.Marshal(entries)
	if err != nil {
		return "", fmt.Errorf("encoding history: %w", err)
	}
	return string(data), nil
}
