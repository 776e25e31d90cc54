package testutils

import (
	"context"
	"log/slog"
	"sync"
)

// LogEntry represents a simplified log record for testing
type LogEntry map[string]any

// SlogHandler is a memory-backed slog.Handler for testing
type SlogHandler struct {
	mu      sync.Mutex
	entries []LogEntry
}

// NewLogger returns a logger writing into a fresh SlogHandler
func NewLogger() (*slog.Logger, *SlogHandler) {
	h := &SlogHandler{}
	return slog.New(h), h
}

// Enabled satisfies slog.Handler interface
func (h *SlogHandler) Enabled(_ context.Context, _ slog.Level) bool {
	return true
}

// Handle satisfies slog.Handler interface
func (h *SlogHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	entry := LogEntry{
		"level":   r.Level.String(),
		"message": r.Message,
	}
	r.Attrs(func(attr slog.Attr) bool {
		entry[attr.Key] = attr.Value.Any()
		return true
	})
	h.entries = append(h.entries, entry)
	return nil
}

// WithAttrs satisfies slog.Handler interface
func (h *SlogHandler) WithAttrs(_ []slog.Attr) slog.Handler {
	return h
}

// WithGroup satisfies slog.Handler interface
func (h *SlogHandler) WithGroup(_ string) slog.Handler {
	return h
}

// Entries returns all captured log entries
func (h *SlogHandler) Entries() []LogEntry {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]LogEntry(nil), h.entries...)
}

// Messages returns the message of every captured entry
func (h *SlogHandler) Messages() []string {
	var out []string
	for _, e := range h.Entries() {
		out = append(out, e["message"].(string))
	}
	return out
}
