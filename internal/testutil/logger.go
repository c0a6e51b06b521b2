// Package testutil holds helpers shared by package tests.
package testutil

import (
	"log/slog"
	"testing"
)

// NewLogger returns a debug level logger that writes through t.Log, so
// session transitions show up next to the failing assertion.
func NewLogger(t testing.TB) *slog.Logger {
	t.Helper()
	return slog.New(slog.NewTextHandler(tbWriter{t}, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

type tbWriter struct {
	t testing.TB
}

func (w tbWriter) Write(p []byte) (int, error) {
	w.t.Helper()
	w.t.Log(string(p))
	return len(p), nil
}
