package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bcdannyboy/optpricer/config"
)

const testPositions = `[
  {"id": "a", "model": "analytic", "variant": "vanilla", "side": "call", "quantity": 1,
   "market": {"spot": 100, "strike": 100, "expiry": 1, "rate": 0.05, "volatility": 0.2}},
  {"id": "b", "model": "analytic", "variant": "futures", "side": "put", "quantity": 2,
   "market": {"spot": 19, "strike": 19, "expiry": 0.75, "rate": 0.1, "volatility": 0.28}},
  {"id": "c", "model": "simulation", "variant": "vanilla", "side": "put", "samples": 2000,
   "market": {"spot": 100, "strike": 100, "expiry": 1, "rate": 0.05, "volatility": 0.2}}
]`

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writePositions(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "positions.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write positions: %v", err)
	}
	return path
}

// runValueBook fails the test if valueBook does not return within a few seconds.
func runValueBook(t *testing.T, ctx context.Context, cfg *config.Config, input, output string) error {
	t.Helper()
	done := make(chan error, 1)
	go func() {
		done <- valueBook(ctx, cfg, input, output, quietLogger())
	}()
	select {
	case err := <-done:
		return err
	case <-time.After(10 * time.Second):
		t.Fatal("valueBook did not return")
		return nil
	}
}

func TestValueBookCancelledWithProgress(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := &config.Config{Book: config.BookConfig{Progress: true}}
	output := filepath.Join(t.TempDir(), "out.json")

	err := runValueBook(t, ctx, cfg, writePositions(t, testPositions), output)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if _, statErr := os.Stat(output); !errors.Is(statErr, os.ErrNotExist) {
		t.Errorf("output written after cancellation: %v", statErr)
	}
}

func TestValueBookWithProgress(t *testing.T) {
	tests := []struct {
		name      string
		positions string
	}{
		{"book", testPositions},
		{"empty book", "[]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{
				Pricing: config.PricingConfig{Seed: 5, Workers: 2},
				Book:    config.BookConfig{Progress: true},
			}
			output := filepath.Join(t.TempDir(), "out.json")

			if err := runValueBook(t, context.Background(), cfg, writePositions(t, tt.positions), output); err != nil {
				t.Fatalf("valueBook failed: %v", err)
			}
			if info, err := os.Stat(output); err != nil || info.Size() == 0 {
				t.Errorf("output file: %v", err)
			}
		})
	}
}

func TestCleanShutdown(t *testing.T) {
	if err := cleanShutdown(context.Canceled); err != nil {
		t.Errorf("cleanShutdown(Canceled) = %v, want nil", err)
	}
	if err := cleanShutdown(fmt.Errorf("run socket mode: %w", context.Canceled)); err != nil {
		t.Errorf("cleanShutdown(wrapped Canceled) = %v, want nil", err)
	}
	if err := cleanShutdown(nil); err != nil {
		t.Errorf("cleanShutdown(nil) = %v, want nil", err)
	}

	boom := errors.New("invalid_auth")
	if err := cleanShutdown(boom); !errors.Is(err, boom) {
		t.Errorf("cleanShutdown(%v) = %v, want it unchanged", boom, err)
	}
}
