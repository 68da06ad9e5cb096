package positions

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/bcdannyboy/optpricer/models"
)

var atm = models.MarketParameters{Spot: 100, Strike: 100, Expiry: 1, Rate: 0.05, Volatility: 0.2}

type countingProgress struct {
	n atomic.Int64
}

func (c *countingProgress) Increment() { c.n.Add(1) }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testBook() []Position {
	return []Position{
		{ID: "atm-call", Model: ModelAnalytic, Variant: "vanilla", Side: "call", Quantity: 10, Market: atm},
		{ID: "atm-put", Model: ModelAnalytic, Variant: "vanilla", Side: "put", Quantity: -5, Market: atm},
		{ID: "bad-spot", Model: ModelAnalytic, Variant: "vanilla", Side: "call", Quantity: 1,
			Market: models.MarketParameters{Spot: -5, Strike: 100, Expiry: 1, Rate: 0.05, Volatility: 0.2}},
		{ID: "mc-call", Model: ModelSimulation, Variant: "vanilla", Side: "call", Samples: 20_000, Market: atm},
		{ID: "fx-put", Model: ModelAnalytic, Variant: "currency", Side: "put", Quantity: 2,
			Market: models.MarketParameters{Spot: 1.56, Strike: 1.60, Expiry: 0.5, Rate: 0.06, Volatility: 0.12, ForeignRate: 0.08}},
	}
}

func TestValueBook(t *testing.T) {
	progress := &countingProgress{}
	v := NewValuer(ValuerConfig{Workers: 3, Seed: 11, Progress: progress, Logger: quietLogger()})

	book, err := v.ValueBook(context.Background(), testBook())
	if err != nil {
		t.Fatalf("ValueBook failed: %v", err)
	}

	if len(book.Valuations) != 5 {
		t.Fatalf("len(Valuations) = %d, want 5", len(book.Valuations))
	}
	for i, want := range []string{"atm-call", "atm-put", "bad-spot", "mc-call", "fx-put"} {
		if book.Valuations[i].ID != want {
			t.Errorf("Valuations[%d].ID = %q, want %q", i, book.Valuations[i].ID, want)
		}
	}
	if book.Priced != 4 || book.Failed != 1 {
		t.Errorf("Priced, Failed = %d, %d, want 4, 1", book.Priced, book.Failed)
	}
	if got := progress.n.Load(); got != 5 {
		t.Errorf("progress increments = %d, want 5", got)
	}

	call := book.Valuations[0]
	if math.Abs(call.Price-10.4506) > 1e-4 || math.Abs(call.Value-104.506) > 1e-3 {
		t.Errorf("atm-call = %+v", call)
	}
	put := book.Valuations[1]
	if math.Abs(put.Value-(-5*5.5735)) > 1e-3 {
		t.Errorf("atm-put value = %v, want %v", put.Value, -5*5.5735)
	}

	bad := book.Valuations[2]
	if !strings.Contains(bad.Error, "spot must be > 0") || bad.Value != 0 {
		t.Errorf("bad-spot = %+v, want spot error", bad)
	}

	mc := book.Valuations[3]
	if mc.Quantity != 1 || mc.Samples != 20_000 || mc.StdErr <= 0 {
		t.Errorf("mc-call = %+v", mc)
	}
	if mc.CILow >= mc.Price || mc.CIHigh <= mc.Price {
		t.Errorf("mc-call interval [%v, %v] does not contain %v", mc.CILow, mc.CIHigh, mc.Price)
	}
	if math.Abs(mc.Price-10.4506) > 5*mc.StdErr {
		t.Errorf("mc-call price %v too far from analytic", mc.Price)
	}

	var want float64
	for _, val := range book.Valuations {
		if val.Error == "" {
			want += val.Value
		}
	}
	if math.Abs(book.TotalValue-want) > 1e-9 {
		t.Errorf("TotalValue = %v, want %v", book.TotalValue, want)
	}
}

func TestValueBookSeededIsReproducible(t *testing.T) {
	positions := []Position{
		{ID: "a", Model: ModelSimulation, Side: "call", Samples: 5000, Market: atm},
		{ID: "b", Model: ModelSimulation, Side: "put", Samples: 5000, Market: atm},
	}

	first, err := NewValuer(ValuerConfig{Workers: 2, Seed: 99, Logger: quietLogger()}).ValueBook(context.Background(), positions)
	if err != nil {
		t.Fatal(err)
	}
	second, err := NewValuer(ValuerConfig{Workers: 1, Seed: 99, Logger: quietLogger()}).ValueBook(context.Background(), positions)
	if err != nil {
		t.Fatal(err)
	}

	for i := range positions {
		if first.Valuations[i].Price != second.Valuations[i].Price {
			t.Errorf("position %d: %v != %v", i, first.Valuations[i].Price, second.Valuations[i].Price)
		}
	}
}

func TestValueRejectsUnsupportedCombinations(t *testing.T) {
	v := NewValuer(ValuerConfig{Workers: 1, Logger: quietLogger()})

	tests := []struct {
		name string
		pos  Position
	}{
		{"simulation futures", Position{Model: ModelSimulation, Variant: "futures", Side: "call", Market: atm}},
		{"unknown model", Position{Model: "binomial", Side: "call", Market: atm}},
		{"unknown side", Position{Model: ModelAnalytic, Side: "straddle", Market: atm}},
		{"unknown variant", Position{Model: ModelAnalytic, Variant: "asian", Side: "put", Market: atm}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			val := v.Value(context.Background(), 0, tt.pos)
			if val.Error == "" {
				t.Errorf("Value(%+v) succeeded with price %v", tt.pos, val.Price)
			}
		})
	}
}

func TestValueRejectsSamplesAboveLimit(t *testing.T) {
	v := NewValuer(ValuerConfig{Workers: 1, MaxSamples: 5_000, Logger: quietLogger()})

	val := v.Value(context.Background(), 0, Position{Model: ModelSimulation, Side: "call", Samples: 100_000_000_000, Market: atm})
	if !strings.Contains(val.Error, "exceeds the limit of 5000") {
		t.Errorf("Error = %q, want sample limit error", val.Error)
	}

	val = v.Value(context.Background(), 0, Position{Model: ModelSimulation, Side: "call", Samples: 5_000, Market: atm})
	if val.Error != "" || val.Samples != 5_000 {
		t.Errorf("Value at the limit = %+v", val)
	}

	// The default sample count is capped to the limit.
	val = v.Value(context.Background(), 0, Position{Model: ModelSimulation, Side: "put", Market: atm})
	if val.Error != "" || val.Samples != 5_000 {
		t.Errorf("Value with default samples = %+v", val)
	}
}

func TestValueDefaultsModelToAnalytic(t *testing.T) {
	v := NewValuer(ValuerConfig{Workers: 1, Logger: quietLogger()})
	val := v.Value(context.Background(), 0, Position{ID: "x", Side: "call", Market: atm})
	if val.Error != "" || val.Model != ModelAnalytic || val.Variant != "vanilla" {
		t.Errorf("Value = %+v", val)
	}
}

func TestValueBookCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewValuer(ValuerConfig{Workers: 2, Logger: quietLogger()}).ValueBook(ctx, testBook())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestLoadPositionsAndWriteBook(t *testing.T) {
	data := `[
  {"id": "idx", "model": "analytic", "variant": "stock_index", "side": "put", "quantity": 3,
   "market": {"spot": 100, "strike": 95, "expiry": 0.5, "rate": 0.1, "volatility": 0.2, "dividend_yield": 0.05}}
]`
	path := filepath.Join(t.TempDir(), "book.json")
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	positions, err := LoadPositions(path)
	if err != nil {
		t.Fatalf("LoadPositions failed: %v", err)
	}
	if len(positions) != 1 || positions[0].Market.DividendYield != 0.05 || positions[0].Quantity != 3 {
		t.Fatalf("positions = %+v", positions)
	}

	book, err := NewValuer(ValuerConfig{Workers: 1, Logger: quietLogger()}).ValueBook(context.Background(), positions)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(book.Valuations[0].Price-2.4648) > 1e-4 {
		t.Errorf("price = %v, want 2.4648", book.Valuations[0].Price)
	}

	var buf bytes.Buffer
	if err := WriteBook(&buf, book); err != nil {
		t.Fatalf("WriteBook failed: %v", err)
	}
	for _, want := range []string{`"id":"idx"`, `"total_value":`, `"variant":"stock_index"`} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("output %s missing %s", buf.String(), want)
		}
	}
}

func TestLoadPositionsErrors(t *testing.T) {
	if _, err := LoadPositions(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
	if _, err := ReadPositions(strings.NewReader("{not json")); err == nil {
		t.Error("expected error for malformed JSON")
	}
}

func TestDefaultWorkers(t *testing.T) {
	if n := DefaultWorkers(); n < 1 {
		t.Errorf("DefaultWorkers() = %d, want >= 1", n)
	}
}
