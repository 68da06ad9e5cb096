package positions

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bcdannyboy/optpricer/models"
	"github.com/bcdannyboy/optpricer/probability"
	"golang.org/x/sync/errgroup"
)

const (
	defaultSamples         = 100_000
	defaultMaxSamples      = 10_000_000
	defaultConfidenceLevel = 0.95
)

// Progress is notified once per valued position. *mpb.Bar satisfies it.
type Progress interface {
	Increment()
}

type ValuerConfig struct {
	Workers         int    // positions priced concurrently; 0 uses DefaultWorkers
	DefaultSamples  int    // for simulation positions that do not set Samples
	MaxSamples      int    // simulation requests above this are rejected
	Seed            uint64 // 0 draws simulation streams from the process-wide generator
	ConfidenceLevel float64
	Progress        Progress
	Logger          *slog.Logger
}

// Valuer prices positions with the analytic or simulation model each one
// asks for.
type Valuer struct {
	cfg    ValuerConfig
	logger *slog.Logger
}

func NewValuer(cfg ValuerConfig) *Valuer {
	if cfg.Workers < 1 {
		cfg.Workers = DefaultWorkers()
	}
	if cfg.DefaultSamples < 1 {
		cfg.DefaultSamples = defaultSamples
	}
	if cfg.MaxSamples < 1 {
		cfg.MaxSamples = defaultMaxSamples
	}
	if cfg.DefaultSamples > cfg.MaxSamples {
		cfg.DefaultSamples = cfg.MaxSamples
	}
	if cfg.ConfidenceLevel <= 0 || cfg.ConfidenceLevel >= 1 {
		cfg.ConfidenceLevel = defaultConfidenceLevel
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Valuer{cfg: cfg, logger: logger.With("component", "valuer")}
}

// ValueBook prices every position with at most cfg.Workers in flight.
// A position that fails to price is recorded on its Valuation and does not
// stop the others. The context is checked between positions.
func (v *Valuer) ValueBook(ctx context.Context, positions []Position) (Book, error) {
	valuations := make([]Valuation, len(positions))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(v.cfg.Workers)

	for i, pos := range positions {
		if gctx.Err() != nil {
			break
		}
		i, pos := i, pos
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			valuations[i] = v.Value(gctx, i, pos)
			if v.cfg.Progress != nil {
				v.cfg.Progress.Increment()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return Book{}, err
	}
	if err := ctx.Err(); err != nil {
		return Book{}, err
	}

	book := Book{Valuations: valuations}
	for _, val := range valuations {
		if val.Error != "" {
			book.Failed++
			continue
		}
		book.Priced++
		book.TotalValue += val.Value
	}

	v.logger.Info("book valued",
		"positions", len(positions),
		"priced", book.Priced,
		"failed", book.Failed,
		"total_value", book.TotalValue,
	)
	return book, nil
}

// Value prices a single position. index selects the simulation stream when
// the valuer is seeded, so a seeded book always reproduces.
func (v *Valuer) Value(ctx context.Context, index int, pos Position) Valuation {
	quantity := pos.Quantity
	if quantity == 0 {
		quantity = 1
	}
	val := Valuation{
		ID:       pos.ID,
		Model:    pos.Model,
		Variant:  pos.Variant,
		Side:     pos.Side,
		Quantity: quantity,
	}

	if err := v.price(index, pos, &val); err != nil {
		v.logger.WarnContext(ctx, "position not priced", "id", pos.ID, "error", err)
		val.Error = err.Error()
		return val
	}

	val.Value = val.Price * quantity
	v.logger.DebugContext(ctx, "position priced", "id", pos.ID, "price", val.Price, "value", val.Value)
	return val
}

func (v *Valuer) price(index int, pos Position, val *Valuation) error {
	variant, err := models.ParseOptionVariant(pos.Variant)
	if err != nil {
		return err
	}
	side, err := models.ParseOptionSide(pos.Side)
	if err != nil {
		return err
	}
	val.Variant = variant.String()
	val.Side = side.String()

	switch strings.ToLower(pos.Model) {
	case ModelAnalytic, "":
		val.Model = ModelAnalytic
		price, err := models.NewAnalyticPricer(variant).CalculatePrice(pos.Market, side)
		if err != nil {
			return err
		}
		val.Price = price
		return nil

	case ModelSimulation:
		val.Model = ModelSimulation
		if variant != models.Vanilla {
			return fmt.Errorf("%w: simulation model prices vanilla options only, got %v", models.ErrInvalidArgument, variant)
		}

		samples := pos.Samples
		if samples == 0 {
			samples = v.cfg.DefaultSamples
		}
		if samples > v.cfg.MaxSamples {
			return fmt.Errorf("%w: %d samples exceeds the limit of %d", models.ErrInvalidArgument, samples, v.cfg.MaxSamples)
		}

		opts := []models.SimulationOption{models.WithWorkers(1)}
		if v.cfg.Seed != 0 {
			opts = append(opts, models.WithSeed(probability.StreamSeed(v.cfg.Seed, index)))
		}

		res, err := models.NewSimulationPricer(opts...).Simulate(samples, pos.Market, side)
		if err != nil {
			return err
		}
		val.Price = res.Price
		val.StdErr = res.StdErr
		val.Samples = res.Samples
		val.CILow, val.CIHigh, err = res.ConfidenceInterval(v.cfg.ConfidenceLevel)
		return err
	}

	return fmt.Errorf("%w: unknown pricing model %q", models.ErrInvalidArgument, pos.Model)
}
