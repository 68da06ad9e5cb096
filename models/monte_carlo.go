package models

import (
	"fmt"
	"math"
	"runtime"
	"sync"

	"github.com/bcdannyboy/optpricer/probability"
)

// SimulationPricer estimates vanilla European option prices by risk-neutral
// Monte Carlo simulation of the terminal price under geometric Brownian
// motion. Samples are split across workers, each drawing from its own
// normal stream.
type SimulationPricer struct {
	workers int
	seed    uint64
	seeded  bool
	sampler probability.Sampler
}

type SimulationOption func(*SimulationPricer)

// WithSeed makes every run reproducible: worker i draws from the stream
// probability.StreamSeed(seed, i). Results depend on the worker count, so pin
// it with WithWorkers when reproducibility across machines matters.
func WithSeed(seed uint64) SimulationOption {
	return func(p *SimulationPricer) {
		p.seed = seed
		p.seeded = true
	}
}

// WithWorkers sets the number of goroutines sharing the samples. Values below
// one are ignored.
func WithWorkers(n int) SimulationOption {
	return func(p *SimulationPricer) {
		if n >= 1 {
			p.workers = n
		}
	}
}

// WithSampler draws every sample from s on the calling goroutine. It takes
// precedence over WithSeed and WithWorkers.
func WithSampler(s probability.Sampler) SimulationOption {
	return func(p *SimulationPricer) {
		p.sampler = s
	}
}

func NewSimulationPricer(opts ...SimulationOption) *SimulationPricer {
	p := &SimulationPricer{workers: runtime.GOMAXPROCS(0)}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// SimulationResult is a Monte Carlo estimate together with its sampling error.
type SimulationResult struct {
	Price   float64 `json:"price"`
	StdErr  float64 `json:"std_err"`
	Samples int     `json:"samples"`
}

// ConfidenceInterval returns the two-sided interval around Price at the given
// level, e.g. 0.95. The level must lie strictly between 0 and 1.
func (r SimulationResult) ConfidenceInterval(level float64) (float64, float64, error) {
	if !(level > 0 && level < 1) {
		return 0, 0, fmt.Errorf("%w: confidence level must be in (0, 1), got %v", ErrInvalidArgument, level)
	}
	z := probability.Quantile(0.5 + level/2)
	return r.Price - z*r.StdErr, r.Price + z*r.StdErr, nil
}

// CalculatePrice returns the discounted sample-mean payoff over numSamples
// draws. DividendYield and ForeignRate are ignored.
func (p *SimulationPricer) CalculatePrice(numSamples int, params MarketParameters, side OptionSide) (float64, error) {
	res, err := p.Simulate(numSamples, params, side)
	if err != nil {
		return 0, err
	}
	return res.Price, nil
}

// Simulate is CalculatePrice with the standard error of the estimate.
func (p *SimulationPricer) Simulate(numSamples int, params MarketParameters, side OptionSide) (SimulationResult, error) {
	if numSamples < 1 {
		return SimulationResult{}, fmt.Errorf("%w: number of samples must be >= 1, got %d", ErrInvalidArgument, numSamples)
	}
	if err := side.validate(); err != nil {
		return SimulationResult{}, err
	}
	if err := params.validate(false); err != nil {
		return SimulationResult{}, err
	}

	s, k, r, v, t := params.Spot, params.Strike, params.Rate, params.Volatility, params.Expiry
	sAdjusted := s * math.Exp(t*(r-0.5*v*v))
	diffusion := math.Sqrt(v * v * t)
	discount := math.Exp(-r * t)
	if math.IsInf(sAdjusted, 0) || math.IsNaN(sAdjusted) || math.IsInf(discount, 0) {
		return SimulationResult{}, fmt.Errorf("%w: drift-adjusted spot %v, discount %v", ErrNumericOverflow, sAdjusted, discount)
	}

	payoff := func(z float64) float64 {
		sT := sAdjusted * math.Exp(diffusion*z)
		if side == Call {
			return math.Max(sT-k, 0)
		}
		return math.Max(k-sT, 0)
	}

	var total payoffSum
	if p.sampler != nil {
		for i := 0; i < numSamples; i++ {
			total.add(payoff(p.sampler.Sample()))
		}
	} else {
		total = p.runWorkers(numSamples, payoff)
	}

	n := float64(numSamples)
	mean := total.sum.value() / n
	price := mean * discount

	stdErr := math.Sqrt(total.variance()/n) * discount

	if math.IsNaN(price) || math.IsInf(price, 0) {
		return SimulationResult{}, fmt.Errorf("%w: price is %v", ErrNumericOverflow, price)
	}
	return SimulationResult{Price: price, StdErr: stdErr, Samples: numSamples}, nil
}

func (p *SimulationPricer) runWorkers(numSamples int, payoff func(float64) float64) payoffSum {
	numWorkers := p.workers
	if numWorkers > numSamples {
		numWorkers = numSamples
	}
	perWorker := numSamples / numWorkers
	extra := numSamples % numWorkers

	partials := make([]payoffSum, numWorkers)
	var wg sync.WaitGroup

	for i := 0; i < numWorkers; i++ {
		count := perWorker
		if i < extra {
			count++
		}

		wg.Add(1)
		go func(worker, count int) {
			defer wg.Done()

			var normal *probability.Normal
			if p.seeded {
				normal = probability.NewNormal(probability.StreamSeed(p.seed, worker))
			} else {
				normal = probability.Borrow()
				defer probability.Release(normal)
			}

			var local payoffSum
			for j := 0; j < count; j++ {
				local.add(payoff(normal.Sample()))
			}
			partials[worker] = local
		}(i, count)
	}

	wg.Wait()

	// Combine in worker order so seeded runs are bit-for-bit repeatable.
	var total payoffSum
	for _, part := range partials {
		total.merge(part)
	}
	return total
}

// payoffSum accumulates payoffs for the mean and the standard error. The
// mean comes from a compensated sum; the spread is tracked with Welford's
// update and combined across workers with Chan's pairwise formula.
type payoffSum struct {
	n    int
	sum  kahanSum
	mean float64
	m2   float64
}

func (ps *payoffSum) add(x float64) {
	ps.n++
	ps.sum.add(x)
	delta := x - ps.mean
	ps.mean += delta / float64(ps.n)
	ps.m2 += delta * (x - ps.mean)
}

func (ps *payoffSum) merge(other payoffSum) {
	if other.n == 0 {
		return
	}
	if ps.n == 0 {
		*ps = other
		return
	}
	na, nb := float64(ps.n), float64(other.n)
	n := na + nb
	delta := other.mean - ps.mean
	ps.mean += delta * nb / n
	ps.m2 += other.m2 + delta*delta*na*nb/n
	ps.n += other.n
	ps.sum.merge(other.sum)
}

// variance is the unbiased sample variance of the payoffs, 0 below two samples.
func (ps *payoffSum) variance() float64 {
	if ps.n < 2 {
		return 0
	}
	return math.Max(ps.m2, 0) / float64(ps.n-1)
}

// kahanSum is a compensated running sum. c holds the low-order bits lost by
// the last addition.
type kahanSum struct {
	sum, c float64
}

func (k *kahanSum) add(x float64) {
	y := x - k.c
	t := k.sum + y
	k.c = (t - k.sum) - y
	k.sum = t
}

// merge folds another partial sum in, carrying its compensation along.
func (k *kahanSum) merge(other kahanSum) {
	k.add(other.sum)
	k.add(-other.c)
}

func (k *kahanSum) value() float64 {
	return k.sum - k.c
}
