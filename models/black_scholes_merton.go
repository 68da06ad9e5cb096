package models

import (
	"fmt"
	"math"

	"github.com/bcdannyboy/optpricer/probability"
)

// AnalyticPricer prices European options with the generalized
// Black-Scholes-Merton formula. The variant fixes how the cost of carry b is
// derived, so one formula covers equity, futures, stock index and currency
// options. An AnalyticPricer is immutable and safe for concurrent use.
type AnalyticPricer struct {
	variant OptionVariant
}

func NewAnalyticPricer(variant OptionVariant) *AnalyticPricer {
	return &AnalyticPricer{variant: variant}
}

func (p *AnalyticPricer) Variant() OptionVariant {
	return p.variant
}

// CalculatePrice returns the theoretical price of the option described by
// params. DividendYield is only read for StockIndex and ForeignRate only for
// Currency.
func (p *AnalyticPricer) CalculatePrice(params MarketParameters, side OptionSide) (float64, error) {
	if err := params.validate(true); err != nil {
		return 0, err
	}
	b, err := CostOfCarry(p.variant, params)
	if err != nil {
		return 0, err
	}
	return GeneralizedBlackScholes(params.Spot, params.Strike, params.Expiry, params.Rate, b, params.Volatility, side)
}

// CostOfCarry derives b for the variant:
//
//	Vanilla     b = r
//	Futures     b = 0
//	StockIndex  b = r - q
//	Currency    b = r - r_f
func CostOfCarry(variant OptionVariant, params MarketParameters) (float64, error) {
	switch variant {
	case Vanilla:
		return params.Rate, nil
	case Futures:
		return 0, nil
	case StockIndex:
		if math.IsNaN(params.DividendYield) {
			return 0, fmt.Errorf("%w: dividend yield is NaN", ErrInvalidArgument)
		}
		return params.Rate - params.DividendYield, nil
	case Currency:
		if math.IsNaN(params.ForeignRate) {
			return 0, fmt.Errorf("%w: foreign rate is NaN", ErrInvalidArgument)
		}
		return params.Rate - params.ForeignRate, nil
	}
	return 0, fmt.Errorf("%w: unknown option variant %v", ErrInvalidArgument, variant)
}

// GeneralizedBlackScholes evaluates the Black-Scholes-Merton formula with an
// explicit cost of carry b.
func GeneralizedBlackScholes(s, k, t, r, b, sigma float64, side OptionSide) (float64, error) {
	if err := side.validate(); err != nil {
		return 0, err
	}
	if err := (MarketParameters{Spot: s, Strike: k, Expiry: t, Rate: r, Volatility: sigma}).validate(true); err != nil {
		return 0, err
	}

	sqrtT := math.Sqrt(t)
	d1 := (math.Log(s/k) + t*(b+sigma*sigma/2)) / (sigma * sqrtT)
	d2 := d1 - sigma*sqrtT

	carry := s * math.Exp(t*(b-r))
	discount := k * math.Exp(-r*t)

	var price float64
	switch side {
	case Call:
		price = carry*probability.CDF(d1) - discount*probability.CDF(d2)
	case Put:
		price = discount*probability.CDF(-d2) - carry*probability.CDF(-d1)
	}

	if math.IsNaN(price) || math.IsInf(price, 0) {
		return 0, fmt.Errorf("%w: price is %v (s=%v k=%v t=%v r=%v b=%v sigma=%v)", ErrNumericOverflow, price, s, k, t, r, b, sigma)
	}
	return price, nil
}
