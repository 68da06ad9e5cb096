package models

import (
	"fmt"
	"strings"
)

// OptionVariant selects how the cost of carry is derived from market data.
type OptionVariant int

const (
	Vanilla OptionVariant = iota
	Futures
	StockIndex
	Currency
)

func (v OptionVariant) String() string {
	switch v {
	case Vanilla:
		return "vanilla"
	case Futures:
		return "futures"
	case StockIndex:
		return "stock_index"
	case Currency:
		return "currency"
	}
	return fmt.Sprintf("OptionVariant(%d)", int(v))
}

// ParseOptionVariant accepts the names produced by String, case-insensitively.
func ParseOptionVariant(s string) (OptionVariant, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "vanilla", "":
		return Vanilla, nil
	case "futures", "future":
		return Futures, nil
	case "stock_index", "stockindex", "index":
		return StockIndex, nil
	case "currency", "fx":
		return Currency, nil
	}
	return 0, fmt.Errorf("%w: unknown option variant %q", ErrInvalidArgument, s)
}

// OptionSide is the call/put selector. The zero value is not a valid side.
type OptionSide int

const (
	Call OptionSide = iota + 1
	Put
)

func (s OptionSide) String() string {
	switch s {
	case Call:
		return "call"
	case Put:
		return "put"
	}
	return fmt.Sprintf("OptionSide(%d)", int(s))
}

// ParseOptionSide accepts "call" or "put" (also "c"/"p"), case-insensitively.
func ParseOptionSide(s string) (OptionSide, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "call", "c":
		return Call, nil
	case "put", "p":
		return Put, nil
	}
	return 0, fmt.Errorf("%w: unknown option side %q", ErrInvalidArgument, s)
}

func (s OptionSide) validate() error {
	if s != Call && s != Put {
		return fmt.Errorf("%w: side must be call or put, got %v", ErrInvalidArgument, s)
	}
	return nil
}

// MarketParameters bundles the inputs of a single pricing request.
type MarketParameters struct {
	Spot          float64 `json:"spot"`           // S
	Strike        float64 `json:"strike"`         // K
	Expiry        float64 `json:"expiry"`         // T in years
	Rate          float64 `json:"rate"`           // r
	Volatility    float64 `json:"volatility"`     // sigma
	DividendYield float64 `json:"dividend_yield"` // q, stock index options only
	ForeignRate   float64 `json:"foreign_rate"`   // r_f, currency options only
}

// validate checks the preconditions shared by both pricers. NaN fails every
// comparison and is rejected with the rest.
func (p MarketParameters) validate(strictVol bool) error {
	if !(p.Spot > 0) {
		return fmt.Errorf("%w: spot must be > 0, got %v", ErrInvalidArgument, p.Spot)
	}
	if !(p.Strike > 0) {
		return fmt.Errorf("%w: strike must be > 0, got %v", ErrInvalidArgument, p.Strike)
	}
	if !(p.Expiry > 0) {
		return fmt.Errorf("%w: expiry must be > 0, got %v", ErrInvalidArgument, p.Expiry)
	}
	if strictVol && !(p.Volatility > 0) {
		return fmt.Errorf("%w: volatility must be > 0, got %v", ErrInvalidArgument, p.Volatility)
	}
	if !strictVol && !(p.Volatility >= 0) {
		return fmt.Errorf("%w: volatility must be >= 0, got %v", ErrInvalidArgument, p.Volatility)
	}
	if p.Rate != p.Rate {
		return fmt.Errorf("%w: rate is NaN", ErrInvalidArgument)
	}
	return nil
}
