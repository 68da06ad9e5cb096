package positions

import "github.com/bcdannyboy/optpricer/models"

// Pricing models a position can request.
const (
	ModelAnalytic   = "analytic"
	ModelSimulation = "simulation"
)

// Position is one line of a book: an option, the model to price it with and
// how many contracts are held. A zero Quantity counts as one contract; a
// negative Quantity is a short position.
type Position struct {
	ID       string                  `json:"id"`
	Model    string                  `json:"model"`
	Variant  string                  `json:"variant"`
	Side     string                  `json:"side"`
	Quantity float64                 `json:"quantity"`
	Samples  int                     `json:"samples,omitempty"`
	Market   models.MarketParameters `json:"market"`
}

// Valuation is the priced form of a Position. Error is set instead of the
// price fields when the position could not be priced.
type Valuation struct {
	ID       string  `json:"id"`
	Model    string  `json:"model"`
	Variant  string  `json:"variant"`
	Side     string  `json:"side"`
	Quantity float64 `json:"quantity"`
	Price    float64 `json:"price"`
	Value    float64 `json:"value"`
	StdErr   float64 `json:"std_err,omitempty"`
	CILow    float64 `json:"ci_low,omitempty"`
	CIHigh   float64 `json:"ci_high,omitempty"`
	Samples  int     `json:"samples,omitempty"`
	Error    string  `json:"error,omitempty"`
}

// Book is the result of valuing a list of positions, in input order.
type Book struct {
	Valuations []Valuation `json:"valuations"`
	TotalValue float64     `json:"total_value"`
	Priced     int         `json:"priced"`
	Failed     int         `json:"failed"`
}
