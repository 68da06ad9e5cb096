package pricerslack

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/bcdannyboy/optpricer/models"
	"github.com/bcdannyboy/optpricer/positions"
	"github.com/slack-go/slack"
)

const priceUsage = "<analytic|simulation> <variant> <call|put> <S> <K> <T> <r> <sigma> [extra]"

type PriceHandler struct {
	valuer *positions.Valuer
	logger *slog.Logger
}

func NewPriceHandler(valuer *positions.Valuer, logger *slog.Logger) *PriceHandler {
	return &PriceHandler{valuer: valuer, logger: logger}
}

func (h *PriceHandler) HandleCommand(ctx context.Context, cmd slack.SlashCommand, client Poster) error {
	pos, err := ParsePriceCommand(cmd.Text)
	if err != nil {
		_, _, perr := client.PostMessage(cmd.ChannelID,
			slack.MsgOptionText(fmt.Sprintf("%v\nUsage: /price %s", err, priceUsage), false))
		return perr
	}

	h.logger.Info("pricing from slack", "user", cmd.UserName, "model", pos.Model, "variant", pos.Variant, "side", pos.Side)

	val := h.valuer.Value(ctx, 0, pos)
	_, _, err = client.PostMessage(cmd.ChannelID,
		slack.MsgOptionText(FormatValuation(val), false))
	return err
}

// ParsePriceCommand turns the text of a /price command into a Position.
func ParsePriceCommand(text string) (positions.Position, error) {
	args := strings.Fields(text)
	if len(args) != 8 && len(args) != 9 {
		return positions.Position{}, fmt.Errorf("expected 8 or 9 arguments, got %d", len(args))
	}

	pos := positions.Position{
		ID:       "slack",
		Model:    strings.ToLower(args[0]),
		Variant:  strings.ToLower(args[1]),
		Side:     strings.ToLower(args[2]),
		Quantity: 1,
	}
	if pos.Model != positions.ModelAnalytic && pos.Model != positions.ModelSimulation {
		return positions.Position{}, fmt.Errorf("unknown model %q", args[0])
	}
	variant, err := models.ParseOptionVariant(pos.Variant)
	if err != nil {
		return positions.Position{}, err
	}

	names := []string{"S", "K", "T", "r", "sigma"}
	values := make([]float64, len(names))
	for i, name := range names {
		v, err := strconv.ParseFloat(args[3+i], 64)
		if err != nil {
			return positions.Position{}, fmt.Errorf("%s: %q is not a number", name, args[3+i])
		}
		values[i] = v
	}
	pos.Market = models.MarketParameters{
		Spot:       values[0],
		Strike:     values[1],
		Expiry:     values[2],
		Rate:       values[3],
		Volatility: values[4],
	}

	if len(args) == 9 {
		extra := args[8]
		switch {
		case pos.Model == positions.ModelSimulation:
			n, err := strconv.Atoi(extra)
			if err != nil {
				return positions.Position{}, fmt.Errorf("samples: %q is not an integer", extra)
			}
			if n < 1 {
				return positions.Position{}, fmt.Errorf("samples must be >= 1, got %d", n)
			}
			pos.Samples = n
		case variant == models.StockIndex || variant == models.Currency:
			v, err := strconv.ParseFloat(extra, 64)
			if err != nil {
				return positions.Position{}, fmt.Errorf("extra rate: %q is not a number", extra)
			}
			if variant == models.StockIndex {
				pos.Market.DividendYield = v
			} else {
				pos.Market.ForeignRate = v
			}
		default:
			return positions.Position{}, fmt.Errorf("%v options take no extra argument", variant)
		}
	}

	return pos, nil
}

// FormatValuation renders a valuation as a one or two line Slack reply.
func FormatValuation(val positions.Valuation) string {
	if val.Error != "" {
		return fmt.Sprintf("Could not price %s %s %s: %s", val.Model, val.Variant, val.Side, val.Error)
	}
	msg := fmt.Sprintf("%s %s %s price: %.4f", val.Model, val.Variant, val.Side, val.Price)
	if val.Samples > 0 {
		msg += fmt.Sprintf("\n%d samples, std err %.4f, interval [%.4f, %.4f]", val.Samples, val.StdErr, val.CILow, val.CIHigh)
	}
	return msg
}
