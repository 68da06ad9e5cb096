package pricerslack

import (
	"context"
	"log/slog"

	"github.com/bcdannyboy/optpricer/positions"
	"github.com/slack-go/slack"
)

// Poster is the part of the Slack client the command handlers use.
type Poster interface {
	PostMessage(channelID string, options ...slack.MsgOption) (string, string, error)
}

type Handler struct {
	helpHandler  *HelpHandler
	priceHandler *PriceHandler
}

func NewHandler(valuer *positions.Valuer, logger *slog.Logger) *Handler {
	return &Handler{
		helpHandler:  NewHelpHandler(),
		priceHandler: NewPriceHandler(valuer, logger),
	}
}

func (h *Handler) Handle(ctx context.Context, cmd slack.SlashCommand, client Poster) error {
	switch cmd.Command {
	case "/help":
		return h.helpHandler.HandleCommand(cmd, client)
	case "/price":
		return h.priceHandler.HandleCommand(ctx, cmd, client)
	}
	return nil
}
