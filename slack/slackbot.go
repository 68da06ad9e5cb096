// Package pricerslack exposes the pricers as Slack slash commands over
// Socket Mode.
package pricerslack

import (
	"context"
	"log/slog"

	"github.com/bcdannyboy/optpricer/positions"
	"github.com/slack-go/slack"
	"github.com/slack-go/slack/socketmode"
)

type SlackBot struct {
	client       *slack.Client
	socketClient *socketmode.Client
	eventHandler *Handler
	logger       *slog.Logger
}

func NewSlackBot(appToken, botToken string, debug bool, valuer *positions.Valuer, logger *slog.Logger) *SlackBot {
	client := slack.New(
		botToken,
		slack.OptionAppLevelToken(appToken),
	)

	socketClient := socketmode.New(
		client,
		socketmode.OptionDebug(debug),
		socketmode.OptionLog(slog.NewLogLogger(logger.Handler(), slog.LevelDebug)),
	)

	return &SlackBot{
		client:       client,
		socketClient: socketClient,
		eventHandler: NewHandler(valuer, logger),
		logger:       logger,
	}
}

// Run serves slash commands until ctx is cancelled.
func (sb *SlackBot) Run(ctx context.Context) error {
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-sb.socketClient.Events:
				if !ok {
					return
				}
				switch evt.Type {
				case socketmode.EventTypeConnected:
					sb.logger.Info("connected to slack")
				case socketmode.EventTypeSlashCommand:
					cmd, ok := evt.Data.(slack.SlashCommand)
					if !ok {
						continue
					}
					sb.socketClient.Ack(*evt.Request)
					go sb.handle(ctx, cmd)
				}
			}
		}
	}()

	return sb.socketClient.RunContext(ctx)
}

// handle runs one slash command off the event loop so a long simulation does
// not hold up other commands.
func (sb *SlackBot) handle(ctx context.Context, cmd slack.SlashCommand) {
	if err := sb.eventHandler.Handle(ctx, cmd, sb.socketClient); err != nil {
		sb.logger.Error("slash command failed", "command", cmd.Command, "error", err)
	}
}
