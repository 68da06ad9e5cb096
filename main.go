package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/bcdannyboy/optpricer/config"
	"github.com/bcdannyboy/optpricer/positions"
	pricerslack "github.com/bcdannyboy/optpricer/slack"
	mpb "github.com/vbauerster/mpb/v7"
	"github.com/vbauerster/mpb/v7/decor"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	bookPath := flag.String("book", "", "positions file to value (overrides book.input)")
	outPath := flag.String("out", "", "where to write valuations (overrides book.output)")
	runSlack := flag.Bool("slack", false, "serve /price and /help over Slack Socket Mode")
	flag.Parse()

	if err := config.LoadEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading .env file: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	level, _ := cfg.Logging.SlogLevel()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if *runSlack || cfg.Slack.Enabled {
		if err := serveSlack(ctx, cfg, logger); err != nil {
			logger.Error("slack bot stopped", "error", err)
			os.Exit(1)
		}
		return
	}

	input := cfg.Book.Input
	if *bookPath != "" {
		input = *bookPath
	}
	output := cfg.Book.Output
	if *outPath != "" {
		output = *outPath
	}
	if input == "" {
		fmt.Fprintln(os.Stderr, "No positions file given. Use -book or set book.input.")
		os.Exit(2)
	}

	if err := valueBook(ctx, cfg, input, output, logger); err != nil {
		logger.Error("valuation failed", "error", err)
		os.Exit(1)
	}
}

func valuerConfig(cfg *config.Config, logger *slog.Logger) positions.ValuerConfig {
	return positions.ValuerConfig{
		Workers:         cfg.Pricing.Workers,
		DefaultSamples:  cfg.Pricing.DefaultSamples,
		MaxSamples:      cfg.Pricing.MaxSamples,
		Seed:            cfg.Pricing.Seed,
		ConfidenceLevel: cfg.Pricing.ConfidenceLevel,
		Logger:          logger,
	}
}

func valueBook(ctx context.Context, cfg *config.Config, input, output string, logger *slog.Logger) error {
	book, err := positions.LoadPositions(input)
	if err != nil {
		return err
	}
	logger.Info("positions loaded", "file", input, "count", len(book))

	vcfg := valuerConfig(cfg, logger)

	var (
		p   *mpb.Progress
		bar *mpb.Bar
	)
	if cfg.Book.Progress && len(book) > 0 {
		p = mpb.New(mpb.WithWidth(64), mpb.WithOutput(os.Stderr))
		bar = p.AddBar(int64(len(book)),
			mpb.PrependDecorators(
				decor.Name("Pricing"),
				decor.Percentage(decor.WCSyncSpace),
			),
			mpb.AppendDecorators(
				decor.CountersNoUnit("(%d / %d)", decor.WCSyncSpace),
			),
		)
		vcfg.Progress = bar
	}

	valued, err := positions.NewValuer(vcfg).ValueBook(ctx, book)
	if p != nil {
		// A cancelled run never fills the bar; abort it so Wait returns.
		if !bar.Completed() {
			bar.Abort(false)
		}
		p.Wait()
	}
	if err != nil {
		return err
	}

	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer f.Close()

	if err := positions.WriteBook(f, valued); err != nil {
		return err
	}

	logger.Info("valuations written", "file", output, "priced", valued.Priced, "failed", valued.Failed, "total_value", valued.TotalValue)
	return nil
}

func serveSlack(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	if cfg.Slack.AppToken == "" || cfg.Slack.BotToken == "" {
		return fmt.Errorf("slack mode needs SLACK_APP_TOKEN and SLACK_BOT_TOKEN")
	}

	valuer := positions.NewValuer(valuerConfig(cfg, logger))
	bot := pricerslack.NewSlackBot(cfg.Slack.AppToken, cfg.Slack.BotToken, cfg.Slack.Debug, valuer, logger)

	logger.Info("starting slack bot")
	return cleanShutdown(bot.Run(ctx))
}

// cleanShutdown treats cancellation by SIGINT/SIGTERM as a normal exit.
func cleanShutdown(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
