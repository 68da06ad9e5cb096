// Package config loads optpricer settings from a YAML file, a .env file and
// the process environment.
package config

// Config is the top-level configuration.
type Config struct {
	Pricing PricingConfig `yaml:"pricing"`
	Book    BookConfig    `yaml:"book"`
	Slack   SlackConfig   `yaml:"slack"`
	Logging LoggingConfig `yaml:"logging"`
}

// PricingConfig controls the Monte Carlo engine.
type PricingConfig struct {
	DefaultSamples  int     `yaml:"default_samples"`
	MaxSamples      int     `yaml:"max_samples"` // upper bound on any single simulation request
	Seed            uint64  `yaml:"seed"` // 0 draws from the process-wide generator
	Workers         int     `yaml:"workers"`
	ConfidenceLevel float64 `yaml:"confidence_level"`
}

// BookConfig controls batch valuation of a positions file.
type BookConfig struct {
	Input    string `yaml:"input"`
	Output   string `yaml:"output"`
	Progress bool   `yaml:"progress"`
}

// SlackConfig holds Socket Mode credentials.
type SlackConfig struct {
	Enabled  bool   `yaml:"enabled"`
	AppToken string `yaml:"app_token"`
	BotToken string `yaml:"bot_token"`
	Debug    bool   `yaml:"debug"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}
