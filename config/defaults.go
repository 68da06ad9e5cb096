package config

// Default values for optional configuration fields.
const (
	DefaultSamples         = 100_000
	DefaultMaxSamples      = 10_000_000
	DefaultConfidenceLevel = 0.95
	DefaultLogLevel        = "info"
	DefaultBookOutput      = "valuations.json"
)

func (c *Config) applyDefaults() {
	if c.Pricing.DefaultSamples == 0 {
		c.Pricing.DefaultSamples = DefaultSamples
	}
	if c.Pricing.MaxSamples == 0 {
		c.Pricing.MaxSamples = DefaultMaxSamples
	}
	if c.Pricing.ConfidenceLevel == 0 {
		c.Pricing.ConfidenceLevel = DefaultConfidenceLevel
	}
	if c.Book.Output == "" {
		c.Book.Output = DefaultBookOutput
	}
	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
}
