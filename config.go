package kensaku

import (
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

// Config holds the tunables of a World. Every field can be set from the
// environment; see LoadConfig.
type Config struct {
	// InitialCapacity is the number of entity slots reserved up front.
	InitialCapacity int `env:"KENSAKU_INITIAL_CAPACITY" envDefault:"1024"`
	// ChunkSize is the number of entities stored per chunk. A filter pass
	// yields at most ChunkSize entities per chunk.
	ChunkSize int    `env:"KENSAKU_CHUNK_SIZE" envDefault:"1024"`
	LogLevel  string `env:"KENSAKU_LOG_LEVEL"  envDefault:"info"`
	PrettyLog bool   `env:"KENSAKU_PRETTY_LOG" envDefault:"false"`
}

// DefaultConfig returns the configuration used when no environment
// overrides are present.
func DefaultConfig() Config {
	return Config{
		InitialCapacity: 1024,
		ChunkSize:       1024,
		LogLevel:        zerolog.InfoLevel.String(),
	}
}

// LoadConfig reads KENSAKU_* environment variables on top of the defaults.
func LoadConfig() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, eris.Wrap(err, "parse env")
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.InitialCapacity < 0 {
		return eris.Errorf("initial capacity must not be negative, got %d", c.InitialCapacity)
	}
	if c.ChunkSize <= 0 {
		return eris.Errorf("chunk size must be positive, got %d", c.ChunkSize)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return eris.Wrapf(err, "invalid log level %q", c.LogLevel)
	}
	return nil
}

// newLogger builds the world logger described by the config.
func (c Config) newLogger() zerolog.Logger {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	var logger zerolog.Logger
	if c.PrettyLog {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr})
	} else {
		logger = zerolog.New(os.Stderr)
	}
	return logger.Level(level).With().Timestamp().Str("module", "kensaku").Logger()
}

// WorldOption configures a World at construction time.
type WorldOption func(*worldOptions)

type worldOptions struct {
	cfg    Config
	logger *zerolog.Logger
}

// WithConfig replaces the whole configuration, typically with the result of
// LoadConfig.
func WithConfig(cfg Config) WorldOption {
	return func(o *worldOptions) {
		o.cfg = cfg
	}
}

// WithInitialCapacity sets the number of entity slots reserved up front.
func WithInitialCapacity(n int) WorldOption {
	return func(o *worldOptions) {
		o.cfg.InitialCapacity = n
	}
}

// WithChunkSize sets the number of entities stored per chunk.
func WithChunkSize(n int) WorldOption {
	return func(o *worldOptions) {
		o.cfg.ChunkSize = n
	}
}

// WithLogger makes the world log through logger instead of building one from
// the config.
func WithLogger(logger zerolog.Logger) WorldOption {
	return func(o *worldOptions) {
		o.logger = &logger
	}
}

func WithPrettyLog() WorldOption {
	return func(o *worldOptions) {
		o.cfg.PrettyLog = true
	}
}
