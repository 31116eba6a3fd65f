package modem

import (
	"errors"
	"log/slog"
	"time"
)

const (
	// DefaultATTimeout is the maximum time to wait for a command's result.
	DefaultATTimeout = 500 * time.Millisecond
	// DefaultChunkSize is the size of each read from the transport.
	DefaultChunkSize = 32
)

// Config holds the settings used by New.
type Config struct {
	Dialer Dialer
	// ATTimeout is the maximum wall-clock time for one command. A zero value
	// means DefaultATTimeout unless it was set explicitly through
	// ConfigBuilder.WithATTimeout, in which case zero means no waiting.
	ATTimeout time.Duration
	// ReadChunkSize is the number of bytes requested per transport read.
	ReadChunkSize int
	Logger        *slog.Logger

	atTimeoutSet bool
}

func (c *Config) validate() error {
	if c.Dialer == nil {
		return ErrNoDialer
	}
	if c.ATTimeout < 0 {
		return errors.New("negative AT timeout")
	}
	if c.ReadChunkSize < 0 {
		return errors.New("negative read chunk size")
	}
	return nil
}

func (c *Config) setDefaults() {
	if c.ATTimeout == 0 && !c.atTimeoutSet {
		c.ATTimeout = DefaultATTimeout
	}
	if c.ReadChunkSize == 0 {
		c.ReadChunkSize = DefaultChunkSize
	}
	if c.Logger == nil {
		c.Logger = slog.New(slog.DiscardHandler)
	}
}

// ConfigBuilder assembles a Config.
type ConfigBuilder struct {
	config Config
}

// NewConfigBuilder returns an empty builder.
func NewConfigBuilder() *ConfigBuilder {
	return &ConfigBuilder{}
}

func (b *ConfigBuilder) WithDialer(d Dialer) *ConfigBuilder {
	b.config.Dialer = d
	return b
}

func (b *ConfigBuilder) WithATTimeout(d time.Duration) *ConfigBuilder {
	b.config.ATTimeout = d
	b.config.atTimeoutSet = true
	return b
}

func (b *ConfigBuilder) WithReadChunkSize(n int) *ConfigBuilder {
	b.config.ReadChunkSize = n
	return b
}

func (b *ConfigBuilder) WithLogger(l *slog.Logger) *ConfigBuilder {
	b.config.Logger = l
	return b
}

// Build validates the collected settings, fills in defaults and returns the
// resulting Config.
func (b *ConfigBuilder) Build() (Config, error) {
	c := b.config
	if err := c.validate(); err != nil {
		return Config{}, err
	}
	c.setDefaults()
	return c, nil
}
