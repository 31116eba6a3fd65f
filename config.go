package main

import (
	"errors"
	"flag"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the application configuration
type Config struct {
	// SerialPort is the path to the modem's command port (e.g. "/dev/ttyUSB2")
	SerialPort string
	// BaudRate is the baud rate for serial communication with the modem (e.g. 115200)
	BaudRate int
	// Timeout is the maximum time to wait for each command's result
	Timeout time.Duration
	// ReadTimeout bounds a single read on the serial port
	ReadTimeout time.Duration
	// Commands are the AT commands to execute, in order
	Commands []string
	// KeepGoing continues with the remaining commands after a failure
	KeepGoing bool
	// LogLevel sets the logging level (e.g. "debug", "info", "warn", "error")
	LogLevel string
	// BindAddress enables the HTTP server when set (e.g. "127.0.0.1:8080")
	BindAddress string
	// LockFile, when set, is locked exclusively while the modem is in use
	LockFile string
}

// Validate checks that the configuration can be used to run commands
func (c *Config) Validate() error {
	if c.SerialPort == "" {
		return errors.New("device is required")
	}
	if c.BaudRate <= 0 {
		return errors.New("baud rate must be positive")
	}
	if c.Timeout < 0 || c.ReadTimeout < 0 {
		return errors.New("timeouts must not be negative")
	}
	if c.BindAddress == "" && len(c.Commands) == 0 {
		return errors.New("no commands given")
	}
	return nil
}

// ConfigOption is a function that modifies a Config
type ConfigOption func(*Config) error

// LoadConfig creates a new config by applying the given options in order
func LoadConfig(opts ...ConfigOption) (*Config, error) {
	config := &Config{}

	for _, opt := range opts {
		if err := opt(config); err != nil {
			return nil, err
		}
	}

	return config, nil
}

// WithDefaults applies default configuration values
func WithDefaults() ConfigOption {
	return func(c *Config) error {
		c.SerialPort = "/dev/ttyUSB0"
		c.BaudRate = 115200
		c.Timeout = 500 * time.Millisecond
		c.ReadTimeout = 10 * time.Millisecond
		c.LogLevel = "info"
		return nil
	}
}

// WithEnv loads configuration from environment variables
func WithEnv() ConfigOption {
	return func(c *Config) error {
		if serial := os.Getenv("SERIAL_PORT"); serial != "" {
			c.SerialPort = serial
		}

		if baud := os.Getenv("BAUD_RATE"); baud != "" {
			if b, err := strconv.Atoi(baud); err == nil {
				c.BaudRate = b
			}
		}

		if ms := os.Getenv("AT_TIMEOUT_MS"); ms != "" {
			if v, err := strconv.Atoi(ms); err == nil {
				c.Timeout = time.Duration(v) * time.Millisecond
			}
		}

		if rt := os.Getenv("READ_TIMEOUT"); rt != "" {
			if d, err := time.ParseDuration(rt); err == nil {
				c.ReadTimeout = d
			}
		}

		if level := os.Getenv("LOG_LEVEL"); level != "" {
			c.LogLevel = level
		}

		if addr := os.Getenv("BIND_ADDRESS"); addr != "" {
			c.BindAddress = addr
		}

		if lock := os.Getenv("LOCK_FILE"); lock != "" {
			c.LockFile = lock
		}

		return nil
	}
}

// WithFlags loads configuration from command-line flags. Only flags that were
// set on the command line override earlier values. Positional arguments are
// appended to the command list.
func WithFlags(fSet *flag.FlagSet) ConfigOption {
	return func(c *Config) error {
		var err error
		fSet.Visit(func(f *flag.Flag) {
			switch f.Name {
			case "device":
				c.SerialPort = f.Value.String()
			case "baud-rate":
				if b, convErr := strconv.Atoi(f.Value.String()); convErr == nil {
					c.BaudRate = b
				}
			case "timeout-ms":
				v, convErr := strconv.Atoi(f.Value.String())
				if convErr != nil {
					err = errors.Join(err, convErr)
					return
				}
				c.Timeout = time.Duration(v) * time.Millisecond
			case "read-timeout":
				d, parseErr := time.ParseDuration(f.Value.String())
				if parseErr != nil {
					err = errors.Join(err, parseErr)
					return
				}
				c.ReadTimeout = d
			case "cmds":
				if l, ok := f.Value.(*commandList); ok {
					c.Commands = append(c.Commands, (*l)...)
				}
			case "keep-going":
				c.KeepGoing = f.Value.String() == "true"
			case "log-level":
				c.LogLevel = f.Value.String()
			case "bind-address":
				c.BindAddress = f.Value.String()
			case "lock-file":
				c.LockFile = f.Value.String()
			}
		})
		c.Commands = append(c.Commands, fSet.Args()...)
		return err
	}
}

// registerFlags defines the command-line flags understood by WithFlags
func registerFlags(fSet *flag.FlagSet) {
	fSet.String("device", "/dev/ttyUSB0", "The modem device to execute the commands on")
	fSet.Int("baud-rate", 115200, "Baud rate for serial communication")
	fSet.Int("timeout-ms", 500, "Maximum duration to wait for each command result, in milliseconds")
	fSet.Duration("read-timeout", 10*time.Millisecond, "Maximum duration of a single serial read")
	fSet.Var(&commandList{}, "cmds", "AT command to execute (repeatable; extra arguments are also executed)")
	fSet.Bool("keep-going", false, "Continue with the remaining commands after a failure")
	fSet.String("log-level", "info", "Log level (debug, info, warn, error)")
	fSet.String("bind-address", "", "Serve POST /commands on this address instead of running commands")
	fSet.String("lock-file", "", "Hold an exclusive lock on this file while the modem is in use")
}

// commandList is a repeatable string flag
type commandList []string

func (l *commandList) String() string {
	return strings.Join(*l, ",")
}

func (l *commandList) Set(v string) error {
	*l = append(*l, v)
	return nil
}
