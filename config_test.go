package main

import (
	"flag"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestLoadConfig(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		config, err := LoadConfig(WithDefaults())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		expected := &Config{
			SerialPort:  "/dev/ttyUSB0",
			BaudRate:    115200,
			Timeout:     500 * time.Millisecond,
			ReadTimeout: 10 * time.Millisecond,
			LogLevel:    "info",
		}
		if diff := cmp.Diff(expected, config); diff != "" {
			t.Errorf("config mismatch (-expected +got):\n%s", diff)
		}
	})

	t.Run("Env overrides defaults", func(t *testing.T) {
		t.Setenv("SERIAL_PORT", "/dev/ttyUSB2")
		t.Setenv("BAUD_RATE", "9600")
		t.Setenv("AT_TIMEOUT_MS", "2000")
		t.Setenv("READ_TIMEOUT", "50ms")
		t.Setenv("LOG_LEVEL", "debug")
		t.Setenv("LOCK_FILE", "/run/lock/modem")

		config, err := LoadConfig(WithDefaults(), WithEnv())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if config.SerialPort != "/dev/ttyUSB2" {
			t.Errorf("unexpected serial port %q", config.SerialPort)
		}
		if config.BaudRate != 9600 {
			t.Errorf("unexpected baud rate %d", config.BaudRate)
		}
		if config.Timeout != 2*time.Second {
			t.Errorf("unexpected timeout %v", config.Timeout)
		}
		if config.ReadTimeout != 50*time.Millisecond {
			t.Errorf("unexpected read timeout %v", config.ReadTimeout)
		}
		if config.LogLevel != "debug" {
			t.Errorf("unexpected log level %q", config.LogLevel)
		}
		if config.LockFile != "/run/lock/modem" {
			t.Errorf("unexpected lock file %q", config.LockFile)
		}
	})

	t.Run("Invalid env values ignored", func(t *testing.T) {
		t.Setenv("BAUD_RATE", "fast")
		t.Setenv("AT_TIMEOUT_MS", "soon")

		config, err := LoadConfig(WithDefaults(), WithEnv())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if config.BaudRate != 115200 || config.Timeout != 500*time.Millisecond {
			t.Errorf("expected defaults to survive, got %+v", config)
		}
	})

	t.Run("Flags override env", func(t *testing.T) {
		t.Setenv("SERIAL_PORT", "/dev/ttyUSB2")

		fs := flag.NewFlagSet("atcmd", flag.ContinueOnError)
		registerFlags(fs)
		err := fs.Parse([]string{
			"--device", "/dev/ttyACM0",
			"--timeout-ms", "1500",
			"--cmds", "ATI",
			"--cmds", "AT+CSQ",
			"--keep-going",
			"AT+CREG?",
		})
		if err != nil {
			t.Fatalf("unexpected parse error: %v", err)
		}

		config, err := LoadConfig(WithDefaults(), WithEnv(), WithFlags(fs))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if config.SerialPort != "/dev/ttyACM0" {
			t.Errorf("unexpected serial port %q", config.SerialPort)
		}
		if config.Timeout != 1500*time.Millisecond {
			t.Errorf("unexpected timeout %v", config.Timeout)
		}
		if !config.KeepGoing {
			t.Error("expected keep-going to be set")
		}
		if diff := cmp.Diff([]string{"ATI", "AT+CSQ", "AT+CREG?"}, config.Commands); diff != "" {
			t.Errorf("commands mismatch (-expected +got):\n%s", diff)
		}
	})

	t.Run("Unset flags keep earlier values", func(t *testing.T) {
		t.Setenv("SERIAL_PORT", "/dev/ttyUSB2")

		fs := flag.NewFlagSet("atcmd", flag.ContinueOnError)
		registerFlags(fs)
		if err := fs.Parse([]string{"--cmds", "AT"}); err != nil {
			t.Fatalf("unexpected parse error: %v", err)
		}

		config, err := LoadConfig(WithDefaults(), WithEnv(), WithFlags(fs))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if config.SerialPort != "/dev/ttyUSB2" {
			t.Errorf("unexpected serial port %q", config.SerialPort)
		}
	})
}

func TestConfigValidate(t *testing.T) {
	valid := func() *Config {
		c, _ := LoadConfig(WithDefaults())
		c.Commands = []string{"AT"}
		return c
	}

	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{name: "valid", modify: func(c *Config) {}},
		{name: "empty device", modify: func(c *Config) { c.SerialPort = "" }, wantErr: true},
		{name: "zero baud rate", modify: func(c *Config) { c.BaudRate = 0 }, wantErr: true},
		{name: "negative timeout", modify: func(c *Config) { c.Timeout = -time.Second }, wantErr: true},
		{name: "no commands", modify: func(c *Config) { c.Commands = nil }, wantErr: true},
		{name: "server without commands", modify: func(c *Config) {
			c.Commands = nil
			c.BindAddress = "127.0.0.1:8080"
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.modify(c)
			err := c.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
