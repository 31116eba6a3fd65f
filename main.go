package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.bug.st/serial"
	"i4.energy/across/atcmd/modem"
)

func main() {
	registerFlags(flag.CommandLine)
	flag.Parse()

	config, err := LoadConfig(WithDefaults(), WithEnv(), WithFlags(flag.CommandLine))
	if err == nil {
		err = config.Validate()
	}
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		flag.Usage()
		os.Exit(2)
	}

	logLevel := slog.LevelInfo
	switch config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	unlock := func() error { return nil }
	if config.LockFile != "" {
		unlock, err = lockFile(config.LockFile)
		if err != nil {
			logger.Error("Failed to lock device", "error", err, "lock_file", config.LockFile)
			os.Exit(1)
		}
	}

	modemConfig, err := modem.NewConfigBuilder().
		WithATTimeout(config.Timeout).
		WithLogger(logger.With("component", "modem")).
		WithDialer(modem.SerialDialer{
			PortName: config.SerialPort,
			Mode: &serial.Mode{
				BaudRate: config.BaudRate,
				Parity:   serial.NoParity,
				DataBits: 8,
				StopBits: serial.OneStopBit,
			},
			ReadTimeout: config.ReadTimeout,
		}).
		Build()
	if err != nil {
		logger.Error("Failed to create modem config", "error", err)
		os.Exit(1)
	}

	m, err := modem.New(context.Background(), modemConfig)
	if err != nil {
		logger.Error("Failed to open modem", "error", err, "device", config.SerialPort)
		os.Exit(1)
	}

	var code int
	if config.BindAddress != "" {
		code = serve(logger, m, config)
	} else {
		code = runCommands(m, config)
	}

	if err := m.Close(); err != nil {
		logger.Error("Failed to close modem", "error", err)
	}
	if err := unlock(); err != nil {
		logger.Error("Failed to release lock", "error", err)
	}
	os.Exit(code)
}

// runCommands executes the configured commands and prints their results.
// It returns the process exit code.
func runCommands(m *modem.Modem, config *Config) int {
	printer := NewPrinter(os.Stdout)

	run := m.Run
	if config.KeepGoing {
		run = m.RunAll
	}

	if err := run(config.Commands, printer.Print); err != nil {
		fmt.Fprintf(os.Stderr, "Failed while executing command: %v\n", err)
		return 1
	}
	return 0
}

// serve runs the HTTP server until an interrupt signal arrives. It returns
// the process exit code.
func serve(logger *slog.Logger, m *modem.Modem, config *Config) int {
	httpServer := &http.Server{
		Addr: config.BindAddress,
		Handler: &Server{
			Logger:  logger.With("component", "server"),
			Modem:   m,
			Timeout: config.Timeout,
		},
	}

	// Channel to listen for interrupt signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", "address", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErr <- err
		}
	}()

	select {
	case sig := <-sigChan:
		logger.Info("Received shutdown signal", "signal", sig)
	case err := <-serveErr:
		logger.Error("HTTP server failed", "error", err)
		return 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger.Info("Closing HTTP server")
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("Failed to gracefully shutdown server", "error", err)
		return 1
	}
	return 0
}
