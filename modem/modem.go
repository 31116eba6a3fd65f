package modem

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// Modem is a command session on a single modem transport. Commands are
// executed strictly one at a time; concurrent callers are serialized.
type Modem struct {
	mu sync.Mutex
	// transport provides the physical connection to the modem (serial, TCP, etc.)
	transport Transport
	config    Config
	logger    *slog.Logger
	closed    bool
}

// New creates a new Modem with the given configuration. It validates the
// configuration and establishes the transport through the configured Dialer.
func New(ctx context.Context, config Config) (*Modem, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}
	config.setDefaults()

	transport, err := config.Dialer.Dial(ctx)
	if err != nil {
		return nil, fmt.Errorf("dial modem: %w", err)
	}
	if transport == nil {
		return nil, ErrNotInitialized
	}

	return &Modem{
		transport: transport,
		config:    config,
		logger:    config.Logger,
	}, nil
}

// Exec runs cmd with the configured AT timeout.
func (m *Modem) Exec(cmd string) (*Response, error) {
	return m.ExecTimeout(cmd, m.config.ATTimeout)
}

// ExecTimeout runs cmd, waiting at most timeout for its result.
func (m *Modem) ExecTimeout(cmd string, timeout time.Duration) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.exec(cmd, timeout)
}

// exec runs one command. The caller must hold m.mu.
func (m *Modem) exec(cmd string, timeout time.Duration) (*Response, error) {
	if m.closed {
		return nil, ErrAlreadyClosed
	}
	if m.transport == nil {
		return nil, ErrNotInitialized
	}
	if strings.TrimSpace(cmd) == "" {
		return nil, ErrEmptyCommand
	}

	resp, err := Execute(m.transport, cmd, timeout,
		WithChunkSize(m.config.ReadChunkSize),
		WithLogger(m.logger))
	if err != nil {
		m.logger.Warn("command failed", "cmd", cmd, "error", err)
		return nil, err
	}
	if !resp.Complete() {
		m.logger.Info("no result code before timeout", "cmd", cmd, "timeout", timeout, "lines", len(resp.Lines))
	}
	return resp, nil
}

// ResultFunc receives the response of each successful command in Run.
type ResultFunc func(cmd string, resp *Response)

// Run executes cmds in order with the configured AT timeout, calling fn after
// each one. It stops at the first failing command and returns its error.
// The whole batch holds the modem, so commands from concurrent batches never
// interleave.
func (m *Modem) Run(cmds []string, fn ResultFunc) error {
	return m.RunTimeout(cmds, m.config.ATTimeout, fn)
}

// RunTimeout is like Run with an explicit per-command timeout.
func (m *Modem) RunTimeout(cmds []string, timeout time.Duration, fn ResultFunc) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, cmd := range cmds {
		resp, err := m.exec(cmd, timeout)
		if err != nil {
			return fmt.Errorf("execute %q: %w", cmd, err)
		}
		if fn != nil {
			fn(cmd, resp)
		}
	}
	return nil
}

// RunAll executes every command in cmds even if some fail. fn is called for
// each successful command; failures are joined into the returned error.
func (m *Modem) RunAll(cmds []string, fn ResultFunc) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var errs []error
	for _, cmd := range cmds {
		resp, err := m.exec(cmd, m.config.ATTimeout)
		if err != nil {
			if errors.Is(err, ErrAlreadyClosed) || errors.Is(err, ErrNotInitialized) {
				return errors.Join(append(errs, err)...)
			}
			errs = append(errs, fmt.Errorf("execute %q: %w", cmd, err))
			continue
		}
		if fn != nil {
			fn(cmd, resp)
		}
	}
	return errors.Join(errs...)
}

// Close closes the transport. After calling Close, the modem cannot be reused.
func (m *Modem) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrAlreadyClosed
	}
	m.closed = true

	if m.transport != nil {
		return m.transport.Close()
	}
	return nil
}
