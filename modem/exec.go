package modem

import (
	"io"
	"log/slog"
	"time"

	"i4.energy/across/atcmd/at"
)

// Response is the outcome of one command.
type Response struct {
	// Lines holds every decoded line received, in arrival order, including a
	// trailing line that was not terminated when polling stopped.
	Lines []string
	// OK is set if any line was an OK result code.
	OK bool
	// Error is set if any line was an ERROR result code.
	Error bool
}

// Complete reports whether the response ended with a result code rather
// than by running out of time.
func (r *Response) Complete() bool {
	return r.OK || r.Error
}

type execOptions struct {
	chunkSize int
	logger    *slog.Logger
}

// ExecOption customises Execute.
type ExecOption func(*execOptions)

// WithChunkSize sets the number of bytes requested per read.
func WithChunkSize(n int) ExecOption {
	return func(o *execOptions) {
		if n > 0 {
			o.chunkSize = n
		}
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(l *slog.Logger) ExecOption {
	return func(o *execOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// Execute runs one command on rw and collects its response.
//
// The command is written once, followed by CRLF. Execute then reads from rw
// until a line equal to OK or ERROR arrives or until timeout has elapsed,
// whichever comes first. Running out of time is not an error: the lines
// received so far are returned with both flags false.
//
// Every Read on rw must return within a bounded time. A read that reports no
// data, either as 0, nil or as a timeout error, is skipped. Any other read or
// write failure aborts the command with a *Error of KindTransport; response
// bytes that are not valid UTF-8 abort it with a *Error of KindDecode.
func Execute(rw io.ReadWriter, cmd string, timeout time.Duration, opts ...ExecOption) (*Response, error) {
	o := execOptions{
		chunkSize: DefaultChunkSize,
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if timeout < 0 {
		timeout = 0
	}

	wire := []byte(cmd + at.CRLF)
	n, err := rw.Write(wire)
	if err == nil && n < len(wire) {
		err = io.ErrShortWrite
	}
	if err != nil {
		return nil, transportError("write", cmd, err)
	}
	o.logger.Debug("command written", "cmd", cmd, "bytes", n)

	framer := at.NewFramer()
	buf := make([]byte, o.chunkSize)
	start := time.Now()
	timedOut := true

	for time.Since(start) <= timeout {
		n, err := rw.Read(buf)
		if err != nil && !isTimeout(err) {
			return nil, transportError("read", cmd, err)
		}
		if n == 0 {
			continue
		}

		if err := framer.Feed(buf[:n]); err != nil {
			return nil, decodeError(cmd, err)
		}

		if framer.HasOK() || framer.HasError() {
			timedOut = false
			break
		}
	}

	lines, err := framer.Finalize()
	if err != nil {
		return nil, decodeError(cmd, err)
	}

	resp := &Response{
		Lines: lines,
		OK:    framer.HasOK(),
		Error: framer.HasError(),
	}

	elapsed := time.Since(start)
	if timedOut {
		o.logger.Debug("command timed out", "cmd", cmd, "lines", len(lines), "elapsed", elapsed)
	} else {
		o.logger.Debug("command complete", "cmd", cmd, "lines", len(lines),
			"ok", resp.OK, "error", resp.Error, "elapsed", elapsed)
	}

	return resp, nil
}
