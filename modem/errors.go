package modem

import (
	"errors"
	"os"
	"strconv"
)

var (
	// ErrNoDialer is returned when a Modem is constructed without a Dialer.
	//
	// This indicates a configuration error. A Dialer is required in order to
	// establish a connection to the modem.
	ErrNoDialer = errors.New("no dialer configured")

	// ErrNotInitialized is returned when an operation is attempted on a Modem
	// that has no transport.
	//
	// This can occur if the Dialer returned a nil Transport or if the Modem
	// was not created via New.
	ErrNotInitialized = errors.New("modem not initialized")

	// ErrAlreadyClosed is returned when a Modem is used or closed after it
	// has already been closed.
	ErrAlreadyClosed = errors.New("modem already closed")

	// ErrEmptyCommand is returned by Modem.Exec for a blank command.
	ErrEmptyCommand = errors.New("empty command")
)

// ErrorKind tags the origin of a command failure.
type ErrorKind int

const (
	// KindTransport marks a hard write or read failure on the transport.
	KindTransport ErrorKind = iota
	// KindDecode marks response bytes that are not valid text.
	KindDecode
)

func (k ErrorKind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindDecode:
		return "decode"
	default:
		return "unknown"
	}
}

// Error is returned by Execute when a command is aborted. Err is the
// underlying transport or decode error and is reachable through errors.Is
// and errors.As.
type Error struct {
	Kind ErrorKind
	// Op is the step that failed: "write", "read" or "decode".
	Op  string
	Cmd string
	Err error
}

func transportError(op, cmd string, err error) *Error {
	return &Error{Kind: KindTransport, Op: op, Cmd: cmd, Err: err}
}

func decodeError(cmd string, err error) *Error {
	return &Error{Kind: KindDecode, Op: "decode", Cmd: cmd, Err: err}
}

func (e *Error) Error() string {
	return e.Kind.String() + " error: " + e.Op + " " + strconv.Quote(e.Cmd) + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// IsTransport reports whether err was caused by a transport fault.
func IsTransport(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == KindTransport
}

// IsDecode reports whether err was caused by undecodable response bytes.
func IsDecode(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == KindDecode
}

// isTimeout reports whether a read error only means that no data arrived
// within the transport's per-read bound.
func isTimeout(err error) bool {
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	type timeout interface {
		Timeout() bool
	}
	var t timeout
	return errors.As(err, &t) && t.Timeout()
}
