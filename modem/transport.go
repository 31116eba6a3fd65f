package modem

//go:generate go tool mockgen -source=transport.go -destination=mock_transport.go -package=modem

import (
	"context"
	"io"
)

// Transport represents an established, bidirectional byte stream to a modem
// command channel.
//
// A Transport is assumed to be already connected and configured. Each Read
// must return within a bounded time: a read that finds no data either returns
// 0, nil or an error reporting Timeout() == true. Write must write all bytes
// or return an error. Typical implementations include serial ports, TCP
// connections to emulators, or in-memory fakes used for testing.
type Transport interface {
	io.ReadWriteCloser
}

// Dialer opens a Transport to a modem.
//
// Dialer abstracts how the modem connection is created (for example, via a
// serial port, TCP-based emulator, or test double) and is intended to be used
// during modem construction only. Once a Transport is obtained, the Dialer is
// no longer needed.
type Dialer interface {
	// Dial is responsible for creating and returning a connected Transport. It may
	// perform blocking operations and should respect cancellation provided by
	// the context. Dial returns an error if the transport cannot be established.
	Dial(ctx context.Context) (Transport, error)
}
