package modem

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.bug.st/serial"
)

// DefaultReadTimeout bounds a single read on a serial transport.
const DefaultReadTimeout = 10 * time.Millisecond

// SerialDialer opens a modem command channel over a serial port using
// go.bug.st/serial.
type SerialDialer struct {
	// PortName is the device path, e.g. /dev/ttyUSB2.
	PortName string
	// Mode holds the line settings. When nil, 115200 8N1 is used.
	Mode *serial.Mode
	// ReadTimeout bounds every Read on the port. A read that times out
	// returns 0, nil. When zero, DefaultReadTimeout is used.
	ReadTimeout time.Duration
}

var _ Dialer = SerialDialer{}

// Dial opens and configures the serial port.
func (d SerialDialer) Dial(ctx context.Context) (Transport, error) {
	if d.PortName == "" {
		return nil, errors.New("atcmd: serial port name is required")
	}
	if ctx == nil {
		return nil, errors.New("atcmd: context is nil")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mode := d.Mode
	if mode == nil {
		mode = &serial.Mode{
			BaudRate: 115200,
			Parity:   serial.NoParity,
			DataBits: 8,
			StopBits: serial.OneStopBit,
		}
	}

	readTimeout := d.ReadTimeout
	if readTimeout <= 0 {
		readTimeout = DefaultReadTimeout
	}

	port, err := serial.Open(d.PortName, mode)
	if err != nil {
		return nil, fmt.Errorf("atcmd: open %s: %w", d.PortName, err)
	}

	if err := port.SetReadTimeout(readTimeout); err != nil {
		port.Close()
		return nil, fmt.Errorf("atcmd: set read timeout on %s: %w", d.PortName, err)
	}

	return port, nil
}
