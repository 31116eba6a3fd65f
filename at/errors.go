package at

import (
	"errors"
	"fmt"
)

// ErrFinalized is returned when a Framer is used after Finalize.
var ErrFinalized = errors.New("framer already finalized")

// DecodeError is returned when the bytes of a completed line are not valid
// UTF-8 text.
type DecodeError struct {
	// Offset is the index of the first invalid byte within the line.
	Offset int
	// Data holds a copy of the raw line bytes.
	Data []byte
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("invalid UTF-8 in line at byte %d: %q", e.Offset, e.Data)
}
