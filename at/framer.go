package at

import (
	"unicode/utf8"
)

// Framer incrementally decodes a modem byte stream into text lines.
//
// Bytes may arrive in chunks of any size; a line, or a multi-byte character,
// may be split across calls to Feed. Carriage returns are discarded and a line
// feed completes the current line. Every completed line is checked against the
// OK and ERROR result codes; the corresponding flags are sticky and never
// cleared once set.
//
// A Framer serves a single command. After Finalize it must not be fed again;
// doing so returns ErrFinalized. HasOK and HasError stay readable.
type Framer struct {
	pending   []byte
	lines     []string
	hasOK     bool
	hasError  bool
	finalized bool

	okMatch  Matcher
	errMatch Matcher
}

// NewFramer returns a Framer that detects the standard OK and ERROR result
// codes.
func NewFramer() *Framer {
	return &Framer{
		okMatch:  OKMatcher,
		errMatch: ErrorMatcher,
	}
}

// Feed appends p to the stream. Each line feed in p completes a line.
//
// If a completed line is not valid UTF-8, Feed stops at that line and returns
// a *DecodeError. Lines completed earlier in p are kept; the offending line is
// not recorded and the flags are not updated for it.
func (f *Framer) Feed(p []byte) error {
	if f.finalized {
		return ErrFinalized
	}

	for _, b := range p {
		switch b {
		case CR:
		case LF:
			if err := f.completeLine(); err != nil {
				return err
			}
		default:
			f.pending = append(f.pending, b)
		}
	}

	return nil
}

// Finalize flushes a trailing partial line, if any, and returns all completed
// lines in arrival order. The Framer cannot be used afterwards.
func (f *Framer) Finalize() ([]string, error) {
	if f.finalized {
		return nil, ErrFinalized
	}
	f.finalized = true

	if len(f.pending) > 0 {
		if err := f.completeLine(); err != nil {
			return nil, err
		}
	}

	lines := f.lines
	f.lines = nil
	return lines, nil
}

// HasOK reports whether any completed line so far was an OK result code.
func (f *Framer) HasOK() bool {
	return f.hasOK
}

// HasError reports whether any completed line so far was an ERROR result code.
func (f *Framer) HasError() bool {
	return f.hasError
}

// Pending returns the number of bytes buffered for the line being assembled.
func (f *Framer) Pending() int {
	return len(f.pending)
}

// Len returns the number of completed lines.
func (f *Framer) Len() int {
	return len(f.lines)
}

func (f *Framer) completeLine() error {
	if off := invalidOffset(f.pending); off >= 0 {
		return &DecodeError{
			Offset: off,
			Data:   append([]byte(nil), f.pending...),
		}
	}

	line := string(f.pending)
	f.pending = f.pending[:0]

	f.hasOK = f.hasOK || f.okMatch.Match(line)
	f.hasError = f.hasError || f.errMatch.Match(line)
	f.lines = append(f.lines, line)

	return nil
}

// invalidOffset returns the index of the first byte of p that does not start
// a valid UTF-8 sequence, or -1 if p is valid.
func invalidOffset(p []byte) int {
	if utf8.Valid(p) {
		return -1
	}
	for i := 0; i < len(p); {
		r, size := utf8.DecodeRune(p[i:])
		if r == utf8.RuneError && size <= 1 {
			return i
		}
		i += size
	}
	return -1
}
