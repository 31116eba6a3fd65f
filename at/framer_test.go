package at_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"i4.energy/across/atcmd/at"
)

func TestFramer(t *testing.T) {
	tests := []struct {
		name     string
		chunks   []string
		expected []string
		hasOK    bool
		hasError bool
	}{
		{
			name:     "Identification response",
			chunks:   []string{"Manufacturer: X\r\nOK\r\n"},
			expected: []string{"Manufacturer: X", "OK"},
			hasOK:    true,
		},
		{
			name:     "Error response",
			chunks:   []string{"ERROR\r\n"},
			expected: []string{"ERROR"},
			hasError: true,
		},
		{
			name:     "Line split across chunks",
			chunks:   []string{"+CS", "Q: 15,", "99\r", "\nO", "K\r\n"},
			expected: []string{"+CSQ: 15,99", "OK"},
			hasOK:    true,
		},
		{
			name:     "Multi-byte character split across chunks",
			chunks:   []string{"temp \xc2", "\xb0C\r\n"},
			expected: []string{"temp °C"},
		},
		{
			name:     "Carriage returns dropped anywhere",
			chunks:   []string{"\rA\rT\r\r\n"},
			expected: []string{"AT"},
		},
		{
			name:     "Bare line feeds",
			chunks:   []string{"one\ntwo\n"},
			expected: []string{"one", "two"},
		},
		{
			name:     "Empty lines are kept",
			chunks:   []string{"\r\n\r\nOK\r\n"},
			expected: []string{"", "", "OK"},
			hasOK:    true,
		},
		{
			name:     "Trailing partial line flushed",
			chunks:   []string{"ATI\r\nQuectel\r\nBG96"},
			expected: []string{"ATI", "Quectel", "BG96"},
		},
		{
			name:     "Echoed command kept",
			chunks:   []string{"AT+CSQ\r\n+CSQ: 20,99\r\nOK\r\n"},
			expected: []string{"AT+CSQ", "+CSQ: 20,99", "OK"},
			hasOK:    true,
		},
		{
			name:     "OK inside longer line does not match",
			chunks:   []string{"OK, thanks\r\nNOT OK\r\nOKAY\r\n"},
			expected: []string{"OK, thanks", "NOT OK", "OKAY"},
		},
		{
			name:     "Both flags can be set",
			chunks:   []string{"ERROR\r\nOK\r\n"},
			expected: []string{"ERROR", "OK"},
			hasOK:    true,
			hasError: true,
		},
		{
			name:     "Flags stay set after unrelated lines",
			chunks:   []string{"OK\r\n", "+CMTI: \"SM\",1\r\n", "RING\r\n"},
			expected: []string{"OK", "+CMTI: \"SM\",1", "RING"},
			hasOK:    true,
		},
		{
			name:     "No input",
			chunks:   nil,
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := at.NewFramer()
			for _, c := range tt.chunks {
				if err := f.Feed([]byte(c)); err != nil {
					t.Fatalf("Feed(%q) error: %v", c, err)
				}
			}

			if f.HasOK() != tt.hasOK {
				t.Errorf("HasOK() = %v, expected %v", f.HasOK(), tt.hasOK)
			}
			if f.HasError() != tt.hasError {
				t.Errorf("HasError() = %v, expected %v", f.HasError(), tt.hasError)
			}

			lines, err := f.Finalize()
			if err != nil {
				t.Fatalf("Finalize() error: %v", err)
			}
			if diff := cmp.Diff(tt.expected, lines); diff != "" {
				t.Errorf("lines mismatch (-expected +got):\n%s", diff)
			}
		})
	}
}

func TestFramerPending(t *testing.T) {
	t.Run("No terminator keeps everything pending", func(t *testing.T) {
		f := at.NewFramer()
		input := "no line ending here"
		for i := 0; i < len(input); i += 4 {
			end := min(i+4, len(input))
			if err := f.Feed([]byte(input[i:end])); err != nil {
				t.Fatalf("Feed error: %v", err)
			}
		}
		if f.Len() != 0 {
			t.Errorf("expected 0 completed lines, got %d", f.Len())
		}
		if f.Pending() != len(input) {
			t.Errorf("expected %d pending bytes, got %d", len(input), f.Pending())
		}
	})

	t.Run("Line feed completes exactly one line and clears pending", func(t *testing.T) {
		f := at.NewFramer()
		for _, c := range []string{"a", "b", "c"} {
			if err := f.Feed([]byte(c)); err != nil {
				t.Fatalf("Feed error: %v", err)
			}
		}
		if err := f.Feed([]byte("\n")); err != nil {
			t.Fatalf("Feed error: %v", err)
		}
		if f.Len() != 1 {
			t.Errorf("expected 1 completed line, got %d", f.Len())
		}
		if f.Pending() != 0 {
			t.Errorf("expected empty pending buffer, got %d bytes", f.Pending())
		}
	})

	t.Run("Carriage return alone is not buffered", func(t *testing.T) {
		f := at.NewFramer()
		if err := f.Feed([]byte("\r\r\r")); err != nil {
			t.Fatalf("Feed error: %v", err)
		}
		if f.Pending() != 0 {
			t.Errorf("expected empty pending buffer, got %d bytes", f.Pending())
		}
		lines, err := f.Finalize()
		if err != nil {
			t.Fatalf("Finalize error: %v", err)
		}
		if len(lines) != 0 {
			t.Errorf("expected no lines, got %q", lines)
		}
	})
}

func TestFramerDecodeError(t *testing.T) {
	t.Run("Invalid line after valid lines", func(t *testing.T) {
		f := at.NewFramer()
		if err := f.Feed([]byte("one\r\ntwo\r\n")); err != nil {
			t.Fatalf("Feed error: %v", err)
		}

		err := f.Feed([]byte("bad \xff byte\r\nOK\r\n"))
		var decodeErr *at.DecodeError
		if !errors.As(err, &decodeErr) {
			t.Fatalf("expected *at.DecodeError, got: %v", err)
		}
		if decodeErr.Offset != 4 {
			t.Errorf("expected offset 4, got %d", decodeErr.Offset)
		}
		if string(decodeErr.Data) != "bad \xff byte" {
			t.Errorf("unexpected data %q", decodeErr.Data)
		}
		if f.Len() != 2 {
			t.Errorf("expected 2 completed lines, got %d", f.Len())
		}
		if f.HasOK() {
			t.Error("HasOK() should be unchanged by a failing feed")
		}
	})

	t.Run("Truncated sequence at finalize", func(t *testing.T) {
		f := at.NewFramer()
		if err := f.Feed([]byte("OK\r\n\xe2\x82")); err != nil {
			t.Fatalf("Feed error: %v", err)
		}
		_, err := f.Finalize()
		var decodeErr *at.DecodeError
		if !errors.As(err, &decodeErr) {
			t.Fatalf("expected *at.DecodeError, got: %v", err)
		}
		if decodeErr.Offset != 0 {
			t.Errorf("expected offset 0, got %d", decodeErr.Offset)
		}
	})
}

func TestFramerFinalized(t *testing.T) {
	f := at.NewFramer()
	if err := f.Feed([]byte("partial")); err != nil {
		t.Fatalf("Feed error: %v", err)
	}

	lines, err := f.Finalize()
	if err != nil {
		t.Fatalf("Finalize error: %v", err)
	}
	if diff := cmp.Diff([]string{"partial"}, lines); diff != "" {
		t.Errorf("lines mismatch (-expected +got):\n%s", diff)
	}

	if err := f.Feed([]byte("more\r\n")); !errors.Is(err, at.ErrFinalized) {
		t.Errorf("expected ErrFinalized from Feed, got: %v", err)
	}
	if _, err := f.Finalize(); !errors.Is(err, at.ErrFinalized) {
		t.Errorf("expected ErrFinalized from Finalize, got: %v", err)
	}
}
