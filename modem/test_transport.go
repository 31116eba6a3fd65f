package modem

import (
	"io"
	"strings"
	"sync"
	"time"

	"i4.energy/across/atcmd/at"
)

// TestTransport is a test helper that simulates a serial port configured
// with a per-read timeout. Read waits up to ReadTimeout for queued data and
// returns 0, nil if none arrives, like a real port would.
//
// Replies registered with Reply are queued automatically when the matching
// command is written. Exported for use in tests.
type TestTransport struct {
	ReadTimeout time.Duration

	mu       sync.Mutex
	readChan chan readResult
	done     chan struct{}
	replies  map[string][]string
	leftover []byte
	writes   []string
	reads    int
	closed   bool
}

type readResult struct {
	data []byte
	err  error
}

// NewTestTransport creates a new test transport with a 5ms read timeout.
func NewTestTransport() *TestTransport {
	return &TestTransport{
		ReadTimeout: 5 * time.Millisecond,
		readChan:    make(chan readResult, 64),
		done:        make(chan struct{}),
		replies:     make(map[string][]string),
	}
}

func (t *TestTransport) Write(p []byte) (n int, err error) {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return 0, io.ErrClosedPipe
	}
	t.writes = append(t.writes, string(p))
	chunks := t.replies[strings.TrimSuffix(string(p), at.CRLF)]
	t.mu.Unlock()

	for _, chunk := range chunks {
		t.send(readResult{data: []byte(chunk)})
	}
	return len(p), nil
}

// send queues r without holding t.mu, so a full queue only blocks the sender
// until a reader drains it or the transport is closed.
func (t *TestTransport) send(r readResult) {
	select {
	case <-t.done:
		return
	default:
	}
	select {
	case t.readChan <- r:
	case <-t.done:
	}
}

func (t *TestTransport) receive(p []byte, r readResult) (int, error) {
	if r.err != nil {
		return 0, r.err
	}
	n := copy(p, r.data)
	if n < len(r.data) {
		// keep the rest of a chunk that did not fit the caller's buffer
		t.mu.Lock()
		t.leftover = append(t.leftover, r.data[n:]...)
		t.mu.Unlock()
	}
	return n, nil
}

func (t *TestTransport) Read(p []byte) (n int, err error) {
	t.mu.Lock()
	t.reads++
	if len(t.leftover) > 0 {
		n = copy(p, t.leftover)
		t.leftover = t.leftover[n:]
		t.mu.Unlock()
		return n, nil
	}
	t.mu.Unlock()

	// data queued before Close is still delivered
	select {
	case r := <-t.readChan:
		return t.receive(p, r)
	default:
	}

	timer := time.NewTimer(t.ReadTimeout)
	defer timer.Stop()

	select {
	case r := <-t.readChan:
		return t.receive(p, r)
	case <-t.done:
		return 0, io.EOF
	case <-timer.C:
		return 0, nil
	}
}

func (t *TestTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil
	}
	t.closed = true
	close(t.done)
	return nil
}

// SendData queues data to be read by the transport.
// This simulates receiving data from the modem.
// It blocks while the queue is full; after Close the data is dropped.
func (t *TestTransport) SendData(data string) {
	t.send(readResult{data: []byte(data)})
}

// SendError queues a read failure.
func (t *TestTransport) SendError(err error) {
	t.send(readResult{err: err})
}

// Reply queues chunks to be read each time cmd is written.
func (t *TestTransport) Reply(cmd string, chunks ...string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.replies[cmd] = chunks
}

// Writes returns everything written so far, one entry per Write call.
func (t *TestTransport) Writes() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.writes...)
}

// Reads returns the number of Read calls made so far.
func (t *TestTransport) Reads() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.reads
}
