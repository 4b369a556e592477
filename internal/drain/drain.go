// Package drain collects output from a child process stream without ever
// blocking the stream's writer.
//
// A Drainer owns a byte buffer that only its Run loop appends to and only
// Drain removes from. Drain waits for output to settle: it returns once no new
// data has arrived for a full wait window, so bursty output crossing several
// scheduler ticks is collected in one call while the call itself stays bounded.
package drain

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/wagiedev/forth-kernel-go/internal/errors"
)

// readChunkSize is the size of a single read from the stream.
const readChunkSize = 4096

// Drainer buffers one output stream of the interpreter.
type Drainer struct {
	log  *slog.Logger
	name string
	r    io.Reader

	mu  sync.Mutex // Protects buf
	buf []byte

	notify chan struct{} // Signalled after each append
	closed chan struct{} // Closed when Run returns
}

// New creates a drainer for r. Call Run on its own goroutine to start reading.
func New(log *slog.Logger, name string, r io.Reader) *Drainer {
	return &Drainer{
		log:    log.With("stream", name),
		name:   name,
		r:      r,
		notify: make(chan struct{}, 1),
		closed: make(chan struct{}),
	}
}

// Name returns the stream name given to New.
func (d *Drainer) Name() string {
	return d.name
}

// Run copies the stream into the buffer until EOF or a read error.
// Reads are chunked rather than line based so prompts without a trailing
// newline are still delivered.
func (d *Drainer) Run() error {
	defer close(d.closed)
	defer d.log.Debug("Drainer stopped")

	chunk := make([]byte, readChunkSize)

	for {
		n, err := d.r.Read(chunk)
		if n > 0 {
			d.mu.Lock()
			d.buf = append(d.buf, chunk[:n]...)
			d.mu.Unlock()

			select {
			case d.notify <- struct{}{}:
			default:
			}
		}

		if err != nil {
			if stderrors.Is(err, io.EOF) || stderrors.Is(err, os.ErrClosed) {
				return nil
			}

			d.log.Debug("Stream read error", "error", err)

			return fmt.Errorf("read %s: %w", d.name, err)
		}
	}
}

// Closed returns a channel that is closed once the stream has ended.
func (d *Drainer) Closed() <-chan struct{} {
	return d.closed
}

// Drain returns all buffered output plus whatever keeps arriving, waiting up
// to maxWait after the most recent arrival. With no data at all it returns ""
// after exactly maxWait. It returns early when the stream has ended or ctx is
// done.
func (d *Drainer) Drain(ctx context.Context, maxWait time.Duration) string {
	out := d.take()

	timer := time.NewTimer(maxWait)
	defer timer.Stop()

	for {
		select {
		case <-d.notify:
			if chunk := d.take(); len(chunk) > 0 {
				out = append(out, chunk...)

				timer.Reset(maxWait)
			}

		case <-d.closed:
			out = append(out, d.take()...)

			return d.decode(out)

		case <-timer.C:
			return d.decode(out)

		case <-ctx.Done():
			out = append(out, d.take()...)

			return d.decode(out)
		}
	}
}

// take removes and returns the whole buffer.
func (d *Drainer) take() []byte {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.buf) == 0 {
		return nil
	}

	chunk := d.buf
	d.buf = nil

	return chunk
}

// decode converts drained bytes to text line by line. Lines that are not valid
// UTF-8 are decoded as ISO-8859-1 so that no byte is lost.
func (d *Drainer) decode(data []byte) string {
	if len(data) == 0 {
		return ""
	}

	if utf8.Valid(data) {
		return string(data)
	}

	var sb bytes.Buffer

	for line := range bytes.SplitAfterSeq(data, []byte{'\n'}) {
		if utf8.Valid(line) {
			sb.Write(line)

			continue
		}

		decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(line)
		if err != nil {
			// ISO-8859-1 maps every byte; this only guards against a broken decoder.
			decoded = []byte(string(line))
		}

		d.log.Debug("Decoded stream output with fallback codec",
			"error", &errors.DecodeError{Stream: d.name, Bytes: len(line)})

		sb.Write(decoded)
	}

	return sb.String()
}

// Decode converts process output to text the same way Drain does.
// It is used for output collected outside a Drainer.
func Decode(log *slog.Logger, name string, data []byte) string {
	d := &Drainer{log: log, name: name}

	return d.decode(data)
}
