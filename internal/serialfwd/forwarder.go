package serialfwd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	log "github.com/sirupsen/logrus"

	"groundlink/telemetry"
	"groundlink/wire"
)

// ErrClosed is returned by Forward after Close
var ErrClosed = errors.New("forwarder closed")

// Forwarder bridges the UDP link to a serial port: ground reports
// are written to the port as frames and frames read from the port
// are handed to the uplink.
type Forwarder struct {
	name  string
	conn  connection
	codec *wire.Codec

	mu     sync.Mutex
	closed bool
	// writeMu orders writes; Close does not wait for it
	writeMu sync.Mutex

	forwarded atomic.Uint64
	uplinked  atomic.Uint64
}

// Open opens the named serial port, or a TCP connection for names
// of the form tcp:host:port
func Open(name string, baud int, codec *wire.Codec) (*Forwarder, error) {
	conn, err := dial(name, baud)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", name, err)
	}
	log.Infof("forwarding to %s", name)
	return newForwarder(name, conn, codec), nil
}

func newForwarder(name string, conn connection, codec *wire.Codec) *Forwarder {
	if codec == nil {
		codec = wire.NewCodec(wire.ChecksumSum16)
	}
	return &Forwarder{
		name:  name,
		conn:  conn,
		codec: codec,
	}
}

// Name returns the port name the forwarder was opened with
func (f *Forwarder) Name() string {
	return f.name
}

func (f *Forwarder) write(data []byte) error {
	f.writeMu.Lock()
	defer f.writeMu.Unlock()
	if f.isClosed() {
		return ErrClosed
	}
	log.Tracef("%s W >> %s", f.name, wire.Dump(data))
	_, err := f.conn.Write(data)
	return err
}

func (f *Forwarder) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// Forward writes r to the port as a ground report frame
func (f *Forwarder) Forward(r *telemetry.Report) error {
	if err := f.write(f.codec.Encode(telemetry.Packet(r))); err != nil {
		return err
	}
	f.forwarded.Add(1)
	return nil
}

// Run decodes frames arriving on the port and passes each one to
// send until ctx is done or the port fails. The port is closed when
// Run returns. Cancellation returns ctx.Err().
func (f *Forwarder) Run(ctx context.Context, send func(wire.Packet)) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			f.Close()
		case <-done:
		}
	}()

	dec := wire.NewStreamDecoder(f.codec)
	err := dec.Decode(f.conn, func(p *wire.Packet) bool {
		f.uplinked.Add(1)
		send(*p)
		return true
	})
	f.Close()
	if dropped := dec.Dropped(); dropped > 0 {
		log.Warnf("%s: %d invalid frames dropped", f.name, dropped)
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err == io.EOF {
		log.Infof("%s closed by peer", f.name)
		return nil
	}
	return fmt.Errorf("reading %s: %w", f.name, err)
}

// Forwarded returns the number of reports written to the port
func (f *Forwarder) Forwarded() uint64 { return f.forwarded.Load() }

// Uplinked returns the number of frames read from the port
func (f *Forwarder) Uplinked() uint64 { return f.uplinked.Load() }

// Close closes the port. It is safe to call more than once.
func (f *Forwarder) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil
	}
	f.closed = true
	return f.conn.Close()
}
