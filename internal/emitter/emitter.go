package emitter

import (
	"context"
	"fmt"
	"net"
	"sync"
	"sync/atomic"

	log "github.com/sirupsen/logrus"

	"groundlink/telemetry"
	"groundlink/wire"
)

// Emitter is the vehicle end of the link. It sends ground reports to
// the ground station and receives its commands on the same socket.
type Emitter struct {
	conn  *net.UDPConn
	codec *wire.Codec

	mu         sync.Mutex
	target     *net.UDPAddr
	multiplier int
	counter    int

	reports atomic.Uint64
	skipped atomic.Uint64
}

// Listen opens the vehicle socket on laddr, e.g. ":4210". Reports
// can't be sent until a target is set.
func Listen(laddr string, codec *wire.Codec) (*Emitter, error) {
	addr, err := net.ResolveUDPAddr("udp", laddr)
	if err != nil {
		return nil, err
	}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return nil, err
	}
	if codec == nil {
		codec = wire.NewCodec(wire.ChecksumSum16)
	}
	return &Emitter{
		conn:       conn,
		codec:      codec,
		multiplier: 1,
		counter:    1,
	}, nil
}

// LocalAddr returns the address commands are received on
func (e *Emitter) LocalAddr() *net.UDPAddr {
	return e.conn.LocalAddr().(*net.UDPAddr)
}

// SetTarget sets the ground station address reports are sent to
func (e *Emitter) SetTarget(addr string) error {
	target, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return err
	}
	e.mu.Lock()
	e.target = target
	e.mu.Unlock()
	return nil
}

// SetMultiplier makes SendReport emit only every m-th report.
// Values below 1 are treated as 1. The current count restarts.
func (e *Emitter) SetMultiplier(m int) {
	if m < 1 {
		m = 1
	}
	e.mu.Lock()
	e.multiplier = m
	e.counter = m
	e.mu.Unlock()
}

func (e *Emitter) send(p wire.Packet) error {
	e.mu.Lock()
	target := e.target
	e.mu.Unlock()
	if target == nil {
		return fmt.Errorf("no target for %s", p)
	}
	buf := e.codec.Encode(p)
	log.Tracef("%s => %s", p, wire.Dump(buf))
	_, err := e.conn.WriteToUDP(buf, target)
	return err
}

// SendReport sends r unless it is skipped by the multiplier. It
// reports whether a datagram was sent.
func (e *Emitter) SendReport(r *telemetry.Report) (bool, error) {
	e.mu.Lock()
	e.counter--
	due := e.counter <= 0
	if due {
		e.counter = e.multiplier
	}
	e.mu.Unlock()
	if !due {
		e.skipped.Add(1)
		return false, nil
	}
	if err := e.send(telemetry.Packet(r)); err != nil {
		return false, err
	}
	e.reports.Add(1)
	return true, nil
}

// SendTrace sends controller trace data. Traces ignore the multiplier.
func (e *Emitter) SendTrace(d *telemetry.TraceData) error {
	return e.send(telemetry.Packet(d))
}

// Forward sends p as is
func (e *Emitter) Forward(p wire.Packet) error {
	return e.send(p)
}

// Reports returns the number of reports sent
func (e *Emitter) Reports() uint64 { return e.reports.Load() }

// Skipped returns the number of reports held back by the multiplier
func (e *Emitter) Skipped() uint64 { return e.skipped.Load() }

// Commands reads commands from the ground station and passes each
// decoded message to fn until ctx is done or the socket is closed.
// Invalid datagrams are logged and skipped.
func (e *Emitter) Commands(ctx context.Context, fn func(telemetry.Message)) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			e.conn.Close()
		case <-done:
		}
	}()

	buf := make([]byte, wire.HeaderSize+wire.MaxPayloadSize+e.codec.Checksum().Size())
	for {
		n, from, err := e.conn.ReadFromUDP(buf)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		p, err := e.codec.Parse(buf[:n])
		if err != nil {
			log.Warnf("command from %v: %v", from, err)
			continue
		}
		m, err := telemetry.Decode(p)
		if err != nil {
			log.Warnf("command from %v: %v", from, err)
			continue
		}
		log.Debugf("command <= %s", p)
		fn(m)
	}
}

// Close closes the socket
func (e *Emitter) Close() error {
	return e.conn.Close()
}
