package transceiver

import (
	"context"
	"net"
	"strconv"
	"sync"
	"sync/atomic"

	log "github.com/sirupsen/logrus"

	"groundlink/telemetry"
	"groundlink/wire"
)

// Config holds the fixed parameters of a Transceiver. Hooks are
// optional and may be called from the receive goroutine and from
// senders concurrently.
type Config struct {
	RemoteHost string
	RemotePort int
	ListenPort int

	// Codec defaults to a sum16 codec
	Codec *wire.Codec
	// Sockets defaults to UDPSockets()
	Sockets SocketFactory

	// OnArrived is called for every datagram read, valid or not
	OnArrived func()
	// OnReport receives every successfully decoded report. The
	// report is owned by the callee.
	OnReport func(*telemetry.Report)
	// OnStatus is called after any change to the session flags
	OnStatus func(Status)
}

// Transceiver keeps a logical link to the vehicle over UDP. It
// receives ground reports on ListenPort and sends packets to
// RemoteHost:RemotePort, reopening both sockets after any fault.
type Transceiver struct {
	cfg     Config
	codec   *wire.Codec
	sockets SocketFactory

	// mu guards the sockets and session flags
	mu          sync.Mutex
	// changed is signalled when a reconnect settles
	changed     *sync.Cond
	recv        PacketConn
	send        PacketConn
	remote      *net.UDPAddr
	listenPort  int
	epoch       uint64
	state       State
	connected   bool
	linked      bool
	haveTraffic bool
	halt        bool

	// sendMu allows a single outbound encode+write at a time
	sendMu sync.Mutex

	last  atomic.Pointer[telemetry.Report]
	stats counters
}

// New returns a disconnected Transceiver. Call Connect and then
// Receive, or Run, to start exchanging packets.
func New(cfg Config) *Transceiver {
	codec := cfg.Codec
	if codec == nil {
		codec = wire.NewCodec(wire.ChecksumSum16)
	}
	sockets := cfg.Sockets
	if sockets == nil {
		sockets = UDPSockets()
	}
	t := &Transceiver{
		cfg:        cfg,
		codec:      codec,
		sockets:    sockets,
		listenPort: cfg.ListenPort,
	}
	t.changed = sync.NewCond(&t.mu)
	return t
}

func (t *Transceiver) remoteAddr() string {
	return net.JoinHostPort(t.cfg.RemoteHost, strconv.Itoa(t.cfg.RemotePort))
}

func (t *Transceiver) logger() *log.Entry {
	return log.WithFields(log.Fields{
		"remote": t.remoteAddr(),
		"listen": t.cfg.ListenPort,
	})
}

func (t *Transceiver) statusLocked() Status {
	return Status{
		State:       t.state,
		Connected:   t.connected,
		Linked:      t.linked,
		HaveTraffic: t.haveTraffic,
		Halted:      t.halt,
	}
}

func (t *Transceiver) notify(st Status) {
	if t.cfg.OnStatus != nil {
		t.cfg.OnStatus(st)
	}
}

func (t *Transceiver) open(listenPort int) (recv PacketConn, send PacketConn, remote *net.UDPAddr, err error) {
	remote, err = net.ResolveUDPAddr("udp", t.remoteAddr())
	if err != nil {
		return nil, nil, nil, &TransportUnavailableError{Op: "resolve " + t.remoteAddr(), Err: err}
	}
	recv, err = t.sockets.ListenUDP("udp", &net.UDPAddr{Port: listenPort})
	if err != nil {
		return nil, nil, nil, &TransportUnavailableError{Op: "listen", Err: err}
	}
	send, err = t.sockets.ListenUDP("udp", nil)
	if err != nil {
		recv.Close()
		return nil, nil, nil, &TransportUnavailableError{Op: "open send socket", Err: err}
	}
	return recv, send, remote, nil
}

// Connect opens the receive socket on ListenPort and the send
// socket. On failure the link is marked down and a
// *TransportUnavailableError is returned; Connect does not retry.
func (t *Transceiver) Connect() error {
	t.mu.Lock()
	if t.halt {
		t.mu.Unlock()
		return ErrHalted
	}
	t.state = StateConnecting
	listenPort := t.listenPort
	st := t.statusLocked()
	t.mu.Unlock()
	t.notify(st)

	recv, send, remote, err := t.open(listenPort)

	t.mu.Lock()
	if err == nil && t.halt {
		recv.Close()
		send.Close()
		err = ErrHalted
	}
	if err != nil {
		t.connected = false
		t.linked = false
		t.state = StateDisconnected
		st = t.statusLocked()
		t.changed.Broadcast()
		t.mu.Unlock()
		t.notify(st)
		if err != ErrHalted {
			t.logger().Errorf("can't connect: %v", err)
		}
		return err
	}
	t.closeSocketsLocked()
	t.recv = recv
	t.send = send
	t.remote = remote
	// an ephemeral port is kept across reconnects so the vehicle
	// can keep sending to it
	if addr, ok := recv.LocalAddr().(*net.UDPAddr); ok && t.listenPort == 0 {
		t.listenPort = addr.Port
	}
	t.epoch++
	t.connected = true
	t.linked = true
	t.haveTraffic = false
	t.state = StateConnected
	st = t.statusLocked()
	t.changed.Broadcast()
	t.mu.Unlock()

	t.logger().Infof("connected, listening on %v", recv.LocalAddr())
	t.notify(st)
	return nil
}

// closeSocketsLocked closes and forgets both sockets, checking each
// one independently.
func (t *Transceiver) closeSocketsLocked() {
	if t.recv != nil {
		if err := t.recv.Close(); err != nil {
			log.Debugf("closing receive socket: %v", err)
		}
		t.recv = nil
	}
	if t.send != nil {
		if err := t.send.Close(); err != nil {
			log.Debugf("closing send socket: %v", err)
		}
		t.send = nil
	}
}

// Disconnect releases both sockets. It may be called any number of
// times and from any goroutine. A pending receive is unblocked and
// the receive loop ends without reconnecting.
func (t *Transceiver) Disconnect() {
	t.disconnect(StateDisconnected)
}

func (t *Transceiver) disconnect(next State) {
	t.mu.Lock()
	changed := t.teardownLocked(next)
	st := t.statusLocked()
	t.mu.Unlock()
	if changed {
		t.notify(st)
	}
}

func (t *Transceiver) teardownLocked(next State) bool {
	changed := t.connected || t.state != next
	t.closeSocketsLocked()
	// errors from the sockets just closed belong to a dead epoch
	t.epoch++
	t.connected = false
	t.haveTraffic = false
	t.state = next
	t.changed.Broadcast()
	return changed
}

// Halt stops the receive loop for good and releases the sockets.
// No reconnect happens after Halt, including through Connect.
func (t *Transceiver) Halt() {
	t.mu.Lock()
	t.halt = true
	t.mu.Unlock()
	t.Disconnect()
}

// receiving returns the current receive socket and its epoch, or
// false when the loop must stop. A reconnect still running after a
// send fault is waited for, not taken as a stop.
func (t *Transceiver) receiving() (PacketConn, uint64, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for !t.halt && (t.state == StateFaulted || t.state == StateConnecting) {
		t.changed.Wait()
	}
	if !t.connected || t.halt || t.recv == nil {
		return nil, 0, false
	}
	return t.recv, t.epoch, true
}

// Receive runs the receive loop until the transceiver is halted or
// a reconnect fails. Every datagram must be exactly one ground
// report frame; anything else restarts the transport. On return
// the transceiver is halted and disconnected.
func (t *Transceiver) Receive() {
	frameSize := t.codec.FrameSize(telemetry.ReportSize)
	// One spare byte so oversized datagrams show up as a size
	// mismatch instead of being silently truncated.
	buf := make([]byte, frameSize+1)
	for {
		recv, epoch, ok := t.receiving()
		if !ok {
			break
		}
		if !t.HaveTraffic() {
			t.logger().Info("waiting for ground reports")
		}
		n, _, err := recv.ReadFromUDP(buf)
		if n < 0 {
			n = 0
		}
		if err == nil {
			err = t.handle(buf[:n])
		}
		if err != nil {
			t.fault("receive", epoch, err, buf[:n])
		}
	}

	t.mu.Lock()
	t.halt = true
	t.state = StateDisconnected
	st := t.statusLocked()
	t.mu.Unlock()
	t.notify(st)
	t.logger().Info("receive loop stopped")
}

func (t *Transceiver) handle(raw []byte) error {
	t.stats.datagrams.Add(1)
	t.stats.bytes.Add(uint64(len(raw)))
	t.markTraffic()
	if t.cfg.OnArrived != nil {
		t.cfg.OnArrived()
	}
	p, err := t.codec.Decode(raw, wire.TypeGroundReport, telemetry.ReportSize)
	if err != nil {
		t.stats.malformed.Add(1)
		return err
	}
	r, err := telemetry.DecodeReport(p.Payload)
	if err != nil {
		t.stats.malformed.Add(1)
		return err
	}
	log.Tracef("report <= %s", r)
	t.stats.reports.Add(1)
	latest := r.Copy()
	if t.cfg.OnReport != nil {
		t.cfg.OnReport(r)
	}
	t.last.Store(latest)
	return nil
}

func (t *Transceiver) markTraffic() {
	t.mu.Lock()
	first := !t.haveTraffic
	t.haveTraffic = true
	st := t.statusLocked()
	t.mu.Unlock()
	if first {
		t.logger().Info("first datagram received")
		t.notify(st)
	}
}

// fault tears down the connection identified by epoch and, unless
// halted, connects again. Faults on a connection that has already
// been replaced or disconnected are ignored.
func (t *Transceiver) fault(op string, epoch uint64, err error, raw []byte) {
	t.mu.Lock()
	if epoch != t.epoch {
		t.mu.Unlock()
		log.Debugf("%s fault on a closed connection: %v", op, err)
		return
	}
	halted := t.halt
	next := StateFaulted
	if halted {
		next = StateDisconnected
	}
	t.teardownLocked(next)
	st := t.statusLocked()
	t.mu.Unlock()
	t.notify(st)

	if halted {
		log.Debugf("%s stopped: %v", op, err)
		return
	}
	entry := t.logger().WithField("op", op)
	entry.Warnf("transport fault: %v", err)
	if len(raw) > 0 {
		entry.Warnf("offending datagram: %s", wire.Dump(raw))
	}
	t.stats.reconnects.Add(1)
	if err := t.Connect(); err != nil {
		entry.Errorf("reconnect failed: %v", err)
	}
}

// SendPacket frames p and sends it to the vehicle. Sends are
// serialized. A failed send restarts the transport like a receive
// fault does and is not reported to the caller.
func (t *Transceiver) SendPacket(p wire.Packet) {
	t.sendMu.Lock()
	defer t.sendMu.Unlock()

	buf := t.codec.Encode(p)
	log.Debugf("%s => %s", p, wire.Dump(buf))

	t.mu.Lock()
	send, remote, epoch := t.send, t.remote, t.epoch
	t.mu.Unlock()

	var err error
	if send == nil {
		err = errNotConnected
	} else {
		_, err = send.WriteToUDP(buf, remote)
	}
	if err != nil {
		t.stats.sendFaults.Add(1)
		t.fault("send", epoch, err, nil)
		return
	}
	t.stats.sends.Add(1)
}

// Send sends m as a single packet, see SendPacket
func (t *Transceiver) Send(m telemetry.Message) {
	t.SendPacket(telemetry.Packet(m))
}

// Run connects and runs the receive loop until ctx is done or the
// link is lost for good. It returns ctx.Err() after a cancellation,
// the Connect error if the first connection fails, and ErrHalted
// otherwise.
func (t *Transceiver) Run(ctx context.Context) error {
	if err := t.Connect(); err != nil {
		return err
	}
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			t.Halt()
		case <-done:
		}
	}()
	t.Receive()
	if err := ctx.Err(); err != nil {
		return err
	}
	return ErrHalted
}

// Connected reports whether the sockets are open
func (t *Transceiver) Connected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.connected
}

// Linked reports whether the last Connect succeeded
func (t *Transceiver) Linked() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.linked
}

// HaveTraffic reports whether a datagram arrived since the last
// (re)connect
func (t *Transceiver) HaveTraffic() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.haveTraffic
}

// Halted reports whether Halt was called or the receive loop ended
func (t *Transceiver) Halted() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.halt
}

// State returns the current transport state
func (t *Transceiver) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Status returns a snapshot of all session flags
func (t *Transceiver) Status() Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.statusLocked()
}

// LocalAddr returns the address of the receive socket, or nil while
// disconnected
func (t *Transceiver) LocalAddr() net.Addr {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.recv == nil {
		return nil
	}
	return t.recv.LocalAddr()
}

// LastReport returns a copy of the most recently received report,
// or nil if none arrived yet.
func (t *Transceiver) LastReport() *telemetry.Report {
	r := t.last.Load()
	if r == nil {
		return nil
	}
	return r.Copy()
}

// Stats returns the activity counters
func (t *Transceiver) Stats() Stats {
	return t.stats.snapshot()
}
