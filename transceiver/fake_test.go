package transceiver

import (
	"errors"
	"net"
	"sync"
)

var errInjected = errors.New("injected failure")

// fakeNet is an in-memory SocketFactory. Every receive socket reads
// from the same inbox, so datagrams queued before a reconnect are
// read by the replacement socket.
type fakeNet struct {
	inbox chan []byte

	mu         sync.Mutex
	sent       [][]byte
	listens    int
	opened     []*fakeConn
	failListen bool
	failWrites int
	nextPort   int
	binds      []int
}

func newFakeNet() *fakeNet {
	return &fakeNet{
		inbox:    make(chan []byte, 64),
		nextPort: 40000,
	}
}

func (n *fakeNet) ListenUDP(network string, laddr *net.UDPAddr) (PacketConn, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if laddr != nil {
		if n.failListen {
			return nil, errInjected
		}
		n.listens++
		n.binds = append(n.binds, laddr.Port)
	}
	port := 0
	if laddr != nil {
		port = laddr.Port
	}
	if port == 0 {
		n.nextPort++
		port = n.nextPort
	}
	c := &fakeConn{
		net:    n,
		closed: make(chan struct{}),
		local:  &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: port},
	}
	n.opened = append(n.opened, c)
	return c, nil
}

func (n *fakeNet) deliver(b []byte) {
	n.inbox <- b
}

func (n *fakeNet) setFailListen(v bool) {
	n.mu.Lock()
	n.failListen = v
	n.mu.Unlock()
}

func (n *fakeNet) setFailWrites(count int) {
	n.mu.Lock()
	n.failWrites = count
	n.mu.Unlock()
}

func (n *fakeNet) listenCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.listens
}

func (n *fakeNet) boundPorts() []int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]int(nil), n.binds...)
}

func (n *fakeNet) sentFrames() [][]byte {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([][]byte(nil), n.sent...)
}

func (n *fakeNet) openSockets() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	count := 0
	for _, c := range n.opened {
		if !c.isClosed() {
			count++
		}
	}
	return count
}

type fakeConn struct {
	net    *fakeNet
	local  *net.UDPAddr
	closed chan struct{}
	once   sync.Once
}

func (c *fakeConn) isClosed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}

func (c *fakeConn) ReadFromUDP(b []byte) (int, *net.UDPAddr, error) {
	if c.isClosed() {
		return 0, nil, net.ErrClosed
	}
	select {
	case d := <-c.net.inbox:
		n := copy(b, d)
		return n, &net.UDPAddr{IP: net.IPv4(10, 0, 0, 2), Port: 5000}, nil
	case <-c.closed:
		return 0, nil, net.ErrClosed
	}
}

func (c *fakeConn) WriteToUDP(b []byte, addr *net.UDPAddr) (int, error) {
	if c.isClosed() {
		return 0, net.ErrClosed
	}
	c.net.mu.Lock()
	defer c.net.mu.Unlock()
	if c.net.failWrites > 0 {
		c.net.failWrites--
		return 0, errInjected
	}
	c.net.sent = append(c.net.sent, append([]byte(nil), b...))
	return len(b), nil
}

func (c *fakeConn) LocalAddr() net.Addr {
	return c.local
}

func (c *fakeConn) Close() error {
	c.once.Do(func() { close(c.closed) })
	return nil
}
