package transceiver

import "net"

// PacketConn is the subset of *net.UDPConn used by the transceiver.
// It exists so tests can substitute in-memory sockets.
type PacketConn interface {
	ReadFromUDP(b []byte) (n int, addr *net.UDPAddr, err error)
	WriteToUDP(b []byte, addr *net.UDPAddr) (int, error)
	LocalAddr() net.Addr
	Close() error
}

// SocketFactory opens datagram sockets. A nil laddr asks for an
// unbound socket on an ephemeral port.
type SocketFactory interface {
	ListenUDP(network string, laddr *net.UDPAddr) (PacketConn, error)
}

type udpSocketFactory struct{}

func (udpSocketFactory) ListenUDP(network string, laddr *net.UDPAddr) (PacketConn, error) {
	conn, err := net.ListenUDP(network, laddr)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// UDPSockets returns the SocketFactory backed by the OS network stack
func UDPSockets() SocketFactory {
	return udpSocketFactory{}
}
