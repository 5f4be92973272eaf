package serialfwd

import (
	"errors"
	"io"
	"net"
	"os"
	"strings"

	"go.bug.st/serial"
)

const (
	tcpPrefix = "tcp:"
)

type connection interface {
	io.Reader
	io.Writer
	io.Closer
}

// dial opens name as a serial port at baud 8N1, or as a TCP
// connection when it starts with tcp:
func dial(name string, baud int) (connection, error) {
	if addr, ok := strings.CutPrefix(name, tcpPrefix); ok {
		return net.Dial("tcp", addr)
	}
	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	return serial.Open(portName(name), mode)
}

var (
	// bench endpoints listed next to the serial ports
	tcpPorts = parseTCPPorts(os.Getenv("GROUNDLINK_TCP_PORTS"))
)

// AvailablePorts returns the serial ports that can carry the bridge
// followed by the TCP endpoints in GROUNDLINK_TCP_PORTS
func AvailablePorts() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		var pe *serial.PortError
		// Windows reports an error when there are no ports at all
		if errors.As(err, &pe) && pe.Code() == serial.ErrorEnumeratingPorts {
			return tcpPorts, nil
		}
		return nil, err
	}
	var available []string
	for _, p := range ports {
		if name, ok := listedPort(p); ok {
			available = append(available, name)
		}
	}
	return append(available, tcpPorts...), nil
}

func parseTCPPorts(env string) []string {
	var ports []string
	for _, v := range strings.Split(env, ",") {
		if v = strings.TrimSpace(v); v != "" {
			ports = append(ports, tcpPrefix+v)
		}
	}
	return ports
}
