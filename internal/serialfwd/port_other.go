//go:build !darwin

package serialfwd

import (
	"strings"
)

// on-board UARTs enumerate whether or not anything is attached
const linuxBuiltinPrefix = "/dev/ttyS"

func portName(port string) string {
	return port
}

func listedPort(port string) (string, bool) {
	if strings.HasPrefix(port, linuxBuiltinPrefix) {
		return "", false
	}
	return port, true
}
