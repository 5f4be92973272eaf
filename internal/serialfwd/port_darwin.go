package serialfwd

import (
	"strings"
)

const (
	darwinPortPrefix = "/dev/cu."
)

var (
	darwinPortSkip = []string{"AirPod", "iPhone", "iPad", "Bluetooth-Incoming-Port"}
)

// portName expands the short names returned by AvailablePorts
func portName(port string) string {
	if strings.HasPrefix(port, "/") {
		return port
	}
	return darwinPortPrefix + port
}

// listedPort keeps call-out devices that aren't phones or headsets
func listedPort(port string) (string, bool) {
	name, ok := strings.CutPrefix(port, darwinPortPrefix)
	if !ok {
		return "", false
	}
	for _, s := range darwinPortSkip {
		if strings.Contains(name, s) {
			return "", false
		}
	}
	return name, true
}
