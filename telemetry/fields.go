package telemetry

import "encoding/binary"

// All multi-byte fields are big endian, matching the flight side.

func putInt16(b []byte, off int, v int16) int {
	binary.BigEndian.PutUint16(b[off:], uint16(v))
	return off + 2
}

func getInt16(b []byte, off int) (int16, int) {
	return int16(binary.BigEndian.Uint16(b[off:])), off + 2
}

func putUint16(b []byte, off int, v uint16) int {
	binary.BigEndian.PutUint16(b[off:], v)
	return off + 2
}

func getUint16(b []byte, off int) (uint16, int) {
	return binary.BigEndian.Uint16(b[off:]), off + 2
}
