package wire

import (
	"errors"
	"fmt"
)

var (
	// ErrFrameSize is returned when the received byte count differs
	// from the frame size expected by the listener
	ErrFrameSize = errors.New("wrong frame size")
	// ErrChecksum is returned when the trailing checksum does not match
	ErrChecksum = errors.New("corrupt frame")
	// ErrFrameLength is returned when the declared payload length does
	// not match the payload region
	ErrFrameLength = errors.New("wrong payload length")
	// ErrFrameType is returned for a valid frame of an unexpected type
	ErrFrameType = errors.New("unexpected packet type")
)

// MalformedFrameError describes a received buffer that failed
// validation. Raw holds the offending bytes for diagnosis.
type MalformedFrameError struct {
	Err    error
	Detail string
	Raw    []byte
}

func (e *MalformedFrameError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("malformed frame: %v", e.Err)
	}
	return fmt.Sprintf("malformed frame: %v (%s)", e.Err, e.Detail)
}

func (e *MalformedFrameError) Unwrap() error {
	return e.Err
}

func malformed(err error, raw []byte, format string, args ...interface{}) *MalformedFrameError {
	cp := make([]byte, len(raw))
	copy(cp, raw)
	return &MalformedFrameError{
		Err:    err,
		Detail: fmt.Sprintf(format, args...),
		Raw:    cp,
	}
}
