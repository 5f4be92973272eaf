package telemetry

import (
	"fmt"

	"groundlink/wire"
)

// StateAndModeSize is the encoded size of StateAndMode
const StateAndModeSize = 2

// ControlState is the controller state byte reported by the vehicle
type ControlState uint8

// AltMode is the altitude control mode. The zero value is not a
// valid mode.
type AltMode uint8

const (
	// AltModeGround is the mode a vehicle starts in. Reports default
	// to it so the ground side never assumes the vehicle is airborne.
	AltModeGround AltMode = iota + 1
	// AltModeFlying indicates the altitude controller is active
	AltModeFlying
	// AltModeShutdown indicates the vehicle is shutting down
	AltModeShutdown
)

func (m AltMode) String() string {
	switch m {
	case AltModeGround:
		return "ground"
	case AltModeFlying:
		return "flying"
	case AltModeShutdown:
		return "shutdown"
	}
	return fmt.Sprintf("unknown AltMode %d", uint8(m))
}

// StateAndMode carries the control state and altitude mode
type StateAndMode struct {
	ControlState ControlState
	AltMode      AltMode
}

func (s *StateAndMode) PacketType() wire.PacketType { return wire.TypeStateMode }
func (s *StateAndMode) Size() int                   { return StateAndModeSize }

func (s *StateAndMode) Encode() []byte {
	b := make([]byte, StateAndModeSize)
	s.encode(b)
	return b
}

func (s *StateAndMode) encode(b []byte) {
	b[0] = byte(s.ControlState)
	b[1] = byte(s.AltMode)
}

func (s *StateAndMode) decode(b []byte) error {
	if err := checkSize("state and mode", b, StateAndModeSize); err != nil {
		return err
	}
	s.ControlState = ControlState(b[0])
	s.AltMode = AltMode(b[1])
	return nil
}

// Reset restores control state 0 and AltModeGround
func (s *StateAndMode) Reset() {
	s.ControlState = 0
	s.AltMode = AltModeGround
}
