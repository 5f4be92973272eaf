package telemetry

import (
	"fmt"

	"groundlink/wire"
)

const (
	// CommandDataSize is the encoded size of CommandData
	CommandDataSize = 8
	// CtrlParamsSize is the encoded size of CtrlParams
	CtrlParamsSize = 8
	// IdleLimitSize is the encoded size of IdleLimit
	IdleLimitSize = 2
	// TestModeSize is the encoded size of TestMode
	TestModeSize = 1
)

// CommandData carries the setpoints sent from the ground station
type CommandData struct {
	Roll  int16
	Pitch int16
	Yaw   int16
	Z     int16
}

func (c *CommandData) PacketType() wire.PacketType { return wire.TypeCommandData }
func (c *CommandData) Size() int                   { return CommandDataSize }

func (c *CommandData) Encode() []byte {
	b := make([]byte, CommandDataSize)
	encodeAxes(b, c.Roll, c.Pitch, c.Yaw, c.Z)
	return b
}

func (c *CommandData) decode(b []byte) error {
	if err := checkSize("command data", b, CommandDataSize); err != nil {
		return err
	}
	c.Roll, c.Pitch, c.Yaw, c.Z = decodeAxes(b)
	return nil
}

// CtrlParams are the gains of one controller loop. Loop selects the
// loop through its packet type and must be one of TypeRollPitchParams,
// TypeYawParams, TypeAltParams or TypeXYParams.
type CtrlParams struct {
	Loop wire.PacketType
	Kp   int16
	Ki   int16
	Kd   int16
	Kdd  int16
}

// NewCtrlParams returns parameters for the given loop
func NewCtrlParams(loop wire.PacketType, kp, ki, kd, kdd int16) (*CtrlParams, error) {
	if !isParamsType(loop) {
		return nil, fmt.Errorf("%s is not a controller parameter type", loop)
	}
	return &CtrlParams{Loop: loop, Kp: kp, Ki: ki, Kd: kd, Kdd: kdd}, nil
}

func isParamsType(t wire.PacketType) bool {
	switch t {
	case wire.TypeRollPitchParams, wire.TypeYawParams, wire.TypeAltParams, wire.TypeXYParams:
		return true
	}
	return false
}

func (c *CtrlParams) PacketType() wire.PacketType { return c.Loop }
func (c *CtrlParams) Size() int                   { return CtrlParamsSize }

func (c *CtrlParams) Encode() []byte {
	b := make([]byte, CtrlParamsSize)
	encodeAxes(b, c.Kp, c.Ki, c.Kd, c.Kdd)
	return b
}

func (c *CtrlParams) decode(b []byte) error {
	if err := checkSize("controller parameters", b, CtrlParamsSize); err != nil {
		return err
	}
	c.Kp, c.Ki, c.Kd, c.Kdd = decodeAxes(b)
	return nil
}

// IdleLimit sets the base motor speed used while idling
type IdleLimit struct {
	Speed int16
}

func (m *IdleLimit) PacketType() wire.PacketType { return wire.TypeIdleLimit }
func (m *IdleLimit) Size() int                   { return IdleLimitSize }

func (m *IdleLimit) Encode() []byte {
	b := make([]byte, IdleLimitSize)
	putInt16(b, 0, m.Speed)
	return b
}

func (m *IdleLimit) decode(b []byte) error {
	if err := checkSize("idle limit", b, IdleLimitSize); err != nil {
		return err
	}
	m.Speed, _ = getInt16(b, 0)
	return nil
}

// TestMode toggles the vehicle test mode
type TestMode struct {
	Enabled bool
}

func (m *TestMode) PacketType() wire.PacketType { return wire.TypeTestMode }
func (m *TestMode) Size() int                   { return TestModeSize }

func (m *TestMode) Encode() []byte {
	if m.Enabled {
		return []byte{1}
	}
	return []byte{0}
}

func (m *TestMode) decode(b []byte) error {
	if err := checkSize("test mode", b, TestModeSize); err != nil {
		return err
	}
	m.Enabled = b[0] != 0
	return nil
}

// SwitchMode asks the vehicle to switch its altitude mode
type SwitchMode struct{}

func (m *SwitchMode) PacketType() wire.PacketType { return wire.TypeSwitchMode }
func (m *SwitchMode) Size() int                   { return 0 }
func (m *SwitchMode) Encode() []byte              { return nil }
func (m *SwitchMode) decode(b []byte) error       { return nil }

// ShutDown asks the vehicle to shut down its motors
type ShutDown struct{}

func (m *ShutDown) PacketType() wire.PacketType { return wire.TypeShutDown }
func (m *ShutDown) Size() int                   { return 0 }
func (m *ShutDown) Encode() []byte              { return nil }
func (m *ShutDown) decode(b []byte) error       { return nil }
