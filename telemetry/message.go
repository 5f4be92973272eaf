package telemetry

import (
	"fmt"

	"groundlink/wire"
)

// Message is a fixed layout record that travels as one frame payload
type Message interface {
	PacketType() wire.PacketType
	Size() int
	Encode() []byte
}

type decodable interface {
	Message
	decode(payload []byte) error
}

var (
	_ decodable = (*Report)(nil)
	_ decodable = (*SensorData)(nil)
	_ decodable = (*MotorSignals)(nil)
	_ decodable = (*MotorOffsets)(nil)
	_ decodable = (*StateAndMode)(nil)
	_ decodable = (*TraceData)(nil)
	_ decodable = (*CommandData)(nil)
	_ decodable = (*CtrlParams)(nil)
	_ decodable = (*IdleLimit)(nil)
	_ decodable = (*TestMode)(nil)
	_ decodable = (*SwitchMode)(nil)
	_ decodable = (*ShutDown)(nil)
	_ decodable = (*RawMessage)(nil)
)

// RawMessage is a payload of a type this package doesn't know
type RawMessage struct {
	Type    wire.PacketType
	Payload []byte
}

func (m *RawMessage) PacketType() wire.PacketType { return m.Type }
func (m *RawMessage) Size() int                   { return len(m.Payload) }
func (m *RawMessage) Encode() []byte              { return m.Payload }
func (m *RawMessage) decode(payload []byte) error {
	m.Payload = make([]byte, len(payload))
	copy(m.Payload, payload)
	return nil
}

// Packet returns the wire packet carrying m
func Packet(m Message) wire.Packet {
	return wire.Packet{
		Type:    m.PacketType(),
		Size:    m.Size(),
		Payload: m.Encode(),
	}
}

func getMessage(t wire.PacketType) decodable {
	switch t {
	case wire.TypeGroundReport:
		return &Report{}
	case wire.TypeSensorData:
		return &SensorData{}
	case wire.TypeMotorSignals:
		return &MotorSignals{}
	case wire.TypeMotorOffsets:
		return &MotorOffsets{}
	case wire.TypeStateMode:
		return &StateAndMode{}
	case wire.TypeTraceData:
		return &TraceData{}
	case wire.TypeCommandData:
		return &CommandData{}
	case wire.TypeRollPitchParams, wire.TypeYawParams, wire.TypeAltParams, wire.TypeXYParams:
		return &CtrlParams{Loop: t}
	case wire.TypeIdleLimit:
		return &IdleLimit{}
	case wire.TypeTestMode:
		return &TestMode{}
	case wire.TypeSwitchMode:
		return &SwitchMode{}
	case wire.TypeShutDown:
		return &ShutDown{}
	}
	return &RawMessage{Type: t}
}

// Decode returns the message carried by p. Unknown types decode
// to a *RawMessage.
func Decode(p *wire.Packet) (Message, error) {
	if p == nil {
		return nil, fmt.Errorf("nil packet")
	}
	msg := getMessage(p.Type)
	if err := msg.decode(p.Payload); err != nil {
		return nil, fmt.Errorf("error decoding %s: %w", p.Type, err)
	}
	return msg, nil
}
