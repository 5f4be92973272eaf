package wire

import "fmt"

// PacketType identifies the logical meaning of a frame payload
type PacketType byte

const (
	TypeSensorData PacketType = iota + 1
	TypeMotorSignals
	TypeMotorOffsets
	TypeStateMode
	TypeGroundReport
	TypeTraceData
	TypeCommandData
	TypeRollPitchParams
	TypeYawParams
	TypeAltParams
	TypeXYParams
	TypeIdleLimit
	TypeTestMode
	TypeSwitchMode
	TypeShutDown
)

func (t PacketType) String() string {
	switch t {
	case TypeSensorData:
		return "SensorData"
	case TypeMotorSignals:
		return "MotorSignals"
	case TypeMotorOffsets:
		return "MotorOffsets"
	case TypeStateMode:
		return "StateMode"
	case TypeGroundReport:
		return "GroundReport"
	case TypeTraceData:
		return "TraceData"
	case TypeCommandData:
		return "CommandData"
	case TypeRollPitchParams:
		return "RollPitchParams"
	case TypeYawParams:
		return "YawParams"
	case TypeAltParams:
		return "AltParams"
	case TypeXYParams:
		return "XYParams"
	case TypeIdleLimit:
		return "IdleLimit"
	case TypeTestMode:
		return "TestMode"
	case TypeSwitchMode:
		return "SwitchMode"
	case TypeShutDown:
		return "ShutDown"
	}
	return fmt.Sprintf("unknown PacketType %d", byte(t))
}

const (
	// TypeOffset is the position of the type byte in a frame
	TypeOffset = 0
	// LengthOffset is the position of the 2 byte payload length
	LengthOffset = 1
	// PayloadOffset is the position of the first payload byte
	PayloadOffset = 3
	// HeaderSize is the number of bytes preceding the payload
	HeaderSize = PayloadOffset

	// MaxPayloadSize bounds the length field accepted by Parse
	// and the stream decoder. Reports are well below it.
	MaxPayloadSize = 1024
)

// Packet is a typed payload, either about to be framed or
// extracted from a validated frame. Size is the declared payload
// size; a nil Payload encodes as Size zero bytes.
type Packet struct {
	Type    PacketType
	Size    int
	Payload []byte
}

// NewPacket returns a Packet whose size is the payload length.
func NewPacket(t PacketType, payload []byte) Packet {
	return Packet{
		Type:    t,
		Size:    len(payload),
		Payload: payload,
	}
}

func (p Packet) String() string {
	return fmt.Sprintf("%s[%d]", p.Type, p.Size)
}
