package telemetry

import "groundlink/wire"

const (
	// MotorSignalsSize is the encoded size of MotorSignals
	MotorSignalsSize = 8
	// MotorOffsetsSize is the encoded size of MotorOffsets
	MotorOffsetsSize = 8
)

// MotorSignals are the commanded outputs of the four motors
type MotorSignals struct {
	Front int16
	Right int16
	Rear  int16
	Left  int16
}

func (m *MotorSignals) PacketType() wire.PacketType { return wire.TypeMotorSignals }
func (m *MotorSignals) Size() int                   { return MotorSignalsSize }

func (m *MotorSignals) Encode() []byte {
	b := make([]byte, MotorSignalsSize)
	m.encode(b)
	return b
}

func (m *MotorSignals) encode(b []byte) {
	off := putInt16(b, 0, m.Front)
	off = putInt16(b, off, m.Right)
	off = putInt16(b, off, m.Rear)
	putInt16(b, off, m.Left)
}

func (m *MotorSignals) decode(b []byte) error {
	if err := checkSize("motor signals", b, MotorSignalsSize); err != nil {
		return err
	}
	off := 0
	m.Front, off = getInt16(b, off)
	m.Right, off = getInt16(b, off)
	m.Rear, off = getInt16(b, off)
	m.Left, _ = getInt16(b, off)
	return nil
}

// Reset zeroes all signals
func (m *MotorSignals) Reset() {
	*m = MotorSignals{}
}

// MotorOffsets are the per-axis trim values applied on top of the
// controller output. They share the command data layout.
type MotorOffsets struct {
	Roll  int16
	Pitch int16
	Yaw   int16
	Z     int16
}

func (m *MotorOffsets) PacketType() wire.PacketType { return wire.TypeMotorOffsets }
func (m *MotorOffsets) Size() int                   { return MotorOffsetsSize }

func (m *MotorOffsets) Encode() []byte {
	b := make([]byte, MotorOffsetsSize)
	m.encode(b)
	return b
}

func (m *MotorOffsets) encode(b []byte) {
	encodeAxes(b, m.Roll, m.Pitch, m.Yaw, m.Z)
}

func (m *MotorOffsets) decode(b []byte) error {
	if err := checkSize("motor offsets", b, MotorOffsetsSize); err != nil {
		return err
	}
	m.Roll, m.Pitch, m.Yaw, m.Z = decodeAxes(b)
	return nil
}

// Reset zeroes all offsets
func (m *MotorOffsets) Reset() {
	*m = MotorOffsets{}
}

func encodeAxes(b []byte, roll, pitch, yaw, z int16) {
	off := putInt16(b, 0, roll)
	off = putInt16(b, off, pitch)
	off = putInt16(b, off, yaw)
	putInt16(b, off, z)
}

func decodeAxes(b []byte) (roll, pitch, yaw, z int16) {
	off := 0
	roll, off = getInt16(b, off)
	pitch, off = getInt16(b, off)
	yaw, off = getInt16(b, off)
	z, _ = getInt16(b, off)
	return
}
