package telemetry

import (
	"fmt"

	"groundlink/wire"
)

// ReportSize is the encoded size of a Report, the sum of its
// sub-records.
const ReportSize = SensorDataSize + MotorSignalsSize + MotorOffsetsSize + StateAndModeSize

// Report is the ground report periodically sent by the vehicle.
// Sub-records are encoded back to back in field order.
type Report struct {
	SensorData   SensorData
	MotorSignals MotorSignals
	MotorOffsets MotorOffsets
	StateAndMode StateAndMode
}

// NewReport returns a Report with every sub-record at its default
func NewReport() *Report {
	r := &Report{}
	r.Reset()
	return r
}

// DecodeReport decodes a ground report payload. Bytes past
// ReportSize are ignored.
func DecodeReport(payload []byte) (*Report, error) {
	r := &Report{}
	if err := r.decode(payload); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Report) PacketType() wire.PacketType { return wire.TypeGroundReport }
func (r *Report) Size() int                   { return ReportSize }

// Encode returns the ReportSize byte payload for r
func (r *Report) Encode() []byte {
	b := make([]byte, ReportSize)
	r.encode(b)
	return b
}

func (r *Report) encode(b []byte) {
	off := 0
	r.SensorData.encode(b[off:])
	off += SensorDataSize
	r.MotorSignals.encode(b[off:])
	off += MotorSignalsSize
	r.MotorOffsets.encode(b[off:])
	off += MotorOffsetsSize
	r.StateAndMode.encode(b[off:])
}

func (r *Report) decode(b []byte) error {
	if err := checkSize("ground report", b, ReportSize); err != nil {
		return err
	}
	off := 0
	r.SensorData.decode(b[off:])
	off += SensorDataSize
	r.MotorSignals.decode(b[off:])
	off += MotorSignalsSize
	r.MotorOffsets.decode(b[off:])
	off += MotorOffsetsSize
	return r.StateAndMode.decode(b[off:])
}

// Copy returns a duplicate of r sharing no state with it
func (r *Report) Copy() *Report {
	c := &Report{}
	c.SensorData = r.SensorData
	c.MotorSignals = r.MotorSignals
	c.MotorOffsets = r.MotorOffsets
	c.StateAndMode = r.StateAndMode
	return c
}

// Reset restores every sub-record to its default. Note that the
// altitude mode becomes AltModeGround, not zero.
func (r *Report) Reset() {
	r.SensorData.Reset()
	r.MotorSignals.Reset()
	r.MotorOffsets.Reset()
	r.StateAndMode.Reset()
}

// Equal reports whether every field of r and o matches
func (r *Report) Equal(o *Report) bool {
	if r == nil || o == nil {
		return r == o
	}
	return *r == *o
}

func (r *Report) String() string {
	return fmt.Sprintf("report{rpy=%d/%d/%d z=%d motors=%d/%d/%d/%d state=%d mode=%s}",
		r.SensorData.Roll, r.SensorData.Pitch, r.SensorData.Yaw, r.SensorData.Z,
		r.MotorSignals.Front, r.MotorSignals.Right, r.MotorSignals.Rear, r.MotorSignals.Left,
		r.StateAndMode.ControlState, r.StateAndMode.AltMode)
}
