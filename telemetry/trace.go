package telemetry

import "groundlink/wire"

// TraceDataSize is the encoded size of TraceData
const TraceDataSize = 26

// TraceData exposes the internals of the altitude controller for
// tuning sessions.
type TraceData struct {
	Z           int16 // from sonar
	FilteredZ   int16 // median filtered
	EstimatedZ  int16 // kalman estimate
	EstimatedDZ int16
	DDZ         int16 // from the IMU
	FilteredDDZ int16 // low pass filtered
	PTerm       int16
	ITerm       int16
	DTerm       int16
	DDTerm      int16
	UZ          int16 // controller output
	CmdZ        int16 // z command from the ground station
	ID          int16
}

func (d *TraceData) PacketType() wire.PacketType { return wire.TypeTraceData }
func (d *TraceData) Size() int                   { return TraceDataSize }

func (d *TraceData) fields() []*int16 {
	return []*int16{
		&d.Z, &d.FilteredZ, &d.EstimatedZ, &d.EstimatedDZ,
		&d.DDZ, &d.FilteredDDZ,
		&d.PTerm, &d.ITerm, &d.DTerm, &d.DDTerm,
		&d.UZ, &d.CmdZ, &d.ID,
	}
}

func (d *TraceData) Encode() []byte {
	b := make([]byte, TraceDataSize)
	off := 0
	for _, f := range d.fields() {
		off = putInt16(b, off, *f)
	}
	return b
}

func (d *TraceData) decode(b []byte) error {
	if err := checkSize("trace data", b, TraceDataSize); err != nil {
		return err
	}
	off := 0
	for _, f := range d.fields() {
		*f, off = getInt16(b, off)
	}
	return nil
}
