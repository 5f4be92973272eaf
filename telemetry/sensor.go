package telemetry

import "groundlink/wire"

// SensorDataSize is the encoded size of SensorData
const SensorDataSize = 32

// SensorData holds the attitude, rate, position and battery
// readings reported by the vehicle. Angles are in mrad, rates in
// mrad/s, distances in mm and the battery in mV.
type SensorData struct {
	Roll    int16
	Pitch   int16
	Yaw     int16
	DRoll   int16
	DPitch  int16
	DYaw    int16
	DDX     int16
	DDY     int16
	DDZ     int16
	X       int16
	Y       int16
	Z       int16
	DX      int16
	DY      int16
	DZ      int16
	Battery uint16
}

func (s *SensorData) PacketType() wire.PacketType { return wire.TypeSensorData }
func (s *SensorData) Size() int                   { return SensorDataSize }

func (s *SensorData) Encode() []byte {
	b := make([]byte, SensorDataSize)
	s.encode(b)
	return b
}

func (s *SensorData) encode(b []byte) {
	off := 0
	off = putInt16(b, off, s.Roll)
	off = putInt16(b, off, s.Pitch)
	off = putInt16(b, off, s.Yaw)
	off = putInt16(b, off, s.DRoll)
	off = putInt16(b, off, s.DPitch)
	off = putInt16(b, off, s.DYaw)
	off = putInt16(b, off, s.DDX)
	off = putInt16(b, off, s.DDY)
	off = putInt16(b, off, s.DDZ)
	off = putInt16(b, off, s.X)
	off = putInt16(b, off, s.Y)
	off = putInt16(b, off, s.Z)
	off = putInt16(b, off, s.DX)
	off = putInt16(b, off, s.DY)
	off = putInt16(b, off, s.DZ)
	putUint16(b, off, s.Battery)
}

func (s *SensorData) decode(b []byte) error {
	if err := checkSize("sensor data", b, SensorDataSize); err != nil {
		return err
	}
	off := 0
	s.Roll, off = getInt16(b, off)
	s.Pitch, off = getInt16(b, off)
	s.Yaw, off = getInt16(b, off)
	s.DRoll, off = getInt16(b, off)
	s.DPitch, off = getInt16(b, off)
	s.DYaw, off = getInt16(b, off)
	s.DDX, off = getInt16(b, off)
	s.DDY, off = getInt16(b, off)
	s.DDZ, off = getInt16(b, off)
	s.X, off = getInt16(b, off)
	s.Y, off = getInt16(b, off)
	s.Z, off = getInt16(b, off)
	s.DX, off = getInt16(b, off)
	s.DY, off = getInt16(b, off)
	s.DZ, off = getInt16(b, off)
	s.Battery, _ = getUint16(b, off)
	return nil
}

// Reset zeroes every reading
func (s *SensorData) Reset() {
	*s = SensorData{}
}
