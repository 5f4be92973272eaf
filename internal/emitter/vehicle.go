package emitter

import (
	"sync"

	log "github.com/sirupsen/logrus"

	"groundlink/telemetry"
	"groundlink/wire"
)

// Vehicle is a simulated quadrotor state driven by ground commands.
// It produces the reports an Emitter sends.
type Vehicle struct {
	mu        sync.Mutex
	report    telemetry.Report
	idle      int16
	testMode  bool
	params    map[wire.PacketType]telemetry.CtrlParams
	shutDowns int
}

// NewVehicle returns a vehicle on the ground with motors stopped
func NewVehicle() *Vehicle {
	v := &Vehicle{
		params: make(map[wire.PacketType]telemetry.CtrlParams),
	}
	v.report.Reset()
	return v
}

// Apply updates the vehicle with a ground command. Messages that
// aren't commands are ignored.
func (v *Vehicle) Apply(m telemetry.Message) {
	v.mu.Lock()
	defer v.mu.Unlock()
	switch c := m.(type) {
	case *telemetry.CommandData:
		v.report.MotorOffsets = telemetry.MotorOffsets{Roll: c.Roll, Pitch: c.Pitch, Yaw: c.Yaw, Z: c.Z}
	case *telemetry.CtrlParams:
		v.params[c.Loop] = *c
	case *telemetry.IdleLimit:
		v.idle = c.Speed
		if v.report.StateAndMode.AltMode != telemetry.AltModeShutdown {
			v.setMotors(c.Speed)
		}
	case *telemetry.TestMode:
		v.testMode = c.Enabled
	case *telemetry.SwitchMode:
		switch v.report.StateAndMode.AltMode {
		case telemetry.AltModeGround:
			v.report.StateAndMode.AltMode = telemetry.AltModeFlying
		case telemetry.AltModeFlying:
			v.report.StateAndMode.AltMode = telemetry.AltModeGround
		}
	case *telemetry.ShutDown:
		v.shutDowns++
		v.report.StateAndMode.AltMode = telemetry.AltModeShutdown
		v.setMotors(0)
	default:
		log.Debugf("vehicle ignores %s", m.PacketType())
	}
}

func (v *Vehicle) setMotors(speed int16) {
	v.report.MotorSignals = telemetry.MotorSignals{Front: speed, Right: speed, Rear: speed, Left: speed}
}

// Report returns a snapshot of the vehicle state
func (v *Vehicle) Report() *telemetry.Report {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.report.Copy()
}

// Update lets fn modify the simulated state, e.g. sensor readings
func (v *Vehicle) Update(fn func(r *telemetry.Report)) {
	v.mu.Lock()
	defer v.mu.Unlock()
	fn(&v.report)
}

// Params returns the last gains received for a controller loop
func (v *Vehicle) Params(loop wire.PacketType) (telemetry.CtrlParams, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	p, ok := v.params[loop]
	return p, ok
}

// IdleLimit returns the last idle speed received
func (v *Vehicle) IdleLimit() int16 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.idle
}

// TestMode reports whether the ground enabled motor test mode
func (v *Vehicle) TestMode() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.testMode
}

// ShutDowns returns the number of shut down commands received
func (v *Vehicle) ShutDowns() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.shutDowns
}
