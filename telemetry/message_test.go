package telemetry

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"groundlink/wire"
)

func TestMessageRoundTrip(t *testing.T) {
	rp, err := NewCtrlParams(wire.TypeAltParams, 10, 2, -30, 4)
	require.NoError(t, err)
	messages := []Message{
		sampleReport(),
		&sampleReport().SensorData,
		&MotorSignals{Front: 1, Right: 2, Rear: 3, Left: 4},
		&MotorOffsets{Roll: -1, Pitch: -2, Yaw: -3, Z: -4},
		&StateAndMode{ControlState: 2, AltMode: AltModeShutdown},
		&TraceData{Z: 1, FilteredZ: 2, EstimatedZ: 3, EstimatedDZ: 4, DDZ: 5, FilteredDDZ: 6,
			PTerm: 7, ITerm: 8, DTerm: 9, DDTerm: 10, UZ: 11, CmdZ: 12, ID: 13},
		&CommandData{Roll: 100, Pitch: -100, Yaw: 50, Z: 800},
		rp,
		&IdleLimit{Speed: 250},
		&TestMode{Enabled: true},
		&SwitchMode{},
		&ShutDown{},
	}
	codec := wire.NewCodec(wire.ChecksumSum16)
	for _, m := range messages {
		t.Run(m.PacketType().String(), func(t *testing.T) {
			assert.Len(t, m.Encode(), m.Size())
			buf := codec.Encode(Packet(m))
			p, err := codec.Decode(buf, m.PacketType(), m.Size())
			require.NoError(t, err)
			got, err := Decode(p)
			require.NoError(t, err)
			if diff := cmp.Diff(m, got); diff != "" {
				t.Fatalf("(-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecodeUnknownType(t *testing.T) {
	p := &wire.Packet{Type: wire.PacketType(0x7e), Size: 3, Payload: []byte{1, 2, 3}}
	msg, err := Decode(p)
	require.NoError(t, err)
	raw, ok := msg.(*RawMessage)
	require.True(t, ok)
	assert.Equal(t, []byte{1, 2, 3}, raw.Payload)
	assert.Equal(t, wire.PacketType(0x7e), raw.PacketType())
}

func TestDecodeTruncatedMessage(t *testing.T) {
	p := &wire.Packet{Type: wire.TypeTraceData, Size: 4, Payload: []byte{1, 2, 3, 4}}
	_, err := Decode(p)
	var tre *TruncatedRecordError
	require.True(t, errors.As(err, &tre))
	assert.Equal(t, TraceDataSize, tre.Want)

	_, err = Decode(nil)
	assert.Error(t, err)
}

func TestNewCtrlParamsRejectsOtherTypes(t *testing.T) {
	_, err := NewCtrlParams(wire.TypeGroundReport, 1, 1, 1, 1)
	assert.Error(t, err)
	for _, loop := range []wire.PacketType{wire.TypeRollPitchParams, wire.TypeYawParams, wire.TypeAltParams, wire.TypeXYParams} {
		p, err := NewCtrlParams(loop, 1, 2, 3, 4)
		require.NoError(t, err)
		assert.Equal(t, loop, p.PacketType())
	}
}
