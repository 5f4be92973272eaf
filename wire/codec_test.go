package wire

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allKinds = []ChecksumKind{ChecksumSum16, ChecksumCRC8, ChecksumXOR8}

func testPayload(n int) []byte {
	p := make([]byte, n)
	for ii := range p {
		p[ii] = byte(ii*7 + 3)
	}
	return p
}

func TestEncodeLayout(t *testing.T) {
	c := NewCodec(ChecksumSum16)
	buf := c.Encode(NewPacket(TypeIdleLimit, []byte{0x01, 0x02}))
	// type, length, payload, sum of all previous bytes
	assert.Equal(t, []byte{0x0c, 0x00, 0x02, 0x01, 0x02, 0x00, 0x11}, buf)
	assert.Equal(t, 7, c.FrameSize(2))
}

func TestEncodeNilPayload(t *testing.T) {
	for _, k := range allKinds {
		c := NewCodec(k)
		buf := c.Encode(Packet{Type: TypeGroundReport, Size: 5})
		require.Len(t, buf, c.FrameSize(5), k.String())
		assert.Equal(t, make([]byte, 5), buf[PayloadOffset:PayloadOffset+5])
		p, err := c.Decode(buf, TypeGroundReport, 5)
		require.NoError(t, err)
		assert.Equal(t, make([]byte, 5), p.Payload)
	}
}

func TestEncodeWidensShortSize(t *testing.T) {
	c := NewCodec(0)
	buf := c.Encode(Packet{Type: TypeTestMode, Size: 1, Payload: []byte{1, 2, 3}})
	p, err := c.Parse(buf)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, p.Payload)
}

func TestEncodeOversizedPayload(t *testing.T) {
	for _, k := range allKinds {
		c := NewCodec(k)
		buf := c.Encode(Packet{Type: TypeTraceData, Size: 0x10000 + 4})
		require.Len(t, buf, c.FrameSize(MaxPayloadSize), k.String())
		p, err := c.Parse(buf)
		require.NoError(t, err, k.String())
		assert.Equal(t, MaxPayloadSize, p.Size)
	}
}

func TestRoundTrip(t *testing.T) {
	for _, k := range allKinds {
		c := NewCodec(k)
		payload := testPayload(50)
		buf := c.Encode(NewPacket(TypeGroundReport, payload))
		p, err := c.Decode(buf, TypeGroundReport, len(payload))
		require.NoError(t, err, k.String())
		assert.Equal(t, TypeGroundReport, p.Type)
		assert.Equal(t, payload, p.Payload)

		parsed, err := c.Parse(buf)
		require.NoError(t, err)
		assert.Equal(t, p, parsed)
	}
}

func TestDecodeReturnsCopy(t *testing.T) {
	c := NewCodec(0)
	buf := c.Encode(NewPacket(TypeTestMode, []byte{1}))
	p, err := c.Decode(buf, TypeTestMode, 1)
	require.NoError(t, err)
	buf[PayloadOffset] = 9
	assert.Equal(t, byte(1), p.Payload[0])
}

func TestChecksumSensitivity(t *testing.T) {
	for _, k := range allKinds {
		c := NewCodec(k)
		buf := c.Encode(NewPacket(TypeGroundReport, testPayload(50)))
		for ii := range buf {
			for _, mask := range []byte{0x01, 0x10, 0x80, 0xff} {
				corrupt := append([]byte(nil), buf...)
				corrupt[ii] ^= mask
				_, err := c.Decode(corrupt, TypeGroundReport, 50)
				if err == nil {
					t.Fatalf("%s: flipping byte %d with 0x%02x was not detected", k, ii, mask)
				}
				var mfe *MalformedFrameError
				assert.True(t, errors.As(err, &mfe))
			}
		}
	}
}

func TestLengthEnforcement(t *testing.T) {
	c := NewCodec(ChecksumSum16)
	buf := c.Encode(NewPacket(TypeGroundReport, testPayload(50)))
	for n := 0; n <= len(buf)+4; n++ {
		if n == len(buf) {
			continue
		}
		in := make([]byte, n)
		copy(in, buf)
		_, err := c.Decode(in, TypeGroundReport, 50)
		require.Error(t, err, "size %d", n)
		assert.True(t, errors.Is(err, ErrFrameSize), "size %d: %v", n, err)
	}
}

func TestTypeEnforcement(t *testing.T) {
	c := NewCodec(ChecksumSum16)
	buf := c.Encode(NewPacket(TypeTraceData, testPayload(50)))
	_, err := c.Decode(buf, TypeGroundReport, 50)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFrameType))

	var mfe *MalformedFrameError
	require.True(t, errors.As(err, &mfe))
	assert.Equal(t, buf, mfe.Raw)
}

func TestDeclaredLengthEnforcement(t *testing.T) {
	c := NewCodec(ChecksumSum16)
	// A 4 byte payload framed with a 6 byte region: right overall
	// size for a 6 byte listener, wrong declared length.
	buf := c.Encode(Packet{Type: TypeGroundReport, Size: 6, Payload: testPayload(6)})
	buf[LengthOffset+1] = 4
	c.seal(buf)
	_, err := c.Decode(buf, TypeGroundReport, 6)
	assert.True(t, errors.Is(err, ErrFrameLength), "%v", err)
}

func TestParseRejectsOversizedLength(t *testing.T) {
	c := NewCodec(ChecksumXOR8)
	buf := []byte{byte(TypeGroundReport), 0xff, 0xff, 0x00}
	_, err := c.Parse(buf)
	assert.True(t, errors.Is(err, ErrFrameLength))

	_, err = c.Parse([]byte{1})
	assert.True(t, errors.Is(err, ErrFrameSize))
}

func TestParseChecksumKind(t *testing.T) {
	for _, k := range allKinds {
		parsed, err := ParseChecksumKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, parsed)
	}
	def, err := ParseChecksumKind("")
	require.NoError(t, err)
	assert.Equal(t, ChecksumSum16, def)

	_, err = ParseChecksumKind("md5")
	assert.Error(t, err)
}

func TestOverhead(t *testing.T) {
	assert.Equal(t, 5, NewCodec(ChecksumSum16).Overhead())
	assert.Equal(t, 4, NewCodec(ChecksumCRC8).Overhead())
	assert.Equal(t, 4, NewCodec(ChecksumXOR8).Overhead())
	assert.Equal(t, ChecksumSum16, NewCodec(0).Checksum())
}
