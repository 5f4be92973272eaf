package wire

import (
	"encoding/binary"
	"encoding/hex"

	log "github.com/sirupsen/logrus"
)

// Codec frames and validates packets with a fixed checksum kind.
// A Codec holds no mutable state and is safe for concurrent use.
type Codec struct {
	kind ChecksumKind
}

// NewCodec returns a Codec using the given checksum. A zero kind
// selects ChecksumSum16.
func NewCodec(kind ChecksumKind) *Codec {
	if kind == 0 {
		kind = ChecksumSum16
	}
	return &Codec{kind: kind}
}

// Checksum returns the checksum kind used by the codec
func (c *Codec) Checksum() ChecksumKind {
	return c.kind
}

// Overhead returns the number of framing bytes added to a payload
func (c *Codec) Overhead() int {
	return HeaderSize + c.kind.Size()
}

// FrameSize returns the total encoded size of a payload of the given size
func (c *Codec) FrameSize(payloadSize int) int {
	return payloadSize + c.Overhead()
}

// Encode frames p. The payload region is p.Size bytes long; a short
// or nil payload leaves the remainder zeroed and a longer payload
// widens the region. Payloads above MaxPayloadSize are cut to it
// so the length field always matches the frame.
func (c *Codec) Encode(p Packet) []byte {
	size := p.Size
	if size < len(p.Payload) {
		size = len(p.Payload)
	}
	if size > MaxPayloadSize {
		log.Errorf("%s payload of %d bytes exceeds %d, truncating", p.Type, size, MaxPayloadSize)
		size = MaxPayloadSize
	}
	buf := make([]byte, c.FrameSize(size))
	buf[TypeOffset] = byte(p.Type)
	binary.BigEndian.PutUint16(buf[LengthOffset:], uint16(size))
	if p.Payload != nil {
		copy(buf[PayloadOffset:PayloadOffset+size], p.Payload)
	}
	c.seal(buf)
	return buf
}

func (c *Codec) seal(buf []byte) {
	n := len(buf) - c.kind.Size()
	cs := c.kind.new()
	checkSumWrite(cs, buf[:n])
	cs.Put(buf[n:])
}

func (c *Codec) checksOut(buf []byte) bool {
	n := len(buf) - c.kind.Size()
	cs := c.kind.new()
	checkSumWrite(cs, buf[:n])
	return cs.Matches(buf[n:])
}

// Decode validates buf as a single frame of type want carrying
// exactly size payload bytes. The returned payload is a copy.
func (c *Codec) Decode(buf []byte, want PacketType, size int) (*Packet, error) {
	if expected := c.FrameSize(size); len(buf) != expected {
		return nil, malformed(ErrFrameSize, buf, "got %d bytes, expecting %d", len(buf), expected)
	}
	if !c.checksOut(buf) {
		return nil, malformed(ErrChecksum, buf, "%s mismatch", c.kind)
	}
	if declared := int(binary.BigEndian.Uint16(buf[LengthOffset:])); declared != size {
		return nil, malformed(ErrFrameLength, buf, "declared %d, expecting %d", declared, size)
	}
	if t := PacketType(buf[TypeOffset]); t != want {
		return nil, malformed(ErrFrameType, buf, "got %s, expecting %s", t, want)
	}
	return c.extract(buf, size), nil
}

// Parse validates buf as a single frame of any type, trusting the
// declared length to size the payload.
func (c *Codec) Parse(buf []byte) (*Packet, error) {
	if len(buf) < c.Overhead() {
		return nil, malformed(ErrFrameSize, buf, "got %d bytes, header needs %d", len(buf), c.Overhead())
	}
	declared := int(binary.BigEndian.Uint16(buf[LengthOffset:]))
	if declared > MaxPayloadSize {
		return nil, malformed(ErrFrameLength, buf, "declared %d exceeds %d", declared, MaxPayloadSize)
	}
	if expected := c.FrameSize(declared); len(buf) != expected {
		return nil, malformed(ErrFrameSize, buf, "got %d bytes, declared frame is %d", len(buf), expected)
	}
	if !c.checksOut(buf) {
		return nil, malformed(ErrChecksum, buf, "%s mismatch", c.kind)
	}
	return c.extract(buf, declared), nil
}

func (c *Codec) extract(buf []byte, size int) *Packet {
	payload := make([]byte, size)
	copy(payload, buf[PayloadOffset:PayloadOffset+size])
	return &Packet{
		Type:    PacketType(buf[TypeOffset]),
		Size:    size,
		Payload: payload,
	}
}

// Dump renders buf for diagnostic logs
func Dump(buf []byte) string {
	return hex.EncodeToString(buf)
}
