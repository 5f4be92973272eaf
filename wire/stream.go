package wire

import (
	"bufio"
	"bytes"
	"fmt"
	"io"

	log "github.com/sirupsen/logrus"
)

type decoderState int

const (
	decoderStateType decoderState = iota
	decoderStateLengthHigh
	decoderStateLengthLow
	decoderStatePayload
	decoderStateChecksum
)

// StreamDecoder extracts frames from a byte stream such as a serial
// line, where datagram boundaries are not available. Bytes that can't
// start a frame are skipped and frames failing validation are dropped.
type StreamDecoder struct {
	codec   *Codec
	state   decoderState
	buf     bytes.Buffer
	size    int
	pending int
	dropped int
}

// NewStreamDecoder returns a decoder validating frames with c
func NewStreamDecoder(c *Codec) *StreamDecoder {
	return &StreamDecoder{codec: c}
}

// Dropped returns the number of frames discarded so far
func (d *StreamDecoder) Dropped() int {
	return d.dropped
}

func (d *StreamDecoder) reset() {
	d.state = decoderStateType
	d.buf.Reset()
	d.size = 0
	d.pending = 0
}

func knownType(c byte) bool {
	t := PacketType(c)
	return t >= TypeSensorData && t <= TypeShutDown
}

// Feed consumes one byte and returns a packet when it completes a
// valid frame.
func (d *StreamDecoder) Feed(c byte) *Packet {
	switch d.state {
	case decoderStateType:
		if !knownType(c) {
			log.Tracef("skipping byte 0x%02x outside a frame", c)
			break
		}
		d.buf.WriteByte(c)
		d.state = decoderStateLengthHigh
	case decoderStateLengthHigh:
		d.buf.WriteByte(c)
		d.size = int(c) << 8
		d.state = decoderStateLengthLow
	case decoderStateLengthLow:
		d.buf.WriteByte(c)
		d.size |= int(c)
		if d.size > MaxPayloadSize {
			log.Warnf("frame length %d exceeds %d, resyncing", d.size, MaxPayloadSize)
			d.dropped++
			d.reset()
			break
		}
		d.pending = d.codec.kind.Size()
		if d.size > 0 {
			d.state = decoderStatePayload
		} else {
			d.state = decoderStateChecksum
		}
	case decoderStatePayload:
		d.buf.WriteByte(c)
		if d.buf.Len() == HeaderSize+d.size {
			d.state = decoderStateChecksum
		}
	case decoderStateChecksum:
		d.buf.WriteByte(c)
		d.pending--
		if d.pending > 0 {
			break
		}
		p, err := d.codec.Parse(d.buf.Bytes())
		if err != nil {
			log.Warnf("dropping frame: %v", err)
			d.dropped++
		} else {
			log.Debugf("stream <= %s %s", p, Dump(p.Payload))
		}
		d.reset()
		return p
	default:
		panic(fmt.Errorf("invalid decoder state %d", d.state))
	}
	return nil
}

// Decode reads r until it fails, calling fn for every valid frame.
// It returns the read error, which is nil only if fn stops decoding
// by returning false.
func (d *StreamDecoder) Decode(r io.Reader, fn func(*Packet) bool) error {
	br := bufio.NewReader(r)
	for {
		c, err := br.ReadByte()
		if err != nil {
			return err
		}
		if p := d.Feed(c); p != nil {
			if !fn(p) {
				return nil
			}
		}
	}
}
