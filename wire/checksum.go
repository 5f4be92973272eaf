package wire

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/go-daq/crc8"
)

var (
	crc8D5Table = crc8.MakeTable(0xD5)

	_ checkSum = (*sum16Checksum)(nil)
	_ checkSum = (*crc8D5Checksum)(nil)
	_ checkSum = (*xorChecksum)(nil)
)

// ChecksumKind selects the integrity check appended to every frame.
// Both ends of a link must use the same kind.
type ChecksumKind int

const (
	// ChecksumSum16 is a 16 bit additive sum over header and payload,
	// stored big endian in 2 bytes.
	ChecksumSum16 ChecksumKind = iota + 1
	// ChecksumCRC8 is a CRC-8 with polynomial 0xD5 stored in 1 byte.
	ChecksumCRC8
	// ChecksumXOR8 xors every header and payload byte into 1 byte.
	ChecksumXOR8
)

func (k ChecksumKind) String() string {
	switch k {
	case ChecksumSum16:
		return "sum16"
	case ChecksumCRC8:
		return "crc8"
	case ChecksumXOR8:
		return "xor8"
	}
	return fmt.Sprintf("unknown ChecksumKind %d", int(k))
}

// Size returns the number of trailing bytes the checksum occupies.
func (k ChecksumKind) Size() int {
	if k == ChecksumSum16 {
		return 2
	}
	return 1
}

// ParseChecksumKind maps a config name to a ChecksumKind.
// The empty string selects ChecksumSum16.
func ParseChecksumKind(s string) (ChecksumKind, error) {
	switch strings.ToLower(s) {
	case "", "sum16":
		return ChecksumSum16, nil
	case "crc8":
		return ChecksumCRC8, nil
	case "xor8":
		return ChecksumXOR8, nil
	}
	return 0, fmt.Errorf("unknown checksum %q", s)
}

func (k ChecksumKind) new() checkSum {
	switch k {
	case ChecksumCRC8:
		return newCrc8D5Checksum()
	case ChecksumXOR8:
		return newXorChecksum()
	}
	return newSum16Checksum()
}

type checkSum interface {
	WriteByte(b byte) error
	// Put stores the checksum into b, which is exactly Size bytes
	Put(b []byte)
	// Matches reports whether the stored checksum in b agrees
	Matches(b []byte) bool
}

type sum16Checksum struct {
	sum uint16
}

func (c *sum16Checksum) WriteByte(b byte) error {
	c.sum += uint16(b)
	return nil
}

func (c *sum16Checksum) Put(b []byte) {
	binary.BigEndian.PutUint16(b, c.sum)
}

func (c *sum16Checksum) Matches(b []byte) bool {
	return binary.BigEndian.Uint16(b) == c.sum
}

func newSum16Checksum() checkSum {
	return &sum16Checksum{}
}

type crc8D5Checksum struct {
	crc crc8.Hash8
}

func (c *crc8D5Checksum) WriteByte(b byte) error {
	_, err := c.crc.Write([]byte{b})
	return err
}

func (c *crc8D5Checksum) Put(b []byte) {
	b[0] = c.crc.Sum8()
}

func (c *crc8D5Checksum) Matches(b []byte) bool {
	return b[0] == c.crc.Sum8()
}

func newCrc8D5Checksum() checkSum {
	return &crc8D5Checksum{
		crc: crc8.New(crc8D5Table),
	}
}

type xorChecksum struct {
	sum uint8
}

func (c *xorChecksum) WriteByte(b byte) error {
	c.sum ^= b
	return nil
}

func (c *xorChecksum) Put(b []byte) {
	b[0] = c.sum
}

func (c *xorChecksum) Matches(b []byte) bool {
	return b[0] == c.sum
}

func newXorChecksum() checkSum {
	return &xorChecksum{}
}

func checkSumWrite(cs checkSum, data []byte) error {
	for _, b := range data {
		if err := cs.WriteByte(b); err != nil {
			return err
		}
	}
	return nil
}
