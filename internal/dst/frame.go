// Package dst reads distance from a Benewake TF-Luna (or TFmini) lidar over
// UART or I2C.
package dst

import (
	"bufio"
	"errors"
	"fmt"
	"io"
)

// FrameSize is the length of a UART measurement frame.
const FrameSize = 9

// frameHeader starts every UART frame, twice.
const frameHeader = 0x59

// Signal strength limits; outside them the distance is unreliable.
const (
	MinStrength       = 100
	SaturatedStrength = 65535
)

var (
	ErrShortFrame = errors.New("dst: short frame")
	ErrHeader     = errors.New("dst: bad frame header")
	ErrChecksum   = errors.New("dst: checksum mismatch")
)

// Reading is one distance measurement.
type Reading struct {
	Distance    float64 // cm
	Strength    int
	Temperature float64 // °C
}

// Valid reports whether the signal strength makes the distance trustworthy.
func (r Reading) Valid() bool {
	return r.Strength >= MinStrength && r.Strength != SaturatedStrength
}

// ParseFrame decodes a 9 byte UART frame:
// 0x59 0x59 DistL DistH StrL StrH TempL TempH Checksum.
func ParseFrame(b []byte) (Reading, error) {
	if len(b) < FrameSize {
		return Reading{}, ErrShortFrame
	}
	if b[0] != frameHeader || b[1] != frameHeader {
		return Reading{}, ErrHeader
	}
	if sum := checksum(b[:FrameSize-1]); sum != b[FrameSize-1] {
		return Reading{}, fmt.Errorf("%w: got 0x%02x, want 0x%02x", ErrChecksum, b[FrameSize-1], sum)
	}

	return Reading{
		Distance:    float64(le16(b[2:])),
		Strength:    int(le16(b[4:])),
		Temperature: float64(le16(b[6:]))/8 - 256,
	}, nil
}

func checksum(b []byte) byte {
	var sum byte
	for _, c := range b {
		sum += c
	}
	return sum
}

func le16(b []byte) uint16 {
	return uint16(b[0]) | uint16(b[1])<<8
}

// Scanner extracts frames from a byte stream, resynchronising on the header
// after garbage or a corrupt frame.
type Scanner struct {
	r   *bufio.Reader
	buf [FrameSize]byte
	n   int
}

// NewScanner creates a scanner reading from r.
func NewScanner(r io.Reader) *Scanner {
	return &Scanner{r: bufio.NewReader(r)}
}

// Next returns the next well-formed frame. It returns the reader's error,
// e.g. io.EOF, when the stream ends.
func (s *Scanner) Next() (Reading, error) {
	for {
		for s.n < FrameSize {
			c, err := s.r.ReadByte()
			if err != nil {
				return Reading{}, err
			}
			s.buf[s.n] = c
			s.n++
			s.align()
		}

		reading, err := ParseFrame(s.buf[:])
		if err == nil {
			s.n = 0
			return reading, nil
		}
		// the header may have been payload; rescan from the next byte
		s.drop()
		s.align()
	}
}

// align drops leading bytes until the window starts with a header.
func (s *Scanner) align() {
	for s.n > 0 {
		if s.buf[0] == frameHeader && (s.n < 2 || s.buf[1] == frameHeader) {
			return
		}
		s.drop()
	}
}

func (s *Scanner) drop() {
	copy(s.buf[:s.n-1], s.buf[1:s.n])
	s.n--
}
