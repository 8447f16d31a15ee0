// Package ccdframe recovers validated TCD1304 readout frames from the raw byte stream the
// acquisition firmware writes to its USB CDC link.
//
// Wire layout, all integers little-endian:
//
//	0       4     "FRME"
//	4       2     sequence counter
//	6       2     declared sample count (must equal N)
//	8       2N    samples
//	8+2N    4     "ENDF"
//	12+2N   2     CRC-16/CCITT-FALSE over bytes [0, 12+2N)
package ccdframe

import (
	"errors"
	"fmt"
)

const (
	// From ccd_data_layer.h
	DefaultSampleCount    = 3694 // D0-D31 + S1-S3648 + D32-D45
	DefaultRetentionBound = 20000
	DefaultSampleMax      = 4095 // 12-bit ADC

	MarkerLength = 4
	HeaderSize   = MarkerLength + 2 + 2 // marker + sequence + declared count
	FooterSize   = MarkerLength + 2     // marker + checksum
	Overhead     = HeaderSize + FooterSize
)

var (
	StartMarker = []byte("FRME")
	EndMarker   = []byte("ENDF")
)

var (
	ErrInvalidConfig = errors.New("ccdframe: invalid config")
	ErrDeclaredCount = errors.New("ccdframe: declared sample count mismatch")
	ErrEndMarker     = errors.New("ccdframe: end marker not found")
	ErrChecksum      = errors.New("ccdframe: checksum mismatch")
)

// Config fixes the frame geometry for one instrument configuration.
type Config struct {
	SampleCount    int // N
	RetentionBound int // B
	SampleMin      uint16
	SampleMax      uint16
}

func DefaultConfig() Config {
	return Config{
		SampleCount:    DefaultSampleCount,
		RetentionBound: DefaultRetentionBound,
		SampleMin:      0,
		SampleMax:      DefaultSampleMax,
	}
}

// FrameSize is the total wire length of one frame: 14 + 2N.
func (c Config) FrameSize() int {
	return Overhead + 2*c.SampleCount
}

func (c Config) endMarkerOffset() int {
	return HeaderSize + 2*c.SampleCount
}

func (c Config) Validate() error {
	if c.SampleCount < 1 || c.SampleCount > 0xFFFF {
		return fmt.Errorf("%w: sample count %d outside 1..65535", ErrInvalidConfig, c.SampleCount)
	}
	if c.RetentionBound < MarkerLength {
		return fmt.Errorf("%w: retention bound %d smaller than marker length", ErrInvalidConfig, c.RetentionBound)
	}
	if c.SampleMin > c.SampleMax {
		return fmt.Errorf("%w: sample range %d..%d is empty", ErrInvalidConfig, c.SampleMin, c.SampleMax)
	}
	return nil
}

// Event is either a Frame or a Rejection.
type Event interface {
	StreamOffset() uint64
}

// Frame is one validated readout. Samples is owned by the receiver.
type Frame struct {
	Offset     uint64
	Sequence   uint16
	Samples    []uint16
	Checksum   uint16
	OutOfRange int // samples outside [SampleMin, SampleMax]
	Missed     int // source frames lost since the previous valid frame
}

func (f Frame) StreamOffset() uint64 { return f.Offset }

type Reason int

const (
	ReasonStructural Reason = iota + 1
	ReasonChecksum
)

func (r Reason) String() string {
	switch r {
	case ReasonStructural:
		return "structural"
	case ReasonChecksum:
		return "checksum"
	default:
		return fmt.Sprintf("Reason(%d)", int(r))
	}
}

// Rejection reports a candidate that failed validation and how many bytes were skipped for it.
type Rejection struct {
	Offset   uint64
	Reason   Reason
	Err      error
	Consumed int
}

func (r Rejection) StreamOffset() uint64 { return r.Offset }

func (r Rejection) Error() string {
	return fmt.Sprintf("rejected %s candidate at offset %d: %v", r.Reason, r.Offset, r.Err)
}

func (r Rejection) Unwrap() error { return r.Err }
