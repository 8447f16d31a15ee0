package ccdframe

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/sigurn/crc16"
)

// Poly 0x1021, init 0xFFFF, MSB first, no reflection, no final XOR. Matches the firmware's
// table-driven ccd_data_layer_calculate_crc16.
var crcTable = crc16.MakeTable(crc16.CRC16_CCITT_FALSE)

type outcome int

const (
	outcomeValid outcome = iota
	outcomeStructural
	outcomeChecksum
)

// Checksum computes the frame CRC over p.
func Checksum(p []byte) uint16 {
	return crc16.Checksum(p, crcTable)
}

// validate classifies a candidate of exactly FrameSize bytes that already starts with StartMarker.
// The returned error describes the mismatch and is nil for a valid candidate.
func validate(cfg Config, candidate []byte) (outcome, error) {
	declared := binary.LittleEndian.Uint16(candidate[6:8])
	if int(declared) != cfg.SampleCount {
		return outcomeStructural, fmt.Errorf("%w: declared %d, want %d", ErrDeclaredCount, declared, cfg.SampleCount)
	}

	end := cfg.endMarkerOffset()
	if !bytes.Equal(candidate[end:end+MarkerLength], EndMarker) {
		return outcomeStructural, fmt.Errorf("%w: got % x at offset %d", ErrEndMarker, candidate[end:end+MarkerLength], end)
	}

	crcEnd := len(candidate) - 2
	computed := Checksum(candidate[:crcEnd])
	declaredCRC := binary.LittleEndian.Uint16(candidate[crcEnd:])
	if computed != declaredCRC {
		return outcomeChecksum, fmt.Errorf("%w: declared 0x%04X, computed 0x%04X", ErrChecksum, declaredCRC, computed)
	}

	return outcomeValid, nil
}
