package ccdframe

import "encoding/binary"

// Encode builds the wire form of a frame the way the acquisition firmware does, with the declared
// count set to len(samples) and a correct checksum.
func Encode(seq uint16, samples []uint16) []byte {
	n := len(samples)
	b := make([]byte, Overhead+2*n)

	copy(b[0:4], StartMarker)
	binary.LittleEndian.PutUint16(b[4:6], seq)
	binary.LittleEndian.PutUint16(b[6:8], uint16(n))
	for i, v := range samples {
		binary.LittleEndian.PutUint16(b[HeaderSize+2*i:], v)
	}

	end := HeaderSize + 2*n
	copy(b[end:end+MarkerLength], EndMarker)
	binary.LittleEndian.PutUint16(b[end+MarkerLength:], Checksum(b[:end+MarkerLength]))
	return b
}
