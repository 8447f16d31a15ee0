package ccdframe

import "bytes"

type locateResult int

const (
	noCandidate locateResult = iota
	incomplete
	candidateFound
)

// locate finds the next candidate in buf. It keeps no state between calls so the buffer may
// grow or shrink arbitrarily in between.
//
// offset is the position of the first start marker. For candidateFound the bytes before it can
// never belong to a frame and the caller discards them; for incomplete nothing is consumed.
func locate(buf []byte, frameSize int) (res locateResult, offset int) {
	s := bytes.Index(buf, StartMarker)
	switch {
	case s < 0:
		return noCandidate, -1
	case len(buf) < s+frameSize:
		return incomplete, s
	default:
		return candidateFound, s
	}
}
