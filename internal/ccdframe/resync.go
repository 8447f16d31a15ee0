package ccdframe

// advance returns how many bytes to consume, starting at the candidate's start marker, once the
// candidate has been classified.
//
// A structural mismatch may be a coincidental "FRME" inside sample data, so only the marker width
// is skipped and a genuine marker overlapping the rejected range is still found. A checksum
// mismatch means both markers and the declared count were right: one real frame was damaged in
// transit and its full width is dropped so the same bytes are not validated again.
func advance(o outcome, frameSize int) int {
	switch o {
	case outcomeStructural:
		return MarkerLength
	default:
		return frameSize
	}
}
