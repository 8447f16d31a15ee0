package command

// Scanner picks response lines out of the raw link stream. Binary frame bytes may precede a
// response on the same line, so each newline-terminated segment is searched for the first
// printable suffix that starts with a known response prefix.
type Scanner struct {
	pending []byte
}

// Feed consumes p and returns every complete response line found, without terminators.
func (s *Scanner) Feed(p []byte) []string {
	var lines []string
	for _, b := range p {
		if b != '\n' {
			s.pending = append(s.pending, b)
			if len(s.pending) > MaxResponseLength {
				s.pending = s.pending[len(s.pending)-MaxResponseLength:]
			}
			continue
		}

		if line, ok := extractResponse(s.pending); ok {
			lines = append(lines, line)
		}
		s.pending = s.pending[:0]
	}
	return lines
}

var prefixes = []string{ResponseOK, ResponseError, ResponseStatus}

func extractResponse(seg []byte) (string, bool) {
	for len(seg) > 0 && seg[len(seg)-1] == '\r' {
		seg = seg[:len(seg)-1]
	}

	// Only the printable tail of the segment can hold a response.
	start := len(seg)
	for start > 0 && seg[start-1] >= 0x20 && seg[start-1] <= 0x7E {
		start--
	}

	for i := start; i < len(seg); i++ {
		for _, p := range prefixes {
			if len(seg)-i >= len(p) && string(seg[i:i+len(p)]) == p {
				return string(seg[i:]), true
			}
		}
	}
	return "", false
}
