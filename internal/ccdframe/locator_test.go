package ccdframe

import "testing"

func TestLocate(t *testing.T) {
	const frameSize = 10

	tests := []struct {
		name       string
		buf        string
		wantResult locateResult
		wantOffset int
	}{
		{name: "empty", buf: "", wantResult: noCandidate, wantOffset: -1},
		{name: "no marker", buf: "abcdefghijklmnop", wantResult: noCandidate, wantOffset: -1},
		{name: "partial marker", buf: "abcFRM", wantResult: noCandidate, wantOffset: -1},
		{name: "incomplete at start", buf: "FRME1234", wantResult: incomplete, wantOffset: 0},
		{name: "incomplete after noise", buf: "zzFRME123456", wantResult: incomplete, wantOffset: 2},
		{name: "exact candidate", buf: "FRME123456", wantResult: candidateFound, wantOffset: 0},
		{name: "candidate after noise", buf: "zzzFRME123456tail", wantResult: candidateFound, wantOffset: 3},
		{name: "first of two markers", buf: "FRMEFRME12", wantResult: candidateFound, wantOffset: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, off := locate([]byte(tt.buf), frameSize)
			if res != tt.wantResult || off != tt.wantOffset {
				t.Fatalf("locate(%q) = (%d, %d), want (%d, %d)", tt.buf, res, off, tt.wantResult, tt.wantOffset)
			}
		})
	}
}
