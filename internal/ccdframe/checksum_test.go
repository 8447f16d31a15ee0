package ccdframe

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"testing"
)

func TestChecksumCheckValue(t *testing.T) {
	// CRC-16/CCITT-FALSE check value.
	if got := Checksum([]byte("123456789")); got != 0x29B1 {
		t.Fatalf("checksum = 0x%04X, want 0x29B1", got)
	}
}

func TestEncodeLayout(t *testing.T) {
	samples := []uint16{0x0102, 0x0FFF}
	b := Encode(0xBEEF, samples)

	if len(b) != Overhead+4 {
		t.Fatalf("unexpected frame length: %d", len(b))
	}
	if string(b[0:4]) != "FRME" || string(b[12:16]) != "ENDF" {
		t.Fatalf("markers incorrect: % x", b)
	}
	if binary.LittleEndian.Uint16(b[4:6]) != 0xBEEF {
		t.Fatalf("sequence incorrect: % x", b[4:6])
	}
	if binary.LittleEndian.Uint16(b[6:8]) != 2 {
		t.Fatalf("declared count incorrect: % x", b[6:8])
	}
	if b[8] != 0x02 || b[9] != 0x01 {
		t.Fatalf("samples not little-endian: % x", b[8:12])
	}
	if binary.LittleEndian.Uint16(b[16:18]) != Checksum(b[:16]) {
		t.Fatalf("checksum does not cover start through end marker")
	}
}

func TestEncodeWireFixture(t *testing.T) {
	want, err := hex.DecodeString("46524d45341202000001ff0f454e4446b598")
	if err != nil {
		t.Fatal(err)
	}

	got := Encode(0x1234, []uint16{0x0100, 0x0FFF})
	if !bytes.Equal(got, want) {
		t.Fatalf("encode = %x, want %x", got, want)
	}

	e, err := NewEngine(Config{SampleCount: 2, RetentionBound: 64, SampleMax: DefaultSampleMax})
	if err != nil {
		t.Fatal(err)
	}
	events := e.Poll(want)
	if len(events) != 1 {
		t.Fatalf("events = %d, want 1", len(events))
	}
	f, ok := events[0].(Frame)
	if !ok {
		t.Fatalf("event %T, want Frame", events[0])
	}
	if f.Sequence != 0x1234 || f.Checksum != 0x98B5 || f.Samples[0] != 0x0100 || f.Samples[1] != 0x0FFF {
		t.Fatalf("decoded %+v", f)
	}
}

func TestValidate(t *testing.T) {
	cfg := Config{SampleCount: 4, RetentionBound: 64, SampleMax: DefaultSampleMax}
	good := func() []byte { return Encode(1, []uint16{1, 2, 3, 4}) }

	tests := []struct {
		name    string
		mutate  func([]byte) []byte
		want    outcome
		wantErr error
	}{
		{
			name:   "valid",
			mutate: func(b []byte) []byte { return b },
			want:   outcomeValid,
		},
		{
			name: "declared count",
			mutate: func(b []byte) []byte {
				binary.LittleEndian.PutUint16(b[6:8], 5)
				return b
			},
			want:    outcomeStructural,
			wantErr: ErrDeclaredCount,
		},
		{
			name: "end marker",
			mutate: func(b []byte) []byte {
				b[HeaderSize+8] = 'X'
				return b
			},
			want:    outcomeStructural,
			wantErr: ErrEndMarker,
		},
		{
			name: "payload bit flip",
			mutate: func(b []byte) []byte {
				b[HeaderSize+3] ^= 0x80
				return b
			},
			want:    outcomeChecksum,
			wantErr: ErrChecksum,
		},
		{
			name: "sequence bit flip",
			mutate: func(b []byte) []byte {
				b[4] ^= 0x01
				return b
			},
			want:    outcomeChecksum,
			wantErr: ErrChecksum,
		},
		{
			name: "checksum byte",
			mutate: func(b []byte) []byte {
				b[len(b)-1] ^= 0xFF
				return b
			},
			want:    outcomeChecksum,
			wantErr: ErrChecksum,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := validate(cfg, tt.mutate(good()))
			if got != tt.want {
				t.Fatalf("outcome = %d, want %d (err %v)", got, tt.want, err)
			}
			if tt.wantErr == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestAdvance(t *testing.T) {
	const frameSize = 78
	if n := advance(outcomeValid, frameSize); n != frameSize {
		t.Errorf("valid advances %d", n)
	}
	if n := advance(outcomeStructural, frameSize); n != MarkerLength {
		t.Errorf("structural mismatch advances %d", n)
	}
	if n := advance(outcomeChecksum, frameSize); n != frameSize {
		t.Errorf("checksum mismatch advances %d", n)
	}
}
