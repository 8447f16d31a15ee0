package ccdframe

import (
	"bytes"
	"testing"
)

func TestStreamBufferConsume(t *testing.T) {
	b := newStreamBuffer(100)
	b.append([]byte("abcdef"))
	b.consume(2)
	if string(b.bytes()) != "cdef" || b.head != 2 {
		t.Fatalf("unexpected buffer %q head %d", b.bytes(), b.head)
	}
	b.append([]byte("gh"))
	b.consume(6)
	if b.len() != 0 || b.head != 8 {
		t.Fatalf("unexpected buffer %q head %d", b.bytes(), b.head)
	}
	b.consume(0)
	if b.head != 8 {
		t.Fatalf("zero consume moved head to %d", b.head)
	}
}

func TestStreamBufferTrim(t *testing.T) {
	tests := []struct {
		name     string
		bound    int
		input    []byte
		pending  int
		wantDrop int
		want     []byte
	}{
		{
			name:     "within bound",
			bound:    16,
			input:    bytes.Repeat([]byte{'x'}, 16),
			pending:  -1,
			wantDrop: 0,
			want:     bytes.Repeat([]byte{'x'}, 16),
		},
		{
			name:     "no marker keeps split tail",
			bound:    8,
			input:    []byte("xxxxxxxxxxFRM"),
			pending:  -1,
			wantDrop: 10,
			want:     []byte("FRM"),
		},
		{
			name:     "drops noise down to bound",
			bound:    8,
			input:    []byte("xxxxxxFRMEab"),
			pending:  6,
			wantDrop: 4,
			want:     []byte("xxFRMEab"),
		},
		{
			name:     "never drops into pending candidate",
			bound:    4,
			input:    []byte("xxFRMEabcd"),
			pending:  2,
			wantDrop: 2,
			want:     []byte("FRMEabcd"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newStreamBuffer(tt.bound)
			b.append(tt.input)
			if got := b.trimToBound(tt.pending); got != tt.wantDrop {
				t.Fatalf("dropped %d, want %d", got, tt.wantDrop)
			}
			if !bytes.Equal(b.bytes(), tt.want) {
				t.Fatalf("buffer = %q, want %q", b.bytes(), tt.want)
			}
		})
	}
}
