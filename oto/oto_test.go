package oto

import (
	"io"
	"testing"
)

type constSource struct {
	value float32
}

func (s constSource) Sample() float32 {
	return s.value
}

func TestSourceReaderShortBuffer(t *testing.T) {
	reader := &sourceReader{source: constSource{value: 0.5}}
	for _, size := range []int{0, 1, 3} {
		n, err := reader.Read(make([]byte, size))
		if n != 0 || err != io.ErrShortBuffer {
			t.Errorf("Read with a %d byte buffer = (%d, %v), expected (0, ErrShortBuffer)", size, n, err)
		}
	}
}

func TestSourceReaderWholeFrames(t *testing.T) {
	reader := &sourceReader{source: constSource{value: 0.5}}
	p := make([]byte, 6)
	n, err := reader.Read(p)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if n != 4 {
		t.Fatalf("Read = %d bytes, expected one whole 4 byte frame", n)
	}
	// 0.5 * 32767 = 16383 = 0x3fff, little-endian, duplicated to both channels
	expected := []byte{0xff, 0x3f, 0xff, 0x3f}
	for i, b := range expected {
		if p[i] != b {
			t.Errorf("byte %d = %#x, expected %#x", i, p[i], b)
		}
	}
}

func TestSourceReaderClamps(t *testing.T) {
	reader := &sourceReader{source: constSource{value: 2}}
	p := make([]byte, 4)
	if _, err := reader.Read(p); err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if got := int16(p[0]) | int16(p[1])<<8; got != 32767 {
		t.Errorf("over-range sample = %d, expected to clamp at 32767", got)
	}
}
