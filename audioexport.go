package daww

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/viterin/vek/vek32"
)

// AudioFormat describes the output format of an exported buffer. BitDepth 16
// produces integer PCM, peak-normalized so the loudest sample hits full
// scale; BitDepth 32 produces raw IEEE float samples. The mono source buffer
// is duplicated across Channels.
type AudioFormat struct {
	SampleRate int
	BitDepth   int
	Channels   int
}

// Wav encodes the buffer as a .wav file in the given format.
func Wav(buffer AudioBuffer, format AudioFormat) ([]byte, error) {
	if err := format.validate(); err != nil {
		return nil, fmt.Errorf("Wav failed: %v", err)
	}
	buf := new(bytes.Buffer)
	wavHeader(len(buffer)*format.Channels, format, buf)
	if err := rawToBuffer(buffer, format, buf); err != nil {
		return nil, fmt.Errorf("Wav failed: %v", err)
	}
	return buf.Bytes(), nil
}

// Raw encodes the buffer as headerless samples in the given format.
func Raw(buffer AudioBuffer, format AudioFormat) ([]byte, error) {
	if err := format.validate(); err != nil {
		return nil, fmt.Errorf("Raw failed: %v", err)
	}
	buf := new(bytes.Buffer)
	if err := rawToBuffer(buffer, format, buf); err != nil {
		return nil, fmt.Errorf("Raw failed: %v", err)
	}
	return buf.Bytes(), nil
}

func (f AudioFormat) validate() error {
	if f.SampleRate < 1 {
		return fmt.Errorf("sample rate %d is not positive", f.SampleRate)
	}
	if f.Channels < 1 {
		return fmt.Errorf("channel count %d is not positive", f.Channels)
	}
	if f.BitDepth != 16 && f.BitDepth != 32 {
		return fmt.Errorf("bit depth %d is not supported, expected 16 or 32", f.BitDepth)
	}
	return nil
}

// normalize scales the buffer so its peak amplitude is 1. A silent buffer is
// returned unchanged.
func normalize(data AudioBuffer) AudioBuffer {
	if len(data) == 0 {
		return data
	}
	abs := vek32.Abs(data)
	peak := vek32.Max(abs)
	if peak == 0 {
		return data
	}
	return vek32.MulNumber(data, 1/peak)
}

func rawToBuffer(data AudioBuffer, format AudioFormat, buf *bytes.Buffer) error {
	var err error
	if format.BitDepth == 16 {
		normalized := normalize(data)
		int16data := make([]int16, len(data)*format.Channels)
		for i, v := range normalized {
			s := int16(clamp(int(v*math.MaxInt16), math.MinInt16, math.MaxInt16))
			for c := 0; c < format.Channels; c++ {
				int16data[i*format.Channels+c] = s
			}
		}
		err = binary.Write(buf, binary.LittleEndian, int16data)
	} else {
		floatData := make([]float32, len(data)*format.Channels)
		for i, v := range data {
			for c := 0; c < format.Channels; c++ {
				floatData[i*format.Channels+c] = v
			}
		}
		err = binary.Write(buf, binary.LittleEndian, floatData)
	}
	if err != nil {
		return fmt.Errorf("could not binary write data to binary buffer: %v", err)
	}
	return nil
}

// wavHeader writes a wave header for either int16 or float32 samples into the
// bytes.Buffer. bufferLength is the total number of samples over all
// channels. Refer to:
// http://www-mmsp.ece.mcgill.ca/Documents/AudioFormats/WAVE/WAVE.html
func wavHeader(bufferLength int, format AudioFormat, buf *bytes.Buffer) {
	var bytesPerSample, chunkSize, fmtChunkSize, waveFormat int
	var factChunk bool
	if format.BitDepth == 16 {
		bytesPerSample = 2
		chunkSize = 36 + bytesPerSample*bufferLength
		fmtChunkSize = 16
		waveFormat = 1 // PCM
		factChunk = false
	} else {
		bytesPerSample = 4
		chunkSize = 50 + bytesPerSample*bufferLength
		fmtChunkSize = 18
		waveFormat = 3 // IEEE float
		factChunk = true
	}
	buf.Write([]byte("RIFF"))
	binary.Write(buf, binary.LittleEndian, uint32(chunkSize))
	buf.Write([]byte("WAVE"))
	buf.Write([]byte("fmt "))
	binary.Write(buf, binary.LittleEndian, uint32(fmtChunkSize))
	binary.Write(buf, binary.LittleEndian, uint16(waveFormat))
	binary.Write(buf, binary.LittleEndian, uint16(format.Channels))
	binary.Write(buf, binary.LittleEndian, uint32(format.SampleRate))
	binary.Write(buf, binary.LittleEndian, uint32(format.SampleRate*format.Channels*bytesPerSample)) // avgBytesPerSec
	binary.Write(buf, binary.LittleEndian, uint16(format.Channels*bytesPerSample))                   // blockAlign
	binary.Write(buf, binary.LittleEndian, uint16(8*bytesPerSample))                                 // bits per sample
	if fmtChunkSize > 16 {
		binary.Write(buf, binary.LittleEndian, uint16(0)) // size of extension
	}
	if factChunk {
		buf.Write([]byte("fact"))
		binary.Write(buf, binary.LittleEndian, uint32(4))            // fact chunk size
		binary.Write(buf, binary.LittleEndian, uint32(bufferLength)) // sample length
	}
	buf.Write([]byte("data"))
	binary.Write(buf, binary.LittleEndian, uint32(bytesPerSample*bufferLength))
}

func clamp(value, min, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
