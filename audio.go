package daww

import "sync"

type (
	// AudioBuffer is a mono buffer of amplitude samples in [-1, 1].
	AudioBuffer []float32

	// SampleSource yields one amplitude sample per call. The playback clock
	// implements this; sinks pull from it at the audio rate.
	SampleSource interface {
		Sample() float32
	}

	// BufferSource plays back a prerendered buffer sample by sample,
	// yielding silence once the buffer is exhausted. Wait blocks until the
	// last sample has been pulled, so a caller can keep the audio device
	// open exactly as long as needed.
	BufferSource struct {
		buffer AudioBuffer
		pos    int
		once   sync.Once
		done   chan struct{}
	}
)

// Source wraps the buffer for pull-based playback.
func (b AudioBuffer) Source() *BufferSource {
	return &BufferSource{buffer: b, done: make(chan struct{})}
}

func (s *BufferSource) Sample() float32 {
	if s.pos >= len(s.buffer) {
		s.once.Do(func() { close(s.done) })
		return 0
	}
	v := s.buffer[s.pos]
	s.pos++
	return v
}

// Wait blocks until the whole buffer has been pulled.
func (s *BufferSource) Wait() {
	<-s.done
}
