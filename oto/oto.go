// Package oto outputs audio through the system's sound device using the
// ebitengine/oto library. The device pulls samples from a SampleSource, so
// playback is driven at the audio rate with no push-side buffering.
package oto

import (
	"fmt"
	"io"
	"math"

	oto "github.com/ebitengine/oto/v3"

	"github.com/daww-tracker/daww"
)

type (
	Context struct {
		context    *oto.Context
		sampleRate int
	}

	// Player plays one source until closed.
	Player struct {
		player *oto.Player
	}

	// sourceReader adapts a SampleSource into the little-endian 16-bit
	// stereo stream oto reads, duplicating the mono sample to both
	// channels.
	sourceReader struct {
		source daww.SampleSource
	}
)

const channelCount = 2

// NewContext opens the audio device at the given sample rate, blocking until
// the device is ready.
func NewContext(sampleRate int) (*Context, error) {
	context, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: channelCount,
		Format:       oto.FormatSignedInt16LE,
	})
	if err != nil {
		return nil, fmt.Errorf("cannot create oto context: %v", err)
	}
	<-ready
	return &Context{context: context, sampleRate: sampleRate}, nil
}

// Play starts pulling samples from the source and playing them. The returned
// player keeps playing until closed.
func (c *Context) Play(source daww.SampleSource) *Player {
	player := c.context.NewPlayer(&sourceReader{source: source})
	player.Play()
	return &Player{player: player}
}

func (p *Player) Close() error {
	if err := p.player.Close(); err != nil {
		return fmt.Errorf("cannot close oto player: %v", err)
	}
	return nil
}

func (c *Context) Close() error {
	// the oto context has no Close; suspending stops the device callbacks
	if err := c.context.Suspend(); err != nil {
		return fmt.Errorf("cannot suspend oto context: %v", err)
	}
	return nil
}

func (r *sourceReader) Read(p []byte) (int, error) {
	const frameBytes = 2 * channelCount
	if len(p) < frameBytes {
		// returning (0, nil) would violate the io.Reader contract
		return 0, io.ErrShortBuffer
	}
	n := len(p) / frameBytes * frameBytes
	for i := 0; i < n; i += frameBytes {
		sample := r.source.Sample()
		v := int16(clamp(int(sample*math.MaxInt16), math.MinInt16, math.MaxInt16))
		for c := 0; c < channelCount; c++ {
			p[i+2*c] = byte(v)
			p[i+2*c+1] = byte(v >> 8)
		}
	}
	return n, nil
}

var _ io.Reader = (*sourceReader)(nil)

func clamp(value, min, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
