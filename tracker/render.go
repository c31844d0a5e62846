package tracker

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/daww-tracker/daww"
)

// RenderSong plays the score offline, pulling samples until the clock stops
// itself past the last note, and returns the rendered mono buffer.
func RenderSong(score *daww.Score, bpm, sampleRate int) (daww.AudioBuffer, error) {
	shared := daww.NewSharedScore(score.Copy())
	player, err := NewPlayer(shared, sampleRate, bpm, zap.NewNop())
	if err != nil {
		return nil, fmt.Errorf("RenderSong failed: %v", err)
	}
	buffer := make(daww.AudioBuffer, 0, score.Duration()*player.ticksPerB32)
	player.Play()
	for player.State() == StatePlaying {
		buffer = append(buffer, player.Sample())
	}
	return buffer, nil
}
