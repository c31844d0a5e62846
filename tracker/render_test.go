package tracker

import (
	"testing"

	"github.com/daww-tracker/daww"
)

func TestRenderSong(t *testing.T) {
	score := daww.NewScore()
	score.Insert(c4, 0, 2)
	buffer, err := RenderSong(score, 120, 44100)
	if err != nil {
		t.Fatalf("RenderSong failed: %v", err)
	}
	// 2 ticks of 689 samples each, plus the final sample that stops the clock
	if len(buffer) != 2*689+1 {
		t.Errorf("buffer length = %d, expected %d", len(buffer), 2*689+1)
	}
	nonzero := false
	for _, sample := range buffer {
		if sample != 0 {
			nonzero = true
			break
		}
	}
	if !nonzero {
		t.Errorf("rendering a note should produce a nonzero signal")
	}
}

func TestRenderSongEmptyScore(t *testing.T) {
	buffer, err := RenderSong(daww.NewScore(), 120, 44100)
	if err != nil {
		t.Fatalf("RenderSong failed: %v", err)
	}
	if len(buffer) != 1 {
		t.Errorf("an empty score should render to the single stopping sample, got %d", len(buffer))
	}
}

func TestRenderSongValidation(t *testing.T) {
	if _, err := RenderSong(daww.NewScore(), 0, 44100); err == nil {
		t.Errorf("expected an error for BPM 0")
	}
}
