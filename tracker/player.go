package tracker

import (
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/daww-tracker/daww"
)

type (
	// Player is the playback clock of the tracker. It converts elapsed audio
	// samples into score ticks, queries the shared score for notes on every
	// tick boundary, and synthesizes an amplitude stream with one sine
	// oscillator per active note. The player is driven entirely by pulls:
	// each Sample call produces exactly one amplitude sample and completes
	// in bounded time, so it can run inside an audio callback. It is not
	// safe for concurrent use; control calls and Sample must come from the
	// same goroutine or be serialized by the caller.
	Player struct {
		score       *daww.SharedScore
		sampleRate  int
		state       PlayState
		tick        int // samples pulled since the last Stop
		timeB32     int // the current score tick
		ticksPerB32 int // samples per score tick
		activeNotes []daww.Note
		loop        Loop

		previewing   bool
		previewStart time.Time

		now    func() time.Time // overridable for tests
		logger *zap.Logger
	}

	// PlayState is the state of the playback clock.
	PlayState int
)

const (
	StateStopped PlayState = iota
	StatePlaying
	StatePaused
	StatePreviewing
)

const (
	// previewNoteDuration is the length in ticks of the transient note
	// inserted by PreviewNote. The note is not backed by the score.
	previewNoteDuration = 16

	// previewExpiry is how long a preview sounds, in wall-clock time. It is
	// deliberately independent of the tick clock: preview is an auditioning
	// aid, so drift between the two clocks does not matter.
	previewExpiry = 250 * time.Millisecond
)

func (s PlayState) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StatePreviewing:
		return "previewing"
	}
	return fmt.Sprintf("PlayState(%d)", int(s))
}

// NewPlayer creates a playback clock reading from the given shared score.
// The tempo is converted to a samples-per-tick ratio with truncating integer
// division: sampleRate * 60 / bpm / 32. At tempos where the division is
// inexact the tick boundary drifts slightly from true musical time; this
// matches the established file format semantics and is kept as-is rather
// than compensated for.
func NewPlayer(score *daww.SharedScore, sampleRate, bpm int, logger *zap.Logger) (*Player, error) {
	if sampleRate < 1 {
		return nil, fmt.Errorf("sample rate should be > 0, got %d", sampleRate)
	}
	if bpm < 1 {
		return nil, fmt.Errorf("BPM should be > 0, got %d", bpm)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Player{
		score:       score,
		sampleRate:  sampleRate,
		ticksPerB32: sampleRate * 60 / bpm / 32,
		now:         time.Now,
		logger:      logger,
	}, nil
}

// Play starts or resumes playback from the current tick.
func (p *Player) Play() {
	p.setState(StatePlaying)
}

// Pause halts playback without resetting the position. It also cancels a
// running preview.
func (p *Player) Pause() {
	p.setState(StatePaused)
}

// Stop halts playback and rewinds: the tick position and sample counter go
// back to 0 and all active notes are dropped.
func (p *Player) Stop() {
	p.setState(StateStopped)
	p.timeB32 = 0
	p.tick = 0
	p.activeNotes = p.activeNotes[:0]
}

// TogglePlayback flips between playing and paused. A stopped clock starts
// playing; a previewing clock pauses.
func (p *Player) TogglePlayback() {
	switch p.state {
	case StatePlaying, StatePreviewing:
		p.Pause()
	default:
		p.Play()
	}
}

// PreviewNote auditions a single pitch outside the score: the active set is
// replaced with one transient note and the clock enters the previewing
// state. The preview expires after a fixed wall-clock time, after which the
// clock stops itself.
func (p *Player) PreviewNote(pitch daww.Pitch) {
	p.setState(StatePreviewing)
	p.activeNotes = append(p.activeNotes[:0], daww.Note{
		Pitch:    pitch,
		Onset:    0,
		Duration: previewNoteDuration,
	})
	p.previewing = true
	p.previewStart = p.now()
}

// ClearPreview cancels a running preview, stopping the clock. It does
// nothing in other states.
func (p *Player) ClearPreview() {
	if p.state != StatePreviewing {
		return
	}
	p.setState(StateStopped)
	p.activeNotes = p.activeNotes[:0]
	p.previewing = false
}

// SetLoop replaces the loop region.
func (p *Player) SetLoop(loop Loop) {
	p.loop = loop
}

// SetTimeB32 pauses playback and moves the clock to the given tick,
// restoring the active set from the score so that playback can resume
// mid-note.
func (p *Player) SetTimeB32(timeB32 int) {
	p.Pause()
	p.timeB32 = timeB32
	p.tick = 0
	p.activeNotes = p.activeNotes[:0]
	p.score.With(func(s *daww.Score) {
		for _, active := range s.ActiveNotesAt(timeB32) {
			p.activeNotes = append(p.activeNotes, active.Note)
		}
	})
}

// SetBPM changes the tempo, recomputing the samples-per-tick ratio with the
// same truncating division as NewPlayer.
func (p *Player) SetBPM(bpm int) error {
	if bpm < 1 {
		return fmt.Errorf("BPM should be > 0, got %d", bpm)
	}
	p.ticksPerB32 = p.sampleRate * 60 / bpm / 32
	return nil
}

// CurrentTimeB32 returns the current position of the clock in ticks.
func (p *Player) CurrentTimeB32() int {
	return p.timeB32
}

// State returns the current state of the clock.
func (p *Player) State() PlayState {
	return p.state
}

// IsPlaying reports whether the clock is producing sound, i.e. playing the
// score or previewing a note.
func (p *Player) IsPlaying() bool {
	return p.state == StatePlaying || p.state == StatePreviewing
}

func (p *Player) setState(state PlayState) {
	if state == p.state {
		return
	}
	p.logger.Debug("player state change",
		zap.Stringer("from", p.state),
		zap.Stringer("to", state))
	if p.state == StatePreviewing {
		p.previewing = false
	}
	p.state = state
}

// Sample produces the next amplitude sample. While stopped or paused it
// yields silence. While playing, the score is consulted once every
// ticksPerB32 samples: notes starting on the current tick join the active
// set, finished notes leave it, and the clock advances one tick, wrapping
// into the loop region when looping is active. Past the end of the last
// note the clock stops itself. The sample value is the arithmetic mean of
// one sine oscillator per active note, as placeholder mixing.
func (p *Player) Sample() float32 {
	if p.previewing && p.now().Sub(p.previewStart) > previewExpiry {
		p.ClearPreview()
	}

	switch p.state {
	case StatePlaying:
		if p.tick%p.ticksPerB32 == 0 {
			p.advanceTick()
			if p.state != StatePlaying {
				return 0
			}
		}
		p.tick++
	case StatePreviewing:
		p.tick++
	default:
		return 0
	}

	if len(p.activeNotes) == 0 {
		return 0
	}
	var total float64
	for _, note := range p.activeNotes {
		phase := 2 * math.Pi * note.Pitch.Frequency() * float64(p.tick) / float64(p.sampleRate)
		total += math.Sin(phase)
	}
	return float32(total / float64(len(p.activeNotes)))
}

// Process fills the whole buffer by pulling one sample per slot.
func (p *Player) Process(buffer daww.AudioBuffer) {
	for i := range buffer {
		buffer[i] = p.Sample()
	}
}

// advanceTick runs the per-tick-boundary part of the playback contract: one
// score query under the shared lock, active-set maintenance, and the
// advance-and-loop bookkeeping.
func (p *Player) advanceTick() {
	within := false
	var starting []daww.Note
	p.score.With(func(s *daww.Score) {
		if within = s.WithinSong(p.timeB32); within {
			starting = s.NotesStartingAt(p.timeB32)
		}
	})
	if !within {
		p.Stop()
		return
	}
	kept := p.activeNotes[:0]
	for _, note := range p.activeNotes {
		if note.End() > p.timeB32 {
			kept = append(kept, note)
		}
	}
	p.activeNotes = append(kept, starting...)
	p.timeB32++
	if start, end, ok := p.loop.Region(); ok {
		if p.timeB32 >= end || p.timeB32 < start {
			// hard cut back to the loop start, no crossfade
			p.timeB32 = start
			p.activeNotes = p.activeNotes[:0]
		}
	}
}
