package daww

import "fmt"

type (
	// Note is a pitched note starting at the tick Onset and sounding for
	// Duration ticks, occupying the tick range [Onset, Onset+Duration-1]
	// inclusive. A tick is one 32nd note at the current tempo ("b32").
	// Duration is always at least 1 and ticks are never negative; tick 0 is
	// the first playable position.
	Note struct {
		Pitch    Pitch
		Onset    int
		Duration int
	}

	// NoteState tells where within a note's tick range a given tick falls.
	// It is derived from the note, never stored.
	NoteState int

	// ActiveNote is a note sounding at some queried tick, tagged with the
	// state of the note at that tick.
	ActiveNote struct {
		Note  Note
		State NoteState
	}

	// SelectionRange bounds a rectangular selection of notes: a half-open
	// tick range [TickStart, TickEnd) and an inclusive pitch range
	// [PitchLow, PitchHigh].
	SelectionRange struct {
		TickStart int
		TickEnd   int
		PitchLow  Pitch
		PitchHigh Pitch
	}
)

const (
	NoteOnset   NoteState = iota // tick is the first tick of the note
	NoteSustain                  // tick is in the interior of the note
	NoteRelease                  // tick is the last tick of the note
)

func (s NoteState) String() string {
	switch s {
	case NoteOnset:
		return "onset"
	case NoteSustain:
		return "sustain"
	case NoteRelease:
		return "release"
	}
	return fmt.Sprintf("NoteState(%d)", int(s))
}

// End returns the first tick after the note, i.e. Onset + Duration.
func (n Note) End() int {
	return n.Onset + n.Duration
}

// StateAt returns the state of the note at the given tick and whether the
// note sounds at that tick at all.
func (n Note) StateAt(tick int) (NoteState, bool) {
	if tick < n.Onset || tick >= n.End() {
		return 0, false
	}
	switch tick {
	case n.Onset:
		return NoteOnset, true
	case n.End() - 1:
		return NoteRelease, true
	}
	return NoteSustain, true
}

// Validate checks that the selection is well-formed: the tick range must be
// non-empty and the pitch bounds must not be inverted.
func (r SelectionRange) Validate() error {
	if r.TickStart >= r.TickEnd {
		return fmt.Errorf("tick range [%d, %d): %w", r.TickStart, r.TickEnd, ErrInvalidRange)
	}
	if r.PitchHigh.Less(r.PitchLow) {
		return fmt.Errorf("pitch range [%v, %v]: %w", r.PitchLow, r.PitchHigh, ErrInvalidRange)
	}
	return nil
}

// Contains reports whether a note falls inside the selection. Only the onset
// tick is tested against the tick range: a note starting before the selection
// but sounding into it is not contained.
func (r SelectionRange) Contains(n Note) bool {
	return n.Onset >= r.TickStart && n.Onset < r.TickEnd &&
		!n.Pitch.Less(r.PitchLow) && !r.PitchHigh.Less(n.Pitch)
}
