package daww

import (
	"sort"
	"sync"
)

// Score is the canonical store of the notes of a song, keyed by their onset
// tick. It maintains two invariants: for any pitch no two stored notes have
// overlapping tick ranges (Insert merges overlaps away), and the cached
// active-note index always mirrors the stored notes. The cache trades a bit
// of bookkeeping on each mutation for cheap ActiveNotesAt queries, which the
// playback clock issues on every tick boundary.
type Score struct {
	notes  map[int][]Note       // onset tick -> notes starting at that tick
	active map[int][]ActiveNote // tick -> notes sounding at that tick
}

// NewScore returns an empty Score.
func NewScore() *Score {
	return &Score{
		notes:  make(map[int][]Note),
		active: make(map[int][]ActiveNote),
	}
}

// Copy makes a deep copy of the Score.
func (s *Score) Copy() *Score {
	c := NewScore()
	for onset, notes := range s.notes {
		c.notes[onset] = append([]Note(nil), notes...)
	}
	for tick, notes := range s.active {
		c.active[tick] = append([]ActiveNote(nil), notes...)
	}
	return c
}

// Insert adds a note, merging it with every note of the same pitch whose tick
// range intersects [onset, onset+duration). The overlapping notes are removed
// and replaced by a single note spanning from the earliest onset to the
// latest end among them and the new note. If nothing overlaps, this is a
// plain insert.
func (s *Score) Insert(pitch Pitch, onset, duration int) {
	note := Note{Pitch: pitch, Onset: onset, Duration: duration}
	mergedStart, mergedEnd := note.Onset, note.End()
	for _, existing := range s.samePitchOverlaps(note) {
		if existing.Onset < mergedStart {
			mergedStart = existing.Onset
		}
		if existing.End() > mergedEnd {
			mergedEnd = existing.End()
		}
		s.remove(existing)
	}
	s.add(Note{Pitch: pitch, Onset: mergedStart, Duration: mergedEnd - mergedStart})
}

// Toggle adds or removes a note by exact value: if a note with exactly the
// given pitch, onset and duration exists it is removed and Toggle returns
// true; otherwise the note is inserted as-is, without the overlap merging
// that Insert performs. This backs the "click a grid cell to place or clear
// it" editing gesture, where the caller knows the exact note it means.
func (s *Score) Toggle(pitch Pitch, onset, duration int) (removed bool) {
	note := Note{Pitch: pitch, Onset: onset, Duration: duration}
	for _, existing := range s.notes[onset] {
		if existing == note {
			s.remove(note)
			return true
		}
	}
	s.add(note)
	return false
}

// DeleteInSelection removes every note contained in the selection (see
// SelectionRange.Contains) and returns how many were removed. It returns
// ErrInvalidRange for malformed bounds and ErrNotFound if the selection
// matched nothing; in both cases the score is unchanged.
func (s *Score) DeleteInSelection(r SelectionRange) (int, error) {
	if err := r.Validate(); err != nil {
		return 0, err
	}
	var doomed []Note
	for _, notes := range s.notes {
		for _, note := range notes {
			if r.Contains(note) {
				doomed = append(doomed, note)
			}
		}
	}
	if len(doomed) == 0 {
		return 0, ErrNotFound
	}
	for _, note := range doomed {
		s.remove(note)
	}
	return len(doomed), nil
}

// CloneAtSelection builds a new Score holding copies of the notes contained
// in the selection. The copies are re-inserted with Insert, so overlaps
// among them merge again. Malformed bounds return ErrInvalidRange.
func (s *Score) CloneAtSelection(r SelectionRange) (*Score, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	clone := NewScore()
	for _, notes := range s.notes {
		for _, note := range notes {
			if r.Contains(note) {
				clone.Insert(note.Pitch, note.Onset, note.Duration)
			}
		}
	}
	return clone, nil
}

// Translate returns a copy of the Score with every onset shifted so that the
// earliest note starts at newStart, preserving the relative spacing of the
// notes. A negative newStart is clamped to tick 0 so onsets stay
// non-negative. An empty Score translates to an empty copy.
func (s *Score) Translate(newStart int) *Score {
	if newStart < 0 {
		newStart = 0
	}
	minOnset, ok := s.firstOnset()
	if !ok {
		return s.Copy()
	}
	delta := newStart - minOnset
	translated := NewScore()
	for _, notes := range s.notes {
		for _, note := range notes {
			translated.Insert(note.Pitch, note.Onset+delta, note.Duration)
		}
	}
	return translated
}

// MergeDown overlays the notes of another Score onto a copy of this one. The
// overlay uses Insert, so same-pitch overlaps across the two sources merge.
func (s *Score) MergeDown(other *Score) *Score {
	merged := s.Copy()
	for _, notes := range other.notes {
		for _, note := range notes {
			merged.Insert(note.Pitch, note.Onset, note.Duration)
		}
	}
	return merged
}

// NotesStartingAt returns the notes whose onset is exactly the given tick.
func (s *Score) NotesStartingAt(tick int) []Note {
	return append([]Note(nil), s.notes[tick]...)
}

// ActiveNotesAt returns every note sounding at the given tick, tagged with
// its state (onset, sustain or release) at that tick.
func (s *Score) ActiveNotesAt(tick int) []ActiveNote {
	return append([]ActiveNote(nil), s.active[tick]...)
}

// Notes returns all notes of the score, sorted by onset and then pitch.
func (s *Score) Notes() []Note {
	var all []Note
	for _, notes := range s.notes {
		all = append(all, notes...)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Onset != all[j].Onset {
			return all[i].Onset < all[j].Onset
		}
		return all[i].Pitch.Less(all[j].Pitch)
	})
	return all
}

// Duration returns the tick span from the earliest onset to the latest note
// end, or 0 for an empty score.
func (s *Score) Duration() int {
	first, ok := s.firstOnset()
	if !ok {
		return 0
	}
	return s.lastEnd() - first
}

// WithinSong reports whether the given tick is before the end of the last
// note, i.e. whether the playback clock still has something ahead of it.
func (s *Score) WithinSong(tick int) bool {
	return s.lastEnd() > tick
}

func (s *Score) firstOnset() (int, bool) {
	first, found := 0, false
	for onset, notes := range s.notes {
		if len(notes) == 0 {
			continue
		}
		if !found || onset < first {
			first, found = onset, true
		}
	}
	return first, found
}

func (s *Score) lastEnd() int {
	last := 0
	for _, notes := range s.notes {
		for _, note := range notes {
			if note.End() > last {
				last = note.End()
			}
		}
	}
	return last
}

// samePitchOverlaps returns the stored notes of the same pitch whose tick
// range intersects that of the given note.
func (s *Score) samePitchOverlaps(n Note) []Note {
	var overlaps []Note
	for _, notes := range s.notes {
		for _, existing := range notes {
			if existing.Pitch == n.Pitch && existing.Onset < n.End() && existing.End() > n.Onset {
				overlaps = append(overlaps, existing)
			}
		}
	}
	return overlaps
}

// add stores a note and extends the active index over its tick range.
func (s *Score) add(n Note) {
	s.notes[n.Onset] = append(s.notes[n.Onset], n)
	for tick := n.Onset; tick < n.End(); tick++ {
		state, _ := n.StateAt(tick)
		s.active[tick] = append(s.active[tick], ActiveNote{Note: n, State: state})
	}
}

// remove deletes a note stored by exact value and narrows the active index
// accordingly; ticks the note no longer covers are dropped from the cache.
func (s *Score) remove(n Note) {
	kept := s.notes[n.Onset][:0]
	for _, existing := range s.notes[n.Onset] {
		if existing != n {
			kept = append(kept, existing)
		}
	}
	if len(kept) == 0 {
		delete(s.notes, n.Onset)
	} else {
		s.notes[n.Onset] = kept
	}
	for tick := n.Onset; tick < n.End(); tick++ {
		keptActive := s.active[tick][:0]
		for _, active := range s.active[tick] {
			if active.Note != n {
				keptActive = append(keptActive, active)
			}
		}
		if len(keptActive) == 0 {
			delete(s.active, tick)
		} else {
			s.active[tick] = keptActive
		}
	}
}

// SharedScore guards a Score with a mutex so that the edit surface and the
// playback clock can share it. Critical sections are one score operation
// long; the clock takes the lock only on tick boundaries, so contention is
// negligible at audio rates.
type SharedScore struct {
	mu    sync.Mutex
	score *Score
}

// NewSharedScore wraps a score for shared use. A nil score starts empty.
func NewSharedScore(score *Score) *SharedScore {
	if score == nil {
		score = NewScore()
	}
	return &SharedScore{score: score}
}

// With runs f with the score under the lock. The score must not be retained
// past the call.
func (s *SharedScore) With(f func(*Score)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f(s.score)
}

// Replace swaps in a different score, e.g. one produced by Translate or
// MergeDown.
func (s *SharedScore) Replace(score *Score) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.score = score
}
