package tracker

import "github.com/daww-tracker/daww/tracker/types"

// Loop is the loop region of the playback clock. Looping can be armed while
// either bound is still unset; the region only takes effect once both bounds
// exist. Bounds are in ticks and the end is exclusive.
type Loop struct {
	Looping bool
	Start   types.OptionalInteger
	End     types.OptionalInteger
}

// Region returns the loop bounds when looping is armed and both bounds are
// set. ok is false otherwise.
func (l Loop) Region() (start, end int, ok bool) {
	if !l.Looping {
		return 0, 0, false
	}
	start, startOk := l.Start.Unpack()
	end, endOk := l.End.Unpack()
	if !startOk || !endOk || end <= start {
		return 0, 0, false
	}
	return start, end, true
}
