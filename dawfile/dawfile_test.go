package dawfile_test

import (
	"testing"

	"github.com/daww-tracker/daww"
	"github.com/daww-tracker/daww/dawfile"
)

func TestTimeToTick(t *testing.T) {
	tests := []struct {
		time string
		tick int
	}{
		{"1.0", 0},
		{"1.31", 31},
		{"2.0", 32},
		{"3.15", 79},
	}
	for _, test := range tests {
		got, err := dawfile.TimeToTick(test.time)
		if err != nil {
			t.Errorf("TimeToTick(%q) failed: %v", test.time, err)
			continue
		}
		if got != test.tick {
			t.Errorf("TimeToTick(%q) = %d, expected %d", test.time, got, test.tick)
		}
		if back := dawfile.TickToTime(test.tick); back != test.time {
			t.Errorf("TickToTime(%d) = %q, expected %q", test.tick, back, test.time)
		}
	}
}

func TestTimeToTickInvalid(t *testing.T) {
	for _, invalid := range []string{"", "1", "0.0", "-1.0", "1.32", "1.-1", "1.a", "a.0", "1.2.3"} {
		if _, err := dawfile.TimeToTick(invalid); err == nil {
			t.Errorf("TimeToTick(%q) should have failed", invalid)
		}
	}
}

func TestNewSongDefaults(t *testing.T) {
	song := dawfile.New("test")
	if song.Metadata.Title != "test" {
		t.Errorf("title = %q, expected %q", song.Metadata.Title, "test")
	}
	if song.Metadata.Revision != 1 {
		t.Errorf("revision = %d, expected 1", song.Metadata.Revision)
	}
	if song.BPM != 120 {
		t.Errorf("bpm = %d, expected 120", song.BPM)
	}
	if song.Mixdown.SampleRate != 44100 || song.Mixdown.BitDepth != 16 {
		t.Errorf("mixdown = %+v, expected 44100/16", song.Mixdown)
	}
	if _, ok := song.Instruments[dawfile.DefaultInstrument]; !ok {
		t.Errorf("expected a default instrument")
	}
}

func TestSongScoreConversion(t *testing.T) {
	c4 := daww.Pitch{Tone: daww.C, Octave: 4}
	e4 := daww.Pitch{Tone: daww.E, Octave: 4}
	song := dawfile.New("test")
	song.Events = []dawfile.Event{
		{Time: "1.0", Instrument: "piano", Notes: []dawfile.EventNote{
			{Pitch: c4, Duration: 32},
			{Pitch: e4, Duration: 16},
		}},
		{Time: "2.0", Instrument: "piano", Notes: []dawfile.EventNote{
			{Pitch: c4, Duration: 16},
		}},
	}
	score, err := song.Score()
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}
	notes := score.Notes()
	if len(notes) != 3 {
		t.Fatalf("expected 3 notes, got %d", len(notes))
	}
	if notes[2].Onset != 32 {
		t.Errorf("last note onset = %d, expected 32", notes[2].Onset)
	}

	song.SetScore(score)
	if len(song.Events) != 2 {
		t.Fatalf("expected 2 events after SetScore, got %d", len(song.Events))
	}
	if song.Events[0].Time != "1.0" || song.Events[1].Time != "2.0" {
		t.Errorf("events out of order: %v, %v", song.Events[0].Time, song.Events[1].Time)
	}
	if song.Events[0].Instrument != dawfile.DefaultInstrument {
		t.Errorf("SetScore should file notes under the default instrument")
	}
}

func TestSongScoreInvalidDuration(t *testing.T) {
	for _, duration := range []int{0, -3} {
		song := dawfile.New("test")
		song.Events = []dawfile.Event{
			{Time: "1.5", Instrument: "piano", Notes: []dawfile.EventNote{
				{Pitch: daww.Pitch{Tone: daww.C, Octave: 4}, Duration: duration},
			}},
		}
		if _, err := song.Score(); err == nil {
			t.Errorf("expected an error for duration %d", duration)
		}
	}
}

func TestSongScoreInvalidTime(t *testing.T) {
	song := dawfile.New("test")
	song.Events = []dawfile.Event{
		{Time: "0.0", Instrument: "piano", Notes: []dawfile.EventNote{
			{Pitch: daww.Pitch{Tone: daww.C, Octave: 4}, Duration: 32},
		}},
	}
	if _, err := song.Score(); err == nil {
		t.Errorf("expected an error for a bar number below 1")
	}
}
