// Package dawfile implements reading and writing song documents. A song is
// stored as JSON in a .daw.json file, with YAML supported as an alternate
// encoding; event times use "bar.32nd" strings counted from bar 1.
package dawfile

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/daww-tracker/daww"
)

type (
	// Song is the full persisted document: metadata, tempo, mixdown
	// settings, the instrument table and the note events.
	Song struct {
		Metadata    Metadata              `json:"metadata" yaml:"metadata"`
		BPM         int                   `json:"bpm" yaml:"bpm"`
		Mixdown     Mixdown               `json:"mixdown" yaml:"mixdown"`
		Instruments map[string]Instrument `json:"instruments" yaml:"instruments"`
		Events      []Event               `json:"events" yaml:"events"`
	}

	Metadata struct {
		Title            string `json:"title" yaml:"title"`
		CreationDate     string `json:"creation_date" yaml:"creation_date"`
		ModificationDate string `json:"modification_date" yaml:"modification_date"`
		Revision         int    `json:"revision" yaml:"revision"`
	}

	Mixdown struct {
		SampleRate int `json:"sample_rate" yaml:"sample_rate"`
		BitDepth   int `json:"bit_depth" yaml:"bit_depth"`
	}

	Instrument struct {
		Type       string            `json:"type" yaml:"type"`
		Parameters map[string]string `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	}

	// Event is all notes of one instrument starting at one moment.
	Event struct {
		Time       string      `json:"time" yaml:"time"`
		Instrument string      `json:"instrument" yaml:"instrument"`
		Notes      []EventNote `json:"notes" yaml:"notes"`
	}

	EventNote struct {
		Pitch    daww.Pitch `json:"pitch" yaml:"pitch"`
		Duration int        `json:"duration" yaml:"duration"`
	}
)

const (
	defaultBPM        = 120
	defaultSampleRate = 44100
	defaultBitDepth   = 16

	// DefaultInstrument is the instrument name events are filed under when a
	// score is written out; the sequencer itself is instrument-agnostic.
	DefaultInstrument = "default"
)

// New creates an empty song with the given title and default tempo, mixdown
// settings and instrument table.
func New(title string) *Song {
	today := time.Now().Format(time.RFC3339)
	return &Song{
		Metadata: Metadata{
			Title:            title,
			CreationDate:     today,
			ModificationDate: today,
			Revision:         1,
		},
		BPM: defaultBPM,
		Mixdown: Mixdown{
			SampleRate: defaultSampleRate,
			BitDepth:   defaultBitDepth,
		},
		Instruments: map[string]Instrument{
			DefaultInstrument: {Type: "sampler"},
		},
	}
}

// TimeToTick parses a "bar.32nd" time string into an absolute tick. Bars are
// counted from 1 and the 32nd part must be in [0, 32).
func TimeToTick(t string) (int, error) {
	bar, n32, ok := strings.Cut(t, ".")
	if !ok {
		return 0, fmt.Errorf(`time %q is not of the form "bar.32nd"`, t)
	}
	barNum, err := strconv.Atoi(bar)
	if err != nil {
		return 0, fmt.Errorf("time %q has an invalid bar number: %v", t, err)
	}
	if barNum < 1 {
		return 0, fmt.Errorf("time %q has bar number %d, bars start at 1", t, barNum)
	}
	n32Num, err := strconv.Atoi(n32)
	if err != nil {
		return 0, fmt.Errorf("time %q has an invalid 32nd number: %v", t, err)
	}
	if n32Num < 0 || n32Num >= 32 {
		return 0, fmt.Errorf("time %q has 32nd number %d, expected 0-31", t, n32Num)
	}
	return (barNum-1)*32 + n32Num, nil
}

// TickToTime formats an absolute tick as a "bar.32nd" time string.
func TickToTime(tick int) string {
	return fmt.Sprintf("%d.%d", tick/32+1, tick%32)
}

// Score converts the song's events into a score, merging overlaps the same
// way interactive insertion does. Instrument assignments are flattened away.
// Notes must sound for at least one tick; shorter durations are a document
// error.
func (s *Song) Score() (*daww.Score, error) {
	score := daww.NewScore()
	for _, event := range s.Events {
		tick, err := TimeToTick(event.Time)
		if err != nil {
			return nil, fmt.Errorf("event for instrument %q: %v", event.Instrument, err)
		}
		for _, note := range event.Notes {
			if note.Duration < 1 {
				return nil, fmt.Errorf("event for instrument %q at %s: note %v has duration %d, expected >= 1",
					event.Instrument, event.Time, note.Pitch, note.Duration)
			}
			score.Insert(note.Pitch, tick, note.Duration)
		}
	}
	return score, nil
}

// SetScore replaces the song's events with the contents of the score, all
// filed under the default instrument and sorted by time.
func (s *Song) SetScore(score *daww.Score) {
	notes := score.Notes()
	byOnset := make(map[int][]EventNote)
	for _, note := range notes {
		byOnset[note.Onset] = append(byOnset[note.Onset], EventNote{
			Pitch:    note.Pitch,
			Duration: note.Duration,
		})
	}
	onsets := make([]int, 0, len(byOnset))
	for onset := range byOnset {
		onsets = append(onsets, onset)
	}
	sort.Ints(onsets)
	events := make([]Event, 0, len(onsets))
	for _, onset := range onsets {
		events = append(events, Event{
			Time:       TickToTime(onset),
			Instrument: DefaultInstrument,
			Notes:      byOnset[onset],
		})
	}
	s.Events = events
	if s.Instruments == nil {
		s.Instruments = map[string]Instrument{
			DefaultInstrument: {Type: "sampler"},
		}
	}
}
