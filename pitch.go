package daww

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type (
	// Tone is one of the twelve semitone names within an octave, C being 0.
	Tone int

	// Pitch is a musical tone in a specific octave. Pitches have a total
	// order given by their distance in semitones from C-1 (MIDI note 0), so
	// they can be used as bounds of range queries. The zero value is C-1.
	Pitch struct {
		Tone   Tone
		Octave int
	}
)

const (
	C Tone = iota
	CSharp
	D
	DSharp
	E
	F
	FSharp
	G
	GSharp
	A
	ASharp
	B
)

var toneNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// Semitone returns the absolute semitone number of the pitch, counted from
// C-1. This matches the MIDI note numbering, so C4 is 60 and A4 is 69.
func (p Pitch) Semitone() int {
	return (p.Octave+1)*12 + int(p.Tone)
}

// PitchFromSemitone is the inverse of Semitone.
func PitchFromSemitone(semitone int) Pitch {
	tone := ((semitone % 12) + 12) % 12
	return Pitch{Tone: Tone(tone), Octave: (semitone-tone)/12 - 1}
}

// PitchFromMIDI converts a MIDI note number to a Pitch (60 = C4).
func PitchFromMIDI(note byte) Pitch {
	return PitchFromSemitone(int(note))
}

// Frequency returns the frequency of the pitch in Hz, using twelve-tone equal
// temperament with A4 tuned to 440 Hz.
func (p Pitch) Frequency() float64 {
	const a4 = 69 // semitone number of A4
	return 440 * math.Pow(2, float64(p.Semitone()-a4)/12)
}

// Less reports whether p sounds lower than q.
func (p Pitch) Less(q Pitch) bool {
	return p.Semitone() < q.Semitone()
}

func (p Pitch) String() string {
	return fmt.Sprintf("%s%d", toneNames[((int(p.Tone)%12)+12)%12], p.Octave)
}

// ParsePitch parses the string form of a pitch, e.g. "C4", "F#3" or "A#-1".
func ParsePitch(s string) (Pitch, error) {
	for i := len(toneNames) - 1; i >= 0; i-- {
		// iterate backwards so that "C#" is tried before "C"
		if strings.HasPrefix(s, toneNames[i]) {
			octave, err := strconv.Atoi(s[len(toneNames[i]):])
			if err != nil {
				return Pitch{}, fmt.Errorf("invalid octave in pitch %q: %v", s, err)
			}
			return Pitch{Tone: Tone(i), Octave: octave}, nil
		}
	}
	return Pitch{}, fmt.Errorf("invalid pitch %q", s)
}

// MarshalText makes pitches appear as strings like "C4" in json and yaml.
func (p Pitch) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Pitch) UnmarshalText(text []byte) error {
	parsed, err := ParsePitch(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// MarshalYAML and UnmarshalYAML give pitches the same string form in yaml;
// the yaml decoder does not consult UnmarshalText.
func (p Pitch) MarshalYAML() (interface{}, error) {
	return p.String(), nil
}

func (p *Pitch) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := ParsePitch(value.Value)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
