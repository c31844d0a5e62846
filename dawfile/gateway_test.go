package dawfile_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/daww-tracker/daww"
	"github.com/daww-tracker/daww/dawfile"
)

func TestGatewayRoundTrip(t *testing.T) {
	c4 := daww.Pitch{Tone: daww.C, Octave: 4}
	g4 := daww.Pitch{Tone: daww.G, Octave: 4}
	score := daww.NewScore()
	score.Insert(c4, 0, 32)
	score.Insert(g4, 48, 16)

	gateway := dawfile.NewGateway(nil)
	path := filepath.Join(t.TempDir(), "song.daw.json")
	if err := gateway.Save(score, 140, path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	loaded, bpm, err := gateway.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if bpm != 140 {
		t.Errorf("bpm = %d, expected 140", bpm)
	}
	notes := loaded.Notes()
	if len(notes) != 2 {
		t.Fatalf("expected 2 notes after the round trip, got %d", len(notes))
	}
	if notes[0] != (daww.Note{Pitch: c4, Onset: 0, Duration: 32}) {
		t.Errorf("first note = %v", notes[0])
	}
	if notes[1] != (daww.Note{Pitch: g4, Onset: 48, Duration: 16}) {
		t.Errorf("second note = %v", notes[1])
	}
}

func TestGatewayYamlRoundTrip(t *testing.T) {
	c4 := daww.Pitch{Tone: daww.C, Octave: 4}
	score := daww.NewScore()
	score.Insert(c4, 0, 32)

	gateway := dawfile.NewGateway(nil)
	path := filepath.Join(t.TempDir(), "song.yml")
	if err := gateway.Save(score, 120, path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	bytes, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("could not read the saved file: %v", err)
	}
	if strings.HasPrefix(strings.TrimSpace(string(bytes)), "{") {
		t.Errorf("a .yml path should not be saved as json")
	}
	loaded, _, err := gateway.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got := len(loaded.Notes()); got != 1 {
		t.Errorf("expected 1 note after the yaml round trip, got %d", got)
	}
}

func TestGatewaySaveBumpsRevision(t *testing.T) {
	score := daww.NewScore()
	score.Insert(daww.Pitch{Tone: daww.C, Octave: 4}, 0, 32)
	gateway := dawfile.NewGateway(nil)
	path := filepath.Join(t.TempDir(), "song.daw.json")
	if err := gateway.Save(score, 120, path); err != nil {
		t.Fatalf("first Save failed: %v", err)
	}
	if err := gateway.Save(score, 120, path); err != nil {
		t.Fatalf("second Save failed: %v", err)
	}
	song, err := gateway.LoadSong(path)
	if err != nil {
		t.Fatalf("LoadSong failed: %v", err)
	}
	if song.Metadata.Revision != 2 {
		t.Errorf("revision = %d, expected 2", song.Metadata.Revision)
	}
}

func TestGatewaySavePreservesExistingMetadata(t *testing.T) {
	path := filepath.Join(t.TempDir(), "song.daw.json")
	existing := `{
		"metadata": {"title": "keep me", "creation_date": "2024-01-01T00:00:00Z", "revision": 3},
		"bpm": 90,
		"mixdown": {"sample_rate": 48000, "bit_depth": 24},
		"instruments": {"lead": {"type": "sampler"}},
		"events": []
	}`
	if err := os.WriteFile(path, []byte(existing), 0644); err != nil {
		t.Fatalf("could not write the existing file: %v", err)
	}
	score := daww.NewScore()
	score.Insert(daww.Pitch{Tone: daww.C, Octave: 4}, 0, 32)
	gateway := dawfile.NewGateway(nil)
	if err := gateway.Save(score, 120, path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	song, err := gateway.LoadSong(path)
	if err != nil {
		t.Fatalf("LoadSong failed: %v", err)
	}
	if song.Metadata.Title != "keep me" {
		t.Errorf("title = %q, the existing title should be kept", song.Metadata.Title)
	}
	if song.Metadata.Revision != 4 {
		t.Errorf("revision = %d, expected 4", song.Metadata.Revision)
	}
	if song.Mixdown.SampleRate != 48000 || song.Mixdown.BitDepth != 24 {
		t.Errorf("mixdown = %+v, the existing settings should be kept", song.Mixdown)
	}
	if _, ok := song.Instruments["lead"]; !ok {
		t.Errorf("the existing instrument table should be kept, got %v", song.Instruments)
	}
}

func TestGatewaySaveOverCorruptFileWarns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "song.daw.json")
	if err := os.WriteFile(path, []byte("{not json: ]["), 0644); err != nil {
		t.Fatalf("could not write the corrupt file: %v", err)
	}
	core, logs := observer.New(zapcore.WarnLevel)
	gateway := dawfile.NewGateway(zap.New(core))
	score := daww.NewScore()
	score.Insert(daww.Pitch{Tone: daww.C, Octave: 4}, 0, 32)
	if err := gateway.Save(score, 120, path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if logs.Len() == 0 {
		t.Errorf("overwriting a corrupt file should log a warning")
	}
	if _, _, err := gateway.Load(path); err != nil {
		t.Errorf("the overwritten file should load cleanly, got %v", err)
	}
}

func TestGatewayLoadErrors(t *testing.T) {
	gateway := dawfile.NewGateway(nil)
	if _, _, err := gateway.Load(filepath.Join(t.TempDir(), "missing.daw.json")); err == nil {
		t.Errorf("loading a missing file should fail")
	} else if !strings.Contains(err.Error(), "read") {
		t.Errorf("a missing file should be a read error, got: %v", err)
	}
	path := filepath.Join(t.TempDir(), "corrupt.daw.json")
	if err := os.WriteFile(path, []byte("{not json: ]["), 0644); err != nil {
		t.Fatalf("could not write the corrupt file: %v", err)
	}
	if _, _, err := gateway.Load(path); err == nil {
		t.Errorf("loading a corrupt file should fail")
	} else if !strings.Contains(err.Error(), "parse") {
		t.Errorf("a corrupt file should be a parse error, got: %v", err)
	}
}
