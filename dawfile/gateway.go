package dawfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/daww-tracker/daww"
)

// Gateway loads and saves song documents on disk. I/O failures and parse
// failures come back as distinct errors so a caller can tell a missing file
// from a corrupt one.
type Gateway struct {
	logger *zap.Logger
}

func NewGateway(logger *zap.Logger) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gateway{logger: logger}
}

// Load reads the song at path and returns its score and tempo. JSON is tried
// first, then YAML, so both encodings load regardless of extension.
func (g *Gateway) Load(path string) (*daww.Score, int, error) {
	song, err := g.LoadSong(path)
	if err != nil {
		return nil, 0, err
	}
	score, err := song.Score()
	if err != nil {
		return nil, 0, fmt.Errorf("could not parse the song file: %v", err)
	}
	return score, song.BPM, nil
}

// LoadSong reads the full song document at path.
func (g *Gateway) LoadSong(path string) (*Song, error) {
	bytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read the song file: %w", err)
	}
	var song Song
	if errJSON := json.Unmarshal(bytes, &song); errJSON != nil {
		if errYaml := yaml.Unmarshal(bytes, &song); errYaml != nil {
			return nil, fmt.Errorf("could not parse the song file (json: %v) (yaml: %v)", errJSON, errYaml)
		}
	}
	g.logger.Debug("loaded song",
		zap.String("path", path),
		zap.String("title", song.Metadata.Title),
		zap.Int("bpm", song.BPM),
		zap.Int("events", len(song.Events)))
	return &song, nil
}

// Save writes the score to path as a song document. When a parseable song
// already exists there its metadata, instruments and mixdown settings are
// kept; the modification date is touched and the revision bumped. The
// extension picks the encoding: .yml and .yaml write YAML, everything else
// writes indented JSON.
func (g *Gateway) Save(score *daww.Score, bpm int, path string) error {
	song, err := g.LoadSong(path)
	switch {
	case err == nil:
		song.Metadata.Revision++
	case errors.Is(err, fs.ErrNotExist):
		song = New(titleFromPath(path))
	default:
		// an existing file we cannot reuse; its metadata is lost
		g.logger.Warn("could not reuse the existing song file, starting fresh",
			zap.String("path", path),
			zap.Error(err))
		song = New(titleFromPath(path))
	}
	song.Metadata.ModificationDate = time.Now().Format(time.RFC3339)
	song.BPM = bpm
	song.SetScore(score)
	var bytes []byte
	if strings.HasSuffix(path, ".yml") || strings.HasSuffix(path, ".yaml") {
		bytes, err = yaml.Marshal(song)
	} else {
		bytes, err = json.MarshalIndent(song, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("could not marshal the song: %v", err)
	}
	if err := os.WriteFile(path, bytes, 0644); err != nil {
		return fmt.Errorf("could not write the song file: %v", err)
	}
	g.logger.Debug("saved song",
		zap.String("path", path),
		zap.Int("revision", song.Metadata.Revision),
		zap.Int("events", len(song.Events)))
	return nil
}

func titleFromPath(path string) string {
	name := filepath.Base(path)
	name = strings.TrimSuffix(name, ".daw.json")
	return strings.TrimSuffix(name, filepath.Ext(name))
}
